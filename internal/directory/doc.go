// Package directory enumerates the member detail pages of the TAAN directory.
//
// # Architecture
//
// The directory site splits its members across three listing roots (general,
// associate, regional), each paginated by an alphabetical filter (?l=a ... ?l=z)
// plus an unfiltered "trending" page. The Enumerator walks every listing page,
// extracts member detail links with golang.org/x/net/html, and returns an
// ordered, duplicate-free sequence of fetch tasks.
//
// Design decision: We parse listing pages with golang.org/x/net/html rather
// than a CSS selector library because:
//  1. It correctly handles the malformed HTML the site serves
//  2. Listing extraction needs only anchor hrefs, not selector queries
//  3. A single DOM walk is cheap and easy to test
//
// The enumeration is the source of truth for row order: task N becomes row N
// of the output file. Finding more members than the association's published
// count is expected and everything discoverable is kept.
package directory

// Package database provides SQLite-based storage for scrape run history.
//
// Each completed run is recorded with its summary statistics and a
// snapshot of every member row. The history powers the `taanscrape
// history` command: listing past runs and diffing the member sets of two
// runs, which is how the gap between the association's published member
// count and the number of discoverable members is tracked over time.
package database

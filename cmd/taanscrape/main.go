// Package main provides the entry point for the taanscrape CLI.
//
// taanscrape scrapes the member directory of the Trekking Agencies'
// Association of Nepal (TAAN) and exports every discoverable member
// record to a spreadsheet file.
//
// Usage:
//
//	taanscrape scrape
//	taanscrape scrape --output members.csv --workers 5
//	taanscrape history --limit 10
//
// See --help for all available options.
package main

// main is the entry point for taanscrape.
func main() {
	Execute()
}

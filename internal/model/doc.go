// Package model defines the data structures shared across the scraper:
// member records, fetch tasks, and run summaries.
package model

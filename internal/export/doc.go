// Package export serializes member records into the output spreadsheet and
// renders the run summary.
//
// The spreadsheet always carries the fixed 13-column header and exactly one
// row per record, written in one batch after the fetch stage completes. The
// file is written to a temporary name and renamed into place so a crash or
// cancellation never leaves a partial output file.
package export

package model

import "strings"

// Member categories as they appear in the TAAN directory.
// The directory splits members across three listing roots; the category
// is carried on each record for the run summary and history database,
// but is not part of the spreadsheet columns.
const (
	CategoryGeneral   = "General"
	CategoryAssociate = "Associate"
	CategoryRegional  = "Regional"
)

// FieldNames returns the spreadsheet column names in output order.
// This order is fixed: it is the external interface of the exporter
// and must not change between runs.
//
// Design decision: We return a fresh slice rather than exposing a
// package-level variable because a caller mutating the header would
// silently corrupt every subsequent export.
func FieldNames() []string {
	return []string{
		"Organization Name",
		"Registration Number",
		"VAT Number",
		"Address",
		"Country",
		"Website URL",
		"Email",
		"Telephone Number",
		"Mobile Number",
		"Fax",
		"PO Box",
		"Key Person",
		"Establishment Date",
	}
}

// FieldCount is the number of spreadsheet columns per record.
const FieldCount = 13

// MemberRecord holds the data extracted from one member detail page.
// A record is created once per processed task and is immutable after
// FillMissing; the exporter owns it from that point on.
//
// Design decision: Thirteen named string fields rather than a map because:
//  1. The column set is fixed by the output format
//  2. Field access is checked at compile time
//  3. Row() guarantees a stable column order without sorting
type MemberRecord struct {
	// OrganizationName is the member organization's display name.
	OrganizationName string

	// RegistrationNumber is the company registration number.
	RegistrationNumber string

	// VATNumber is the VAT registration number.
	VATNumber string

	// Address is the postal address.
	Address string

	// Country is the country of registration.
	Country string

	// WebsiteURL is the organization's website.
	WebsiteURL string

	// Email is the contact email address.
	Email string

	// TelephoneNumber is the landline contact number.
	TelephoneNumber string

	// MobileNumber is the mobile contact number.
	MobileNumber string

	// Fax is the fax number.
	Fax string

	// POBox is the post office box number.
	POBox string

	// KeyPerson is the named contact person.
	KeyPerson string

	// EstablishmentDate is the date the organization was established.
	EstablishmentDate string

	// Category is the member category (General, Associate, Regional).
	// Not exported as a spreadsheet column.
	Category string

	// SourceURL is the member detail page the record was extracted from.
	// Not exported as a spreadsheet column.
	SourceURL string

	// Failed reports that the fetch for this member exhausted its retries
	// or hit a permanent error, so every field holds the placeholder.
	Failed bool
}

// PlaceholderRecord returns a record with every spreadsheet field set to
// the placeholder. Used when a task fails permanently or exhausts retries:
// every task yields exactly one output row, populated or not.
func PlaceholderRecord(sourceURL, category, placeholder string) *MemberRecord {
	r := &MemberRecord{
		Category:  category,
		SourceURL: sourceURL,
		Failed:    true,
	}
	r.FillMissing(placeholder)
	return r
}

// FillMissing replaces every empty spreadsheet field with the placeholder.
// After this call no field is empty; this is the invariant the exporter
// relies on.
func (r *MemberRecord) FillMissing(placeholder string) {
	for _, f := range r.fields() {
		if strings.TrimSpace(*f) == "" {
			*f = placeholder
		}
	}
}

// Row returns the spreadsheet cells in FieldNames order.
func (r *MemberRecord) Row() []string {
	fields := r.fields()
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = *f
	}
	return row
}

// FilledCount returns how many spreadsheet fields hold a value other than
// the placeholder. Used for the run summary's fill-rate statistics.
func (r *MemberRecord) FilledCount(placeholder string) int {
	count := 0
	for _, cell := range r.Row() {
		if cell != placeholder {
			count++
		}
	}
	return count
}

// fields returns pointers to the spreadsheet fields in column order.
func (r *MemberRecord) fields() []*string {
	return []*string{
		&r.OrganizationName,
		&r.RegistrationNumber,
		&r.VATNumber,
		&r.Address,
		&r.Country,
		&r.WebsiteURL,
		&r.Email,
		&r.TelephoneNumber,
		&r.MobileNumber,
		&r.Fax,
		&r.POBox,
		&r.KeyPerson,
		&r.EstablishmentDate,
	}
}

package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/KENnotcode/taanscrape/internal/model"
)

// maxLabelLen bounds the text accepted as a field label. Container
// elements hold the text of everything inside them, so without a bound a
// page-sized blob with a colon in it would be treated as a label.
const maxLabelLen = 40

// Extract parses a member detail page and returns the extracted record.
// Any field not found on the page is set to the placeholder, so the
// returned record never has an empty field. A body that cannot be parsed
// as HTML at all returns an error; the caller substitutes a placeholder
// record.
//
// The page presents member data as "Label: value" list items plus a
// key/value table in the official-documents section, with the organization
// name in the page heading. Extraction is structural, not positional, so
// reordered sections still extract.
func Extract(body []byte, sourceURL, category, placeholder string) (*model.MemberRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	rec := &model.MemberRecord{
		Category:  category,
		SourceURL: sourceURL,
	}

	// Organization name comes from the page heading, falling back to the
	// document title. A labeled "Organization Name:" row overrides both.
	if name := cleanText(doc.Find("h1").First().Text()); name != "" {
		rec.OrganizationName = name
	} else if title := cleanText(doc.Find("title").First().Text()); title != "" {
		rec.OrganizationName = title
	}

	// Labeled rows: list items, paragraphs, and plain divs.
	doc.Find("li, p, div, td").Each(func(_ int, sel *goquery.Selection) {
		label, value, ok := splitLabeled(sel.Text())
		if !ok {
			return
		}
		assignField(rec, sel, label, value)
	})

	// Key/value tables: first cell is the label, second the value.
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(cleanText(strings.TrimSuffix(cleanText(cells.Eq(0).Text()), ":")))
		value := cleanText(cells.Eq(1).Text())
		if label == "" || value == "" {
			return
		}
		assignField(rec, cells.Eq(1), label, value)
	})

	rec.FillMissing(placeholder)
	return rec, nil
}

// splitLabeled splits element text of the form "Label: value" and reports
// whether it looks like a labeled data row.
func splitLabeled(text string) (label, value string, ok bool) {
	text = strings.TrimSpace(text)
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", "", false
	}

	label = strings.ToLower(cleanText(text[:idx]))
	value = cleanText(text[idx+1:])
	if label == "" || value == "" || len(label) > maxLabelLen {
		return "", "", false
	}
	return label, value, true
}

// assignField maps a label onto the matching record field. The selection
// is consulted for href-bearing values: the website field prefers the
// anchor target over the anchor text, and emails are pulled out of
// mailto: links.
func assignField(rec *model.MemberRecord, sel *goquery.Selection, label, value string) {
	switch {
	case strings.Contains(label, "organization name"):
		rec.OrganizationName = value
	case strings.Contains(label, "reg") && strings.Contains(label, "no"):
		rec.RegistrationNumber = value
	case strings.Contains(label, "vat"):
		rec.VATNumber = value
	case strings.Contains(label, "address"):
		rec.Address = value
	case strings.Contains(label, "country"):
		rec.Country = value
	case strings.Contains(label, "website") || strings.Contains(label, "url"):
		rec.WebsiteURL = linkOrText(sel, value)
	case strings.Contains(label, "email"):
		rec.Email = mailtoOrText(sel, value)
	case strings.Contains(label, "telephone"):
		rec.TelephoneNumber = value
	case strings.Contains(label, "mobile"):
		rec.MobileNumber = value
	case strings.Contains(label, "fax"):
		rec.Fax = value
	case strings.Contains(label, "po box") || strings.Contains(label, "p.o"):
		rec.POBox = value
	case strings.Contains(label, "key person"):
		rec.KeyPerson = value
	case strings.Contains(label, "establishment") || strings.Contains(label, "date"):
		rec.EstablishmentDate = value
	}
}

// linkOrText returns the first anchor's href within the selection, or the
// given text when there is no usable link.
func linkOrText(sel *goquery.Selection, text string) string {
	if href, ok := sel.Find("a").First().Attr("href"); ok {
		if href = strings.TrimSpace(href); href != "" && !strings.HasPrefix(href, "mailto:") {
			return href
		}
	}
	return text
}

// mailtoOrText returns the address from a mailto: link within the
// selection, or the given text when there is none.
func mailtoOrText(sel *goquery.Selection, text string) string {
	if href, ok := sel.Find("a").First().Attr("href"); ok {
		if addr, found := strings.CutPrefix(strings.TrimSpace(href), "mailto:"); found && addr != "" {
			return addr
		}
	}
	return text
}

// cleanText collapses runs of whitespace into single spaces and trims the
// result, normalizing the site's heavily indented markup.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

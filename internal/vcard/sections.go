package vcard

import "strings"

// Section titles produced by Record.Sections.
const (
	NameSectionTitle    = "Name (parts)"
	ContactSectionTitle = "Contact"
	CustomSectionTitle  = "Custom fields"
)

const (
	nameLabelWidth    = 11
	contactLabelWidth = 5
)

// Entry is one labelled line of a Section.
type Entry struct {
	Label string
	Text  string
}

// Section is a titled group of entries. LabelWidth is the column width the
// renderer should reserve for labels.
type Section struct {
	Title      string
	Entries    []Entry
	LabelWidth int
}

// Sections returns the record's display groups in order: name parts,
// contact entries, custom fields. Empty groups are omitted.
func (r *Record) Sections() []Section {
	var out []Section

	if r.Name != nil {
		out = append(out, Section{
			Title: NameSectionTitle,
			Entries: []Entry{
				{Label: "Prefix", Text: r.Name.Prefix},
				{Label: "First name", Text: r.Name.Given},
				{Label: "Middle name", Text: r.Name.Additional},
				{Label: "Family name", Text: r.Name.Family},
				{Label: "Suffix", Text: r.Name.Suffix},
			},
			LabelWidth: nameLabelWidth,
		})
	}

	if len(r.Phones)+len(r.Emails) > 0 {
		entries := make([]Entry, 0, len(r.Phones)+len(r.Emails))
		for _, p := range r.Phones {
			entries = append(entries, Entry{Label: "tel", Text: p.String()})
		}
		for _, e := range r.Emails {
			entries = append(entries, Entry{Label: "email", Text: e.String()})
		}
		out = append(out, Section{
			Title:      ContactSectionTitle,
			Entries:    entries,
			LabelWidth: contactLabelWidth,
		})
	}

	if len(r.FreeFields) > 0 {
		entries := make([]Entry, 0, len(r.FreeFields))
		width := 0
		for _, f := range r.FreeFields {
			entries = append(entries, Entry{Label: f.Name, Text: strings.Join(f.Values, ";")})
			width = max(width, len(f.Name))
		}
		out = append(out, Section{
			Title:      CustomSectionTitle,
			Entries:    entries,
			LabelWidth: width,
		})
	}

	return out
}

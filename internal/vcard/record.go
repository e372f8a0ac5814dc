// Package vcard parses contact cards (BEGIN:VCARD … END:VCARD spans) into
// typed records.
//
// Parsing runs in three layers: the reader finds record boundaries, a
// per-record assembler undoes line folding, and each resulting logical line
// is decoded into a Field and dispatched through a Registry. Fields the
// registry does not know are kept verbatim as FreeFields.
package vcard

import (
	"fmt"
	"strings"
)

// noNameTitle is the list title for a record with neither FN nor N.
const noNameTitle = "!No name in contact"

// Record is one parsed contact card.
// A Record is only handed to callers once its END marker has been seen.
type Record struct {
	Version       string          // VERSION value, empty if absent.
	Name          *StructuredName // N value, nil if absent.
	FormattedName string          // FN value, empty if absent.
	Phones        []PhoneNumber
	Emails        []EmailAddress
	FreeFields    []FreeField
}

// Title returns the name shown for the record in list views.
func (r *Record) Title() string {
	if r.FormattedName != "" {
		return r.FormattedName
	}
	if r.Name != nil {
		return r.Name.String()
	}
	return noNameTitle
}

// StructuredName holds the five positional components of an N field.
// Absent components are empty strings.
type StructuredName struct {
	Family     string
	Given      string
	Additional string
	Prefix     string
	Suffix     string
}

// String joins the non-empty components in reading order.
func (n StructuredName) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{n.Prefix, n.Given, n.Additional, n.Family, n.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// PhoneNumber is one TEL entry.
type PhoneNumber struct {
	Preferred bool
	Type      string // Comma-joined sorted categories, or the raw TYPE parameter.
	Number    string
}

func (p PhoneNumber) String() string {
	return contactLine(p.Preferred, p.Type, p.Number)
}

// EmailAddress is one EMAIL entry.
type EmailAddress struct {
	Preferred bool
	Type      string
	Address   string
}

func (e EmailAddress) String() string {
	return contactLine(e.Preferred, e.Type, e.Address)
}

// contactLine formats a contact entry as "! (type) value" for preferred
// entries and ". (type) value" otherwise.
func contactLine(preferred bool, kind, value string) string {
	marker := "."
	if preferred {
		marker = "!"
	}
	return fmt.Sprintf("%s (%s) %s", marker, kind, value)
}

// FreeField is a field with no registered handler, kept as decoded.
type FreeField struct {
	Name   string
	Params Params
	Values []string
}

// Params maps parameter names to values. A parameter written without "="
// is present with an empty value.
type Params map[string]string

// Has reports whether the parameter was given, with or without a value.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Get returns the parameter value and whether it was given.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

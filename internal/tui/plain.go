package tui

import (
	"fmt"
	"io"

	"github.com/smileynet/vcfview/internal/vcard"
)

// WriteCard writes one card: its title, then each section with labels
// padded to the section's label width.
func WriteCard(w io.Writer, rec *vcard.Record, hideCustom bool) {
	_, _ = fmt.Fprintln(w, rec.Title())
	for _, s := range rec.Sections() {
		if hideCustom && s.Title == vcard.CustomSectionTitle {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s\n", s.Title)
		for _, e := range s.Entries {
			_, _ = fmt.Fprintf(w, "    %-*s  %s\n", s.LabelWidth, e.Label, e.Text)
		}
	}
}

// WriteSummary writes one numbered title line per card. Numbers start at 1
// and match the INDEX argument of the show command.
func WriteSummary(w io.Writer, cards []*vcard.Record) {
	width := len(fmt.Sprint(len(cards)))
	for i, rec := range cards {
		_, _ = fmt.Fprintf(w, "%*d  %s\n", width, i+1, rec.Title())
	}
}

package browse

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/vcfview/internal/vcard"
)

// labelGap separates the label column from entry text.
const labelGap = "  "

// renderDetail renders a card's title and sections for the right pane.
// Sections titled vcard.CustomSectionTitle are skipped when hideCustom is set.
func renderDetail(rec *vcard.Record, width int, hideCustom bool) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(rec.Title()))

	for _, s := range rec.Sections() {
		if hideCustom && s.Title == vcard.CustomSectionTitle {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(sectionTitleStyle.Render(s.Title))
		label := labelStyle.Width(s.LabelWidth)
		for _, e := range s.Entries {
			b.WriteByte('\n')
			b.WriteString(label.Render(e.Label))
			b.WriteString(labelGap)
			b.WriteString(e.Text)
		}
	}

	if width <= 0 {
		return b.String()
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

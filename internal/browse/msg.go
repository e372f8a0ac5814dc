// Package browse implements the two-pane card browser: a list of card
// titles on the left and the selected card's sections on the right.
package browse

import "github.com/smileynet/vcfview/internal/vcard"

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Card list has focus.
	PaneRight              // Detail viewport has focus.
)

// --- Consumer-side interfaces ---

// CardLoader fetches the cards to browse.
type CardLoader interface {
	Load() ([]*vcard.Record, error)
}

// LoaderFunc adapts a plain function to CardLoader.
type LoaderFunc func() ([]*vcard.Record, error)

// Load calls f.
func (f LoaderFunc) Load() ([]*vcard.Record, error) {
	return f()
}

// --- tea.Msg types ---

// CardsLoadedMsg carries the result of a CardLoader.Load() call.
type CardsLoadedMsg struct {
	Cards []*vcard.Record
	Err   error
}

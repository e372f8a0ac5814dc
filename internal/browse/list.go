package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/vcfview/internal/vcard"
)

// CursorMarker is the prefix shown on the selected card row.
const CursorMarker = "▸ "

// listState manages the card list, cursor, and loading/error states
// for the left pane.
type listState struct {
	cards   []*vcard.Record
	cursor  int
	loading bool
	err     error
	wrap    bool
	keys    keyMap
}

// newListState returns a listState in the loading state.
func newListState(wrap bool) listState {
	return listState{loading: true, wrap: wrap, keys: KeyMap()}
}

// loadCards returns a tea.Cmd that calls loader.Load() asynchronously
// and wraps the result in a CardsLoadedMsg.
func loadCards(loader CardLoader) tea.Cmd {
	return func() tea.Msg {
		cards, err := loader.Load()
		return CardsLoadedMsg{Cards: cards, Err: err}
	}
}

// Update processes messages for the list state.
func (ls listState) Update(msg tea.Msg) (listState, tea.Cmd) {
	switch msg := msg.(type) {
	case CardsLoadedMsg:
		return ls.applyCards(msg.Cards, msg.Err), nil

	case tea.KeyMsg:
		if ls.loading {
			return ls, nil
		}
		return ls.handleKey(msg), nil
	}

	return ls, nil
}

// applyCards applies a fetched card list (or error) to the list state,
// clearing the loading indicator and resetting the cursor.
func (ls listState) applyCards(cards []*vcard.Record, err error) listState {
	ls.loading = false
	ls.cursor = 0
	if err != nil {
		ls.err = err
		ls.cards = nil
		return ls
	}
	ls.err = nil
	ls.cards = append([]*vcard.Record(nil), cards...)
	return ls
}

func (ls listState) handleKey(msg tea.KeyMsg) listState {
	n := len(ls.cards)
	if n == 0 {
		return ls
	}

	switch {
	case key.Matches(msg, ls.keys.Up):
		ls.cursor--
		if ls.cursor < 0 {
			if ls.wrap {
				ls.cursor = n - 1
			} else {
				ls.cursor = 0
			}
		}

	case key.Matches(msg, ls.keys.Down):
		ls.cursor++
		if ls.cursor >= n {
			if ls.wrap {
				ls.cursor = 0
			} else {
				ls.cursor = n - 1
			}
		}

	case key.Matches(msg, ls.keys.Top):
		ls.cursor = 0

	case key.Matches(msg, ls.keys.Bottom):
		ls.cursor = n - 1
	}

	return ls
}

// Selected returns the card at the cursor, or nil if the list is empty
// or still loading.
func (ls listState) Selected() *vcard.Record {
	if ls.loading || ls.cursor < 0 || ls.cursor >= len(ls.cards) {
		return nil
	}
	return ls.cards[ls.cursor]
}

// offset returns the index of the first visible row, keeping the cursor
// near the middle of the pane without scrolling past the end.
func (ls listState) offset(height int) int {
	maxOffset := max(0, len(ls.cards)-height)
	return min(maxOffset, max(0, ls.cursor-height/2))
}

// View renders the list pane content for the given dimensions.
// spinnerView is the current spinner frame.
func (ls listState) View(width, height int, spinnerView string) string {
	if ls.loading {
		return fmt.Sprintf("%s Loading cards...", spinnerView)
	}

	if ls.err != nil {
		return errorText.Render(fmt.Sprintf("Error: %s", ls.err)) + "\n\nPress r to retry"
	}

	if len(ls.cards) == 0 {
		return mutedText.Render("No cards found. Press r to reload")
	}

	row := lipgloss.NewStyle().MaxWidth(width)
	start := ls.offset(height)
	end := min(len(ls.cards), start+height)

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		prefix := "  "
		if i == ls.cursor {
			prefix = CursorMarker
		}
		b.WriteString(row.Render(prefix + ls.cards[i].Title()))
	}
	return b.String()
}

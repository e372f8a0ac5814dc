package browse

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/vcfview/internal/vcard"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c != nil {
				result := c()
				if _, isTick := result.(spinner.TickMsg); !isTick {
					msgs = append(msgs, result)
				}
			}
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// sampleCards parses a small address book.
func sampleCards(t *testing.T) []*vcard.Record {
	t.Helper()
	cards, err := vcard.ReadAll(strings.NewReader(`BEGIN:VCARD
VERSION:3.0
N:Doe;Jane;;Dr.;
FN:Jane Doe
TEL;TYPE=cell:555-1000
EMAIL;PREF;WORK:jane@work.example
X-SKYPE:jane.doe
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:John Roe
TEL;HOME:555-2000
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Poe;Edgar;Allan;;
END:VCARD
`))
	if err != nil {
		t.Fatalf("parsing sample cards: %v", err)
	}
	return cards
}

// stubLoader implements CardLoader for tests.
type stubLoader struct {
	cards []*vcard.Record
	err   error
	calls int
}

func (s *stubLoader) Load() ([]*vcard.Record, error) {
	s.calls++
	return s.cards, s.err
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

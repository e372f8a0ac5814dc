package vcard

import "strings"

// customSpanToken opens a literal span whose physical lines are all
// continuations until the first ")".
const customSpanToken = "X-CUSTOM("

// spanState tracks the X-CUSTOM( literal span of the open logical line.
type spanState int

const (
	spanNotYet    spanState = iota // No span seen since the last flush.
	spanCurrently                  // Inside an unclosed span; every line continues.
	spanParsed                     // Span closed, or the line never opened one.
)

// assembler turns the physical lines of one record into logical lines and
// dispatches each one as soon as it is complete. It belongs to a single
// record and is discarded at END.
type assembler struct {
	rec      *Record
	registry *Registry
	current  strings.Builder
	open     bool
	span     spanState
}

func newAssembler(rec *Record, registry *Registry) *assembler {
	return &assembler{rec: rec, registry: registry}
}

// push consumes one non-blank physical line.
func (a *assembler) push(line string) error {
	if strings.HasPrefix(line, " ") || a.span == spanCurrently {
		// Tracker transitions look at this line's content after it has
		// already been classified as a continuation.
		if a.span == spanCurrently && strings.Contains(line, ")") {
			a.span = spanParsed
		}
		if a.span == spanNotYet {
			if _, after, ok := strings.Cut(line, customSpanToken); ok {
				a.span = spanCurrently
				if strings.Contains(after, ")") {
					a.span = spanParsed
				}
			}
		}
		if !a.open {
			return &MalformedContinuationError{Line: line}
		}
		a.current.WriteString(strings.TrimPrefix(line, " "))
		return nil
	}

	if err := a.flush(); err != nil {
		return err
	}
	a.open = true
	a.current.WriteString(line)
	a.span = openingSpan(line)
	return nil
}

// openingSpan returns the tracker state for a line that starts a new
// logical line.
func openingSpan(line string) spanState {
	_, after, ok := strings.Cut(line, customSpanToken)
	if !ok || strings.Contains(after, ")") {
		return spanParsed
	}
	return spanCurrently
}

// flush decodes and dispatches the open logical line, if any.
func (a *assembler) flush() error {
	if !a.open {
		a.span = spanNotYet
		return nil
	}
	line := a.current.String()
	a.current.Reset()
	a.open = false
	a.span = spanNotYet

	field, err := DecodeLine(line)
	if err != nil {
		return err
	}
	return a.registry.Dispatch(a.rec, field)
}

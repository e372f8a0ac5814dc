package vcard

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Record boundary markers.
const (
	BeginMarker = "BEGIN:VCARD"
	EndMarker   = "END:VCARD"
)

// maxLineLength bounds a single physical line read by Reader.Read.
const maxLineLength = 1 << 20

// Reader produces Records from line-oriented input.
type Reader struct {
	registry *Registry
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithRegistry makes the reader dispatch fields through reg instead of the
// built-in registry.
func WithRegistry(reg *Registry) ReaderOption {
	return func(r *Reader) {
		r.registry = reg
	}
}

// NewReader returns a Reader using the built-in registry unless overridden.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{registry: defaultRegistry}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Lines returns a lazy sequence of the records found in lines. Each record
// is yielded as soon as its END marker is read. The first error is yielded
// with a nil record and ends the sequence. Lines outside BEGIN…END spans are
// ignored.
func (r *Reader) Lines(lines iter.Seq[string]) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		var (
			rec     *Record
			asm     *assembler
			lineNo  int
			ordinal int
			begin   int
		)
		fail := func(err error) {
			yield(nil, &ParseError{Record: ordinal, Line: lineNo, Err: err})
		}

		for line := range lines {
			lineNo++
			line = strings.TrimRight(line, "\r\n")

			if asm == nil {
				if line == BeginMarker {
					ordinal++
					begin = lineNo
					rec = &Record{}
					asm = newAssembler(rec, r.registry)
				}
				continue
			}

			if line == EndMarker {
				if err := asm.flush(); err != nil {
					fail(err)
					return
				}
				done := rec
				rec, asm = nil, nil
				if !yield(done, nil) {
					return
				}
				continue
			}

			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := asm.push(line); err != nil {
				fail(err)
				return
			}
		}

		if asm != nil {
			fail(&UnterminatedRecordError{Begin: begin})
		}
	}
}

// Read returns a lazy sequence of the records in src. Read errors from src
// take precedence over an unterminated final record.
func (r *Reader) Read(src io.Reader) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		sc := bufio.NewScanner(src)
		sc.Buffer(nil, maxLineLength)
		lines := func(yieldLine func(string) bool) {
			for sc.Scan() {
				if !yieldLine(sc.Text()) {
					return
				}
			}
		}

		for rec, err := range r.Lines(lines) {
			if err != nil {
				if scanErr := sc.Err(); scanErr != nil {
					err = fmt.Errorf("vcard: reading input: %w", scanErr)
				}
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}

		if err := sc.Err(); err != nil {
			yield(nil, fmt.Errorf("vcard: reading input: %w", err))
		}
	}
}

// ReadAll parses every record in src with the built-in registry.
// On error no records are returned.
func ReadAll(src io.Reader) ([]*Record, error) {
	return NewReader().ReadAll(src)
}

// ReadAll parses every record in src.
// On error no records are returned.
func (r *Reader) ReadAll(src io.Reader) ([]*Record, error) {
	var out []*Record
	for rec, err := range r.Read(src) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

package vcard

import "fmt"

// UnterminatedRecordError reports input that ended inside a BEGIN…END span.
type UnterminatedRecordError struct {
	Begin int // Physical line number of the BEGIN marker.
}

func (e *UnterminatedRecordError) Error() string {
	return fmt.Sprintf("vcard: input ended before %s (record opened at line %d)", EndMarker, e.Begin)
}

// MalformedContinuationError reports a folded line with no field to continue.
type MalformedContinuationError struct {
	Line string
}

func (e *MalformedContinuationError) Error() string {
	return fmt.Sprintf("vcard: continuation line without a preceding field: %q", e.Line)
}

// MalformedFieldError reports a logical line that could not be decoded.
type MalformedFieldError struct {
	Line   string
	Reason string
	Err    error // Underlying decoding error, if any.
}

func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vcard: malformed field %q: %s: %s", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("vcard: malformed field %q: %s", e.Line, e.Reason)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// ArityMismatchError reports a registered field with the wrong value count.
type ArityMismatchError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("vcard: field %s: expected %d values, got %d", e.Field, e.Expected, e.Actual)
}

// ParseError locates a failure inside the input. Record is the 1-based
// ordinal of the record being parsed and Line the 1-based physical line
// where the failure surfaced.
type ParseError struct {
	Record int
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d, line %d: %s", e.Record, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

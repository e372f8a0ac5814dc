package vcard

import (
	"errors"
	"io"
	"mime/quotedprintable"
	"strings"
	"unicode/utf8"
)

const (
	encodingParam   = "ENCODING"
	quotedPrintable = "QUOTED-PRINTABLE"
)

var errInvalidUTF8 = errors.New("decoded payload is not valid UTF-8")

// Field is a decoded logical line: NAME;PARAM=val;…:value1;value2;…
type Field struct {
	Name   string
	Params Params
	Values []string
}

// DecodeLine splits an unfolded logical line into name, parameters and
// values. Values are QUOTED-PRINTABLE decoded when the ENCODING parameter
// asks for it.
func DecodeLine(line string) (Field, error) {
	left, right, ok := strings.Cut(line, ":")
	if !ok {
		return Field{}, &MalformedFieldError{Line: line, Reason: "missing ':' separator"}
	}

	segments := strings.Split(left, ";")
	params := make(Params, len(segments)-1)
	for _, raw := range segments[1:] {
		key, value, _ := strings.Cut(raw, "=")
		params[key] = value
	}

	values := strings.Split(right, ";")
	if enc, ok := params.Get(encodingParam); ok && enc == quotedPrintable {
		for i, v := range values {
			decoded, err := decodeQuotedPrintable(v)
			if err != nil {
				return Field{}, &MalformedFieldError{Line: line, Reason: "quoted-printable decoding failed", Err: err}
			}
			values[i] = decoded
		}
	}

	return Field{Name: segments[0], Params: params, Values: values}, nil
}

func decodeQuotedPrintable(s string) (string, error) {
	b, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(s)))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return string(b), nil
}

package vcard

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// HandlerFunc applies a field's values to a record. params holds only the
// parameters listed in the handler's FieldSpec.
type HandlerFunc func(rec *Record, values []string, params Params)

// FieldSpec binds a field name to its handler.
type FieldSpec struct {
	Name   string
	Arity  int      // Exact number of values the field must carry.
	Params []string // Parameter names passed through to Handle.
	Handle HandlerFunc
}

// filter returns the subset of params this spec recognizes.
func (s FieldSpec) filter(params Params) Params {
	out := make(Params, len(s.Params))
	for _, key := range s.Params {
		if v, ok := params[key]; ok {
			out[key] = v
		}
	}
	return out
}

// Registry maps field names to handlers. It is immutable after NewRegistry
// returns and safe to share between concurrent parses.
type Registry struct {
	specs map[string]FieldSpec
}

// NewRegistry builds a registry from specs.
// Panics on an empty name, nil handler, negative arity or duplicate name
// (programmer error).
func NewRegistry(specs ...FieldSpec) *Registry {
	r := &Registry{specs: make(map[string]FieldSpec, len(specs))}
	for _, s := range specs {
		switch {
		case s.Name == "":
			panic("vcard: FieldSpec with empty name")
		case s.Handle == nil:
			panic(fmt.Sprintf("vcard: FieldSpec %s has nil handler", s.Name))
		case s.Arity < 0:
			panic(fmt.Sprintf("vcard: FieldSpec %s has negative arity %d", s.Name, s.Arity))
		}
		if _, dup := r.specs[s.Name]; dup {
			panic(fmt.Sprintf("vcard: FieldSpec %s registered twice", s.Name))
		}
		s.Params = slices.Clone(s.Params)
		r.specs[s.Name] = s
	}
	return r
}

// Lookup returns the spec registered for name.
func (r *Registry) Lookup(name string) (FieldSpec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Names returns the registered field names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.specs))
}

// Dispatch applies f to rec. Unregistered fields are appended to
// rec.FreeFields with any number of values; registered fields must match
// their spec's arity.
func (r *Registry) Dispatch(rec *Record, f Field) error {
	spec, ok := r.specs[f.Name]
	if !ok {
		rec.FreeFields = append(rec.FreeFields, FreeField{
			Name:   f.Name,
			Params: f.Params,
			Values: f.Values,
		})
		return nil
	}
	if len(f.Values) != spec.Arity {
		return &ArityMismatchError{Field: f.Name, Expected: spec.Arity, Actual: len(f.Values)}
	}
	spec.Handle(rec, f.Values, spec.filter(f.Params))
	return nil
}

var defaultRegistry = NewRegistry(Builtins()...)

// DefaultRegistry returns the registry holding the built-in fields.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Builtins returns the built-in field specs. The slice is freshly allocated
// so callers can append their own specs and pass the result to NewRegistry.
func Builtins() []FieldSpec {
	return []FieldSpec{
		{Name: "VERSION", Arity: 1, Handle: handleVersion},
		{Name: "N", Arity: 5, Handle: handleName},
		{Name: "FN", Arity: 1, Handle: handleFormattedName},
		{Name: "TEL", Arity: 1, Params: []string{"PREF", "TYPE", "CELL", "WORK", "HOME"}, Handle: handlePhone},
		{Name: "EMAIL", Arity: 1, Params: []string{"PREF", "TYPE", "HOME", "WORK"}, Handle: handleEmail},
	}
}

func handleVersion(rec *Record, values []string, _ Params) {
	rec.Version = values[0]
}

func handleName(rec *Record, values []string, _ Params) {
	rec.Name = &StructuredName{
		Family:     values[0],
		Given:      values[1],
		Additional: values[2],
		Prefix:     values[3],
		Suffix:     values[4],
	}
}

func handleFormattedName(rec *Record, values []string, _ Params) {
	rec.FormattedName = values[0]
}

func handlePhone(rec *Record, values []string, params Params) {
	kind, ok := params.Get("TYPE")
	if !ok {
		cats := categories{}
		if params.Has("CELL") {
			cats.add("cell", "voice")
		}
		if params.Has("WORK") {
			cats.add("work", "voice")
		}
		if params.Has("HOME") {
			cats.add("voice")
		}
		if len(cats) == 0 {
			cats.add("voice")
		}
		kind = cats.String()
	}
	rec.Phones = append(rec.Phones, PhoneNumber{
		Preferred: params.Has("PREF"),
		Type:      kind,
		Number:    values[0],
	})
}

func handleEmail(rec *Record, values []string, params Params) {
	kind, ok := params.Get("TYPE")
	if !ok {
		cats := categories{}
		if params.Has("WORK") {
			cats.add("work")
		}
		if params.Has("HOME") {
			cats.add("home")
		}
		kind = cats.String()
	}
	rec.Emails = append(rec.Emails, EmailAddress{
		Preferred: params.Has("PREF"),
		Type:      kind,
		Address:   values[0],
	})
}

// categories is a set of type tags rendered sorted and comma-joined.
type categories map[string]struct{}

func (c categories) add(tags ...string) {
	for _, t := range tags {
		c[t] = struct{}{}
	}
}

func (c categories) String() string {
	return strings.Join(slices.Sorted(maps.Keys(c)), ",")
}

package tether

import (
	"slices"
	"strings"
)

// Field is a named attribute value.
type Field struct {
	Name  string
	Value any
}

// File is a binary blob attribute. Any field holding a File switches the
// write payload to a multipart Form.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// IsFile reports whether v is an attached File or *File. A nil pointer or
// the zero File counts as no file.
func IsFile(v any) bool {
	switch f := v.(type) {
	case File:
		return !f.empty()
	case *File:
		return f != nil && !f.empty()
	}
	return false
}

func (f *File) empty() bool {
	return f.Name == "" && f.ContentType == "" && len(f.Data) == 0
}

// Payload is the body of a write request: either a Map or a *Form.
type Payload interface {
	isPayload()
}

// Map is a plain key/value payload, encoded by the transport's codec.
type Map map[string]any

func (Map) isPayload() {}

// Form is an ordered multipart payload.
type Form struct {
	entries []Field
}

func (*Form) isPayload() {}

// Add appends an entry.
func (f *Form) Add(name string, value any) {
	f.entries = append(f.entries, Field{Name: name, Value: value})
}

// Get returns the first entry with the given name.
func (f *Form) Get(name string) (any, bool) {
	for _, e := range f.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns the entries in insertion order.
func (f *Form) Entries() []Field {
	out := make([]Field, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len returns the number of entries.
func (f *Form) Len() int {
	return len(f.entries)
}

// BuildPayload turns attribute values into a write payload for method.
// The shape is decided once for the whole set: a single File anywhere yields
// a Form carrying every field, otherwise a Map. Methods other than post add a
// MethodOverrideKey entry.
func BuildPayload(fields []Field, method string) Payload {
	method = strings.ToLower(method)
	override := method != "" && method != MethodPost

	hasFile := slices.ContainsFunc(fields, func(f Field) bool { return IsFile(f.Value) })
	if hasFile {
		form := &Form{entries: make([]Field, 0, len(fields)+1)}
		for _, f := range fields {
			form.Add(f.Name, f.Value)
		}
		if override {
			form.Add(MethodOverrideKey, method)
		}
		return form
	}

	m := make(Map, len(fields)+1)
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	if override {
		m[MethodOverrideKey] = method
	}
	return m
}

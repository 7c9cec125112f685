package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Attribute is a single name/value pair of a Record.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Record is a named, ordered bag of string attributes.
// It describes one sensor reading, one action or one rule condition.
//
// Records are immutable by convention: templates loaded from a rule-set
// document are never modified in place; substitution produces a new Record.
type Record struct {
	Kind  string
	attrs []Attribute
}

// NewRecord creates a record of the given kind from alternating name/value pairs.
// A trailing name without a value is ignored.
func NewRecord(kind string, kv ...string) *Record {
	r := &Record{Kind: kind}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

// Get returns the value of the named attribute.
func (r *Record) Get(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, a := range r.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the named attribute or an empty string.
func (r *Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Set assigns an attribute, keeping its original position when it already exists.
// Setting an empty value removes the attribute.
func (r *Record) Set(name, value string) {
	if value == "" {
		r.Remove(name)
		return
	}
	for i, a := range r.attrs {
		if a.Name == name {
			r.attrs[i].Value = value
			return
		}
	}
	r.attrs = append(r.attrs, Attribute{Name: name, Value: value})
}

// Remove deletes the named attribute if present.
func (r *Record) Remove(name string) {
	for i, a := range r.attrs {
		if a.Name == name {
			r.attrs = append(r.attrs[:i], r.attrs[i+1:]...)
			return
		}
	}
}

// Names returns the attribute names in insertion order.
func (r *Record) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.attrs))
	for i, a := range r.attrs {
		names[i] = a.Name
	}
	return names
}

// Attributes returns a copy of the ordered attribute list.
func (r *Record) Attributes() []Attribute {
	if r == nil {
		return nil
	}
	out := make([]Attribute, len(r.attrs))
	copy(out, r.attrs)
	return out
}

// Len returns the number of attributes.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.attrs)
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{Kind: r.Kind, attrs: r.Attributes()}
}

// Equal reports whether both records have the same kind and the same
// attribute set. Attribute order is not significant.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Kind != other.Kind || len(r.attrs) != len(other.attrs) {
		return false
	}
	for _, a := range r.attrs {
		v, ok := other.Get(a.Name)
		if !ok || v != a.Value {
			return false
		}
	}
	return true
}

// Map returns the attributes as a plain map.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, r.Len())
	if r == nil {
		return m
	}
	for _, a := range r.attrs {
		m[a.Name] = a.Value
	}
	return m
}

// String renders the record as kind{name="value", ...}.
func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	parts := make([]string, len(r.attrs))
	for i, a := range r.attrs {
		parts[i] = fmt.Sprintf("%s=%q", a.Name, a.Value)
	}
	return r.Kind + "{" + strings.Join(parts, ", ") + "}"
}

type recordJSON struct {
	Kind       string      `json:"kind"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// MarshalJSON keeps attribute order.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{Kind: r.Kind, Attributes: r.attrs})
}

// UnmarshalJSON accepts the ordered form produced by MarshalJSON as well as
// {"kind": "...", "attributes": {"name": "value"}} where order falls back to
// lexical order.
func (r *Record) UnmarshalJSON(data []byte) error {
	var ordered recordJSON
	if err := json.Unmarshal(data, &ordered); err == nil {
		r.Kind = ordered.Kind
		r.attrs = nil
		for _, a := range ordered.Attributes {
			r.Set(a.Name, a.Value)
		}
		return nil
	}

	var loose struct {
		Kind       string            `json:"kind"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := json.Unmarshal(data, &loose); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	r.Kind = loose.Kind
	r.attrs = nil
	names := make([]string, 0, len(loose.Attributes))
	for k := range loose.Attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		r.Set(k, loose.Attributes[k])
	}
	return nil
}

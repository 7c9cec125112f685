// Package variables holds the per-run variable context shared by every
// engine of a top-level run: scalar variables, dotted sub-fields and named
// UI-node bindings.
//
// A Store is not safe for concurrent use. The engine drives a single-threaded
// UI and never shares a Store across goroutines.
package variables

import (
	"sort"
	"strings"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// NodeBinding is a UI element bound to an id, plus a free-form status mark.
type NodeBinding struct {
	Element ports.Element
	Mark    string
}

// Store is the variable context of one top-level run.
type Store struct {
	scalars map[string]string
	fields  map[string]*domain.Record
	nodes   map[string]*NodeBinding
}

// New creates an empty store.
func New() *Store {
	return &Store{
		scalars: make(map[string]string),
		fields:  make(map[string]*domain.Record),
		nodes:   make(map[string]*NodeBinding),
	}
}

// Get returns a scalar variable.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.scalars[name]
	return v, ok
}

// GetDotted returns the named sub-field of the record stored under name, or
// the scalar value when field is empty.
func (s *Store) GetDotted(name, field string) (string, bool) {
	if field == "" {
		return s.Get(name)
	}
	rec, ok := s.fields[name]
	if !ok {
		return "", false
	}
	return rec.Get(field)
}

// Set assigns a scalar variable. An empty value removes it.
func (s *Store) Set(name, value string) {
	if value == "" {
		delete(s.scalars, name)
		return
	}
	s.scalars[name] = value
}

// SetDotted assigns a sub-field, creating the container record on first use.
// An empty value removes the sub-field only, never the container.
func (s *Store) SetDotted(name, field, value string) {
	if field == "" {
		s.Set(name, value)
		return
	}
	rec, ok := s.fields[name]
	if !ok {
		if value == "" {
			return
		}
		rec = domain.NewRecord(name)
		s.fields[name] = rec
	}
	rec.Set(field, value)
}

// Unset removes the scalar and every sub-field stored under name.
func (s *Store) Unset(name string) {
	delete(s.scalars, name)
	delete(s.fields, name)
}

// BindNode binds a UI element to id.
func (s *Store) BindNode(id string, el ports.Element, mark string) {
	s.nodes[id] = &NodeBinding{Element: el, Mark: mark}
}

// GetNode returns the binding for id.
func (s *Store) GetNode(id string) (*NodeBinding, bool) {
	b, ok := s.nodes[id]
	return b, ok
}

// SetMark updates the mark of an existing binding. It reports false when id
// is unbound.
func (s *Store) SetMark(id, mark string) bool {
	b, ok := s.nodes[id]
	if !ok {
		return false
	}
	b.Mark = mark
	return true
}

// UnbindNode drops the binding for id.
func (s *Store) UnbindNode(id string) {
	delete(s.nodes, id)
}

// Nodes returns the bound ids in lexical order.
func (s *Store) Nodes() []string {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot flattens the scalar variables and the sub-fields (as "name.field")
// into a plain map. Node bindings are not included.
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.scalars))
	for k, v := range s.scalars {
		out[k] = v
	}
	for name, rec := range s.fields {
		for _, a := range rec.Attributes() {
			out[name+"."+a.Name] = a.Value
		}
	}
	return out
}

// Restore loads values produced by Snapshot. Keys containing a dot are
// restored as sub-fields.
func (s *Store) Restore(values map[string]string) {
	for k, v := range values {
		if name, field, ok := strings.Cut(k, "."); ok {
			s.SetDotted(name, field, v)
			continue
		}
		s.Set(k, v)
	}
}

// Tree returns a nested view of the store suitable for query languages:
//
//	{"vars": {name: value | {field: value}}, "nodes": {id: {"name", "role", "value", "mark"}}}
//
// A name holding both a scalar and sub-fields exposes the scalar under "value".
func (s *Store) Tree() map[string]any {
	vars := make(map[string]any, len(s.scalars)+len(s.fields))
	for k, v := range s.scalars {
		vars[k] = v
	}
	for name, rec := range s.fields {
		m := make(map[string]any, rec.Len()+1)
		if v, ok := s.scalars[name]; ok {
			m["value"] = v
		}
		for _, a := range rec.Attributes() {
			m[a.Name] = a.Value
		}
		vars[name] = m
	}

	nodes := make(map[string]any, len(s.nodes))
	for id, b := range s.nodes {
		n := map[string]any{"mark": b.Mark}
		if b.Element != nil {
			n["name"] = b.Element.Name()
			n["role"] = b.Element.Role()
			n["value"] = b.Element.Value()
		}
		nodes[id] = n
	}
	return map[string]any{"vars": vars, "nodes": nodes}
}

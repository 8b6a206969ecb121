// Package memmodel provides an in-memory model collaborator implementing
// the modelbind contracts. It backs tests and the CLI; schema snapshots can
// be defined in Go or loaded from YAML descriptors.
package memmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/shabykov/modelbind"
)

// Model is an in-memory model collaborator. All operations are safe for
// concurrent use.
type Model struct {
	mu     sync.Mutex
	info   modelbind.ModelInfo
	rows   []*Row
	nextID int64
}

func New(info modelbind.ModelInfo) *Model {
	return &Model{info: info, nextID: 1}
}

func (m *Model) Describe() modelbind.ModelInfo { return m.info }

func (m *Model) fieldNames() map[string]struct{} {
	out := map[string]struct{}{}
	for _, fi := range m.info.All() {
		out[fi.Name] = struct{}{}
	}
	return out
}

// Get returns the first row matching every lookup entry. The lookup name
// "pk" is an alias for the primary-key field.
func (m *Model) Get(ctx context.Context, lookup map[string]any) (modelbind.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	known := m.fieldNames()
	for name := range lookup {
		if name == "pk" {
			continue
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", modelbind.ErrBadLookup, m.info.Name, name)
		}
	}
	for _, row := range m.rows {
		if row.matches(m.info.PK.Name, lookup) {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: %s matching %v", modelbind.ErrNotFound, m.info.Name, lookup)
}

// Create builds a row from the given scalar fields, assigning the primary
// key when absent. Unknown field names are rejected.
func (m *Model) Create(ctx context.Context, fields map[string]any) (modelbind.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	known := m.fieldNames()
	for name := range fields {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("memmodel: %s has no field %q", m.info.Name, name)
		}
	}
	row := newRow(m.info)
	for name, v := range fields {
		row.attrs[name] = v
	}
	if _, ok := row.attrs[m.info.PK.Name]; !ok {
		row.attrs[m.info.PK.Name] = m.nextID
		m.nextID++
	}
	m.rows = append(m.rows, row)
	return row, nil
}

// Save commits a row previously returned by Get or Create. Attribute
// mutations happen in place; Save only asserts the row belongs to this
// model.
func (m *Model) Save(ctx context.Context, inst modelbind.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row == inst {
			return nil
		}
	}
	return fmt.Errorf("memmodel: instance does not belong to %s", m.info.Name)
}

func (m *Model) Delete(ctx context.Context, inst modelbind.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row == inst {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", modelbind.ErrNotFound, m.info.Name)
}

// Len returns the stored row count.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Row is one stored instance. Many-to-many attributes resolve to Relation
// handles created with the row.
type Row struct {
	mu     sync.Mutex
	pkName string
	attrs  map[string]any
	rels   map[string]*RelationList
}

var _ modelbind.Instance = (*Row)(nil)

func newRow(info modelbind.ModelInfo) *Row {
	row := &Row{
		pkName: info.PK.Name,
		attrs:  map[string]any{},
		rels:   map[string]*RelationList{},
	}
	for _, fi := range info.M2M {
		row.rels[fi.Name] = &RelationList{}
	}
	return row
}

func (r *Row) Attr(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rel, ok := r.rels[name]; ok {
		return rel, true
	}
	v, ok := r.attrs[name]
	return v, ok
}

func (r *Row) SetAttr(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[name] = value
}

func (r *Row) PK() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attrs[r.pkName]
}

func (r *Row) Values() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

func (r *Row) matches(pkName string, lookup map[string]any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, want := range lookup {
		if name == "pk" {
			name = pkName
		}
		got, ok := r.attrs[name]
		if !ok || !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual compares values across the numeric types JSON decoding and Go
// literals produce.
func looseEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := numeric(a)
	bf, bok := numeric(b)
	return aok && bok && af == bf
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// RelationList is an in-memory many-to-many relation handle.
type RelationList struct {
	mu    sync.Mutex
	items []modelbind.Instance
}

var _ modelbind.Relation = (*RelationList)(nil)

func (r *RelationList) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	return nil
}

func (r *RelationList) Add(ctx context.Context, item modelbind.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

func (r *RelationList) All(ctx context.Context) ([]modelbind.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]modelbind.Instance, len(r.items))
	copy(out, r.items)
	return out, nil
}

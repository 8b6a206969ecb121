package modelbind

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Model.Get when no instance matches the lookup.
var ErrNotFound = errors.New("modelbind: instance not found")

// ErrBadLookup is returned by Model.Get when the lookup names a field the
// model does not have.
var ErrBadLookup = errors.New("modelbind: unknown lookup field")

// Instance is one persisted domain object. Attribute access is by field
// name; relation-valued attributes yield a Relation handle.
type Instance interface {
	Attr(name string) (any, bool)
	SetAttr(name string, value any)
	PK() any
	// Values returns the instance's full scalar value set, keyed by field
	// name. Relation handles are not included.
	Values() map[string]any
}

// Relation is a lazy handle on a multi-valued relation. All materializes it
// into a concrete ordered sequence.
type Relation interface {
	Clear(ctx context.Context) error
	Add(ctx context.Context, item Instance) error
	All(ctx context.Context) ([]Instance, error)
}

// Model is the persistence collaborator contract the engine consumes. The
// engine never builds queries or touches connections; it only performs
// keyed lookups, construction, mutation and schema introspection through
// this interface.
type Model interface {
	Get(ctx context.Context, lookup map[string]any) (Instance, error)
	Create(ctx context.Context, fields map[string]any) (Instance, error)
	Save(ctx context.Context, inst Instance) error
	Delete(ctx context.Context, inst Instance) error
	Describe() ModelInfo
}

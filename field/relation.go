package field

import (
	"context"
	"errors"
	"fmt"

	"github.com/shabykov/modelbind"
)

// ModelField resolves a domain object reference by a configured lookup key
// against a model collaborator. The representation is the referenced
// object's primary key (or a sequence of keys for multi-valued values).
type ModelField struct {
	Base
	model  modelbind.Model
	lookup string
}

func ModelRef(model modelbind.Model, lookupField string, opts ...Option) *ModelField {
	return &ModelField{
		Base:   NewBase(opts...),
		model:  model,
		lookup: lookupField,
	}
}

// Model returns the collaborator the lookups run against.
func (f *ModelField) Model() modelbind.Model { return f.model }

// LookupField returns the configured lookup key name.
func (f *ModelField) LookupField() string { return f.lookup }

func (f *ModelField) Validate(ctx context.Context, value any) error {
	return f.check(value, nil, "")
}

func (f *ModelField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return f.resolve(ctx, value)
}

func (f *ModelField) resolve(ctx context.Context, key any) (modelbind.Instance, error) {
	inst, err := f.model.Get(ctx, map[string]any{f.lookup: key})
	switch {
	case err == nil:
		return inst, nil
	case errors.Is(err, modelbind.ErrNotFound):
		return nil, modelbind.NewValidationError("incorrect lookup value: %v", err)
	case errors.Is(err, modelbind.ErrBadLookup):
		return nil, modelbind.NewValidationError("incorrect lookup field: %v", err)
	}
	return nil, err
}

func (f *ModelField) ToRepresentation(ctx context.Context, value any) (any, error) {
	if rel, ok := value.(modelbind.Relation); ok {
		items, err := rel.All(ctx)
		if err != nil {
			return nil, err
		}
		value = items
	}
	if inst, ok := value.(modelbind.Instance); ok {
		return inst.PK(), nil
	}
	if s, ok := modelbind.AsSlice(value); ok {
		out := make([]any, 0, len(s))
		for _, el := range s {
			inst, isInst := el.(modelbind.Instance)
			if !isInst {
				return nil, fmt.Errorf("field %s: cannot represent %T as a model reference", f.name, el)
			}
			out = append(out, inst.PK())
		}
		return out, nil
	}
	return nil, fmt.Errorf("field %s: cannot represent %T as a model reference", f.name, value)
}

func (f *ModelField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// PrimaryKeyField is a ModelField resolving by the model's primary key.
type PrimaryKeyField struct {
	ModelField
}

func PrimaryKey(model modelbind.Model, opts ...Option) *PrimaryKeyField {
	return &PrimaryKeyField{ModelField: ModelField{
		Base:   NewBase(opts...),
		model:  model,
		lookup: "pk",
	}}
}

func (f *PrimaryKeyField) Clone() Field {
	c := *f
	c.ModelField.Base = f.ModelField.Base.cloneBase()
	return &c
}

// MultiPrimaryKeyField resolves a sequence of primary keys individually.
// The representation emits each referenced object's full value set.
type MultiPrimaryKeyField struct {
	ModelField
}

func MultiPrimaryKey(model modelbind.Model, opts ...Option) *MultiPrimaryKeyField {
	b := NewBase(opts...)
	b.many = true
	return &MultiPrimaryKeyField{ModelField: ModelField{
		Base:   b,
		model:  model,
		lookup: "pk",
	}}
}

func (f *MultiPrimaryKeyField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if value == nil {
		if f.required && !f.nullable {
			return nil, modelbind.NewValidationError("must be not null")
		}
		return nil, nil
	}
	keys, ok := modelbind.AsSlice(value)
	if !ok {
		return nil, modelbind.NewValidationError("must be a sequence of lookup values")
	}
	out := make([]modelbind.Instance, 0, len(keys))
	for _, key := range keys {
		inst, err := f.resolve(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	for _, v := range f.validators {
		if err := v.Validate(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *MultiPrimaryKeyField) ToRepresentation(ctx context.Context, value any) (any, error) {
	if rel, ok := value.(modelbind.Relation); ok {
		items, err := rel.All(ctx)
		if err != nil {
			return nil, err
		}
		value = items
	}
	s, ok := modelbind.AsSlice(value)
	if !ok {
		return nil, fmt.Errorf("field %s: cannot represent %T as a sequence of model references", f.name, value)
	}
	out := make([]any, 0, len(s))
	for _, el := range s {
		inst, isInst := el.(modelbind.Instance)
		if !isInst {
			return nil, fmt.Errorf("field %s: cannot represent %T as a model reference", f.name, el)
		}
		out = append(out, inst.Values())
	}
	return out, nil
}

func (f *MultiPrimaryKeyField) Clone() Field {
	c := *f
	c.ModelField.Base = f.ModelField.Base.cloneBase()
	return &c
}

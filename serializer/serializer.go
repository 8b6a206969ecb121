package serializer

import (
	"context"
	"fmt"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/field"
)

// Serializer is the runtime contract shared by object and list bindings.
//
// Lifecycle: a serializer starts unbound, IsValid moves it to valid or
// invalid, and Save (from valid only) moves it to saved. Calling Save out
// of order, or reading Data on an input-bound serializer before IsValid,
// is a programming error and panics.
type Serializer interface {
	// IsValid validates the bound input. The returned error is non-nil only
	// for internal failures that abort the request; validation failures are
	// recorded and reported via the bool and Errors.
	IsValid(ctx context.Context) (bool, error)
	// Validate is IsValid in raise-on-error mode: recorded validation
	// errors are returned as the error value.
	Validate(ctx context.Context) error
	// Errors returns the recorded validation errors, nil when valid.
	Errors() error
	// ValidatedData returns the converted, constraint-checked data. It is
	// nil until IsValid succeeds.
	ValidatedData() any
	// Data computes the wire representation. The result is memoized.
	Data(ctx context.Context) (any, error)
	// Save persists the validated data via the create/update hooks.
	Save(ctx context.Context) (modelbind.Instance, error)
	// GetInitial returns the editable input skeleton.
	GetInitial(ctx context.Context) (any, error)

	ToInternalValue(ctx context.Context, data any) (any, error)
	ToRepresentation(ctx context.Context, v any) (any, error)
}

type state int

const (
	stateUnbound state = iota
	stateValid
	stateInvalid
	stateSaved
)

// Object is a serializer bound to a single entity shape.
type Object struct {
	tmpl       *Template
	fields     []field.Field
	instance   any
	initial    any
	hasInitial bool
	partial    bool
	context    map[string]any

	state     state
	validated *modelbind.Map
	errs      error
	dataMemo  any
	hasMemo   bool
}

var _ Serializer = (*Object)(nil)

func (t *Template) newObject(cfg config) *Object {
	// Deep, independent copy of the field registry. This is the sole
	// concurrency-safety mechanism: the shared template is read-only and
	// every mutable field/validator object below belongs to this instance.
	fields := make([]field.Field, len(t.fields))
	for i, f := range t.fields {
		fields[i] = f.Clone()
	}
	return &Object{
		tmpl:       t,
		fields:     fields,
		instance:   cfg.instance,
		initial:    cfg.data,
		hasInitial: cfg.hasData,
		partial:    cfg.partial,
		context:    cfg.context,
	}
}

// Fields returns this instance's live field registry in declaration order.
func (s *Object) Fields() []field.Field {
	out := make([]field.Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field from this instance's registry, nil when
// absent.
func (s *Object) Field(name string) field.Field {
	for _, f := range s.fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Context returns the request-scoped context mapping.
func (s *Object) Context() map[string]any { return s.context }

// Instance returns the bound domain object, nil when unbound.
func (s *Object) Instance() any { return s.instance }

// Partial reports whether partial-update semantics are enabled.
func (s *Object) Partial() bool { return s.partial }

func (s *Object) writableFields() []field.Field {
	out := make([]field.Field, 0, len(s.fields))
	for _, f := range s.fields {
		if !f.ReadOnly() {
			out = append(out, f)
		}
	}
	return out
}

func (s *Object) readableFields() []field.Field {
	out := make([]field.Field, 0, len(s.fields))
	for _, f := range s.fields {
		if !f.WriteOnly() {
			out = append(out, f)
		}
	}
	return out
}

func (s *Object) IsValid(ctx context.Context) (bool, error) {
	switch s.state {
	case stateValid, stateSaved:
		return true, nil
	case stateInvalid:
		return false, nil
	}
	if !s.hasInitial {
		panic("serializer: IsValid requires input data; construct with WithData")
	}
	v, err := s.ToInternalValue(ctx, s.initial)
	if err != nil {
		if !modelbind.IsValidationTier(err) {
			return false, err
		}
		s.errs = err
		s.state = stateInvalid
		return false, nil
	}
	s.validated = v.(*modelbind.Map)
	s.state = stateValid
	return true, nil
}

func (s *Object) Validate(ctx context.Context) error {
	ok, err := s.IsValid(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return s.errs
	}
	return nil
}

func (s *Object) Errors() error { return s.errs }

func (s *Object) ValidatedData() any {
	if s.validated == nil {
		return nil
	}
	return s.validated
}

// Validated returns the typed validated mapping, nil before a successful
// IsValid.
func (s *Object) Validated() *modelbind.Map { return s.validated }

// ToInternalValue converts a raw mapping into validated data. All writable
// fields are attempted in declaration order regardless of earlier
// failures; errors are aggregated per field name, never short-circuited.
func (s *Object) ToInternalValue(ctx context.Context, data any) (any, error) {
	m, ok := modelbind.AsStringMap(data)
	if !ok {
		return nil, modelbind.NewValidationError("must be a mapping")
	}
	errs := modelbind.NewFieldErrors()
	out := modelbind.NewMap()
	for _, f := range s.writableFields() {
		name := f.Name()
		raw, present := m[name]
		if s.partial && !present {
			continue
		}
		if !present && raw == nil {
			// An absent field falls back to its declared default before the
			// null policy runs.
			raw = f.Initial()
		}
		var v any
		var err error
		if nf, isNested := f.(*nestedField); isNested {
			v, err = nf.bindAndValidate(ctx, raw, s.context)
		} else {
			v, err = f.ToInternalValue(ctx, raw)
		}
		if err != nil {
			if modelbind.IsValidationTier(err) {
				errs.Set(name, err)
				continue
			}
			return nil, err
		}
		out.Set(name, v)
	}
	if errs.Len() > 0 {
		return nil, errs
	}
	return out, nil
}

// ToRepresentation converts a domain instance (or validated mapping) into
// an ordered wire mapping. Only readable fields are emitted, in declaration
// order; lazy relation handles are materialized before the field sees them.
func (s *Object) ToRepresentation(ctx context.Context, instance any) (any, error) {
	out := modelbind.NewMap()
	for _, f := range s.readableFields() {
		attr, err := resolveAttr(instance, f.Name())
		if err != nil {
			return nil, err
		}
		if rel, ok := attr.(modelbind.Relation); ok {
			items, err := rel.All(ctx)
			if err != nil {
				return nil, err
			}
			attr = items
		}
		if attr == nil {
			out.Set(f.Name(), nil)
			continue
		}
		v, err := f.ToRepresentation(ctx, attr)
		if err != nil {
			return nil, err
		}
		out.Set(f.Name(), v)
	}
	return out, nil
}

// GetInitial returns the editable skeleton: when bound to raw input, the
// writable field names absent from that input; when unbound, each writable
// field's own initial value.
func (s *Object) GetInitial(ctx context.Context) (any, error) {
	out := modelbind.NewMap()
	if s.hasInitial {
		m, ok := modelbind.AsStringMap(s.initial)
		if !ok {
			return out, nil
		}
		for _, f := range s.writableFields() {
			if v, present := m[f.Name()]; !present || v == nil {
				out.Set(f.Name(), nil)
			}
		}
		return out, nil
	}
	for _, f := range s.writableFields() {
		out.Set(f.Name(), f.Initial())
	}
	return out, nil
}

// Data computes the representation: from the bound instance when present
// and error-free, else from validated data, else the initial skeleton. The
// result is memoized. Accessing Data on an input-bound serializer before
// IsValid is a programming error.
func (s *Object) Data(ctx context.Context) (any, error) {
	if s.hasInitial && s.state == stateUnbound {
		panic("serializer: when constructed with input data, call IsValid before accessing Data")
	}
	if s.hasMemo {
		return s.dataMemo, nil
	}
	var v any
	var err error
	switch {
	case s.instance != nil && s.errs == nil:
		v, err = s.ToRepresentation(ctx, s.instance)
	case s.validated != nil && s.errs == nil:
		v, err = s.ToRepresentation(ctx, s.validated)
	default:
		v, err = s.GetInitial(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.dataMemo = v
	s.hasMemo = true
	return v, nil
}

// Save persists the validated data: update when an instance is bound,
// create otherwise. Calling it before a successful IsValid, or when errors
// are present, is a programming error. A nil instance returned from a hook
// indicates a collaborator bug and panics.
func (s *Object) Save(ctx context.Context) (modelbind.Instance, error) {
	if s.state != stateValid && s.state != stateSaved {
		panic("serializer: call IsValid before calling Save")
	}
	if s.errs != nil {
		panic("serializer: cannot Save a serializer with invalid data")
	}
	var inst modelbind.Instance
	var err error
	if s.instance != nil {
		cur, ok := s.instance.(modelbind.Instance)
		if !ok {
			panic(fmt.Sprintf("serializer: bound instance %T does not implement modelbind.Instance", s.instance))
		}
		if s.tmpl.update == nil {
			panic("serializer: update is not implemented for this template")
		}
		inst, err = s.tmpl.update(ctx, cur, s.validated)
		if err != nil {
			return nil, err
		}
		if inst == nil {
			panic("serializer: update did not return an instance")
		}
	} else {
		if s.tmpl.create == nil {
			panic("serializer: create is not implemented for this template")
		}
		inst, err = s.tmpl.create(ctx, s.validated)
		if err != nil {
			return nil, err
		}
		if inst == nil {
			panic("serializer: create did not return an instance")
		}
	}
	s.instance = inst
	s.state = stateSaved
	return inst, nil
}

// resolveAttr reads the named attribute through an explicit accessor path
// per supported shape, never by reflection over arbitrary structs.
func resolveAttr(instance any, name string) (any, error) {
	switch t := instance.(type) {
	case modelbind.Instance:
		v, _ := t.Attr(name)
		return v, nil
	case *modelbind.Map:
		v, _ := t.Get(name)
		return v, nil
	case map[string]any:
		return t[name], nil
	}
	return nil, fmt.Errorf("serializer: cannot resolve attribute %q on %T", name, instance)
}

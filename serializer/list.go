package serializer

import (
	"context"

	"github.com/shabykov/modelbind"
)

// List applies one child serializer homogeneously across a sequence of
// inputs or instances. It has no fields of its own; it is built through
// the template's collection factory so the child exists before the
// wrapper.
type List struct {
	tmpl       *Template
	child      *Object
	allowEmpty bool

	instance   any
	initial    any
	hasInitial bool
	context    map[string]any

	state     state
	validated []any
	errs      error
	dataMemo  any
	hasMemo   bool
}

var _ Serializer = (*List)(nil)

func (t *Template) newList(cfg config) *List {
	// The child is built first, from the declared template, with a plain
	// (non-many) configuration.
	child := t.newObject(config{context: cfg.context})
	return &List{
		tmpl:       t,
		child:      child,
		allowEmpty: cfg.allowEmpty,
		instance:   cfg.instance,
		initial:    cfg.data,
		hasInitial: cfg.hasData,
		context:    cfg.context,
	}
}

// Child returns the wrapped child serializer.
func (l *List) Child() *Object { return l.child }

// AllowEmpty reports whether a zero-length input sequence is acceptable.
func (l *List) AllowEmpty() bool { return l.allowEmpty }

func (l *List) IsValid(ctx context.Context) (bool, error) {
	switch l.state {
	case stateValid, stateSaved:
		return true, nil
	case stateInvalid:
		return false, nil
	}
	if !l.hasInitial {
		panic("serializer: IsValid requires input data; construct with WithData")
	}
	v, err := l.ToInternalValue(ctx, l.initial)
	if err != nil {
		if !modelbind.IsValidationTier(err) {
			return false, err
		}
		l.errs = err
		l.state = stateInvalid
		return false, nil
	}
	l.validated = v.([]any)
	l.state = stateValid
	return true, nil
}

func (l *List) Validate(ctx context.Context) error {
	ok, err := l.IsValid(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return l.errs
	}
	return nil
}

func (l *List) Errors() error { return l.errs }

func (l *List) ValidatedData() any {
	if l.validated == nil {
		return nil
	}
	return l.validated
}

// ToInternalValue validates every element independently with a fresh child
// built from the template. Results and errors form sequences parallel to
// the input; one element's failure never hides another's outcome.
func (l *List) ToInternalValue(ctx context.Context, data any) (any, error) {
	s, ok := modelbind.AsSlice(data)
	if !ok {
		return nil, modelbind.NewValidationError("must be a sequence")
	}
	if len(s) == 0 && !l.allowEmpty {
		return nil, modelbind.NewValidationError("must not be empty")
	}
	out := make([]any, len(s))
	errs := make(modelbind.ListErrors, len(s))
	failed := false
	for i, el := range s {
		elem := l.tmpl.newObject(config{data: el, hasData: true, context: l.context})
		ok, err := elem.IsValid(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs[i] = elem.Errors()
			failed = true
			continue
		}
		out[i] = elem.ValidatedData()
	}
	if failed {
		return nil, errs
	}
	return out, nil
}

// ToRepresentation maps the child's representation over every element of a
// sequence (or a lazy relation handle, materialized first).
func (l *List) ToRepresentation(ctx context.Context, instances any) (any, error) {
	if rel, ok := instances.(modelbind.Relation); ok {
		items, err := rel.All(ctx)
		if err != nil {
			return nil, err
		}
		instances = items
	}
	s, ok := modelbind.AsSlice(instances)
	if !ok {
		return nil, modelbind.NewValidationError("must be a sequence")
	}
	out := make([]any, 0, len(s))
	for _, inst := range s {
		v, err := l.child.ToRepresentation(ctx, inst)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (l *List) GetInitial(ctx context.Context) (any, error) {
	if l.hasInitial {
		if _, ok := modelbind.AsSlice(l.initial); ok {
			return l.ToRepresentation(ctx, l.initial)
		}
	}
	return []any{}, nil
}

func (l *List) Data(ctx context.Context) (any, error) {
	if l.hasInitial && l.state == stateUnbound {
		panic("serializer: when constructed with input data, call IsValid before accessing Data")
	}
	if l.hasMemo {
		return l.dataMemo, nil
	}
	var v any
	var err error
	switch {
	case l.instance != nil && l.errs == nil:
		v, err = l.ToRepresentation(ctx, l.instance)
	case l.validated != nil && l.errs == nil:
		v, err = l.ToRepresentation(ctx, l.validated)
	default:
		v, err = l.GetInitial(ctx)
	}
	if err != nil {
		return nil, err
	}
	l.dataMemo = v
	l.hasMemo = true
	return v, nil
}

// Save is intentionally unimplemented at this level: bulk persistence is a
// collaborator decision, not a core responsibility.
func (l *List) Save(ctx context.Context) (modelbind.Instance, error) {
	panic("serializer: bulk Save is not implemented on List")
}

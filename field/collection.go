package field

import (
	"context"

	"github.com/shabykov/modelbind"
)

// ListField accepts a sequence and validates each element with the attached
// validators. Falsy elements (null, false, zero numbers, empty strings,
// empty sequences) are dropped before per-element validation.
type ListField struct {
	Base
}

func List(opts ...Option) *ListField {
	b := NewBase(opts...)
	b.many = true
	return &ListField{Base: b}
}

func (f *ListField) Validate(ctx context.Context, value any) error {
	return f.check(value, func(v any) bool {
		_, ok := modelbind.AsSlice(v)
		return ok
	}, "sequence")
}

func (f *ListField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if value == nil {
		if f.required && !f.nullable {
			return nil, modelbind.NewValidationError("must be not null")
		}
		return nil, nil
	}
	s, ok := modelbind.AsSlice(value)
	if !ok {
		return nil, modelbind.NewValidationError("must be a sequence")
	}
	out := make([]any, 0, len(s))
	for _, el := range s {
		if isFalsy(el) {
			continue
		}
		for _, v := range f.validators {
			if err := v.Validate(el); err != nil {
				return nil, err
			}
		}
		out = append(out, el)
	}
	return out, nil
}

func (f *ListField) ToRepresentation(ctx context.Context, value any) (any, error) {
	s, ok := modelbind.AsSlice(value)
	if !ok {
		return []any{}, nil
	}
	out := make([]any, len(s))
	copy(out, s)
	return out, nil
}

func (f *ListField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

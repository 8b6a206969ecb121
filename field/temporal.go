package field

import (
	"context"
	"fmt"
	"time"

	"github.com/shabykov/modelbind"
)

// DateField parses ISO-8601 date strings (2006-01-02) into time.Time and
// formats the date part back out.
type DateField struct {
	Base
}

func Date(opts ...Option) *DateField {
	return &DateField{Base: NewBase(opts...)}
}

func (f *DateField) Validate(ctx context.Context, value any) error {
	return f.check(value, isTime, "date")
}

func (f *DateField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if value == nil {
		return nil, f.Validate(ctx, nil)
	}
	s, ok := value.(string)
	if !ok {
		if t, isT := value.(time.Time); isT {
			return t, f.Validate(ctx, t)
		}
		return nil, modelbind.NewValidationError("must be a date string in %s format", time.DateOnly)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, modelbind.NewValidationError("%q is not a valid date", s)
	}
	if err := f.Validate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (f *DateField) ToRepresentation(ctx context.Context, value any) (any, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("field %s: cannot represent %T as date", f.name, value)
	}
	return t.Format(time.DateOnly), nil
}

func (f *DateField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// DateTimeField parses RFC3339 date-time strings into time.Time and formats
// them back canonically.
type DateTimeField struct {
	Base
}

func DateTime(opts ...Option) *DateTimeField {
	return &DateTimeField{Base: NewBase(opts...)}
}

func (f *DateTimeField) Validate(ctx context.Context, value any) error {
	return f.check(value, isTime, "datetime")
}

func (f *DateTimeField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if value == nil {
		return nil, f.Validate(ctx, nil)
	}
	s, ok := value.(string)
	if !ok {
		if t, isT := value.(time.Time); isT {
			return t, f.Validate(ctx, t)
		}
		return nil, modelbind.NewValidationError("must be a datetime string in RFC3339 format")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, modelbind.NewValidationError("%q is not a valid datetime", s)
	}
	if err := f.Validate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (f *DateTimeField) ToRepresentation(ctx context.Context, value any) (any, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("field %s: cannot represent %T as datetime", f.name, value)
	}
	return t.Format(time.RFC3339), nil
}

func (f *DateTimeField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

package field

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/shabykov/modelbind"
)

// UUIDField parses canonical hyphenated UUID strings.
type UUIDField struct {
	Base
}

func UUID(opts ...Option) *UUIDField {
	return &UUIDField{Base: NewBase(opts...)}
}

func (f *UUIDField) Validate(ctx context.Context, value any) error {
	return f.check(value, func(v any) bool {
		_, ok := v.(uuid.UUID)
		return ok
	}, "UUID")
}

func (f *UUIDField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if value == nil {
		return nil, f.Validate(ctx, nil)
	}
	if u, ok := value.(uuid.UUID); ok {
		return u, f.Validate(ctx, u)
	}
	s, ok := value.(string)
	if !ok {
		return nil, modelbind.NewValidationError("%v is badly formed hexadecimal UUID string", value)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, modelbind.NewValidationError("%v is badly formed hexadecimal UUID string", value)
	}
	if err := f.Validate(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (f *UUIDField) ToRepresentation(ctx context.Context, value any) (any, error) {
	switch t := value.(type) {
	case uuid.UUID:
		return t.String(), nil
	case string:
		return t, nil
	}
	return nil, fmt.Errorf("field %s: cannot represent %T as UUID", f.name, value)
}

func (f *UUIDField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// JSONField carries a nested structured document. The internal value is the
// encoded text; the representation is the decoded document.
type JSONField struct {
	Base
}

func JSON(opts ...Option) *JSONField {
	return &JSONField{Base: NewBase(opts...)}
}

func (f *JSONField) Validate(ctx context.Context, value any) error {
	return f.check(value, nil, "")
}

func (f *JSONField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, modelbind.NewValidationError("%v must be json format", value)
	}
	return string(b), nil
}

func (f *JSONField) ToRepresentation(ctx context.Context, value any) (any, error) {
	var raw []byte
	switch t := value.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		// Already a structured document.
		return value, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("field %s: stored document is not valid json: %w", f.name, err)
	}
	return out, nil
}

func (f *JSONField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

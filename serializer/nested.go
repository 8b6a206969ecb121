package serializer

import (
	"context"

	"github.com/shabykov/modelbind/field"
)

// nestedField adapts a serializer template into a field, so an aggregate
// can embed another entity shape under a single name. On the inbound path
// a child serializer is built per value; success contributes the child's
// validated data, failure contributes the child's error aggregate under
// the parent field name.
type nestedField struct {
	field.Base
	tmpl *Template
}

// Nested wraps a template as a field.
func Nested(t *Template, opts ...field.Option) field.Field {
	if t == nil {
		panic("serializer: Nested requires a template")
	}
	return &nestedField{Base: field.NewBase(opts...), tmpl: t}
}

func (f *nestedField) Validate(ctx context.Context, value any) error {
	_, err := f.ToInternalValue(ctx, value)
	return err
}

func (f *nestedField) ToInternalValue(ctx context.Context, value any) (any, error) {
	return f.bindAndValidate(ctx, value, nil)
}

func (f *nestedField) bindAndValidate(ctx context.Context, value any, reqCtx map[string]any) (any, error) {
	child := f.tmpl.newObject(config{data: value, hasData: true, context: reqCtx})
	ok, err := child.IsValid(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, child.Errors()
	}
	return child.ValidatedData(), nil
}

func (f *nestedField) ToRepresentation(ctx context.Context, value any) (any, error) {
	child := f.tmpl.newObject(config{})
	return child.ToRepresentation(ctx, value)
}

func (f *nestedField) Clone() field.Field {
	c := &nestedField{Base: f.CloneBase(), tmpl: f.tmpl}
	return c
}

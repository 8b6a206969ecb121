// Package serializer implements the aggregate binding engine: templates of
// named fields, live object/list serializers with a validation lifecycle,
// and model-driven template generation.
package serializer

import (
	"context"
	"fmt"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/field"
)

// CreateFunc persists validated data as a new instance. It must return a
// non-nil instance on success.
type CreateFunc func(ctx context.Context, validated *modelbind.Map) (modelbind.Instance, error)

// UpdateFunc applies validated data to an existing instance. It must return
// a non-nil instance on success.
type UpdateFunc func(ctx context.Context, instance modelbind.Instance, validated *modelbind.Map) (modelbind.Instance, error)

// Template is the immutable field blueprint a serializer definition
// resolves to. The template itself is shared and never mutated; every live
// serializer clones the fields before first use, so per-request field state
// cannot leak across instances.
type Template struct {
	fields []field.Field
	create CreateFunc
	update UpdateFunc
}

// Builder registers fields explicitly, in declaration order. It replaces
// runtime inspection of a class body: the registry is resolved once, when
// the serializer definition is built.
type Builder struct {
	fields []field.Field
	names  map[string]struct{}
	create CreateFunc
	update UpdateFunc
	err    error
}

func New() *Builder {
	return &Builder{names: map[string]struct{}{}}
}

// Field registers f under name. The name is assigned to the field.
func (b *Builder) Field(name string, f field.Field) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = fmt.Errorf("serializer: field name must not be empty")
		return b
	}
	if _, dup := b.names[name]; dup {
		b.err = fmt.Errorf("serializer: field %q declared twice", name)
		return b
	}
	if f == nil {
		b.err = fmt.Errorf("serializer: field %q is nil", name)
		return b
	}
	f.SetName(name)
	b.names[name] = struct{}{}
	b.fields = append(b.fields, f)
	return b
}

// OnCreate sets the create hook delegating to the model collaborator.
func (b *Builder) OnCreate(fn CreateFunc) *Builder {
	b.create = fn
	return b
}

// OnUpdate sets the update hook delegating to the model collaborator.
func (b *Builder) OnUpdate(fn UpdateFunc) *Builder {
	b.update = fn
	return b
}

func (b *Builder) Build() (*Template, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.fields) == 0 {
		return nil, fmt.Errorf("serializer: template must declare at least one field")
	}
	return &Template{
		fields: append([]field.Field(nil), b.fields...),
		create: b.create,
		update: b.update,
	}, nil
}

// MustBuild is like Build but panics on definition defects.
func (b *Builder) MustBuild() *Template {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// FieldNames returns the declared names in order.
func (t *Template) FieldNames() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name()
	}
	return out
}

// Option configures serializer construction.
type Option func(*config)

type config struct {
	instance   any
	data       any
	hasData    bool
	partial    bool
	context    map[string]any
	many       bool
	allowEmpty bool
	hasAllow   bool
}

// WithInstance binds an existing domain object (or a sequence of them for
// many-mode construction).
func WithInstance(inst any) Option { return func(c *config) { c.instance = inst } }

// WithData binds raw decoded input.
func WithData(data any) Option {
	return func(c *config) {
		c.data = data
		c.hasData = true
	}
}

// Partial enables partial-update semantics: absent input fields are
// skipped, not defaulted or errored.
func Partial() Option { return func(c *config) { c.partial = true } }

// WithContext attaches request-scoped data, passed down to nested
// serializers.
func WithContext(ctx map[string]any) Option { return func(c *config) { c.context = ctx } }

// Many redirects construction to a List wrapping a child built from the
// same template.
func Many() Option { return func(c *config) { c.many = true } }

// AllowEmpty controls whether a zero-length input sequence is acceptable in
// many mode. The default is true.
func AllowEmpty(allow bool) Option {
	return func(c *config) {
		c.allowEmpty = allow
		c.hasAllow = true
	}
}

// New builds a live serializer from the template. The many flag is checked
// before any other initialization: a many request is redirected to the
// collection factory.
func (t *Template) New(opts ...Option) Serializer {
	cfg := config{allowEmpty: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.many {
		return t.newList(cfg)
	}
	return t.newObject(cfg)
}

// NewList is the collection factory: it builds the child from the declared
// template first and wraps it in a List.
func (t *Template) NewList(opts ...Option) *List {
	cfg := config{allowEmpty: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return t.newList(cfg)
}

// Package field provides the typed leaf converters/validators of the
// binding engine. A Field knows how to turn a wire value into a domain
// value (ToInternalValue) and back (ToRepresentation), and how to validate
// presence, type and constraints.
package field

import (
	"context"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/validate"
)

// Field is the leaf contract of the engine. Implementations must be safe to
// Clone: a live serializer owns an independent copy of every field so that
// per-request state never leaks across instances.
type Field interface {
	Name() string
	SetName(name string)

	Required() bool
	Nullable() bool
	ReadOnly() bool
	WriteOnly() bool
	Many() bool

	// Initial returns the static default or invokes the zero-argument
	// provider.
	Initial() any

	Validate(ctx context.Context, value any) error
	ToInternalValue(ctx context.Context, value any) (any, error)
	ToRepresentation(ctx context.Context, value any) (any, error)

	Clone() Field
}

// Base carries the options shared by every field kind. Concrete fields
// embed it and add their type policy on top.
type Base struct {
	name        string
	required    bool
	nullable    bool
	readOnly    bool
	writeOnly   bool
	many        bool
	minLength   int
	maxLength   int
	initial     any
	initialFunc func() any
	validators  []validate.Validator
}

// Option configures a field at construction time.
type Option func(*Base)

// Named assigns the field name. Templates also assign names at
// registration time, so this is mostly used by generated fields.
func Named(name string) Option { return func(b *Base) { b.name = name } }

// Optional marks the field as not required for write.
func Optional() Option { return func(b *Base) { b.required = false } }

// Nullable allows an explicit null value.
func Nullable() Option { return func(b *Base) { b.nullable = true } }

// ReadOnly excludes the field from writes. A read-only field is never
// required for write.
func ReadOnly() Option { return func(b *Base) { b.readOnly = true } }

// WriteOnly excludes the field from representations.
func WriteOnly() Option { return func(b *Base) { b.writeOnly = true } }

// Many marks the field as multi-valued.
func Many() Option { return func(b *Base) { b.many = true } }

// MinLength sets the lower length bound. Zero disables it.
func MinLength(n int) Option { return func(b *Base) { b.minLength = n } }

// MaxLength sets the upper length bound. Zero disables it.
func MaxLength(n int) Option { return func(b *Base) { b.maxLength = n } }

// Default sets the static initial value.
func Default(v any) Option { return func(b *Base) { b.initial = v } }

// DefaultFunc sets a computed initial-value provider.
func DefaultFunc(fn func() any) Option { return func(b *Base) { b.initialFunc = fn } }

// With attaches validators, run in declaration order after the type check.
func With(vs ...validate.Validator) Option {
	return func(b *Base) { b.validators = append(b.validators, vs...) }
}

// NewBase builds a Base with the defaults every field starts from:
// required, not nullable, writable, readable.
func NewBase(opts ...Option) Base {
	b := Base{required: true}
	for _, opt := range opts {
		opt(&b)
	}
	if b.readOnly {
		b.required = false
	}
	return b
}

func (b *Base) Name() string        { return b.name }
func (b *Base) SetName(name string) { b.name = name }
func (b *Base) Required() bool      { return b.required }
func (b *Base) Nullable() bool      { return b.nullable }
func (b *Base) ReadOnly() bool      { return b.readOnly }
func (b *Base) WriteOnly() bool     { return b.writeOnly }
func (b *Base) Many() bool          { return b.many }

func (b *Base) Initial() any {
	if b.initialFunc != nil {
		return b.initialFunc()
	}
	return b.initial
}

// Validators returns the attached validator list.
func (b *Base) Validators() []validate.Validator { return b.validators }

// check runs the shared validation sequence: null policy, dynamic type
// check, then the attached validators in order. typeOK may be nil for
// fields without a strict type policy.
func (b *Base) check(value any, typeOK func(any) bool, want string) error {
	if value == nil {
		if b.required && !b.nullable {
			return modelbind.NewValidationError("must be not null")
		}
		return nil
	}
	if typeOK != nil && !typeOK(value) {
		return modelbind.NewValidationError("must be a %s", want)
	}
	for _, v := range b.validators {
		if err := v.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

// CloneBase returns an independent copy of the Base for Field
// implementations living outside this package.
func (b *Base) CloneBase() Base { return b.cloneBase() }

// cloneBase copies the Base including the validator list, so two clones
// never share a mutable slice.
func (b *Base) cloneBase() Base {
	c := *b
	c.validators = append([]validate.Validator(nil), b.validators...)
	return c
}

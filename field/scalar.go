package field

import (
	"context"
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/validate"
)

// IntegerField accepts integral numbers. Length bounds have no meaning on
// numeric fields and are ignored.
type IntegerField struct {
	Base
}

func Integer(opts ...Option) *IntegerField {
	return &IntegerField{Base: NewBase(opts...)}
}

func (f *IntegerField) Validate(ctx context.Context, value any) error {
	return f.check(value, isInteger, "integer")
}

func (f *IntegerField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return toInt64(value)
}

func (f *IntegerField) ToRepresentation(ctx context.Context, value any) (any, error) {
	return toInt64(value)
}

func (f *IntegerField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// NumberField is an integer counter field kept for schema compatibility
// with integer storage types declared as plain numbers.
type NumberField struct {
	Base
}

func Number(opts ...Option) *NumberField {
	return &NumberField{Base: NewBase(opts...)}
}

func (f *NumberField) Validate(ctx context.Context, value any) error {
	return f.check(value, isInteger, "number")
}

func (f *NumberField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return toInt64(value)
}

func (f *NumberField) ToRepresentation(ctx context.Context, value any) (any, error) {
	return toInt64(value)
}

func (f *NumberField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// FloatField accepts any numeric value and normalizes it to float64.
type FloatField struct {
	Base
}

func Float(opts ...Option) *FloatField {
	return &FloatField{Base: NewBase(opts...)}
}

func (f *FloatField) Validate(ctx context.Context, value any) error {
	return f.check(value, isNumber, "float")
}

func (f *FloatField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return toFloat64(value)
}

func (f *FloatField) ToRepresentation(ctx context.Context, value any) (any, error) {
	return toFloat64(value)
}

func (f *FloatField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// DecimalField carries fixed-point values as float64 on the wire.
type DecimalField struct {
	FloatField
}

func Decimal(opts ...Option) *DecimalField {
	return &DecimalField{FloatField: FloatField{Base: NewBase(opts...)}}
}

func (f *DecimalField) Clone() Field {
	c := *f
	c.FloatField.Base = f.FloatField.Base.cloneBase()
	return &c
}

// TimeField carries durations as a numeric amount of seconds.
type TimeField struct {
	FloatField
}

func Time(opts ...Option) *TimeField {
	return &TimeField{FloatField: FloatField{Base: NewBase(opts...)}}
}

func (f *TimeField) Clone() Field {
	c := *f
	c.FloatField.Base = f.FloatField.Base.cloneBase()
	return &c
}

// BooleanField accepts true/false.
type BooleanField struct {
	Base
}

func Boolean(opts ...Option) *BooleanField {
	return &BooleanField{Base: NewBase(opts...)}
}

func (f *BooleanField) Validate(ctx context.Context, value any) error {
	return f.check(value, func(v any) bool { _, ok := v.(bool); return ok }, "boolean")
}

func (f *BooleanField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (f *BooleanField) ToRepresentation(ctx context.Context, value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("field %s: cannot represent %T as boolean", f.name, value)
	}
	return b, nil
}

func (f *BooleanField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// CharField accepts strings and enforces the configured length bounds.
// Unless overridden, the upper bound defaults to 255.
type CharField struct {
	Base
}

func Char(opts ...Option) *CharField {
	b := Base{required: true, maxLength: 255}
	for _, opt := range opts {
		opt(&b)
	}
	if b.readOnly {
		b.required = false
	}
	return &CharField{Base: b}
}

func (f *CharField) Validate(ctx context.Context, value any) error {
	if err := f.check(value, isString, "string"); err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if f.maxLength > 0 {
		if err := (validate.MaxLength{Limit: f.maxLength}).Validate(value); err != nil {
			return err
		}
	}
	if f.minLength > 0 {
		if err := (validate.MinLength{Limit: f.minLength}).Validate(value); err != nil {
			return err
		}
	}
	return nil
}

func (f *CharField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (f *CharField) ToRepresentation(ctx context.Context, value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprint(value), nil
}

func (f *CharField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// BinaryField accepts raw byte payloads.
type BinaryField struct {
	Base
}

func Binary(opts ...Option) *BinaryField {
	return &BinaryField{Base: NewBase(opts...)}
}

func (f *BinaryField) Validate(ctx context.Context, value any) error {
	return f.check(value, func(v any) bool { _, ok := v.([]byte); return ok }, "binary value")
}

func (f *BinaryField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (f *BinaryField) ToRepresentation(ctx context.Context, value any) (any, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("field %s: cannot represent %T as binary", f.name, value)
	}
	return b, nil
}

func (f *BinaryField) Clone() Field {
	c := *f
	c.Base = f.Base.cloneBase()
	return &c
}

// URLField is a CharField with URL-ish length bounds (3..255 unless
// overridden).
type URLField struct {
	CharField
}

func URL(opts ...Option) *URLField {
	b := Base{required: true, minLength: 3, maxLength: 255}
	for _, opt := range opts {
		opt(&b)
	}
	if b.readOnly {
		b.required = false
	}
	return &URLField{CharField: CharField{Base: b}}
}

func (f *URLField) Clone() Field {
	c := *f
	c.CharField.Base = f.CharField.Base.cloneBase()
	return &c
}

// ChoiceField accepts strings from a fixed allowed-value set.
type ChoiceField struct {
	CharField
	choices []string
}

func Choice(choices []string, opts ...Option) *ChoiceField {
	b := Base{required: true, maxLength: 255}
	for _, opt := range opts {
		opt(&b)
	}
	if b.readOnly {
		b.required = false
	}
	return &ChoiceField{
		CharField: CharField{Base: b},
		choices:   append([]string(nil), choices...),
	}
}

// Choices returns the allowed-value set.
func (f *ChoiceField) Choices() []string {
	return append([]string(nil), f.choices...)
}

func (f *ChoiceField) Validate(ctx context.Context, value any) error {
	if err := f.CharField.Validate(ctx, value); err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	s, _ := value.(string)
	for _, c := range f.choices {
		if s == c {
			return nil
		}
	}
	return modelbind.NewValidationError("must be one of declared values %v", f.choices)
}

func (f *ChoiceField) ToInternalValue(ctx context.Context, value any) (any, error) {
	if err := f.Validate(ctx, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (f *ChoiceField) Clone() Field {
	c := *f
	c.CharField.Base = f.CharField.Base.cloneBase()
	c.choices = append([]string(nil), f.choices...)
	return &c
}

// ---- value helpers ----

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n)
	case float32:
		return float64(n) == math.Trunc(float64(n))
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}

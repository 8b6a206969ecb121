package field_test

import (
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/field"
	"github.com/shabykov/modelbind/validate"
)

func TestInteger_Basic(t *testing.T) {
	ctx := context.Background()
	f := field.Integer()

	v, err := f.ToInternalValue(ctx, float64(7)) // decoded JSON number
	if err != nil || v != int64(7) {
		t.Fatalf("expected 7, got v=%v err=%v", v, err)
	}
	if _, err := f.ToInternalValue(ctx, "seven"); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
	if _, err := f.ToInternalValue(ctx, 7.5); err == nil {
		t.Fatalf("expected error for fractional input")
	}

	r, err := f.ToRepresentation(ctx, int64(7))
	if err != nil || r != int64(7) {
		t.Fatalf("expected 7, got r=%v err=%v", r, err)
	}
}

func TestNumericFields_AcceptJSONNumber(t *testing.T) {
	ctx := context.Background()

	v, err := field.Integer().ToInternalValue(ctx, json.Number("42"))
	if err != nil || v != int64(42) {
		t.Fatalf("integer from number token: v=%v err=%v", v, err)
	}
	if _, err := field.Integer().ToInternalValue(ctx, json.Number("4.2")); err == nil {
		t.Fatalf("expected error for fractional number token")
	}
	fv, err := field.Float().ToInternalValue(ctx, json.Number("4.2"))
	if err != nil || fv != 4.2 {
		t.Fatalf("float from number token: v=%v err=%v", fv, err)
	}
}

func TestField_NullPolicy(t *testing.T) {
	ctx := context.Background()

	// required and not nullable: null fails
	if err := field.Integer().Validate(ctx, nil); err == nil {
		t.Fatalf("expected error for null on required field")
	}
	// nullable: null passes
	if err := field.Integer(field.Nullable()).Validate(ctx, nil); err != nil {
		t.Fatalf("expected null accepted, got %v", err)
	}
	// optional: null passes
	if err := field.Integer(field.Optional()).Validate(ctx, nil); err != nil {
		t.Fatalf("expected null accepted, got %v", err)
	}
}

func TestField_ReadOnlyNeverRequired(t *testing.T) {
	f := field.Integer(field.ReadOnly())
	if !f.ReadOnly() || f.Required() {
		t.Fatalf("read-only field must not be required, got readOnly=%v required=%v", f.ReadOnly(), f.Required())
	}
}

func TestChar_LengthBounds(t *testing.T) {
	ctx := context.Background()
	f := field.Char(field.MinLength(2), field.MaxLength(4))

	if _, err := f.ToInternalValue(ctx, "ok"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := f.ToInternalValue(ctx, "x"); err == nil {
		t.Fatalf("expected min length violation")
	}
	if _, err := f.ToInternalValue(ctx, "toolong"); err == nil {
		t.Fatalf("expected max length violation")
	}
	if _, err := f.ToInternalValue(ctx, 42); err == nil {
		t.Fatalf("expected type violation")
	}
}

func TestChar_ValidatorsRunInOrder(t *testing.T) {
	ctx := context.Background()
	f := field.Char(field.With(validate.Email{}))
	if _, err := f.ToInternalValue(ctx, "nope"); err == nil {
		t.Fatalf("expected attached validator to run")
	}
	if _, err := f.ToInternalValue(ctx, "a@b.io"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestURL_Defaults(t *testing.T) {
	ctx := context.Background()
	f := field.URL()
	if _, err := f.ToInternalValue(ctx, "ab"); err == nil {
		t.Fatalf("expected minimum length of 3 for url")
	}
	if _, err := f.ToInternalValue(ctx, "http://example.org"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestBoolean_Basic(t *testing.T) {
	ctx := context.Background()
	f := field.Boolean()
	if _, err := f.ToInternalValue(ctx, true); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := f.ToInternalValue(ctx, "true"); err == nil {
		t.Fatalf("expected type violation")
	}
}

func TestChoice_RejectsOutsideSet(t *testing.T) {
	ctx := context.Background()
	f := field.Choice([]string{"nmap", "masscan"})

	if _, err := f.ToInternalValue(ctx, "nmap"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	_, err := f.ToInternalValue(ctx, "zmap")
	if err == nil {
		t.Fatalf("expected violation")
	}
	ve, ok := modelbind.AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	// the message must reference the declared allowed set
	if !strings.Contains(ve.Message, "nmap") || !strings.Contains(ve.Message, "masscan") {
		t.Fatalf("message must reference the allowed set: %q", ve.Message)
	}
}

func TestList_DropsFalsyElements(t *testing.T) {
	ctx := context.Background()
	f := field.List()

	v, err := f.ToInternalValue(ctx, []any{"a", "", 0, false, "b", nil})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b"}, v); diff != "" {
		t.Fatalf("falsy elements must be dropped (-want +got):\n%s", diff)
	}
}

func TestList_ValidatorsPerElement(t *testing.T) {
	ctx := context.Background()
	f := field.List(field.With(validate.MaxLength{Limit: 2}))
	if _, err := f.ToInternalValue(ctx, []any{"ab", "abc"}); err == nil {
		t.Fatalf("expected element validator violation")
	}
}

func TestList_TypePolicy(t *testing.T) {
	ctx := context.Background()
	f := field.List()
	if _, err := f.ToInternalValue(ctx, "not a list"); err == nil {
		t.Fatalf("expected sequence violation")
	}
	r, err := f.ToRepresentation(ctx, nil)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if diff := cmp.Diff([]any{}, r); diff != "" {
		t.Fatalf("non-sequence representation must be empty (-want +got):\n%s", diff)
	}
}

func TestClone_Independent(t *testing.T) {
	orig := field.Char(field.With(validate.MinLength{Limit: 2}))
	orig.SetName("title")
	clone := orig.Clone()

	if clone.Name() != "title" {
		t.Fatalf("clone must keep the name, got %q", clone.Name())
	}
	if _, ok := clone.(*field.CharField); !ok {
		t.Fatalf("clone must keep the concrete type, got %T", clone)
	}
	clone.SetName("renamed")
	if orig.Name() != "title" {
		t.Fatalf("mutating the clone must not affect the original, got %q", orig.Name())
	}
}

func TestInitial_StaticAndProvider(t *testing.T) {
	if got := field.Integer(field.Default(5)).Initial(); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	n := 0
	f := field.Integer(field.DefaultFunc(func() any { n++; return n }))
	if got := f.Initial(); got != 1 {
		t.Fatalf("expected provider result, got %v", got)
	}
	if got := f.Initial(); got != 2 {
		t.Fatalf("expected provider invoked per call, got %v", got)
	}
}

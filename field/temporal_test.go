package field_test

import (
	"context"
	"testing"
	"time"

	"github.com/shabykov/modelbind/field"
)

func TestDate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := field.Date()

	v, err := f.ToInternalValue(ctx, "2024-02-29")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	tv, ok := v.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", v)
	}
	r, err := f.ToRepresentation(ctx, tv)
	if err != nil || r != "2024-02-29" {
		t.Fatalf("round trip failed: r=%v err=%v", r, err)
	}
}

func TestDate_Malformed(t *testing.T) {
	ctx := context.Background()
	f := field.Date()
	for _, bad := range []any{"29.02.2024", "2024-13-01", 20240229, "not a date"} {
		if _, err := f.ToInternalValue(ctx, bad); err == nil {
			t.Fatalf("expected %v to be rejected", bad)
		}
	}
}

func TestDateTime_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := field.DateTime()

	in := "2024-02-29T12:30:45Z"
	v, err := f.ToInternalValue(ctx, in)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	r, err := f.ToRepresentation(ctx, v)
	if err != nil || r != in {
		t.Fatalf("round trip failed: r=%v err=%v", r, err)
	}
}

func TestDateTime_Malformed(t *testing.T) {
	ctx := context.Background()
	f := field.DateTime()
	if _, err := f.ToInternalValue(ctx, "2024-02-29 12:30:45"); err == nil {
		t.Fatalf("expected rejection of non-RFC3339 input")
	}
}

func TestDate_NullPolicy(t *testing.T) {
	ctx := context.Background()
	if _, err := field.Date().ToInternalValue(ctx, nil); err == nil {
		t.Fatalf("expected null rejected on required field")
	}
	v, err := field.Date(field.Nullable()).ToInternalValue(ctx, nil)
	if err != nil || v != nil {
		t.Fatalf("expected null accepted, got v=%v err=%v", v, err)
	}
}

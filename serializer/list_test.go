package serializer_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/serializer"
)

func TestMany_RedirectsToList(t *testing.T) {
	tmpl := articleTemplate(t)
	s := tmpl.New(serializer.Many(), serializer.WithData([]any{}))
	l, ok := s.(*serializer.List)
	if !ok {
		t.Fatalf("Many construction returned %T", s)
	}
	if l.Child() == nil {
		t.Fatalf("child must be built with the wrapper")
	}
	if !l.AllowEmpty() {
		t.Fatalf("empty sequences are allowed by default")
	}
}

func TestList_ValidSequence(t *testing.T) {
	ctx := context.Background()
	s := articleTemplate(t).New(serializer.Many(), serializer.WithData([]any{
		map[string]any{"title": "one"},
		map[string]any{"title": "two"},
	}))
	ok, err := s.IsValid(ctx)
	if err != nil {
		t.Fatalf("IsValid aborted: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid, got %v", s.Errors())
	}
	validated, okType := s.ValidatedData().([]any)
	if !okType || len(validated) != 2 {
		t.Fatalf("validated data %T %v", s.ValidatedData(), s.ValidatedData())
	}
	first := validated[0].(*modelbind.Map)
	if v, _ := first.Get("title"); v != "one" {
		t.Fatalf("element 0 title = %v", v)
	}
}

func TestList_ErrorsParallelToInput(t *testing.T) {
	ctx := context.Background()
	s := articleTemplate(t).New(serializer.Many(), serializer.WithData([]any{
		map[string]any{"title": "ok"},
		map[string]any{"title": 42},
		map[string]any{},
	}))
	ok, err := s.IsValid(ctx)
	if err != nil {
		t.Fatalf("IsValid aborted: %v", err)
	}
	if ok {
		t.Fatalf("expected invalid")
	}
	le, isLE := s.Errors().(modelbind.ListErrors)
	if !isLE {
		t.Fatalf("expected ListErrors, got %T", s.Errors())
	}
	if len(le) != 3 {
		t.Fatalf("error sequence length %d, want 3", len(le))
	}
	if le[0] != nil {
		t.Fatalf("valid element must hold a nil slot, got %v", le[0])
	}
	for i := 1; i < 3; i++ {
		if _, isFE := modelbind.AsFieldErrors(le[i]); !isFE {
			t.Fatalf("element %d: expected FieldErrors, got %T", i, le[i])
		}
	}
}

func TestList_EmptyRejectedWhenDisallowed(t *testing.T) {
	ctx := context.Background()
	s := articleTemplate(t).New(
		serializer.Many(),
		serializer.AllowEmpty(false),
		serializer.WithData([]any{}),
	)
	ok, err := s.IsValid(ctx)
	if err != nil {
		t.Fatalf("IsValid aborted: %v", err)
	}
	if ok {
		t.Fatalf("expected rejection of empty sequence")
	}
	ve, isVE := modelbind.AsValidationError(s.Errors())
	if !isVE || ve.Message != "must not be empty" {
		t.Fatalf("unexpected error %v", s.Errors())
	}
}

func TestList_EmptyAcceptedByDefault(t *testing.T) {
	ctx := context.Background()
	s := articleTemplate(t).New(serializer.Many(), serializer.WithData([]any{}))
	ok, err := s.IsValid(ctx)
	if err != nil || !ok {
		t.Fatalf("empty sequence rejected: ok=%v err=%v errs=%v", ok, err, s.Errors())
	}
}

func TestList_NonSequenceInput(t *testing.T) {
	ctx := context.Background()
	s := articleTemplate(t).New(serializer.Many(), serializer.WithData(map[string]any{"title": "x"}))
	ok, err := s.IsValid(ctx)
	if err != nil {
		t.Fatalf("IsValid aborted: %v", err)
	}
	if ok {
		t.Fatalf("expected rejection of non-sequence input")
	}
}

func TestList_RepresentationMapsChild(t *testing.T) {
	ctx := context.Background()
	instances := []modelbind.Instance{
		&recordingInstance{attrs: map[string]any{"id": int64(1), "title": "a", "views": int64(5)}},
		&recordingInstance{attrs: map[string]any{"id": int64(2), "title": "b", "views": int64(6)}},
	}
	s := articleTemplate(t).New(serializer.Many(), serializer.WithInstance(instances))
	v, err := s.Data(ctx)
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	seq, okType := v.([]any)
	if !okType || len(seq) != 2 {
		t.Fatalf("representation %T %v", v, v)
	}
	first := seq[0].(*modelbind.Map)
	want := []string{"id", "title", "views"}
	if diff := cmp.Diff(want, first.Keys()); diff != "" {
		t.Fatalf("element keys (-want +got):\n%s", diff)
	}
	if got, _ := first.Get("title"); got != "a" {
		t.Fatalf("element 0 title = %v", got)
	}
}

func TestList_SavePanics(t *testing.T) {
	ctx := context.Background()
	s := articleTemplate(t).New(serializer.Many(), serializer.WithData([]any{
		map[string]any{"title": "x"},
	}))
	if ok, _ := s.IsValid(ctx); !ok {
		t.Fatalf("setup: %v", s.Errors())
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	s.Save(ctx)
}

func TestList_DataBeforeIsValidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	s := articleTemplate(t).New(serializer.Many(), serializer.WithData([]any{}))
	s.Data(context.Background())
}

package modelbind

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ValidationError is the expected, recoverable validation failure for a
// single value. It carries a human-readable message and, for nested
// serializer fields, the child's own error aggregate.
type ValidationError struct {
	Message string
	Nested  error
}

// NewValidationError formats a ValidationError the way fmt.Errorf would.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Nested }

// AsValidationError reports whether err is (or wraps) a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsValidationTier reports whether err belongs to the recoverable validation
// tier (ValidationError, FieldErrors or ListErrors) as opposed to an
// internal failure that must abort the whole request.
func IsValidationTier(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsValidationError(err); ok {
		return true
	}
	if _, ok := AsFieldErrors(err); ok {
		return true
	}
	var le ListErrors
	return errors.As(err, &le)
}

// FieldErrors is an insertion-ordered mapping of field name to error. It is
// the aggregate a serializer records when one or more fields fail; the order
// is the field declaration order.
type FieldErrors struct {
	names []string
	errs  map[string]error
}

func NewFieldErrors() *FieldErrors {
	return &FieldErrors{errs: map[string]error{}}
}

// Set records err under name, keeping first-set order. Setting the same
// name twice replaces the value in place.
func (e *FieldErrors) Set(name string, err error) {
	if _, ok := e.errs[name]; !ok {
		e.names = append(e.names, name)
	}
	e.errs[name] = err
}

func (e *FieldErrors) Get(name string) error { return e.errs[name] }

func (e *FieldErrors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.names)
}

// Names returns the recorded field names in declaration order.
func (e *FieldErrors) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Error summarizes the first few entries.
func (e *FieldErrors) Error() string {
	if e.Len() == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(e.names)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", e.names[i], e.errs[e.names[i]])
	}
	if n := len(e.names); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// MarshalJSON emits an object in declaration order with message strings (or
// nested error objects) as values.
func (e *FieldErrors) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, name := range e.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(errorJSONValue(e.errs[name]))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AsFieldErrors reports whether err is (or wraps) a FieldErrors aggregate.
func AsFieldErrors(err error) (*FieldErrors, bool) {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ListErrors is the per-element error sequence of a list serializer. It is
// parallel to the input sequence: nil marks a valid element.
type ListErrors []error

func (e ListErrors) Error() string {
	n := 0
	for _, err := range e {
		if err != nil {
			n++
		}
	}
	return fmt.Sprintf("%d of %d elements invalid", n, len(e))
}

// MarshalJSON emits an array with null entries for valid elements.
func (e ListErrors) MarshalJSON() ([]byte, error) {
	out := make([]any, len(e))
	for i, err := range e {
		out[i] = errorJSONValue(err)
	}
	return json.Marshal(out)
}

// ErrorShape renders an error as its transport shape: nested aggregates
// stay structured, plain errors become message strings.
func ErrorShape(err error) any { return errorJSONValue(err) }

// errorJSONValue renders an error as its transport shape: nested aggregates
// stay structured, plain errors become message strings.
func errorJSONValue(err error) any {
	switch {
	case err == nil:
		return nil
	default:
		if fe, ok := AsFieldErrors(err); ok {
			return fe
		}
		var le ListErrors
		if errors.As(err, &le) {
			return le
		}
		if ve, ok := AsValidationError(err); ok && ve.Nested != nil {
			return errorJSONValue(ve.Nested)
		}
		return err.Error()
	}
}

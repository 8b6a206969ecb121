// Package validate holds the composable single-rule validators attached to
// fields. A validator is a stateless value object holding its own limit or
// pattern; new kinds are added by implementing Validator, no registration
// step required.
package validate

import (
	"regexp"
	"strings"

	"github.com/shabykov/modelbind"
)

// Validator applies one rule to one value and fails with a ValidationError
// on violation.
type Validator interface {
	Validate(value any) error
}

// MaxLength fails when the value's length exceeds Limit.
type MaxLength struct {
	Limit int
}

func (v MaxLength) Validate(value any) error {
	n, err := lengthOf(value)
	if err != nil {
		return err
	}
	if n > v.Limit {
		return modelbind.NewValidationError("%v len is greater than %d", value, v.Limit)
	}
	return nil
}

// MinLength fails when the value's length is below Limit.
type MinLength struct {
	Limit int
}

func (v MinLength) Validate(value any) error {
	n, err := lengthOf(value)
	if err != nil {
		return err
	}
	if n < v.Limit {
		return modelbind.NewValidationError("%v len is less than %d", value, v.Limit)
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// Email fails unless the value is a well-formed email address.
type Email struct{}

func (Email) Validate(value any) error {
	s, ok := value.(string)
	if !ok || !strings.Contains(s, "@") {
		return modelbind.NewValidationError("%v is incorrect email address", value)
	}
	if !emailPattern.MatchString(s) {
		return modelbind.NewValidationError("%v is incorrect email address", value)
	}
	return nil
}

var datePattern = regexp.MustCompile(`^[0-9]{2}[./-]?[0-9]{2}[./-]?[0-9]{4}$`)

// Date fails unless the value matches a dd.mm.yyyy-style date pattern.
type Date struct{}

func (Date) Validate(value any) error {
	s, ok := value.(string)
	if !ok || !datePattern.MatchString(s) {
		return modelbind.NewValidationError("%v is incorrect date", value)
	}
	return nil
}

func lengthOf(value any) (int, error) {
	switch t := value.(type) {
	case string:
		return len(t), nil
	case []byte:
		return len(t), nil
	case []any:
		return len(t), nil
	case map[string]any:
		return len(t), nil
	}
	if s, ok := modelbind.AsSlice(value); ok {
		return len(s), nil
	}
	return 0, modelbind.NewValidationError("%v has no length", value)
}

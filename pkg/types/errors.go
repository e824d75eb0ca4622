package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by repository operations. Callers branch on them with
// errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("entity not found")
	ErrIO            = errors.New("storage i/o failed")
	ErrSerialization = errors.New("record serialization failed")
)

// Repository operation errors.
var (
	ErrInvalidID        = errors.New("invalid entity ID")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrUniqueViolation  = errors.New("unique violation")
	ErrMissingReference = errors.New("referenced entity does not exist")
	ErrStoreClosed      = errors.New("store is closed")
)

// Validation rules reported in FieldError.Rule.
const (
	RuleMissing    = "missing"
	RuleType       = "type"
	RuleConstraint = "constraint"
	RuleUnknown    = "unknown"
)

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

func (f FieldError) String() string {
	if f.Message == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Rule)
	}
	return fmt.Sprintf("%s: %s (%s)", f.Field, f.Rule, f.Message)
}

// ValidationError lists every field of one entity that violated its schema.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s %s: %s", e.Entity, ErrValidation, strings.Join(parts, "; "))
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the error recorded for name, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

// Package schema declares entity shapes and validates raw field maps against
// them. A Schema is the only place an entity is constructed: it checks every
// field, applies defaults, and hands normalized Values to the entity's Build
// function.
package schema

import (
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Entity is implemented by every record type a Schema can build.
type Entity interface {
	// EntityID returns the identifier that keys the entity in its collection.
	EntityID() string

	// Values returns the entity's fields in normalized form. Feeding the
	// result back into Schema.New yields an equal entity.
	Values() Values
}

// Field describes one entity field. A field is either Required or optional;
// optional fields take Default (or DefaultFunc's result), or nil when neither
// is set.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     any
	DefaultFunc func() any

	// Check enforces a constraint on the coerced value. It is not applied to
	// defaults.
	Check func(v any) error
}

func (f Field) defaultValue() any {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return f.Default
}

// Schema validates raw maps and builds entities of type T.
type Schema[T Entity] struct {
	// Entity is the singular name used in validation errors ("book").
	Entity string

	// Collection is the storage name. Defaults to Entity + "s".
	Collection string

	Fields []Field

	// Build assembles T from validated values. It must not fail.
	Build func(v Values) T
}

// CollectionName returns Collection, or the pluralized entity name.
func (s *Schema[T]) CollectionName() string {
	if s.Collection != "" {
		return s.Collection
	}
	return strings.ToLower(s.Entity) + "s"
}

// Field returns the definition of name.
func (s *Schema[T]) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// New validates raw and builds an entity. Keys not declared in the schema are
// ignored. On failure it returns a *types.ValidationError naming every
// offending field.
func (s *Schema[T]) New(raw map[string]any) (T, error) {
	var zero T

	vals := make(Values, len(s.Fields))
	var problems []types.FieldError

	for _, f := range s.Fields {
		rv, present := raw[f.Name]
		if !present || isNull(rv) {
			if f.Required {
				problems = append(problems, types.FieldError{Field: f.Name, Rule: types.RuleMissing})
				continue
			}
			def := f.defaultValue()
			if def == nil {
				vals[f.Name] = nil
				continue
			}
			rv = def
			v, err := coerce(f.Kind, rv)
			if err != nil {
				problems = append(problems, types.FieldError{Field: f.Name, Rule: types.RuleType, Message: err.Error()})
				continue
			}
			vals[f.Name] = v
			continue
		}

		v, err := coerce(f.Kind, rv)
		if err != nil {
			problems = append(problems, types.FieldError{Field: f.Name, Rule: types.RuleType, Message: err.Error()})
			continue
		}
		if f.Check != nil {
			if err := f.Check(v); err != nil {
				problems = append(problems, types.FieldError{Field: f.Name, Rule: types.RuleConstraint, Message: err.Error()})
				continue
			}
		}
		vals[f.Name] = v
	}

	if len(problems) > 0 {
		return zero, &types.ValidationError{Entity: s.Entity, Fields: problems}
	}
	return s.Build(vals), nil
}

// isNull reports whether v stands for an absent value: nil itself or a nil
// list, which encodes as null.
func isNull(v any) bool {
	switch l := v.(type) {
	case nil:
		return true
	case []string:
		return l == nil
	case []any:
		return l == nil
	}
	return false
}

// Merge overlays changes on base and returns a new raw map suitable for New.
// Neither input is modified.
func Merge(base Values, changes map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(changes))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range changes {
		out[k] = v
	}
	return out
}

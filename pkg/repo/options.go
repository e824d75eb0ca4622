package repo

import (
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Option configures a Repository.
type Option[T schema.Entity] func(*Repository[T])

// WithCodec selects the record encoding. The default is JSON.
func WithCodec[T schema.Entity](c types.Codec) Option[T] {
	return func(r *Repository[T]) { r.codec = c }
}

// WithUnique adds uniqueness rules enforced on every write.
func WithUnique[T schema.Entity](rules ...UniqueRule) Option[T] {
	return func(r *Repository[T]) { r.unique = append(r.unique, rules...) }
}

// WithValidator adds a write-time check that sees the other stored entities.
func WithValidator[T schema.Entity](v Validator[T]) Option[T] {
	return func(r *Repository[T]) { r.validators = append(r.validators, v) }
}

// UniqueRule requires Field to differ across all entities in the collection.
// NoCase compares lower-cased string forms. With AllowNone, entities whose
// value is nil never conflict.
type UniqueRule struct {
	Field     string
	NoCase    bool
	AllowNone bool
}

// Unique returns a case-sensitive rule that ignores nil values.
func Unique(field string) UniqueRule {
	return UniqueRule{Field: field, AllowNone: true}
}

// UniqueNoCase returns a case-insensitive rule that ignores nil values.
func UniqueNoCase(field string) UniqueRule {
	return UniqueRule{Field: field, NoCase: true, AllowNone: true}
}

// Validator checks candidate against the other entities in the collection
// (the stored entity with the same id is excluded). A returned error that is
// not already one of the types error kinds is reported as ErrValidation.
type Validator[T schema.Entity] func(candidate T, others []T) error

package repo

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/larder/internal/codec"
	"github.com/mesh-intelligence/larder/internal/filestore"
	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Repository persists entities of type T in one collection of a store.
type Repository[T schema.Entity] struct {
	store      types.Store
	schema     *schema.Schema[T]
	codec      types.Codec
	collection string
	unique     []UniqueRule
	validators []Validator[T]
	ownsStore  bool
}

// New binds a repository for s to store.
func New[T schema.Entity](store types.Store, s *schema.Schema[T], opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		store:      store,
		schema:     s,
		codec:      codec.JSON{},
		collection: s.CollectionName(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open binds a repository for s to a one-file-per-entity store rooted at
// root. Records live in root/<collection>/. Close releases the store.
func Open[T schema.Entity](root string, s *schema.Schema[T], opts ...Option[T]) (*Repository[T], error) {
	r := New[T](nil, s, opts...)
	store, err := filestore.NewDir(root, r.codec.Ext())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	r.store = store
	r.ownsStore = true
	return r, nil
}

// Collection returns the storage name of the entity type.
func (r *Repository[T]) Collection() string { return r.collection }

// Schema returns the schema records are validated against.
func (r *Repository[T]) Schema() *schema.Schema[T] { return r.schema }

// Close releases the store if the repository opened it.
func (r *Repository[T]) Close() error {
	if !r.ownsStore {
		return nil
	}
	return r.store.Close()
}

// Save writes e under its identifier, replacing any stored entity with the
// same id. The entity's values are rebuilt through the schema first, so an
// entity that was not constructed by it cannot reach the store. Unique rules
// and validators run next.
func (r *Repository[T]) Save(e T) result.Result[string] {
	id := e.EntityID()
	if id == "" {
		return result.Err[string](r.fail("save", id, types.ErrInvalidID))
	}
	e, err := r.schema.New(e.Values())
	if err != nil {
		return result.Err[string](r.fail("save", id, err))
	}
	if err := r.checkRules(e); err != nil {
		return result.Err[string](err)
	}
	if err := r.write(e); err != nil {
		return result.Err[string](err)
	}
	return result.Ok(id)
}

// Create saves e only if no entity with its id exists yet.
// Fails with ErrAlreadyExists otherwise.
func (r *Repository[T]) Create(e T) result.Result[T] {
	return result.AndThen(r.Exists(e.EntityID()), func(exists bool) result.Result[T] {
		if exists {
			return result.Err[T](r.fail("create", e.EntityID(), types.ErrAlreadyExists))
		}
		return result.Map(r.Save(e), func(string) T { return e })
	})
}

// Update saves e only if an entity with its id already exists.
// Fails with ErrNotFound otherwise.
func (r *Repository[T]) Update(e T) result.Result[T] {
	return result.AndThen(r.Exists(e.EntityID()), func(exists bool) result.Result[T] {
		if !exists {
			return result.Err[T](r.fail("update", e.EntityID(), types.ErrNotFound))
		}
		return result.Map(r.Save(e), func(string) T { return e })
	})
}

// Patch loads id, overlays changes on its fields, re-validates the result
// through the schema and updates it. Changes naming fields the schema does
// not declare, or changing the id, fail validation.
func (r *Repository[T]) Patch(id string, changes map[string]any) result.Result[T] {
	var unknown []types.FieldError
	for name, v := range changes {
		if _, ok := r.schema.Field(name); !ok {
			unknown = append(unknown, types.FieldError{Field: name, Rule: types.RuleUnknown})
			continue
		}
		if name == "id" && v != id {
			unknown = append(unknown, types.FieldError{Field: name, Rule: types.RuleConstraint, Message: "id cannot change"})
		}
	}
	if len(unknown) > 0 {
		return result.Err[T](r.fail("patch", id, &types.ValidationError{Entity: r.schema.Entity, Fields: unknown}))
	}

	return result.AndThen(r.Load(id), func(current T) result.Result[T] {
		next, err := r.schema.New(schema.Merge(current.Values(), changes))
		if err != nil {
			return result.Err[T](r.fail("patch", id, err))
		}
		return r.Update(next)
	})
}

// Load reads, decodes and re-validates the entity stored under id.
func (r *Repository[T]) Load(id string) result.Result[T] {
	if id == "" {
		return result.Err[T](r.fail("load", id, types.ErrInvalidID))
	}
	body, err := r.store.Read(r.collection, id)
	if err != nil {
		return result.Err[T](r.fail("load", id, err))
	}
	e, err := r.decode(id, body)
	if err != nil {
		return result.Err[T](err)
	}
	return result.Ok(e)
}

// Exists reports whether an entity is stored under id.
func (r *Repository[T]) Exists(id string) result.Result[bool] {
	if id == "" {
		return result.Err[bool](r.fail("exists", id, types.ErrInvalidID))
	}
	_, err := r.store.Read(r.collection, id)
	if errors.Is(err, types.ErrNotFound) {
		return result.Ok(false)
	}
	if err != nil {
		return result.Err[bool](r.fail("exists", id, err))
	}
	return result.Ok(true)
}

// Delete removes the entity stored under id. Fails with ErrNotFound if absent.
func (r *Repository[T]) Delete(id string) result.Result[result.Unit] {
	if id == "" {
		return result.Err[result.Unit](r.fail("delete", id, types.ErrInvalidID))
	}
	if err := r.store.Remove(r.collection, id); err != nil {
		return result.Err[result.Unit](r.fail("delete", id, err))
	}
	return result.Ok(result.Unit{})
}

// List returns every stored entity, ordered by id. A single record that
// cannot be read, decoded or validated fails the whole call; use Scan to
// skip bad records instead.
func (r *Repository[T]) List() result.Result[[]T] {
	keys, err := r.store.Keys(r.collection)
	if err != nil {
		return result.Err[[]T](r.fail("list", "", err))
	}
	out := make([]T, 0, len(keys))
	for _, id := range keys {
		e, err := r.Load(id).Unwrap()
		if err != nil {
			return result.Err[[]T](err)
		}
		out = append(out, e)
	}
	return result.Ok(out)
}

// Failure records one entity that Scan could not load.
type Failure struct {
	ID  string
	Err error
}

// ScanReport is the outcome of Scan: the entities that loaded and the ids
// that did not.
type ScanReport[T any] struct {
	Entities []T
	Failures []Failure
}

// Scan loads every stored entity like List, but collects per-record failures
// instead of failing the call. It fails only when the collection itself
// cannot be enumerated.
func (r *Repository[T]) Scan() result.Result[ScanReport[T]] {
	keys, err := r.store.Keys(r.collection)
	if err != nil {
		return result.Err[ScanReport[T]](r.fail("scan", "", err))
	}
	report := ScanReport[T]{Entities: make([]T, 0, len(keys))}
	for _, id := range keys {
		e, err := r.Load(id).Unwrap()
		if err != nil {
			report.Failures = append(report.Failures, Failure{ID: id, Err: err})
			continue
		}
		report.Entities = append(report.Entities, e)
	}
	return result.Ok(report)
}

func (r *Repository[T]) write(e T) error {
	id := e.EntityID()
	body, err := r.codec.Marshal(e.Values().Plain())
	if err != nil {
		return r.fail("save", id, fmt.Errorf("%w: %w", types.ErrSerialization, err))
	}
	if err := r.store.Write(r.collection, id, body); err != nil {
		return r.fail("save", id, err)
	}
	return nil
}

func (r *Repository[T]) decode(id string, body []byte) (T, error) {
	var zero T
	raw, err := r.codec.Unmarshal(body)
	if err != nil {
		return zero, r.fail("load", id, fmt.Errorf("%w: %w", types.ErrSerialization, err))
	}
	e, err := r.schema.New(raw)
	if err != nil {
		return zero, r.fail("load", id, err)
	}
	if e.EntityID() != id {
		return zero, r.fail("load", id,
			fmt.Errorf("%w: record holds id %q", types.ErrSerialization, e.EntityID()))
	}
	return e, nil
}

// checkRules runs unique rules and validators against the other stored
// entities. With no rules configured it does not touch the store.
func (r *Repository[T]) checkRules(e T) error {
	if len(r.unique) == 0 && len(r.validators) == 0 {
		return nil
	}
	all, err := r.List().Unwrap()
	if err != nil {
		return err
	}
	id := e.EntityID()
	others := make([]T, 0, len(all))
	for _, o := range all {
		if o.EntityID() != id {
			others = append(others, o)
		}
	}

	values := e.Values()
	for _, rule := range r.unique {
		v := values[rule.Field]
		if v == nil && rule.AllowNone {
			continue
		}
		for _, o := range others {
			if schema.Equal(o.Values()[rule.Field], v, rule.NoCase) {
				return r.fail("save", id, fmt.Errorf("%w: %s", types.ErrUniqueViolation, rule.Field))
			}
		}
	}

	for _, validate := range r.validators {
		if err := validate(e, others); err != nil {
			if !isKind(err) {
				err = fmt.Errorf("%w: %w", types.ErrValidation, err)
			}
			return r.fail("save", id, err)
		}
	}
	return nil
}

// errorKinds are errors passed through to callers without the ErrIO wrap.
var errorKinds = []error{
	types.ErrValidation,
	types.ErrNotFound,
	types.ErrIO,
	types.ErrSerialization,
	types.ErrInvalidID,
	types.ErrAlreadyExists,
	types.ErrUniqueViolation,
	types.ErrMissingReference,
}

func isKind(err error) bool {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// fail adds operation context to err. Errors that are not one of the known
// kinds come from the store and are reported as ErrIO.
func (r *Repository[T]) fail(op, id string, err error) error {
	if !isKind(err) {
		err = fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	if id == "" {
		return fmt.Errorf("%s %s: %w", op, r.collection, err)
	}
	return fmt.Errorf("%s %s %q: %w", op, r.schema.Entity, id, err)
}

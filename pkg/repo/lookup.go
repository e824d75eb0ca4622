package repo

import (
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// FindBy returns every entity whose field equals value, in id order.
// With nocase, strings compare without regard to case.
func (r *Repository[T]) FindBy(field string, value any, nocase bool) result.Result[[]T] {
	if _, ok := r.schema.Field(field); !ok {
		return result.Err[[]T](r.fail("find", "", &types.ValidationError{
			Entity: r.schema.Entity,
			Fields: []types.FieldError{{Field: field, Rule: types.RuleUnknown}},
		}))
	}
	return result.Map(r.List(), func(all []T) []T {
		var out []T
		for _, e := range all {
			if schema.Equal(e.Values()[field], value, nocase) {
				out = append(out, e)
			}
		}
		return out
	})
}

// GetBy returns the first entity, in id order, whose field equals value.
// Fails with ErrNotFound when none matches.
func (r *Repository[T]) GetBy(field string, value any, nocase bool) result.Result[T] {
	return result.AndThen(r.FindBy(field, value, nocase), func(found []T) result.Result[T] {
		if len(found) == 0 {
			return result.Err[T](r.fail("get", "", fmt.Errorf("%w: %s %v", types.ErrNotFound, field, value)))
		}
		return result.Ok(found[0])
	})
}

// ExistsBy reports whether any entity has field equal to value.
func (r *Repository[T]) ExistsBy(field string, value any, nocase bool) result.Result[bool] {
	return result.Map(r.FindBy(field, value, nocase), func(found []T) bool {
		return len(found) > 0
	})
}

// LookupIDBy returns the id of the entity GetBy would return.
func (r *Repository[T]) LookupIDBy(field string, value any, nocase bool) result.Result[string] {
	return result.Map(r.GetBy(field, value, nocase), func(e T) string {
		return e.EntityID()
	})
}

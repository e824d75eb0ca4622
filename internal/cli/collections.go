package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/catalog"
	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/repo"
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// collection is the untyped view of a repository the commands work with.
// Entities cross it as plain field maps.
type collection interface {
	save(fields map[string]any) (map[string]any, error)
	get(id string) (map[string]any, error)
	list() ([]map[string]any, error)
	scan() ([]map[string]any, []repo.Failure, error)
	remove(id string) error
}

type repoCollection[T schema.Entity] struct {
	repo *repo.Repository[T]
}

func (c repoCollection[T]) save(fields map[string]any) (map[string]any, error) {
	e, err := c.repo.Schema().New(fields)
	if err != nil {
		return nil, err
	}
	if err := c.repo.Save(e).Error(); err != nil {
		return nil, err
	}
	return e.Values().Plain(), nil
}

func (c repoCollection[T]) get(id string) (map[string]any, error) {
	e, err := c.repo.Load(id).Unwrap()
	if err != nil {
		return nil, err
	}
	return e.Values().Plain(), nil
}

func (c repoCollection[T]) list() ([]map[string]any, error) {
	all, err := c.repo.List().Unwrap()
	if err != nil {
		return nil, err
	}
	return plainAll(all), nil
}

func (c repoCollection[T]) scan() ([]map[string]any, []repo.Failure, error) {
	report, err := c.repo.Scan().Unwrap()
	if err != nil {
		return nil, nil, err
	}
	return plainAll(report.Entities), report.Failures, nil
}

func (c repoCollection[T]) remove(id string) error {
	return c.repo.Delete(id).Error()
}

func plainAll[T schema.Entity](all []T) []map[string]any {
	out := make([]map[string]any, 0, len(all))
	for _, e := range all {
		out = append(out, e.Values().Plain())
	}
	return out
}

func wrap[T schema.Entity](r *repo.Repository[T]) collection {
	return repoCollection[T]{repo: r}
}

// collections returns every collection of l by name. Catalog collections
// carry their uniqueness and reference rules.
func collections(l *larder.Larder) map[string]collection {
	c := catalog.New(l)
	books := larder.Repo(l, entities.BookSchema)
	return map[string]collection{
		books.Collection():      wrap(books),
		c.Users.Collection():    wrap(c.Users),
		c.Products.Collection(): wrap(c.Products),
		c.Groups.Collection():   wrap(c.Groups),
		c.Systems.Collection():  wrap(c.Systems),
	}
}

// lookup returns the named collection or a user error listing valid names.
func lookup(l *larder.Larder, name string) (collection, error) {
	all := collections(l)
	if c, ok := all[name]; ok {
		return c, nil
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	slices.Sort(names)
	return nil, userError(fmt.Errorf("unknown collection %q (valid: %s): %w",
		name, strings.Join(names, ", "), types.ErrNotFound))
}

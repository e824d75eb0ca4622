package loader

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// configDocument is the layout of a configuration file. Product groups are
// created; every other section patches existing entities by id.
type configDocument struct {
	ProductGroups []map[string]any `yaml:"product_groups"`
	Products      []map[string]any `yaml:"products"`
	Users         []map[string]any `yaml:"users"`
	Systems       []map[string]any `yaml:"systems"`
}

// Applied holds one result per item of each configuration section, in file
// order.
type Applied struct {
	ProductGroups []result.Result[entities.ProductGroup]
	Products      []result.Result[entities.Product]
	Users         []result.Result[entities.User]
	Systems       []result.Result[entities.System]
}

// Failed returns the errors of every rejected item.
func (a Applied) Failed() []error {
	var errs []error
	errs = appendErrs(errs, a.ProductGroups)
	errs = appendErrs(errs, a.Products)
	errs = appendErrs(errs, a.Users)
	errs = appendErrs(errs, a.Systems)
	return errs
}

// Total returns the number of items applied or rejected.
func (a Applied) Total() int {
	return len(a.ProductGroups) + len(a.Products) + len(a.Users) + len(a.Systems)
}

func appendErrs[T any](errs []error, rs []result.Result[T]) []error {
	for _, r := range rs {
		if r.IsErr() {
			errs = append(errs, r.Error())
		}
	}
	return errs
}

// ApplyConfig reads the configuration document at path and applies it.
// Product groups are created first so that later sections can rely on them.
func (l *Loader) ApplyConfig(path string) (Applied, error) {
	var doc configDocument
	if err := readYAML(path, &doc); err != nil {
		return Applied{}, err
	}

	var applied Applied
	for _, item := range doc.ProductGroups {
		r := result.AndThen(result.From(entities.NewProductGroup(item)), l.catalog.CreateProductGroup)
		l.logItem("product_groups", item, r.Error())
		applied.ProductGroups = append(applied.ProductGroups, r)
	}
	applied.Products = patchAll(l, "products", doc.Products, l.catalog.UpdateProduct)
	applied.Users = patchAll(l, "users", doc.Users, l.catalog.UpdateUser)
	applied.Systems = patchAll(l, "systems", doc.Systems, l.catalog.UpdateSystem)

	l.log.Info("configuration applied",
		slog.String("path", path),
		slog.Int("items", applied.Total()),
		slog.Int("failed", len(applied.Failed())))
	return applied, nil
}

// patchAll applies each item's fields, except id, to the entity with that id.
func patchAll[T any](l *Loader, section string, items []map[string]any,
	update func(id string, changes map[string]any) result.Result[T]) []result.Result[T] {
	var out []result.Result[T]
	for _, item := range items {
		id, _ := item["id"].(string)
		var r result.Result[T]
		if id == "" {
			r = result.Err[T](fmt.Errorf("%s item without id: %w", section, types.ErrInvalidID))
		} else {
			changes := make(map[string]any, len(item))
			for k, v := range item {
				if k != "id" {
					changes[k] = v
				}
			}
			r = update(id, changes)
		}
		l.logItem(section, item, r.Error())
		out = append(out, r)
	}
	return out
}

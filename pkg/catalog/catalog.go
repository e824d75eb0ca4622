// Package catalog is the data API over the users, products, product groups
// and systems collections. It adds the uniqueness rules of each collection
// and the product references that systems must satisfy.
package catalog

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/repo"
	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Catalog groups the repositories of one larder.
type Catalog struct {
	Users    *repo.Repository[entities.User]
	Products *repo.Repository[entities.Product]
	Groups   *repo.Repository[entities.ProductGroup]
	Systems  *repo.Repository[entities.System]
}

// New binds a catalog to l.
func New(l *larder.Larder) *Catalog {
	c := &Catalog{
		Users: larder.Repo(l, entities.UserSchema,
			repo.WithUnique[entities.User](repo.UniqueNoCase("name"))),
		Products: larder.Repo(l, entities.ProductSchema,
			repo.WithUnique[entities.Product](repo.Unique("sku"))),
		Groups: larder.Repo(l, entities.ProductGroupSchema,
			repo.WithUnique[entities.ProductGroup](repo.Unique("tag"))),
	}
	c.Systems = larder.Repo(l, entities.SystemSchema,
		repo.WithUnique[entities.System](repo.UniqueNoCase("name")),
		repo.WithValidator[entities.System](c.productsExist))
	return c
}

// productsExist fails with ErrMissingReference when a system names a
// product that is not stored.
func (c *Catalog) productsExist(s entities.System, _ []entities.System) error {
	for _, id := range s.ProductIDs {
		exists, err := c.Products.Exists(id).Unwrap()
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: product %q", types.ErrMissingReference, id)
		}
	}
	return nil
}

// Users

func (c *Catalog) CreateUser(u entities.User) result.Result[entities.User] {
	return c.Users.Create(u)
}

func (c *Catalog) ListUsers() result.Result[[]entities.User] {
	return c.Users.List()
}

func (c *Catalog) GetUser(id string) result.Result[entities.User] {
	return c.Users.Load(id)
}

// GetUserByName matches names without regard to case.
func (c *Catalog) GetUserByName(name string) result.Result[entities.User] {
	return c.Users.GetBy("name", name, true)
}

// UpdateUser applies changes to the stored user and saves the result.
func (c *Catalog) UpdateUser(id string, changes map[string]any) result.Result[entities.User] {
	return c.Users.Patch(id, changes)
}

// Products

func (c *Catalog) CreateProduct(p entities.Product) result.Result[entities.Product] {
	return c.Products.Create(p)
}

func (c *Catalog) ListProducts() result.Result[[]entities.Product] {
	return c.Products.List()
}

func (c *Catalog) GetProduct(id string) result.Result[entities.Product] {
	return c.Products.Load(id)
}

func (c *Catalog) GetProductBySKU(sku string) result.Result[entities.Product] {
	return c.Products.GetBy("sku", sku, false)
}

// ListProductVersions returns the distinct non-empty product versions, sorted.
func (c *Catalog) ListProductVersions() result.Result[[]string] {
	return result.Map(c.Products.List(), func(products []entities.Product) []string {
		versions := []string{}
		for _, p := range products {
			if p.Version != nil && *p.Version != "" {
				versions = append(versions, *p.Version)
			}
		}
		slices.Sort(versions)
		return slices.Compact(versions)
	})
}

func (c *Catalog) UpdateProduct(id string, changes map[string]any) result.Result[entities.Product] {
	return c.Products.Patch(id, changes)
}

// Product groups

func (c *Catalog) CreateProductGroup(g entities.ProductGroup) result.Result[entities.ProductGroup] {
	return c.Groups.Create(g)
}

func (c *Catalog) ListProductGroups() result.Result[[]entities.ProductGroup] {
	return c.Groups.List()
}

func (c *Catalog) GetProductGroup(id string) result.Result[entities.ProductGroup] {
	return c.Groups.Load(id)
}

func (c *Catalog) GetProductGroupByTag(tag string) result.Result[entities.ProductGroup] {
	return c.Groups.GetBy("tag", tag, false)
}

func (c *Catalog) UpdateProductGroup(id string, changes map[string]any) result.Result[entities.ProductGroup] {
	return c.Groups.Patch(id, changes)
}

// Systems

// CreateSystem stores s. Every product it lists must already exist.
func (c *Catalog) CreateSystem(s entities.System) result.Result[entities.System] {
	return c.Systems.Create(s)
}

func (c *Catalog) ListSystems() result.Result[[]entities.System] {
	return c.Systems.List()
}

func (c *Catalog) GetSystem(id string) result.Result[entities.System] {
	return c.Systems.Load(id)
}

// GetSystemByName matches names without regard to case.
func (c *Catalog) GetSystemByName(name string) result.Result[entities.System] {
	return c.Systems.GetBy("name", name, true)
}

// ListSystemNames returns system names in id order.
func (c *Catalog) ListSystemNames() result.Result[[]string] {
	return result.Map(c.Systems.List(), func(systems []entities.System) []string {
		names := make([]string, 0, len(systems))
		for _, s := range systems {
			names = append(names, s.Name)
		}
		return names
	})
}

// UpdateSystem applies changes to the stored system. The updated product
// list must only reference existing products.
func (c *Catalog) UpdateSystem(id string, changes map[string]any) result.Result[entities.System] {
	return c.Systems.Patch(id, changes)
}

// ProductsForSystem loads the products of the named system in the order the
// system lists them.
func (c *Catalog) ProductsForSystem(name string) result.Result[[]entities.Product] {
	return result.AndThen(c.GetSystemByName(name), func(s entities.System) result.Result[[]entities.Product] {
		loaded := make([]result.Result[entities.Product], 0, len(s.ProductIDs))
		for _, id := range s.ProductIDs {
			r := c.Products.Load(id)
			loaded = append(loaded, r)
			if r.IsErr() {
				break
			}
		}
		return result.Collect(loaded)
	})
}

// SKUPrice pairs a product SKU with its price.
type SKUPrice struct {
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// SKUPricesForSystem lists SKU and price for every product of the named system.
func (c *Catalog) SKUPricesForSystem(name string) result.Result[[]SKUPrice] {
	return result.Map(c.ProductsForSystem(name), func(products []entities.Product) []SKUPrice {
		out := make([]SKUPrice, 0, len(products))
		for _, p := range products {
			out = append(out, SKUPrice{SKU: p.SKU, Price: p.Price, Currency: p.Currency})
		}
		return out
	})
}

// ProductInSystemByVersion returns the first product of the named system with
// the given version. Fails with ErrNotFound when none matches.
func (c *Catalog) ProductInSystemByVersion(name, version string) result.Result[entities.Product] {
	return result.AndThen(c.ProductsForSystem(name), func(products []entities.Product) result.Result[entities.Product] {
		for _, p := range products {
			if p.Version != nil && *p.Version == version {
				return result.Ok(p)
			}
		}
		return result.Err[entities.Product](
			fmt.Errorf("system %q has no product at version %q: %w", name, version, types.ErrNotFound))
	})
}

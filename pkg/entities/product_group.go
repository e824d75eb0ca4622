package entities

import (
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// ProductGroup maps a tag to a catalog path. Groups created without an id get
// a generated UUID v7.
type ProductGroup struct {
	ID   string
	Tag  string
	Path string
}

// ProductGroupSchema declares the fields of ProductGroup.
var ProductGroupSchema = &schema.Schema[ProductGroup]{
	Entity:     "product_group",
	Collection: "product_groups",
	Fields: []schema.Field{
		{Name: "id", Kind: schema.String, DefaultFunc: func() any { return types.NewID() }, Check: schema.NotEmpty},
		{Name: "tag", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "path", Kind: schema.String, Required: true, Check: schema.NotEmpty},
	},
	Build: func(v schema.Values) ProductGroup {
		return ProductGroup{
			ID:   v.String("id"),
			Tag:  v.String("tag"),
			Path: v.String("path"),
		}
	},
}

// NewProductGroup validates fields and builds a ProductGroup.
func NewProductGroup(fields map[string]any) (ProductGroup, error) {
	return ProductGroupSchema.New(fields)
}

func (g ProductGroup) EntityID() string { return g.ID }

func (g ProductGroup) Values() schema.Values {
	return schema.Values{
		"id":   g.ID,
		"tag":  g.Tag,
		"path": g.Path,
	}
}

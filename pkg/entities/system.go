package entities

import "github.com/mesh-intelligence/larder/pkg/schema"

// System is a named bundle of products.
type System struct {
	ID         string
	Name       string
	ProductIDs []string
}

// SystemSchema declares the fields of System.
var SystemSchema = &schema.Schema[System]{
	Entity: "system",
	Fields: []schema.Field{
		{Name: "id", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "name", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "product_ids", Kind: schema.Strings, Required: true},
	},
	Build: func(v schema.Values) System {
		return System{
			ID:         v.String("id"),
			Name:       v.String("name"),
			ProductIDs: v.Strings("product_ids"),
		}
	},
}

// NewSystem validates fields and builds a System.
func NewSystem(fields map[string]any) (System, error) {
	return SystemSchema.New(fields)
}

func (s System) EntityID() string { return s.ID }

func (s System) Values() schema.Values {
	return schema.Values{
		"id":          s.ID,
		"name":        s.Name,
		"product_ids": s.ProductIDs,
	}
}

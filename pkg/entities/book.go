package entities

import "github.com/mesh-intelligence/larder/pkg/schema"

// Book is a catalogued book. Year is optional.
type Book struct {
	ID    string
	Title string
	Year  *int
}

// BookSchema declares the fields of Book.
var BookSchema = &schema.Schema[Book]{
	Entity: "book",
	Fields: []schema.Field{
		{Name: "id", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "title", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "year", Kind: schema.Int},
	},
	Build: func(v schema.Values) Book {
		return Book{
			ID:    v.String("id"),
			Title: v.String("title"),
			Year:  v.IntPtr("year"),
		}
	},
}

// NewBook validates fields and builds a Book.
func NewBook(fields map[string]any) (Book, error) {
	return BookSchema.New(fields)
}

func (b Book) EntityID() string { return b.ID }

func (b Book) Values() schema.Values {
	return schema.Values{
		"id":    b.ID,
		"title": b.Title,
		"year":  schema.OptInt(b.Year),
	}
}

package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func requireFieldError(t *testing.T, err error, field, rule string) {
	t.Helper()
	require.ErrorIs(t, err, types.ErrValidation)
	ve, ok := err.(*types.ValidationError)
	require.True(t, ok, "expected *types.ValidationError, got %T", err)
	f, ok := ve.Field(field)
	require.True(t, ok, "expected error on field %q, got %v", field, ve)
	assert.Equal(t, rule, f.Rule)
}

func TestNewBook(t *testing.T) {
	b, err := NewBook(map[string]any{"id": "b1", "title": "Dune"})
	require.NoError(t, err)
	assert.Equal(t, Book{ID: "b1", Title: "Dune"}, b)
	assert.Nil(t, b.Year)

	b, err = NewBook(map[string]any{"id": "b2", "title": "Emma", "year": 1815})
	require.NoError(t, err)
	require.NotNil(t, b.Year)
	assert.Equal(t, 1815, *b.Year)
}

func TestNewBookValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		field  string
		rule   string
	}{
		{"missing title", map[string]any{"id": "b1"}, "title", types.RuleMissing},
		{"missing id", map[string]any{"title": "Dune"}, "id", types.RuleMissing},
		{"title wrong type", map[string]any{"id": "b1", "title": 42}, "title", types.RuleType},
		{"year wrong type", map[string]any{"id": "b1", "title": "Dune", "year": "1965"}, "year", types.RuleType},
		{"empty id", map[string]any{"id": "", "title": "Dune"}, "id", types.RuleConstraint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBook(tt.fields)
			requireFieldError(t, err, tt.field, tt.rule)
		})
	}
}

func TestNewUserDefaults(t *testing.T) {
	u, err := NewUser(map[string]any{"id": "u1", "name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, u.Spend)
	assert.Nil(t, u.Email)

	_, err = NewUser(map[string]any{"id": "u1", "name": "Alice", "spend": -5})
	requireFieldError(t, err, "spend", types.RuleConstraint)
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(map[string]any{"id": "p1", "sku": "ABC", "price": "100.00"})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, p.Currency)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, p.Version)

	_, err = NewProduct(map[string]any{"id": "p1", "sku": "ABC", "currency": "EURO"})
	requireFieldError(t, err, "currency", types.RuleConstraint)

	_, err = NewProduct(map[string]any{"id": "p1", "sku": "ABC", "price": "-1"})
	requireFieldError(t, err, "price", types.RuleConstraint)
}

func TestNewProductGroupGeneratesID(t *testing.T) {
	a, err := NewProductGroup(map[string]any{"tag": "core", "path": "/core"})
	require.NoError(t, err)
	b, err := NewProductGroup(map[string]any{"tag": "edge", "path": "/edge"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	c, err := NewProductGroup(map[string]any{"id": "g1", "tag": "core", "path": "/core"})
	require.NoError(t, err)
	assert.Equal(t, "g1", c.ID)
}

func TestNewSystem(t *testing.T) {
	s, err := NewSystem(map[string]any{"id": "s1", "name": "Alpha", "product_ids": []any{"p1", "p2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, s.ProductIDs)

	_, err = NewSystem(map[string]any{"id": "s1", "name": "Alpha"})
	requireFieldError(t, err, "product_ids", types.RuleMissing)
}

func TestValuesRebuildEqualEntities(t *testing.T) {
	year := 1965
	email := "alice@example.com"
	version := "v2"

	book := Book{ID: "b1", Title: "Dune", Year: &year}
	got, err := BookSchema.New(book.Values())
	require.NoError(t, err)
	assert.Equal(t, book, got)

	user := User{ID: "u1", Name: "Alice", Spend: 12.5, Email: &email}
	gotUser, err := UserSchema.New(user.Values().Plain())
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)

	product, err := NewProduct(map[string]any{"id": "p1", "sku": "ABC", "price": "9.90", "version": version})
	require.NoError(t, err)
	gotProduct, err := ProductSchema.New(product.Values().Plain())
	require.NoError(t, err)
	assert.Equal(t, product, gotProduct)

	system := System{ID: "s1", Name: "Alpha", ProductIDs: []string{"p1"}}
	gotSystem, err := SystemSchema.New(system.Values())
	require.NoError(t, err)
	assert.Equal(t, system, gotSystem)
}

func TestCollectionNames(t *testing.T) {
	assert.Equal(t, "books", BookSchema.CollectionName())
	assert.Equal(t, "users", UserSchema.CollectionName())
	assert.Equal(t, "products", ProductSchema.CollectionName())
	assert.Equal(t, "product_groups", ProductGroupSchema.CollectionName())
	assert.Equal(t, "systems", SystemSchema.CollectionName())
}

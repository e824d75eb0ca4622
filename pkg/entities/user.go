package entities

import "github.com/mesh-intelligence/larder/pkg/schema"

// User is a customer account. Name is unique per store, ignoring case.
type User struct {
	ID    string
	Name  string
	Spend float64
	Email *string
}

// UserSchema declares the fields of User.
var UserSchema = &schema.Schema[User]{
	Entity: "user",
	Fields: []schema.Field{
		{Name: "id", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "name", Kind: schema.String, Required: true, Check: schema.NotEmpty},
		{Name: "spend", Kind: schema.Float, Default: 0.0, Check: schema.NonNegative},
		{Name: "email", Kind: schema.String},
	},
	Build: func(v schema.Values) User {
		return User{
			ID:    v.String("id"),
			Name:  v.String("name"),
			Spend: v.Float("spend"),
			Email: v.StringPtr("email"),
		}
	},
}

// NewUser validates fields and builds a User.
func NewUser(fields map[string]any) (User, error) {
	return UserSchema.New(fields)
}

func (u User) EntityID() string { return u.ID }

func (u User) Values() schema.Values {
	return schema.Values{
		"id":    u.ID,
		"name":  u.Name,
		"spend": u.Spend,
		"email": schema.OptString(u.Email),
	}
}

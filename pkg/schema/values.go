package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Values holds validated field values keyed by field name. Values are always
// one of: nil, string, int, float64, bool, decimal.Decimal, []string.
type Values map[string]any

// String returns the string value of name, or "" when unset.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// StringPtr returns a pointer to the string value of name, or nil when unset.
func (v Values) StringPtr(name string) *string {
	s, ok := v[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// Int returns the int value of name, or 0 when unset.
func (v Values) Int(name string) int {
	n, _ := v[name].(int)
	return n
}

// IntPtr returns a pointer to the int value of name, or nil when unset.
func (v Values) IntPtr(name string) *int {
	n, ok := v[name].(int)
	if !ok {
		return nil
	}
	return &n
}

// Float returns the float value of name, or 0 when unset.
func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// Bool returns the bool value of name, or false when unset.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Decimal returns the decimal value of name, or zero when unset.
func (v Values) Decimal(name string) decimal.Decimal {
	d, ok := v[name].(decimal.Decimal)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Strings returns a copy of the string list value of name.
func (v Values) Strings(name string) []string {
	ss, _ := v[name].([]string)
	return slices.Clone(ss)
}

// Plain returns a copy of v with decimals rendered as strings, ready for a
// codec that knows nothing about decimal.Decimal.
func (v Values) Plain() map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		if d, ok := val.(decimal.Decimal); ok {
			out[k] = d.String()
			continue
		}
		out[k] = val
	}
	return out
}

// OptString converts an optional string field for Values.
func OptString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// OptInt converts an optional int field for Values.
func OptInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

// Equal compares two normalized values. With nocase, values are compared by
// their lower-cased string form.
func Equal(a, b any, nocase bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if nocase {
		return strings.EqualFold(fmt.Sprint(a), fmt.Sprint(b))
	}
	switch x := a.(type) {
	case decimal.Decimal:
		y, err := toDecimal(b)
		return err == nil && x.Equal(y.(decimal.Decimal))
	case []string:
		y, ok := toStrings(b)
		return ok && slices.Equal(x, y)
	case int:
		y, ok := toInt(b)
		return ok && x == y
	case float64:
		y, ok := toFloat(b)
		return ok && x == y
	}
	if _, ok := b.([]string); ok {
		return false
	}
	return a == b
}

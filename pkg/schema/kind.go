package schema

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Kind is the value type of a field.
type Kind int

// Field kinds.
const (
	String Kind = iota + 1
	Int
	Float
	Bool
	Decimal
	Strings
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Decimal:
		return "decimal"
	case Strings:
		return "string list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// int64er matches json.Number and similar numeric wrappers.
type int64er interface {
	Int64() (int64, error)
}

type float64er interface {
	Float64() (float64, error)
}

// numberLiteral matches json.Number, keeping the literal for decimals.
type numberLiteral interface {
	Float64() (float64, error)
	String() string
}

// coerce converts raw into the normalized Go type for kind:
// string, int, float64, bool, decimal.Decimal or []string.
func coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case String:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case Int:
		if n, ok := toInt(raw); ok {
			return n, nil
		}
	case Float:
		if f, ok := toFloat(raw); ok {
			return f, nil
		}
	case Bool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case Decimal:
		return toDecimal(raw)
	case Strings:
		if ss, ok := toStrings(raw); ok {
			return ss, nil
		}
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
	return nil, mismatch(kind, raw)
}

func mismatch(kind Kind, raw any) error {
	return fmt.Errorf("expected %s, got %T", kind, raw)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int64ToInt(n)
	case uint:
		return uint64ToInt(uint64(n))
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return uint64ToInt(uint64(n))
	case uint64:
		return uint64ToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case int64er:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int64ToInt(i)
	}
	return 0, false
}

func int64ToInt(i int64) (int, bool) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

func uint64ToInt(u uint64) (int, bool) {
	if u > math.MaxInt {
		return 0, false
	}
	return int(u), true
}

// floatToInt accepts only integral floats within the int range, which is how
// JSON numbers decode.
func floatToInt(f float64) (int, bool) {
	if !finite(f) || f != math.Trunc(f) {
		return 0, false
	}
	// -MinInt is 2^63 (or 2^31), exactly representable, unlike MaxInt.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toFloat rejects NaN and infinities, which no record encoding can hold.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case float32:
		return float64(n), finite(float64(n))
	case float64er:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, finite(f)
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toDecimal(v any) (any, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return canonical(n), nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q", n)
		}
		return canonical(d), nil
	case float64:
		if !finite(n) {
			return nil, fmt.Errorf("invalid decimal %v", n)
		}
		return canonical(decimal.NewFromFloat(n)), nil
	case float32:
		if !finite(float64(n)) {
			return nil, fmt.Errorf("invalid decimal %v", n)
		}
		return canonical(decimal.NewFromFloat32(n)), nil
	case numberLiteral:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q", n.String())
		}
		return canonical(d), nil
	}
	if i, ok := toInt(v); ok {
		return canonical(decimal.NewFromInt(int64(i))), nil
	}
	return nil, mismatch(Decimal, v)
}

// canonical reparses d from its shortest string form so that equal amounts
// have identical internal representation ("100.50" and "100.5" compare
// deep-equal after construction).
func canonical(d decimal.Decimal) decimal.Decimal {
	return decimal.RequireFromString(d.String())
}

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

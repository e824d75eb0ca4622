package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NotEmpty rejects strings that are empty or only whitespace.
func NotEmpty(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

// NonNegative rejects numbers below zero.
func NonNegative(v any) error {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return errors.New("must not be negative")
		}
	case float64:
		if n < 0 {
			return errors.New("must not be negative")
		}
	case decimal.Decimal:
		if n.IsNegative() {
			return errors.New("must not be negative")
		}
	}
	return nil
}

// Length returns a check requiring a string of exactly n characters.
func Length(n int) func(any) error {
	return func(v any) error {
		s, _ := v.(string)
		if len([]rune(s)) != n {
			return fmt.Errorf("must be %d characters", n)
		}
		return nil
	}
}

// Between returns a check requiring an int in [lo, hi].
func Between(lo, hi int) func(any) error {
	return func(v any) error {
		n, _ := v.(int)
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// All combines checks; the first failure wins.
func All(checks ...func(any) error) func(any) error {
	return func(v any) error {
		for _, check := range checks {
			if err := check(v); err != nil {
				return err
			}
		}
		return nil
	}
}

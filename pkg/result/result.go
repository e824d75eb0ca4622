// Package result provides Result, a two-variant outcome container returned by
// repository operations in place of (value, error) pairs, so that outcomes can
// be chained with Map and AndThen and inspected once at the end.
package result

import "errors"

// Unit is the value carried by results of operations that produce nothing.
type Unit struct{}

// errNilFailure replaces a nil error passed to Err so that an Err result can
// never be mistaken for success.
var errNilFailure = errors.New("failure without error")

// Result holds either a value (Ok) or an error (Err), never both.
// The zero Result is Ok with the zero value of T.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure. A nil err is replaced by a generic failure error.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = errNilFailure
	}
	return Result[T]{err: err}
}

// From converts a (value, error) pair into a Result.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// IsOk reports whether r holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// IsErr reports whether r holds an error.
func (r Result[T]) IsErr() bool { return r.err != nil }

// Unwrap returns the value and the error. Exactly one of them is meaningful.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }

// Error returns the failure, or nil for Ok.
func (r Result[T]) Error() error { return r.err }

// ValueOr returns the value for Ok and fallback for Err.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Map applies f to the value of an Ok result. Err passes through unchanged.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}

// AndThen chains an operation that may itself fail. Err passes through
// without calling f.
func AndThen[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return f(r.value)
}

// MapErr rewrites the error of an Err result. Ok passes through unchanged.
func MapErr[T any](r Result[T], f func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Err[T](f(r.err))
}

// Collect turns a slice of results into a result of a slice, failing with
// the first error in order.
func Collect[T any](rs []Result[T]) Result[[]T] {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		if r.err != nil {
			return Err[[]T](r.err)
		}
		out = append(out, r.value)
	}
	return Ok(out)
}

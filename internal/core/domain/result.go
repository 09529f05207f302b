package domain

import "fmt"

// Result carries either a value or an error. Expected auth failures travel
// as failed Results; Value and Err panic when misused because that is a
// bug in the caller, not a runtime condition.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result. A nil error is a programming mistake.
func Fail[T any](err error) Result[T] {
	if err == nil {
		panic("domain: Fail called with nil error")
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }

func (r Result[T]) IsFailure() bool { return r.err != nil }

// Value returns the success value and panics on a failed Result.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic(fmt.Sprintf("domain: Value called on failed result: %v", r.err))
	}
	return r.value
}

// Err returns the failure and panics on a successful Result.
func (r Result[T]) Err() error {
	if r.err == nil {
		panic("domain: Err called on successful result")
	}
	return r.err
}

// AuthErr returns the failure as an AuthError.
func (r Result[T]) AuthErr() *AuthError {
	return AsAuthError(r.Err())
}

// Unwrap returns the pair in Go's usual (value, error) shape.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

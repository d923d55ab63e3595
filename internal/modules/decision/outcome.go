package decision

import "fmt"

// Outcome is the result of running one optional estimator.
// Present is false when the estimator was not configured.
type Outcome[T any] struct {
	Value   T
	Err     error
	Present bool
}

// Ok reports whether the estimator ran and produced a value
func (o Outcome[T]) Ok() bool {
	return o.Present && o.Err == nil
}

// Absent is the outcome of an estimator that is not configured
func Absent[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Run calls fn and converts a panic into an error outcome.
func Run[T any](name string, fn func() T) (out Outcome[T]) {
	out.Present = true
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out.Value = zero
			out.Err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()
	out.Value = fn()
	return out
}

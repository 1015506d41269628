package model

// Status tags how a best-effort operation ended.
type Status int

const (
	// StatusOK means the value is fresh.
	StatusOK Status = iota
	// StatusDegraded means the value is a fallback (stale cache, local preview).
	StatusDegraded
	// StatusFailed means there is no usable value.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// Result is a tagged outcome: Ok(value), Degraded(fallback, reason) or
// Failed(reason).
type Result[T any] struct {
	Status Status
	Value  T
	Reason error
}

// OK wraps a fresh value.
func OK[T any](v T) Result[T] {
	return Result[T]{Status: StatusOK, Value: v}
}

// Degraded wraps a fallback value together with why it is one.
func Degraded[T any](v T, reason error) Result[T] {
	return Result[T]{Status: StatusDegraded, Value: v, Reason: reason}
}

// Failed carries only the reason.
func Failed[T any](reason error) Result[T] {
	return Result[T]{Status: StatusFailed, Reason: reason}
}

// Usable reports whether Value can be shown.
func (r Result[T]) Usable() bool {
	return r.Status != StatusFailed
}

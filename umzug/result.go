package umzug

// Result holds either a decoded success payload or a domain failure
type Result[S any, F error] struct {
	value   S
	failure F
	failed  bool
}

// Success returns a successful Result
func Success[S any, F error](value S) Result[S, F] {
	return Result[S, F]{value: value}
}

// Failed returns a failed Result
func Failed[S any, F error](failure F) Result[S, F] {
	return Result[S, F]{failure: failure, failed: true}
}

// IsSuccess reports whether the result holds a success payload
func (r Result[S, F]) IsSuccess() bool {
	return !r.failed
}

// Value returns the success payload, if any
func (r Result[S, F]) Value() (S, bool) {
	return r.value, !r.failed
}

// Failure returns the domain failure, if any
func (r Result[S, F]) Failure() (F, bool) {
	return r.failure, r.failed
}

// Get returns the success payload, or the failure as an error
func (r Result[S, F]) Get() (S, error) {
	if r.failed {
		var zero S
		return zero, r.failure
	}
	return r.value, nil
}

package querycache

import "time"

// Result is what a consumer sees for a key at one moment. Data and Err are
// independent: a failed refresh keeps the last good Data and sets Err.
type Result struct {
	Data      any
	HasData   bool
	Err       error
	UpdatedAt time.Time
	// IsLoading is true while the first fetch for the key is in flight.
	IsLoading bool
	// IsFetching is true while any fetch, including a background refresh, is in flight.
	IsFetching bool
}

// Idle reports whether nothing has been fetched or requested.
func (r Result) Idle() bool {
	return !r.HasData && r.Err == nil && !r.IsFetching
}

// Typed returns r.Data as T. ok is false when there is no data or it has a
// different type.
func Typed[T any](r Result) (T, bool) {
	var zero T
	if !r.HasData {
		return zero, false
	}
	v, ok := r.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

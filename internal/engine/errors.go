package engine

import (
	"errors"
	"fmt"
)

// ErrStaleCycle is returned when a newer cycle started before this one could apply.
var ErrStaleCycle = errors.New("recompute cycle superseded by a newer one")

// ErrStopped is returned by Dispatch after Stop.
var ErrStopped = errors.New("engine stopped")

// DataFetchError means a cycle was aborted because catalog data could not be
// fetched. The marker set is left as it was.
type DataFetchError struct {
	Source string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

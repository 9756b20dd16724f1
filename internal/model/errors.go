package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing persistent record.
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable indicates the step provider cannot be read,
	// typically missing authorization. Totals read as 0, not as a failure.
	ErrProviderUnavailable = errors.New("step provider unavailable")
	// ErrFetchFailed indicates a transient provider failure. The cache is
	// not written; the caller keeps its previous value.
	ErrFetchFailed = errors.New("step fetch failed")
	// ErrRegressiveUpdate indicates an incoming total below the stored one.
	// The update is rejected and prior state retained.
	ErrRegressiveUpdate = errors.New("regressive step update")
)

// RegressiveUpdateError carries the conflicting totals for logging. It is a
// data-integrity signal (stale provider baseline or clock skew), not a crash.
type RegressiveUpdateError struct {
	Stored   int64
	Incoming int64
}

func (e *RegressiveUpdateError) Error() string {
	return fmt.Sprintf("regressive step update: incoming total %d below stored %d", e.Incoming, e.Stored)
}

func (e *RegressiveUpdateError) Is(target error) bool {
	return target == ErrRegressiveUpdate
}

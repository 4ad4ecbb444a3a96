package report

import "errors"

var (
	// ErrNotFound covers both absence and tenant mismatch; the two must be
	// indistinguishable to the caller.
	ErrNotFound = errors.New("report not found")

	// ErrValidation marks rejected input (unknown entity type, unknown
	// field ids, bad aggregation).
	ErrValidation = errors.New("validation failed")

	// ErrPermissionDenied marks update/delete attempts by an actor who is
	// neither the creator nor an administrator.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrScheduleExists is returned when creating a schedule for a report
	// that already has one bound.
	ErrScheduleExists = errors.New("schedule already exists")

	// ErrScheduleLinkFailed marks the partial-failure case: the external
	// schedule was created but the link-back write to the report failed.
	// The wrapped message carries the orphaned schedule id so the caller
	// can reconcile.
	ErrScheduleLinkFailed = errors.New("schedule created but link failed")
)

package models

import "errors"

var (
	// ErrInvalidArgument rejects malformed input before any transaction is
	// opened (empty or oversized order-line list, non-positive payment).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound reports a legitimately absent warehouse, district,
	// customer, item or stock row; the transaction is aborted with no
	// partial writes.
	ErrNotFound = errors.New("not found")
	// ErrInternalInconsistency reports a broken invariant, e.g. a NewOrder
	// queue entry whose order or order lines are missing. Bug-class, not a
	// client error.
	ErrInternalInconsistency = errors.New("internal inconsistency")
	// ErrStoreUnavailable reports a failure to reach the store or start a
	// transaction; the whole operation is safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsNotFound reports whether err is a client-visible missing-entity error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err is an input validation error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

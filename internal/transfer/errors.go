// Package transfer implements the branch-to-branch stock transfer core: the
// per-branch stock catalog, product lookup, draft building and validation,
// submission, and the transfer status lifecycle. It has no transport or
// rendering dependency; remote collaborators are consumed through the
// interfaces declared in this package.
package transfer

import "errors"

// Validation and lifecycle errors. All are matchable with errors.Is after
// wrapping, so callers can map them to user-facing messages.
var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrDuplicateItem       = errors.New("product already in draft")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrMissingBranches     = errors.New("source and destination branches required")
	ErrSameBranch          = errors.New("source and destination branches must differ")
	ErrEmptyItems          = errors.New("draft has no line items")
	ErrSnapshotUnavailable = errors.New("stock snapshot unavailable")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

package sentinel

import "errors"

// Sentinel errors for persistence and gateway facts. Stores and adapters return
// these (optionally wrapped) so services can translate them into domain errors:
//   - ErrNotFound: record does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidState: record is in the wrong status for the requested transition
//   - ErrUnavailable: backing service unreachable or circuit open
//   - ErrRejected: backing service answered but refused the request
//
// Validation failures are reported with pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrRejected     = errors.New("rejected")
)

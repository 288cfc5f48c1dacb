package apperrors

import "errors"

// Domain entity errors represent missing entities in the local store.
var (
	// ErrBondNotFound indicates that no single bond matches the requested secid.
	ErrBondNotFound = errors.New("bond not found")

	// ErrSnapshotNotFound indicates that a table has never been refreshed.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrEmptySnapshot indicates that a refresh produced no usable rows and
	// was not installed.
	ErrEmptySnapshot = errors.New("refresh produced no rows")
)

// Validation errors
var (
	ErrInvalidSecID  = errors.New("secid is required")
	ErrQueryTooShort = errors.New("search query is too short")
)

// Operation failure errors represent system-level failures. Callers get the
// safe empty value together with one of these.
var (
	ErrSearchFailed            = errors.New("failed to search bonds")
	ErrFailedToRetrieveBond    = errors.New("failed to retrieve bond")
	ErrFailedToFetchSecurities = errors.New("failed to fetch securities")
	ErrFailedToFetchMarketData = errors.New("failed to fetch market data")
	ErrFailedToStoreSnapshot   = errors.New("failed to store snapshot")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., the same secid is stored more than once).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)

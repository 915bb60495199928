package models

import "errors"

// Error taxonomy for tool handlers. All of these are caught at the dispatch
// boundary and converted to a {ok:false, errorMessage} envelope; none
// propagate as uncaught faults to the caller.
var (
	// ErrPersonNotFound means a named filter person could not be resolved.
	// It fails the whole search; partially applied person filters would
	// silently broaden the result.
	ErrPersonNotFound = errors.New("person not found")

	// ErrInvalidDateRange means a date filter could not be parsed. The date
	// filter is skipped, not fatal; logged for visibility.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNoSourceAvailable means the declared source set for a mutation is
	// empty.
	ErrNoSourceAvailable = errors.New("no source photos available")

	// ErrUnsupportedPlatform means the mutation needs a consent capability
	// the underlying library does not provide.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrUnknownFilterValue means an unrecognized filter name was passed to
	// an apply-filter style operation.
	ErrUnknownFilterValue = errors.New("unknown filter value")

	// ErrUnknownToken means a consent resolution referenced a token that
	// does not exist, already resolved, or expired.
	ErrUnknownToken = errors.New("unknown consent token")
)

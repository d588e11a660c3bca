package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidBaseURL is returned when the base URL is empty or not absolute.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no fetching at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	// A zero or negative timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is not
	// positive. Every task must be attempted at least once.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be positive")

	// ErrInvalidBackoff is returned when the backoff base or cap is not
	// positive, or the cap is smaller than the base.
	ErrInvalidBackoff = errors.New("invalid backoff: base and cap must be positive and cap >= base")

	// ErrInvalidPlaceholder is returned when the missing-data placeholder is
	// empty. An empty placeholder would violate the no-empty-cell invariant.
	ErrInvalidPlaceholder = errors.New("invalid placeholder: must not be empty")

	// ErrInvalidOutputPath is returned when the output file path is empty.
	ErrInvalidOutputPath = errors.New("invalid output path: must not be empty")

	// ErrUnknownFormat is returned for an output format other than xlsx or csv.
	ErrUnknownFormat = errors.New("unknown output format: must be xlsx or csv")
)

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
	// ErrNoStartPage is returned when no start page is given and neither a
	// random start nor a continuous run was requested.
	ErrNoStartPage = errors.New("no start page specified: provide a start page or use --random or --continuous")

	// ErrConflictingStart is returned when a start page is given together
	// with --random or --continuous.
	ErrConflictingStart = errors.New("conflicting start: a start page cannot be combined with --random or --continuous")

	// ErrInvalidIterations is returned for a negative number of rounds, or
	// for zero rounds outside a continuous run.
	ErrInvalidIterations = errors.New("invalid iterations: must be positive (0 = unlimited with --continuous)")

	// ErrRepeatedStart is returned when several rounds would all start
	// from the same fixed page.
	ErrRepeatedStart = errors.New("repeated start: several iterations need --random or --continuous instead of a start page")

	// ErrQueueNeedsContinuous is returned when start pages are queued
	// without a continuous run to work them off.
	ErrQueueNeedsContinuous = errors.New("queued starts need --continuous")

	// ErrNoTarget is returned when no target page is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one target page")

	// ErrInvalidMaxDepth is returned when the maximum depth is less than one.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be at least 1")

	// ErrInvalidMaxPages is returned when the fetch ceiling is negative.
	// Use 0 for no ceiling.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidRetryLimit is returned when the retry limit is negative.
	ErrInvalidRetryLimit = errors.New("invalid retry limit: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidConcurrency is returned when the number of concurrent
	// searches is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidCacheMaxAge is returned when the cache age is negative.
	ErrInvalidCacheMaxAge = errors.New("invalid cache max age: must be non-negative")
)

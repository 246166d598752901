// Package errs defines the sentinel error taxonomy shared by every
// schemasteer component, wrapped with [fmt.Errorf]'s %w verb so callers can
// classify failures with [errors.Is] rather than string matching.
package errs

import "errors"

// Sentinel errors identifying the broad class of a failure. Components wrap
// these with [fmt.Errorf]'s %w verb so callers can classify failures with
// [errors.Is] without string matching.
var (
	// ErrNoValidTokens is fatal for the current decoding step: the key-string
	// trie rule produced an empty allow set.
	ErrNoValidTokens = errors.New("no valid tokens")
	// ErrInvalidTokenSelected means the runtime sampled a token the mask
	// did not offer.
	ErrInvalidTokenSelected = errors.New("invalid token selected")
	// ErrEmptyConstraints is non-fatal: a hint was requested but produced
	// no constraint (e.g. a schema node resolved to nil).
	ErrEmptyConstraints = errors.New("empty constraints")
	// ErrSchemaViolation marks a schema construction or traversal problem
	// that does not abort generation.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrValidationFailed wraps a post-generation validation failure.
	ErrValidationFailed = errors.New("validation failed")
	// ErrStreamBufferExceeded means the bounded retry buffer overflowed.
	ErrStreamBufferExceeded = errors.New("stream buffer exceeded")
	// ErrCanceled marks a caller-initiated cancellation.
	ErrCanceled = errors.New("canceled")
	// ErrBackendFailure wraps an error from the tokenizer or other external
	// collaborator.
	ErrBackendFailure = errors.New("backend failure")

	// ErrInvalidOption is returned by configuration constructors given a
	// malformed value.
	ErrInvalidOption = errors.New("invalid option")
	// ErrInvalidSchema is returned when a schema document cannot be parsed
	// or violates a core invariant (e.g. required not a subset of
	// properties).
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrReadInput wraps a failure reading CLI input (a schema file, a
	// prompt file, stdin).
	ErrReadInput = errors.New("read input")
	// ErrWriteOutput wraps a failure writing CLI output.
	ErrWriteOutput = errors.New("write output")
)

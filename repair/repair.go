// Package repair wraps a single "generate one response" attempt with a
// bounded retry policy on validation failure, a bounded buffer for streamed
// partial text, and cancellation propagation.
package repair

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/latticeforge/schemasteer/internal/errs"
)

// DefaultStreamBufferLimitBytes is the default streamed-text buffer bound
// (2 MiB).
const DefaultStreamBufferLimitBytes = 2 * 1 << 20

// DefaultRetryMaxTries is the default number of retries after an initial
// failed attempt.
const DefaultRetryMaxTries = 2

// Config controls retry and buffering behavior.
type Config struct {
	// RetryMaxTries bounds the number of further attempts made after the
	// first, on validation failure: the total number of generation attempts
	// is 1+RetryMaxTries. Default [DefaultRetryMaxTries].
	RetryMaxTries int
	// StreamBufferLimitBytes bounds the accumulated partial-text buffer
	// across one attempt's streamed chunks. Default
	// [DefaultStreamBufferLimitBytes].
	StreamBufferLimitBytes int
	// Seeded, when true, means the caller supplied a fixed sampling seed:
	// retries would reproduce the identical failure, since a fixed seed
	// makes sampling deterministic, so the loop makes exactly one attempt.
	Seeded bool
}

// DefaultConfig returns the package's default retry and buffering settings.
func DefaultConfig() Config {
	return Config{
		RetryMaxTries:          DefaultRetryMaxTries,
		StreamBufferLimitBytes: DefaultStreamBufferLimitBytes,
		Seeded:                 false,
	}
}

// Attempt runs one "generate one response" call, streaming text chunks to
// emit as they are produced. It should return ctx.Err() promptly if ctx is
// canceled mid-stream.
type Attempt func(ctx context.Context, emit func(chunk string) error) error

// Validate checks accumulated generated text against the target schema. It
// should return an error (typically wrapping [errs.ErrValidationFailed])
// on failure, nil on success.
type Validate func(text string) error

// Result is the successful outcome of [Run].
type Result struct {
	Text  string
	Tries int
}

// Run drives attempt up to 1+cfg.RetryMaxTries times in total (or once, if
// cfg.Seeded), validating the accumulated text after each attempt with
// validateText and retrying on validation failure. ctx cancellation aborts
// immediately, surfaced as [errs.ErrCanceled]; a streamed attempt whose
// accumulated text exceeds cfg.StreamBufferLimitBytes aborts as
// [errs.ErrStreamBufferExceeded].
func Run(ctx context.Context, cfg Config, attempt Attempt, validateText Validate) (Result, error) {
	retries := cfg.RetryMaxTries
	if retries < 0 {
		retries = 0
	}

	maxTries := 1 + retries

	if cfg.Seeded {
		maxTries = 1
	}

	limit := cfg.StreamBufferLimitBytes
	if limit <= 0 {
		limit = DefaultStreamBufferLimitBytes
	}

	var lastErr error

	for try := 1; try <= maxTries; try++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %w", errs.ErrCanceled, err)
		}

		text, err := runOneAttempt(ctx, limit, attempt)
		if err != nil {
			if errors.Is(err, errs.ErrStreamBufferExceeded) {
				return Result{}, err
			}

			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("%w: %w", errs.ErrCanceled, ctx.Err())
			}

			lastErr = fmt.Errorf("%w: %w", errs.ErrBackendFailure, err)

			continue
		}

		if verr := validateText(text); verr != nil {
			lastErr = verr
			continue
		}

		return Result{Text: text, Tries: try}, nil
	}

	if lastErr == nil {
		lastErr = errs.ErrValidationFailed
	}

	return Result{}, fmt.Errorf("%w: exhausted %d tries: %w", errs.ErrValidationFailed, maxTries, lastErr)
}

func runOneAttempt(ctx context.Context, limit int, attempt Attempt) (string, error) {
	var buf strings.Builder

	emit := func(chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if buf.Len()+len(chunk) > limit {
			return errs.ErrStreamBufferExceeded
		}

		buf.WriteString(chunk)

		return nil
	}

	if err := attempt(ctx, emit); err != nil {
		return "", err
	}

	return buf.String(), nil
}

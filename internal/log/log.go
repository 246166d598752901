// Package log provides structured logging handler construction for use
// with [log/slog].
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt],
// [FormatText]) and severity levels ([LevelError], [LevelWarn],
// [LevelInfo], [LevelDebug]). Use [NewHandler] directly, or [Config] for
// CLI flag integration via [github.com/spf13/pflag] and shell completion
// via [github.com/spf13/cobra].
//
// A [Publisher] fans log output out to multiple subscribers, used by
// cmd/schemasteer's watch TUI to display live decode state alongside
// ordinary log output.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level names a severity understood by the decode engine's CLI, narrowed to
// the four levels [log/slog] distinguishes.
type Level string

// Severity levels.
const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

// Format names a [slog.Handler] output encoding.
type Format string

// Output formats.
const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
	FormatText   Format = "text"
)

// Sentinel errors.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// ParseLevel parses a case-insensitive level string, accepting "warning" as
// an alias for [LevelWarn].
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", ErrUnknownLogLevel
}

// ParseFormat parses a case-insensitive format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatLogfmt:
		return FormatLogfmt, nil
	case FormatText:
		return FormatText, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllLevelStrings returns every accepted level string, for shell
// completion.
func GetAllLevelStrings() []string {
	return []string{string(LevelError), string(LevelWarn), string(LevelInfo), string(LevelDebug)}
}

// GetAllFormatStrings returns every accepted format string, for shell
// completion.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt), string(FormatText)}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds a [slog.Handler] writing to w at level, encoded as
// format. FormatLogfmt includes source location; FormatText omits it for a
// terser human-facing line.
func NewHandler(w io.Writer, level Level, format Format) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: level.slogLevel()})
	case FormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: false, Level: level.slogLevel()})
	default: // FormatLogfmt
		return slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true, Level: level.slogLevel()})
	}
}

// NewHandlerFromStrings parses levelStr/formatStr and builds a handler, per
// [ParseLevel]/[ParseFormat]. Errors are wrapped in [ErrInvalidArgument].
func NewHandlerFromStrings(w io.Writer, levelStr, formatStr string) (slog.Handler, error) {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, level, format), nil
}

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvLevel is the environment variable consulted by [ConfigFromEnv].
const EnvLevel = "LOG_LEVEL"

// Flags holds CLI flag names for log configuration.
type Flags struct {
	Level  string
	Format string
}

// NewConfig creates a [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds CLI flag values for log configuration. Create with
// [NewConfig], register flags with [Config.RegisterFlags], then build a
// handler with [Config.NewHandler].
type Config struct {
	Level  string
	Format string
	Flags  Flags
}

// NewConfig returns a Config with the default flag names "log-level" and
// "log-format".
func NewConfig() *Config {
	return Flags{Level: "log-level", Format: "log-format"}.NewConfig()
}

// RegisterFlags adds logging flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, string(LevelInfo),
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, string(FormatText),
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	if err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp)); err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}

	if err := cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp)); err != nil {
		return fmt.Errorf("registering log-format completion: %w", err)
	}

	return nil
}

// NewHandler builds a [slog.Handler] writing to w using c's level/format.
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	return NewHandlerFromStrings(w, c.Level, c.Format)
}

// ConfigFromEnv applies the [EnvLevel] environment variable to c.Level,
// called after flags is parsed. The flag takes precedence over the
// environment: the environment variable only applies when the caller never
// passed the level flag explicitly (flags.Changed(c.Flags.Level) is
// false). An unset or invalid environment value leaves c.Level untouched.
func (c *Config) ConfigFromEnv(flags *pflag.FlagSet) {
	if flags != nil && flags.Changed(c.Flags.Level) {
		return
	}

	raw, ok := os.LookupEnv(EnvLevel)
	if !ok {
		return
	}

	if _, err := ParseLevel(raw); err != nil {
		return
	}

	c.Level = raw
}

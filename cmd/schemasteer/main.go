// Package main provides the schemasteer CLI: given a JSON Schema document
// and a prompt, it drives a simulated token-by-token decode constrained to
// the schema's shape, validates the result against the schema, and prints
// the resulting JSON. Runs are seeded, so a failed validation is reported
// rather than retried.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticeforge/schemasteer/internal/buildinfo"
	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/internal/log"
	"github.com/latticeforge/schemasteer/internal/profile"
	"github.com/latticeforge/schemasteer/repair"
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/validate"
)

// rootConfig is the configuration shared by the generate and watch
// subcommands: where the schema document lives, what prompt to encode, and
// how sampling and retries behave.
type rootConfig struct {
	schemaPath string
	prompt     string
	seed       uint64
	maxTokens  int
	output     string

	logCfg     *log.Config
	profileCfg *profile.Config
}

func main() {
	os.Exit(runCLI())
}

func runCLI() int {
	rc := &rootConfig{
		logCfg:     log.NewConfig(),
		profileCfg: profile.NewConfig(),
	}

	rootCmd := &cobra.Command{
		Use:           "schemasteer",
		Short:         "Drive schema-constrained token decoding from the command line",
		Version:       buildinfo.Summary("schemasteer"),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rc.logCfg.ConfigFromEnv(cmd.Flags())

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&rc.schemaPath, "schema", "", "path to a JSON or YAML schema document (required)")
	rootCmd.PersistentFlags().StringVar(&rc.prompt, "prompt", "", "prompt text encoded ahead of the generated tokens")
	rootCmd.PersistentFlags().Uint64Var(&rc.seed, "seed", 1, "sampling seed for the simulated model")
	rootCmd.PersistentFlags().IntVar(&rc.maxTokens, "max-tokens", 512, "maximum tokens to sample per attempt")
	rootCmd.PersistentFlags().StringVar(&rc.output, "output", "-", "output path, or \"-\" for stdout")
	rc.logCfg.RegisterFlags(rootCmd.PersistentFlags())
	rc.profileCfg.RegisterFlags(rootCmd.PersistentFlags())

	if err := rc.logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register log completions: %v\n", err)
	}

	if err := rc.profileCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register profile completions: %v\n", err)
	}

	rootCmd.AddCommand(newGenerateCommand(rc))
	rootCmd.AddCommand(newWatchCommand(rc))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		return 1
	}

	return 0
}

// loadSchema dispatches on path's extension: ".yaml"/".yml" documents are
// parsed with [schema.LoadYAMLConfigFile], everything else with
// [schema.LoadFile].
func loadSchema(path string) (*schema.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: --schema is required", errs.ErrInvalidOption)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.LoadYAMLConfigFile(path)
	default:
		return schema.LoadFile(path)
	}
}

// withProfiling starts rc's profiler (if any output path was set), runs fn,
// and stops the profiler, returning whichever error occurred first.
func withProfiling(rc *rootConfig, fn func() error) error {
	profiler := rc.profileCfg.NewProfiler()

	if err := profiler.Start(); err != nil {
		return fmt.Errorf("start profiling: %w", err)
	}

	fnErr := fn()

	if err := profiler.Stop(); err != nil && fnErr == nil {
		return fmt.Errorf("stop profiling: %w", err)
	}

	return fnErr
}

func newGenerateCommand(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate one schema-constrained response and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProfiling(rc, func() error {
				return runGenerate(cmd.Context(), rc)
			})
		},
	}
}

func runGenerate(ctx context.Context, rc *rootConfig) error {
	model, err := loadSchema(rc.schemaPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrReadInput, err)
	}

	eng, err := buildEngine(model)
	if err != nil {
		return err
	}

	cfg := runConfig{
		seed:       rc.seed,
		maxTokens:  rc.maxTokens,
		promptText: rc.prompt,
		repairConfig: repair.Config{
			RetryMaxTries:          repair.DefaultRetryMaxTries,
			StreamBufferLimitBytes: repair.DefaultStreamBufferLimitBytes,
			Seeded:                 true,
		},
		validate: validate.DefaultOptions(),
	}

	result, err := run(ctx, eng, cfg, nil)
	if err != nil {
		return err
	}

	return writeOutput(rc.output, result.Text)
}

func writeOutput(path, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if path == "" || path == "-" {
		if _, err := os.Stdout.WriteString(text); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrWriteOutput, err)
		}

		return nil
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { //nolint:gosec,mnd // Output file, not a secret.
		return fmt.Errorf("%w: %w", errs.ErrWriteOutput, err)
	}

	return nil
}

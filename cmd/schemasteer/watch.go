package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/internal/log"
	"github.com/latticeforge/schemasteer/internal/watch"
	"github.com/latticeforge/schemasteer/repair"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/validate"
)

func newWatchCommand(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Generate while showing a live decode-state and log view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProfiling(rc, func() error {
				return runWatch(cmd.Context(), rc)
			})
		},
	}
}

// runWatch builds the engine, fans its log output through a [log.Publisher]
// instead of directly to stderr, and runs the generation attempt in a
// goroutine while a [watch.Model] Bubble Tea program renders the publisher's
// log lines alongside the processor's live [processor.Processor.DebugState].
func runWatch(ctx context.Context, rc *rootConfig) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%w: watch requires an interactive terminal on stdout", errs.ErrInvalidOption)
	}

	model, err := loadSchema(rc.schemaPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrReadInput, err)
	}

	eng, err := buildEngine(model)
	if err != nil {
		return err
	}

	pub := log.NewPublisher()
	defer pub.Close()

	handler, err := rc.logCfg.NewHandler(pub)
	if err != nil {
		return fmt.Errorf("build log handler: %w", err)
	}

	logger := slog.New(handler)

	stateFn := func() (string, bool) {
		s := eng.proc.DebugState()

		return s, s != ""
	}

	watchModel := watch.New(pub, stateFn, 0)
	program := tea.NewProgram(watchModel)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan error, 1)

	go func() {
		resultCh <- watchAttempt(runCtx, eng, rc, logger)
	}()

	if _, err := program.Run(); err != nil {
		cancel()

		return fmt.Errorf("run watch view: %w", err)
	}

	cancel()

	return <-resultCh
}

func watchAttempt(ctx context.Context, eng *engine, rc *rootConfig, logger *slog.Logger) error {
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

	onToken := func(tok tokenizer.TokenID, text string) {
		logger.Info("sampled token", "id", tok, "text", text)
	}

	result, err := run(ctx, eng, cfg, onToken)
	if err != nil {
		logger.Error("generation failed", "error", err)

		return err
	}

	logger.Info("generation complete", "tries", result.Tries)

	return writeOutput(rc.output, result.Text)
}

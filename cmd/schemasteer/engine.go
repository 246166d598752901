package main

import (
	"context"
	"fmt"

	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/internal/toymodel"
	"github.com/latticeforge/schemasteer/maskhint"
	"github.com/latticeforge/schemasteer/processor"
	"github.com/latticeforge/schemasteer/repair"
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/schemaindex"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
	"github.com/latticeforge/schemasteer/validate"
)

// engine bundles the per-schema pieces a run needs: the stub tokenizer
// sized to the schema's own key vocabulary, the per-object key trie index,
// and the Processor that ties the mask generator into Prompt/Process/DidSample.
type engine struct {
	model *schema.Model
	tok   *tokenizer.Stub
	proc  *processor.Processor
}

// buildEngine constructs an [engine] for model: a [tokenizer.Stub] seeded
// with every Object property name in model (so the key trie matches keys
// token-for-token), the discovered special/value-starter token classes, the
// per-object [schemaindex.Index], and a fresh [processor.Processor].
func buildEngine(model *schema.Model) (*engine, error) {
	tok := tokenizer.NewStub(collectKeys(model)...)

	special, err := tokenizer.DiscoverSpecialTokens(tok)
	if err != nil {
		return nil, fmt.Errorf("discover special tokens: %w", err)
	}

	starters, err := tokenizer.DiscoverValueStarters(tok)
	if err != nil {
		return nil, fmt.Errorf("discover value starters: %w", err)
	}

	eos, hasEOS := tok.EOSTokenID()
	gen := maskhint.New(special, starters, eos, hasEOS)

	idx, err := schemaindex.Build(model, "stub", tok, trie.NewBuilder(0))
	if err != nil {
		return nil, fmt.Errorf("build schema index: %w", err)
	}

	return &engine{
		model: model,
		tok:   tok,
		proc:  processor.New(model, idx, tok, gen),
	}, nil
}

// collectKeys walks model depth-first and returns every Object node's
// property names, deduplicated, so the stub tokenizer can mint one
// dedicated token per key regardless of how deeply it is nested.
func collectKeys(model *schema.Model) []string {
	seen := make(map[string]bool)

	var keys []string

	var walk func(id schema.NodeID)

	walk = func(id schema.NodeID) {
		n := model.Node(id)

		switch n.Kind {
		case schema.KindObject:
			for _, name := range n.PropertyOrder {
				if !seen[name] {
					seen[name] = true

					keys = append(keys, name)
				}

				if propID, ok := model.PropertyNode(id, name); ok {
					walk(propID)
				}
			}

		case schema.KindArray:
			if itemID, ok := model.ItemsNode(id); ok {
				walk(itemID)
			}
		}
	}

	if model.Valid() {
		walk(model.Root())
	}

	return keys
}

// runConfig controls one generate attempt's sampling and retry behavior.
type runConfig struct {
	seed         uint64
	maxTokens    int
	promptText   string
	repairConfig repair.Config
	validate     validate.Options
}

// run drives the repair loop over eng: the prompt is encoded once, each
// attempt resets eng.proc with it, samples up to cfg.maxTokens tokens through a
// [toymodel.Model] masked by eng.proc.Process, and feeds accumulated text
// to [validate.Validate] via [repair.Run].
func run(ctx context.Context, eng *engine, cfg runConfig, onToken func(tok tokenizer.TokenID, text string)) (repair.Result, error) {
	vocabSize, ok := eng.tok.VocabSize()
	if !ok {
		return repair.Result{}, fmt.Errorf("%w: stub tokenizer has no vocab size", errs.ErrBackendFailure)
	}

	promptToks, err := eng.tok.Encode(cfg.promptText)
	if err != nil {
		return repair.Result{}, fmt.Errorf("%w: encode prompt: %w", errs.ErrBackendFailure, err)
	}

	eosID, hasEOS := eng.tok.EOSTokenID()

	attempt := func(ctx context.Context, emit func(chunk string) error) error {
		mdl := toymodel.New(vocabSize, cfg.seed)

		eng.proc.Prompt(promptToks)

		for range cfg.maxTokens {
			if err := ctx.Err(); err != nil {
				return err
			}

			logits, err := eng.proc.Process(mdl.NextLogits())
			if err != nil {
				return err
			}

			idx := mdl.Sample(logits)
			if idx < 0 {
				return errs.ErrNoValidTokens
			}

			tok := tokenizer.TokenID(idx)
			if hasEOS && tok == eosID {
				break
			}

			if err := eng.proc.DidSample(tok); err != nil {
				return err
			}

			text, err := eng.tok.DecodeOne(tok)
			if err != nil {
				return fmt.Errorf("%w: decode sampled token: %w", errs.ErrBackendFailure, err)
			}

			if onToken != nil {
				onToken(tok, text)
			}

			if err := emit(text); err != nil {
				return err
			}
		}

		return nil
	}

	validateText := func(text string) error {
		_, err := validate.Validate(text, eng.model, cfg.validate)
		return err
	}

	return repair.Run(ctx, cfg.repairConfig, attempt, validateText)
}

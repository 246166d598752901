// Package processor implements the per-request engine that ties the JSON
// automaton ([jsonstate]), the context cursor ([cursor]), the key trie
// ([trie] via [schemaindex]), and the mask generator ([maskhint]) into the
// three calls a host runtime drives a generation loop with: Prompt,
// Process, DidSample.
package processor

import (
	"fmt"
	"math"
	"sync"

	"github.com/latticeforge/schemasteer/cursor"
	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/jsonstate"
	"github.com/latticeforge/schemasteer/maskhint"
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/schemaindex"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
)

// maxConsecutiveViolations is the threshold of consecutive failed trie
// advances before the trie path is snapped back to the active object's
// root.
const maxConsecutiveViolations = 2

// Processor is the single-writer engine for one schema-constrained
// generation request. A Processor is reused across requests via repeated
// [Processor.Prompt] calls, which reset all per-request state; it is not
// safe to call Prompt/Process/DidSample concurrently with each other, but
// [Processor.Process] may safely run concurrently with an ongoing sample of
// a prior step, since it only reads an internally synchronized snapshot.
type Processor struct {
	model *schema.Model
	index *schemaindex.Index
	tok   tokenizer.Adapter
	hint  *maskhint.Generator

	mu sync.Mutex

	machine    *jsonstate.Machine
	ctx        *cursor.Cursor
	triePath   trie.Path
	hasTrie    bool
	violations int
	generated  []tokenizer.TokenID
	promptToks []tokenizer.TokenID

	// emittedKeys mirrors [cursor.Cursor]'s frame stack: one entry per open
	// container, in the same push/pop order as [cursor.Cursor.OpenObject],
	// [cursor.Cursor.OpenArray], and [cursor.Cursor.CloseContainer]. Object
	// frames hold the keys emitted so far in that object; array frames hold
	// nil, since key-emission tracking is meaningless inside an array.
	emittedKeys []map[string]bool

	err error
}

// New returns a Processor over model, using index to resolve per-object key
// tries and gen to turn phase/cursor/trie state into mask hints.
func New(model *schema.Model, index *schemaindex.Index, tok tokenizer.Adapter, gen *maskhint.Generator) *Processor {
	return &Processor{model: model, index: index, tok: tok, hint: gen}
}

// Prompt resets all per-request state: the JSON automaton, the context
// cursor, the key trie path, the violation counter, the generated-token
// log, and any sticky error, and records promptTokens. The trie path is
// reset to the root object's key trie, if the schema root is an object.
func (p *Processor) Prompt(promptTokens []tokenizer.TokenID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.promptToks = append([]tokenizer.TokenID(nil), promptTokens...)
	p.machine = jsonstate.New()
	p.ctx = cursor.New(p.model)
	p.violations = 0
	p.generated = nil
	p.emittedKeys = nil
	p.err = nil
	p.hasTrie = false

	if p.model.Valid() && p.model.Node(p.model.Root()).Kind == schema.KindObject {
		if t, ok := p.index.Trie(p.model.Root()); ok {
			p.triePath = t.Root()
			p.hasTrie = true
		}
	}
}

// snapshot is the immutable, lock-free-to-read state [Processor.Process]
// derives a mask from, taken once under the Processor's mutex.
type snapshot struct {
	phase              jsonstate.Phase
	objectTrieNonEmpty bool
	requiredSatisfied  bool
	triePath           trie.Path
	valueKind          schema.Kind
}

func (p *Processor) takeSnapshot() snapshot {
	s := snapshot{phase: p.machine.Phase(), valueKind: schema.KindAny}

	if objID, ok := p.ctx.CurrentObject(); ok {
		if t, ok := p.index.Trie(objID); ok {
			s.objectTrieNonEmpty = !t.Empty()
		}

		s.requiredSatisfied = p.model.Node(objID).RequiredSatisfied(p.emittedKeysForObject())
	}

	if p.hasTrie {
		s.triePath = p.triePath
	}

	if node, ok := p.ctx.CurrentValueSchema(); ok {
		s.valueKind = node.Kind
	}

	return s
}

// emittedKeysForObject returns the emitted-key set for the innermost open
// object frame, or nil if we are not inside an object. Scoped per frame so
// that returning from a nested object's value to its parent does not leave
// the parent's required-satisfaction check reading the nested object's keys.
func (p *Processor) emittedKeysForObject() map[string]bool {
	if len(p.emittedKeys) == 0 {
		return nil
	}

	return p.emittedKeys[len(p.emittedKeys)-1]
}

// Process consults the mask generator for the current snapshot and applies
// the resulting [maskhint.Hint] to logits in place. If no hint applies,
// logits is returned unchanged. If the mask generator hits a dead end
// (e.g. [errs.ErrNoValidTokens]), Process still boosts EOS in logits before
// returning the error, so a runtime that keeps sampling after an error sees
// a step steered toward terminating rather than untouched logits. Once set,
// the sticky error makes every subsequent call return the same EOS-only
// logits and error without consulting the mask generator again. Safe to
// call concurrently with [Processor.DidSample] of a prior step, since only
// the snapshot taken under the mutex is read.
func (p *Processor) Process(logits []float32) ([]float32, error) {
	p.mu.Lock()
	snap := p.takeSnapshot()
	sticky := p.err
	p.mu.Unlock()

	if sticky != nil {
		if eos := p.hint.EOSOnlyHint(); eos.Present {
			applyHint(logits, eos)
		}

		return logits, sticky
	}

	h, err := p.hint.Hint(maskhint.Input{
		Phase:              snap.phase,
		ObjectTrieNonEmpty: snap.objectTrieNonEmpty,
		RequiredSatisfied:  snap.requiredSatisfied,
		TriePath:           snap.triePath,
		ValueKind:          snap.valueKind,
	})
	if err != nil {
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()

		if eos := p.hint.EOSOnlyHint(); eos.Present {
			applyHint(logits, eos)
		}

		return logits, err
	}

	if !h.Present {
		return logits, nil
	}

	applyHint(logits, h)

	return logits, nil
}

func applyHint(logits []float32, h maskhint.Hint) {
	switch h.Mode {
	case maskhint.ModeHard:
		allow := make(map[tokenizer.TokenID]bool, len(h.Allow))
		for _, id := range h.Allow {
			allow[id] = true
		}

		for i := range logits {
			if !allow[tokenizer.TokenID(i)] {
				logits[i] = float32(math.Inf(-1))
			}
		}

	case maskhint.ModeSoft:
		for _, id := range h.Allow {
			if int(id) >= 0 && int(id) < len(logits) {
				logits[id] += maskhint.MicroBias
			}
		}
	}
}

// DidSample records a sampled token, replays its decoded characters through
// the JSON automaton and context cursor, and (if still inside a key string)
// advances the trie path by the token ID itself -- exactly once per sampled
// token, never per character.
func (p *Processor) DidSample(tok tokenizer.TokenID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generated = append(p.generated, tok)

	text, err := p.tok.DecodeOne(tok)
	if err != nil {
		p.err = fmt.Errorf("%w: decode sampled token: %w", errs.ErrBackendFailure, err)
		return p.err
	}

	for _, r := range text {
		ev := p.machine.Feed(r)
		p.applyEvent(ev)
	}

	if p.machine.Phase().Kind == jsonstate.KindInString && p.machine.Phase().StringKind == jsonstate.StringKey {
		p.advanceTrie(tok)
	}

	if p.machine.Phase().Kind == jsonstate.KindError {
		p.err = fmt.Errorf("%w: token %d produced invalid JSON", errs.ErrInvalidTokenSelected, tok)
		return p.err
	}

	return nil
}

func (p *Processor) applyEvent(ev jsonstate.Event) {
	switch ev.Kind {
	case jsonstate.EventOpenObject:
		p.ctx.OpenObject()
		p.emittedKeys = append(p.emittedKeys, make(map[string]bool))
		p.resetTrieToCurrentObject()

	case jsonstate.EventOpenArray:
		p.ctx.OpenArray()
		p.emittedKeys = append(p.emittedKeys, nil)

	case jsonstate.EventKeyComplete:
		p.ctx.KeyComplete(ev.Key)

		if n := len(p.emittedKeys); n > 0 && p.emittedKeys[n-1] != nil {
			p.emittedKeys[n-1][ev.Key] = true
		}

		p.resetTrieToCurrentObject()

	case jsonstate.EventCloseContainer:
		p.ctx.CloseContainer()

		if n := len(p.emittedKeys); n > 0 {
			p.emittedKeys = p.emittedKeys[:n-1]
		}

		p.resetTrieToCurrentObject()
	}
}

func (p *Processor) resetTrieToCurrentObject() {
	objID, ok := p.ctx.CurrentObject()
	if !ok {
		p.hasTrie = false
		return
	}

	t, ok := p.index.Trie(objID)
	if !ok {
		p.hasTrie = false
		return
	}

	p.triePath = t.Root()
	p.hasTrie = true
}

func (p *Processor) advanceTrie(tok tokenizer.TokenID) {
	if !p.hasTrie {
		return
	}

	next, ok := p.triePath.Advance(tok)
	if !ok {
		p.violations++

		if p.violations >= maxConsecutiveViolations {
			p.resetTrieToCurrentObject()
			p.violations = 0
		}

		return
	}

	p.triePath = next
	p.violations = 0
}

// DebugState returns a one-line description of the processor's current
// phase, nesting depth, and violation count, for CLI/TUI display.
func (p *Processor) DebugState() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.machine == nil {
		return "unprompted"
	}

	return fmt.Sprintf("phase=%s depth=%d violations=%d generated=%d",
		p.machine.Phase().String(), p.machine.Depth(), p.violations, len(p.generated))
}

// Err returns the sticky per-request error, if any, set by [Processor.Process]
// or [Processor.DidSample].
func (p *Processor) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Generated returns a copy of every token sampled since the last [Processor.Prompt].
func (p *Processor) Generated() []tokenizer.TokenID {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]tokenizer.TokenID(nil), p.generated...)
}

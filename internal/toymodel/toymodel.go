// Package toymodel stands in for the forward pass of a real language
// model: given a vocabulary size, it produces one logits vector per
// decoding step. It never looks at the prompt or prior tokens -- all the
// interesting behavior in a schema-constrained decode comes from
// [github.com/latticeforge/schemasteer/processor.Processor] biasing these
// logits, not from the "model" itself -- so a toy model exercising the
// engine end to end needs only to be a deterministic source of noise.
package toymodel

import (
	"math"
	"math/rand/v2"
)

// Model produces logits for a fixed-size vocabulary, seeded for
// reproducibility across runs with the same seed.
type Model struct {
	rng       *rand.Rand
	vocabSize int
}

// New returns a Model over vocabSize token IDs, seeded by seed. The same
// seed always yields the same sequence of [Model.NextLogits] results.
func New(vocabSize int, seed uint64) *Model {
	return &Model{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		vocabSize: vocabSize,
	}
}

// NextLogits returns a freshly allocated logits vector of length
// vocabSize, each entry an independent standard-normal sample.
func (m *Model) NextLogits() []float32 {
	out := make([]float32, m.vocabSize)
	for i := range out {
		out[i] = float32(m.rng.NormFloat64())
	}

	return out
}

// Sample draws a token index from logits via softmax, honoring -Inf
// entries (probability zero) the way a real sampler honors a masked
// logits tensor. Returns -1 if every entry is -Inf.
func (m *Model) Sample(logits []float32) int {
	maxLogit := float32(math.Inf(-1))

	for _, l := range logits {
		if l > maxLogit {
			maxLogit = l
		}
	}

	if math.IsInf(float64(maxLogit), -1) {
		return -1
	}

	weights := make([]float64, len(logits))

	var total float64

	for i, l := range logits {
		w := math.Exp(float64(l - maxLogit))
		weights[i] = w
		total += w
	}

	target := m.rng.Float64() * total

	var cumulative float64

	for i, w := range weights {
		cumulative += w
		if target <= cumulative {
			return i
		}
	}

	return len(weights) - 1
}

package buildinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticeforge/schemasteer/internal/buildinfo"
)

func TestSummaryIncludesAppNameAndFallsBackToDev(t *testing.T) {
	t.Parallel()

	orig := buildinfo.Version
	t.Cleanup(func() { buildinfo.Version = orig })

	buildinfo.Version = ""

	s := buildinfo.Summary("schemasteer")
	assert.Contains(t, s, "schemasteer")
	assert.Contains(t, s, "dev")
	assert.Contains(t, s, buildinfo.GoVersion)
}

func TestSummaryUsesExplicitVersion(t *testing.T) {
	t.Parallel()

	orig := buildinfo.Version
	t.Cleanup(func() { buildinfo.Version = orig })

	buildinfo.Version = "1.2.3"

	s := buildinfo.Summary("schemasteer")
	assert.Contains(t, s, "1.2.3")
}

package watch

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/internal/log"
)

func newTestModel() *Model {
	pub := log.NewPublisher()

	return New(pub, func() (string, bool) { return "", false }, time.Millisecond)
}

func TestModelAppendsLogLines(t *testing.T) {
	t.Parallel()

	m := newTestModel()

	updated, cmd := m.Update(logLineMsg{line: "hello", ok: true})
	require.NotNil(t, cmd)

	got, ok := updated.(*Model)
	require.True(t, ok)
	assert.Equal(t, []string{"hello"}, got.lines)
}

func TestModelIgnoresClosedSubscription(t *testing.T) {
	t.Parallel()

	m := newTestModel()

	updated, cmd := m.Update(logLineMsg{ok: false})
	assert.Nil(t, cmd)

	got, ok := updated.(*Model)
	require.True(t, ok)
	assert.Empty(t, got.lines)
}

func TestModelTruncatesToMaxLines(t *testing.T) {
	t.Parallel()

	m := newTestModel()

	for i := 0; i < maxLines+10; i++ {
		var cmd tea.Cmd

		var updated tea.Model

		updated, cmd = m.Update(logLineMsg{line: "x", ok: true})
		require.NotNil(t, cmd)

		m = updated.(*Model)
	}

	assert.Len(t, m.lines, maxLines)
}

func TestModelPollsStateFunc(t *testing.T) {
	t.Parallel()

	pub := log.NewPublisher()
	m := New(pub, func() (string, bool) { return "depth=1 phase=InObject{ExpectValue}", true }, time.Millisecond)

	updated, cmd := m.Update(statePollMsg{})
	require.NotNil(t, cmd)

	got := updated.(*Model)
	assert.Equal(t, "depth=1 phase=InObject{ExpectValue}", got.stateLine)
}

func TestModelQuitsOnKeyPress(t *testing.T) {
	t.Parallel()

	m := newTestModel()

	_, cmd := m.Update(tea.KeyPressMsg{Text: "q"})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModelTracksWindowSize(t *testing.T) {
	t.Parallel()

	m := newTestModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	got := updated.(*Model)

	assert.Equal(t, 80, got.width)
	assert.Equal(t, 24, got.height)
}

func TestViewRendersPlaceholderBeforeFirstState(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.width = 80
	m.height = 24

	assert.Contains(t, m.render(), "waiting for decode state")
}

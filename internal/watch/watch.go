// Package watch implements cmd/schemasteer's "watch" subcommand: a Bubble
// Tea TUI that streams structured log lines alongside a live one-line
// decode-state snapshot (see
// [github.com/latticeforge/schemasteer/processor.Processor.DebugState]) so
// an operator can follow a generation in progress — phase, depth, violation
// count, and generated-token count — without scrolling a raw log file. The
// snapshot does not include the trie position.
package watch

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/latticeforge/schemasteer/internal/log"
)

const maxLines = 500

// logLineMsg carries one fanned-out line from the subscribed [log.Publisher].
type logLineMsg struct {
	line string
	ok   bool
}

// statePollMsg requests the next state snapshot from StateFunc.
type statePollMsg struct{}

// StateFunc returns the current decode-state line to display, or ("", false)
// when there is nothing to show yet (e.g. before the first prompt).
type StateFunc func() (string, bool)

// Model is the Bubble Tea model driving the watch view. Create with [New].
type Model struct {
	sub       *log.Subscription
	stateFn   StateFunc
	statePoll time.Duration
	lines     []string
	stateLine string
	width     int
	height    int
	quitting  bool
}

// New creates a watch [Model] subscribed to pub, polling stateFn every
// statePoll for decode-state updates.
func New(pub *log.Publisher, stateFn StateFunc, statePoll time.Duration) *Model {
	if statePoll <= 0 {
		statePoll = 200 * time.Millisecond
	}

	return &Model{
		sub:       pub.Subscribe(),
		stateFn:   stateFn,
		statePoll: statePoll,
	}
}

// Init starts the log subscription reader and the state-poll ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForLogLine(), m.pollState())
}

func (m *Model) waitForLogLine() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-m.sub.C()

		return logLineMsg{line: string(line), ok: ok}
	}
}

func (m *Model) pollState() tea.Cmd {
	return tea.Tick(m.statePoll, func(time.Time) tea.Msg {
		return statePollMsg{}
	})
}

// Update handles incoming log lines, state polls, resize, and quit.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.sub.Close()

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case logLineMsg:
		if !msg.ok {
			return m, nil
		}

		m.lines = append(m.lines, msg.line)
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}

		return m, m.waitForLogLine()

	case statePollMsg:
		if line, ok := m.stateFn(); ok {
			m.stateLine = line
		}

		return m, m.pollState()
	}

	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	bodyStyle = lipgloss.NewStyle().Padding(0, 1)
)

// View renders the decode-state header over a scrolling log body, clipped
// to the most recent lines that fit the terminal height.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true

	return v
}

// render builds the plain-string content of the view, factored out of
// [Model.View] so tests can assert on it without depending on [tea.View]'s
// rendering surface.
func (m *Model) render() string {
	header := headerStyle.Render(stateOrPlaceholder(m.stateLine))

	bodyHeight := m.height - lipgloss.Height(header)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	lines := m.lines
	if len(lines) > bodyHeight {
		lines = lines[len(lines)-bodyHeight:]
	}

	body := bodyStyle.Render(joinLines(lines))

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func stateOrPlaceholder(s string) string {
	if s == "" {
		return "waiting for decode state..."
	}

	return s
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}

		out += l
	}

	return out
}

// Package progress shows a spinner on stderr while a batch is described.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/dx/internal/describe"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	spinnerStyle = lipgloss.NewStyle().Foreground(primaryColor)
	okStyle      = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(errorColor)
	lastStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

type finishedMsg struct {
	input string
	ok    bool
}

type stopMsg struct{}

// Model is the spinner state for one batch.
type Model struct {
	spinner spinner.Model
	total   int
	done    int
	failed  int
	last    string
	stopped bool
}

// NewModel creates a model for a batch of total inputs.
func NewModel(total int) Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = spinnerStyle
	return Model{spinner: s, total: total}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case finishedMsg:
		m.done++
		if !msg.ok {
			m.failed++
		}
		m.last = msg.input
		return m, nil
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status line. It is empty once stopped so nothing is left
// on the terminal.
func (m Model) View() string {
	if m.stopped {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(fmt.Sprintf(" describing %d/%d", m.done, m.total))
	if ok := m.done - m.failed; ok > 0 {
		b.WriteString("  " + okStyle.Render(fmt.Sprintf("%d ok", ok)))
	}
	if m.failed > 0 {
		b.WriteString("  " + failStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	if m.last != "" {
		b.WriteString("  " + lastStyle.Render(m.last))
	}
	return b.String() + "\n"
}

// Reporter implements describe.Observer with a bubbletea program.
type Reporter struct {
	out     io.Writer
	program *tea.Program
	done    chan struct{}
}

// New creates a reporter that draws on out.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Start launches the spinner.
func (r *Reporter) Start(total int) {
	r.program = tea.NewProgram(NewModel(total),
		tea.WithOutput(r.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		// A failed terminal setup only loses the spinner.
		_, _ = r.program.Run()
	}()
}

// Finished counts one result. Safe for concurrent use.
func (r *Reporter) Finished(res *describe.Result) {
	if r.program == nil {
		return
	}
	r.program.Send(finishedMsg{input: res.Input, ok: res.OK()})
}

// Stop clears the spinner and waits for the program to exit.
func (r *Reporter) Stop() {
	if r.program == nil {
		return
	}
	r.program.Send(stopMsg{})
	<-r.done
	r.program = nil
}

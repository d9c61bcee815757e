// Package tui renders the interactive launch-capture display and the
// fallback status spinner for non-interactive terminals.
package tui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives the spinner and elapsed-time display.
type tickMsg time.Time

// ResultMsg carries the outcome of the background process watch.
type ResultMsg struct {
	Options string
	Found   bool
}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}

// CaptureModel is a bubbletea model that shows a spinner while the process
// watcher waits for the game to launch, then reports what was captured.
type CaptureModel struct {
	marker  string
	timeout time.Duration
	start   time.Time

	tick    int
	done    bool
	found   bool
	options string
	err     error
}

// NewCaptureModel creates a capture model for the given process marker.
func NewCaptureModel(marker string, timeout time.Duration) CaptureModel {
	return CaptureModel{
		marker:  marker,
		timeout: timeout,
		start:   time.Now(),
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m CaptureModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m CaptureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case ResultMsg:
		m.found = msg.Found
		m.options = msg.Options
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m CaptureModel) View() string {
	if m.done {
		switch {
		case m.err != nil:
			return StatusStyle("error").Render("✗") + fmt.Sprintf(" capture failed: %v\n", m.err)
		case m.found:
			return StatusStyle("captured").Render("✓") + " launch captured\n"
		default:
			return StatusStyle("timeout").Render("!") + " no launch seen before the timeout\n"
		}
	}

	var b strings.Builder
	spinner := spinnerFrames[m.tick%len(spinnerFrames)]
	elapsed := time.Since(m.start)
	fmt.Fprintf(&b, "%s Watching for %s\n", spinner, HeaderStyle.Render(m.marker))
	fmt.Fprintf(&b, "  launch the game from Steam now (%s / %s)\n",
		formatElapsed(elapsed), formatElapsed(m.timeout))
	b.WriteString(FaintStyle.Render("  press q to skip capture\n"))
	return b.String()
}

// Done returns whether the model has finished.
func (m CaptureModel) Done() bool {
	return m.done
}

// Result returns the captured launch options and whether a launch was seen.
func (m CaptureModel) Result() (string, bool) {
	return m.options, m.found
}

// Err returns any fatal error that occurred.
func (m CaptureModel) Err() error {
	return m.err
}

// RunCapture launches workFn in a goroutine and renders the capture display
// until it reports a result. workFn should block until the watcher returns.
func RunCapture(out io.Writer, marker string, timeout time.Duration, workFn func() (string, bool, error)) (string, bool, error) {
	p := tea.NewProgram(NewCaptureModel(marker, timeout), tea.WithOutput(out))

	go func() {
		// Let bubbletea start its event loop and render the initial frame.
		time.Sleep(50 * time.Millisecond)

		options, found, err := workFn()
		if err != nil {
			p.Send(ErrorMsg{Err: err})
			return
		}
		p.Send(ResultMsg{Options: options, Found: found})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m, ok := finalModel.(CaptureModel)
	if !ok {
		return "", false, nil
	}
	if m.Err() != nil {
		return "", false, m.Err()
	}
	options, found := m.Result()
	return options, found, nil
}

// IsTerminal reports whether out is an interactive terminal the capture
// display can render to.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return false
		}
	}
	return true
}

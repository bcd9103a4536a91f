// Package repl provides the interactive rconcli session. It is built on the
// bubbletea/lipgloss stack: a single-line command prompt with history over a
// scrollback of server responses, plus a handful of local commands (help,
// status, reconnect, quit).
package repl

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Session is the part of the rcon session the REPL drives. Satisfied by
// *rcon.Session.
type Session interface {
	Execute(command string) (string, error)
	Alive() bool
	Reconnect() error
	Addr() string
}

// Run starts the interactive session and blocks until the user leaves it.
func Run(s Session, prompt string) error {
	p := tea.NewProgram(newModel(s, prompt))
	_, err := p.Run()
	return err
}

// ---------------------------------------------------------------------------
// Shared styles
// ---------------------------------------------------------------------------

var (
	// promptStyle renders the input prompt.
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6"))

	// echoStyle renders the echoed command line in the scrollback.
	echoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// errorStyle renders failures.
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	// noticeStyle renders local status lines.
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	// busyStyle renders the in-flight indicator.
	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

const helpText = `Interactive commands:
  help         show this help message
  status       show connection status
  reconnect    reconnect to the server
  quit, exit   leave interactive mode

Any other input is sent as a command to the server.`

// ---------------------------------------------------------------------------
// Tea messages
// ---------------------------------------------------------------------------

// execDoneMsg carries the result of a server command.
type execDoneMsg struct {
	output string
	err    error
}

// statusMsg carries the result of a liveness probe.
type statusMsg struct {
	alive bool
}

// reconnectDoneMsg carries the result of a reconnect attempt.
type reconnectDoneMsg struct {
	err error
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

type model struct {
	session Session
	prompt  string

	// input is the line being edited.
	input string

	// history holds previously entered lines, oldest first. histPos points
	// one past the entry currently recalled; len(history) means "editing a
	// fresh line".
	history []string
	histPos int

	// lines is the scrollback, oldest first.
	lines []string

	// busy is true while a command is in flight. The protocol allows one
	// outstanding request per connection, so input is held until the
	// response arrives.
	busy bool

	width  int
	height int
}

func newModel(s Session, prompt string) model {
	return model{
		session: s,
		prompt:  prompt,
		histPos: 0,
		lines: []string{
			noticeStyle.Render(fmt.Sprintf("Connected to %s.", s.Addr())),
			noticeStyle.Render("Type 'help' for local commands, 'quit' to leave."),
		},
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case execDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.lines = append(m.lines,
				errorStyle.Render(fmt.Sprintf("Error: %v", msg.err)),
				noticeStyle.Render("If the connection dropped, 'reconnect' starts a fresh session."),
			)
			return m, nil
		}
		if msg.output != "" {
			m.lines = append(m.lines, strings.Split(msg.output, "\n")...)
		}
		return m, nil

	case statusMsg:
		m.busy = false
		status := "connected"
		if !msg.alive {
			status = "unreachable"
		}
		m.lines = append(m.lines, noticeStyle.Render(fmt.Sprintf("Connection status: %s (%s)", status, m.session.Addr())))
		return m, nil

	case reconnectDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.lines = append(m.lines, errorStyle.Render(fmt.Sprintf("Failed to reconnect: %v", msg.err)))
		} else {
			m.lines = append(m.lines, noticeStyle.Render("Reconnected successfully."))
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.submit()

	case tea.KeyBackspace:
		if m.input != "" {
			rs := []rune(m.input)
			m.input = string(rs[:len(rs)-1])
		}
		return m, nil

	case tea.KeyUp:
		if m.histPos > 0 {
			m.histPos--
			m.input = m.history[m.histPos]
		}
		return m, nil

	case tea.KeyDown:
		if m.histPos < len(m.history) {
			m.histPos++
			if m.histPos == len(m.history) {
				m.input = ""
			} else {
				m.input = m.history[m.histPos]
			}
		}
		return m, nil

	case tea.KeySpace:
		m.input += " "
		return m, nil

	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}

	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input)
	m.input = ""
	if line == "" {
		return m, nil
	}

	m.history = append(m.history, line)
	m.histPos = len(m.history)
	m.lines = append(m.lines, echoStyle.Render(m.prompt+line))

	switch line {
	case "quit", "exit":
		return m, tea.Quit

	case "help":
		m.lines = append(m.lines, noticeStyle.Render(helpText))
		return m, nil

	case "status":
		m.busy = true
		return m, func() tea.Msg {
			return statusMsg{alive: m.session.Alive()}
		}

	case "reconnect":
		m.busy = true
		return m, func() tea.Msg {
			return reconnectDoneMsg{err: m.session.Reconnect()}
		}
	}

	m.busy = true
	return m, func() tea.Msg {
		out, err := m.session.Execute(line)
		return execDoneMsg{output: out, err: err}
	}
}

func (m model) View() string {
	var b strings.Builder

	// Show as much scrollback as fits above the prompt line.
	visible := m.lines
	if max := m.height - 2; max > 0 && len(visible) > max {
		visible = visible[len(visible)-max:]
	}
	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(busyStyle.Render("waiting for server..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(promptStyle.Render(m.prompt))
	b.WriteString(m.input)
	return b.String()
}

// Package tui implements the interactive terminal client.
package tui

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/render"
	"github.com/giygas/druginfo/session"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// header, input and status bar
	chromeHeight = 6
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(render.ColorRed).
			Bold(true).
			PaddingLeft(1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.ColorBorder).
			PaddingLeft(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(render.ColorFgMuted).
			PaddingLeft(1)
)

// resultMsg carries a backend answer back to the update loop
type resultMsg struct {
	ticket  session.Ticket
	outcome session.Outcome
}

// Model is the bubbletea model of the client
type Model struct {
	width  int
	height int

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	session   *session.Session
	backend   interfaces.Backend
	validator interfaces.QueryValidator
	renderer  *render.Renderer
	timeout   time.Duration
	readFile  func(string) ([]byte, error)

	pending session.Ticket
}

// NewModel creates the client model. timeout bounds each backend call.
func NewModel(b interfaces.Backend, validator interfaces.QueryValidator, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "Drug name, or @path/to/photo.jpg"
	ti.Prompt = "❯ "
	ti.CharLimit = 0
	ti.Width = defaultWidth - 8
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(render.ColorMagenta)

	m := Model{
		width:     defaultWidth,
		height:    defaultHeight,
		input:     ti,
		spinner:   sp,
		viewport:  viewport.New(defaultWidth-2, defaultHeight-chromeHeight),
		help:      help.New(),
		keys:      DefaultKeyMap(),
		session:   session.New(logPhase),
		backend:   b,
		validator: validator,
		renderer:  render.NewRenderer(defaultWidth - 2),
		timeout:   timeout,
		readFile:  os.ReadFile,
	}
	m.refresh()
	return m
}

func logPhase(from, to session.Phase) {
	logging.Debug("Search phase changed", "from", from.String(), "to", to.String())
}

// Session exposes the search session driving the view
func (m Model) Session() *session.Session {
	return m.session
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles terminal events and backend results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-2, 1)
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-8, 10)
		m.renderer = render.NewRenderer(m.viewport.Width)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case resultMsg:
		if m.session.Resolve(msg.ticket, msg.outcome) {
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if m.session.Snapshot().Phase != session.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a search for the current input. Input that cannot be
// sent still goes through the session so the failure is shown in place
// of the previous result.
func (m Model) submit() (tea.Model, tea.Cmd) {
	q, parseErr := ParseInput(m.input.Value(), m.readFile)
	t := m.session.Begin(q)
	m.pending = t

	err := parseErr
	if err == nil {
		err = m.validator.ValidateQuery(q)
	}
	if err != nil {
		m.session.Fail(t, err.Error())
		m.refresh()
		return m, nil
	}

	m.input.Reset()
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, fetchCmd(m.backend, t, m.timeout))
}

// fetchCmd runs the backend call off the update loop
func fetchCmd(b interfaces.Backend, t session.Ticket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return resultMsg{ticket: t, outcome: session.Fetch(ctx, b, t.Query)}
	}
}

// refresh renders the session state into the viewport
func (m *Model) refresh() {
	st := m.session.Snapshot()
	switch st.Phase {
	case session.Succeeded:
		m.viewport.SetContent(m.renderer.RenderDocument(m.session.Document()))
	case session.Failed:
		m.viewport.SetContent(m.renderer.RenderError(st.Error))
	case session.Idle:
		m.viewport.SetContent(statusStyle.Render("Type a drug name, or @ followed by a photo path, and press enter."))
	default:
		m.viewport.SetContent("")
	}
	m.viewport.GotoTop()
}

// View renders the client
func (m Model) View() string {
	var body string
	st := m.session.Snapshot()
	if st.Phase == session.Loading {
		body = m.spinner.View() + " Searching for " + st.Query.Label() + "..."
		body += strings.Repeat("\n", max(m.viewport.Height-1, 0))
	} else {
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Drug Information"),
		inputStyle.Width(max(m.width-2, 10)).Render(m.input.View()),
		body,
		statusStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())),
	)
}

// Package tui renders the chat widget in a terminal: a launcher line while
// the panel is closed, and a bordered panel with the conversation and an
// input line while it is open.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/chatwidget/pkg/chat"
	"github.com/papercomputeco/chatwidget/pkg/widget"
)

const (
	defaultWidth  = 60
	defaultHeight = 20

	// header, input line and the two border rows
	panelChrome = 4
)

// ChangedMsg tells the program the controller state changed.
type ChangedMsg struct{}

// Options configures the terminal widget.
type Options struct {
	// NoColor renders without ANSI colors.
	NoColor bool
}

// Model is the bubbletea model wrapping a widget.Controller.
type Model struct {
	ctx  context.Context
	ctrl *widget.Controller

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	noColor  bool

	width  int
	height int
}

// New creates the model. Call Bind once the tea.Program exists so controller
// changes trigger redraws.
func New(ctx context.Context, ctrl *widget.Controller, opts Options) Model {
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight-panelChrome),
		spinner:  sp,
		noColor:  opts.NoColor,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.renderer = newRenderer(defaultWidth, opts.NoColor)
	m.refresh()

	return m
}

// Bind forwards controller changes to p.
func Bind(ctrl *widget.Controller, p *tea.Program) {
	ctrl.Subscribe(func() {
		go p.Send(ChangedMsg{})
	})
}

func newRenderer(width int, noColor bool) *glamour.TermRenderer {
	style := "dark"
	if noColor {
		style = "notty"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 10)),
	)
	if err != nil {
		return nil
	}
	return r
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+o":
			m.ctrl.Toggle()
			m.refresh()
			return m, nil

		case "esc":
			m.ctrl.Close()
			m.refresh()
			return m, nil

		case "enter":
			if !m.ctrl.IsOpen() {
				return m, nil
			}
			m.ctrl.SetInput(m.input.Value())
			m.input.Reset()
			m.ctrl.HandleKey(m.ctx, widget.EnterKey)
			m.refresh()
			return m, nil

		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if m.ctrl.IsOpen() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-2, 10)
		m.viewport.Height = max(msg.Height-panelChrome, 3)
		m.input.Width = max(msg.Width-6, 10)
		m.renderer = newRenderer(m.viewport.Width, m.noColor)
		m.refresh()
		return m, nil

	case ChangedMsg:
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hasPending() {
			m.refresh()
		}
		return m, cmd
	}

	if m.ctrl.IsOpen() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) hasPending() bool {
	for _, msg := range m.ctrl.Messages() {
		if msg.Pending {
			return true
		}
	}
	return false
}

// refresh re-renders the conversation into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	msgs := m.ctrl.Messages()
	width := max(m.viewport.Width, 10)

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg, width))
	}

	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg chat.Message, width int) string {
	switch {
	case msg.Pending:
		return assistantLabelStyle.Render("AI") + " " +
			m.spinner.View() + placeholderStyle.Render(msg.Text)

	case msg.Role == chat.RoleUser:
		return userLabelStyle.Render("You") + "\n" + ansi.Wordwrap(msg.Text, width, "")

	default:
		return assistantLabelStyle.Render("AI") + "\n" + m.renderMarkdown(msg.Text, width)
	}
}

func (m Model) renderMarkdown(text string, width int) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return ansi.Wordwrap(text, width, "")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ctrl.IsOpen() {
		return launcherStyle.Render("chat") + " " + helpStyle.Render("ctrl+o open · ctrl+c quit")
	}

	header := headerStyle.Render("Chat") + "  " + helpStyle.Render("esc close · enter send")
	body := lipgloss.JoinVertical(lipgloss.Left,
		ansi.Truncate(header, m.viewport.Width, "…"),
		m.viewport.View(),
		m.input.View(),
	)

	return panelStyle.Width(m.viewport.Width).Render(body)
}

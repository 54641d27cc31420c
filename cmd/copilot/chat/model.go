// Package chat provides the interactive TUI for the copilot chat workspace.
// The chat functionality is split across multiple files:
//   - model.go: Model, Init, Update loop (this file)
//   - view.go: Rendering functions
//   - keys.go: Key bindings and help
package chat

import (
	"strings"

	"copilotdesk/cmd/copilot/ui"
	"copilotdesk/internal/logging"
	"copilotdesk/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Fixed layout rows outside the transcript viewport. Header and chip rows
// depend on the width and are measured in resize.
const (
	startersGap    = 1 // blank line under the chips
	composerHeight = 5 // textarea rows + border
	footerHeight   = 1 // help line

	minViewportHeight = 3
	minWidth          = 20
	sendButtonWidth   = 12
)

// Config holds configuration for initializing the chat interface.
type Config struct {
	// Controller owns the session. A fresh one is created when nil.
	Controller *session.Controller

	// Theme is auto, light or dark.
	Theme string

	// Markdown renders assistant replies with glamour.
	Markdown bool
}

// Messages for tea updates
type (
	// controllerEventMsg carries a change notification from the controller.
	controllerEventMsg session.Event

	// sessionClosedMsg is delivered once the controller's event stream ends.
	sessionClosedMsg struct{}
)

// Model is the main model for the interactive chat interface
type Model struct {
	// UI Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	styles   ui.Styles
	renderer *glamour.TermRenderer
	markdown bool

	// Session
	ctrl     *session.Controller
	starters []string

	// rendered transcript, rebuilt only when messages change
	transcript string

	width  int
	height int
	ready  bool
}

// New builds the chat model for cfg.
func New(cfg Config) Model {
	ctrl := cfg.Controller
	if ctrl == nil {
		ctrl = session.NewController()
	}

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))
	keys := defaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "输入你的问题，Alt + Enter 换行"
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetWidth(80 - sendButtonWidth - 6)
	ta.SetHeight(composerHeight - 2)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Ellipsis
	sp.Style = styles.Typing

	m := Model{
		textarea: ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		help:     help.New(),
		keys:     keys,
		styles:   styles,
		markdown: cfg.Markdown,
		ctrl:     ctrl,
		starters: session.QuickStarters(),
		width:    80,
		height:   40,
	}
	m.renderer = m.newRenderer(80)
	m.refresh()
	return m
}

// Init initializes the interactive chat model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForEvent(m.ctrl.Events()),
	)
}

// waitForEvent reads one controller event. It is re-armed after every event
// until the controller is torn down.
func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sessionClosedMsg{}
		}
		return controllerEventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case controllerEventMsg:
		return m.handleEvent(session.Event(msg))

	case sessionClosedMsg:
		return m, nil

	case spinner.TickMsg:
		// The tick chain stops once the reply lands.
		if !m.ctrl.Awaiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncViewport()
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
		m.textarea.Reset()
		m.refresh()
		return m, m.textarea.Focus()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Starter):
		return m.selectStarter(msg)
	}

	// The composer is disabled while a reply is pending.
	if m.ctrl.Awaiting() {
		return m, nil
	}

	if key.Matches(msg, m.keys.Send) {
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.ctrl.SetDraft(m.textarea.Value())
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if !m.ctrl.Submit(m.textarea.Value()) {
		logging.UIDebug("submit rejected (blank or busy)")
		return m, nil
	}

	m.textarea.Reset()
	m.textarea.Blur()
	m.refresh()
	return m, m.spinner.Tick
}

func (m Model) selectStarter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx, ok := starterIndex(msg)
	if !ok || idx >= len(m.starters) {
		return m, nil
	}
	if !m.ctrl.SelectStarter(m.starters[idx]) {
		return m, nil
	}
	m.textarea.SetValue(m.ctrl.Draft())
	return m, nil
}

// starterIndex maps alt+1..alt+9 to a zero-based chip index.
func starterIndex(msg tea.KeyMsg) (int, bool) {
	if len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '1'), true
}

func (m Model) handleEvent(ev session.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(m.ctrl.Events())}

	// Draft events are not mirrored back: the composer already holds the
	// draft, and a queued event may be older than what the user typed since.
	switch ev.Kind {
	case session.EventAssistantMessage, session.EventReset:
		if !m.ctrl.Awaiting() {
			cmds = append(cmds, m.textarea.Focus())
		}
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// resize lays out the components for a new terminal size.
func (m *Model) resize(width, height int) {
	if width < minWidth {
		width = minWidth
	}
	m.width = width
	m.height = height

	vpHeight := height - lipgloss.Height(m.renderHeader()) - len(m.starterRows()) - startersGap - composerHeight - footerHeight
	if vpHeight < minViewportHeight {
		vpHeight = minViewportHeight
	}
	m.viewport.Width = width - 2
	m.viewport.Height = vpHeight

	taWidth := width - sendButtonWidth - 6
	if taWidth < minWidth/2 {
		taWidth = minWidth / 2
	}
	m.textarea.SetWidth(taWidth)
	m.help.Width = width

	m.renderer = m.newRenderer(width - 8)
	m.ready = true
	m.refresh()
	logging.UIDebug("resized to %dx%d (viewport %d rows)", width, height, vpHeight)
}

func (m Model) newRenderer(wrap int) *glamour.TermRenderer {
	if !m.markdown {
		return nil
	}
	if wrap < minWidth {
		wrap = minWidth
	}
	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		logging.UIDebug("markdown renderer unavailable: %v", err)
		return nil
	}
	return r
}

// refresh rebuilds the transcript and scrolls to the newest entry.
func (m *Model) refresh() {
	m.transcript = m.renderHistory()
	m.syncViewport()
}

// syncViewport re-applies the cached transcript plus the typing row.
func (m *Model) syncViewport() {
	content := m.transcript
	if m.ctrl.Awaiting() {
		content = strings.TrimRight(content, "\n") + "\n\n" + m.renderTyping()
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// RunInteractiveChat runs the chat program until the user quits.
func RunInteractiveChat(cfg Config) error {
	if cfg.Controller == nil {
		cfg.Controller = session.NewController()
	}
	defer cfg.Controller.Teardown()

	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

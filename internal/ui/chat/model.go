// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/storage"
	"github.com/jeranaias/loki-tui/internal/tokens"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// Layout constants for the chat screen.
const (
	sidebarWidth   = 28
	headerHeight   = 2 // title line + border
	inputHeight    = 3 // bordered single line
	thinkingHeight = 1
	statusHeight   = 1
	inputCharLimit = 4096
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configure a chat Model.
type Options struct {
	// Completer produces replies. Required.
	Completer cloud.Completer

	// Store holds the conversations. A fresh store is created when nil.
	Store *storage.ConversationStore

	Greeting       string
	ModelName      string
	HistoryMode    string
	RevealInterval time.Duration
	MarkdownStyle  string
	ExportDir      string

	Theme   *styles.Theme
	Counter *tokens.Counter
	Profile model.Profile
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen. It is a value type like every Bubble Tea model;
// all shared state lives behind the Controller pointer.
type Model struct {
	ctrl *Controller

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	theme     *styles.Theme
	markdown  *components.MarkdownRenderer
	statusBar *components.StatusBar
	keys      KeyMap
	counter   *tokens.Counter

	profile     model.Profile
	modelName   string
	historyMode string
	exportDir   string

	width        int
	height       int
	lastRevision uint64
	showSidebar  bool
	showHelp     bool
	settings     *settingsForm
}

// New creates the chat screen.
func New(opts Options) Model {
	store := opts.Store
	if store == nil {
		store = storage.NewConversationStore(opts.Greeting)
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	counter := opts.Counter
	if counter == nil {
		counter = tokens.Default()
	}
	modelName := opts.ModelName
	if modelName == "" {
		modelName = model.DefaultModel
	}
	historyMode := opts.HistoryMode
	if historyMode == "" {
		historyMode = config.HistorySingle
	}
	profile := opts.Profile
	if profile.Name == "" {
		profile = model.NewProfile("", "", "", model.ParseTheme(theme.ModeName()))
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Message LokiAI..."
	ti.CharLimit = inputCharLimit
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = styles.TypingDots.Bubble()
	sp.Style = theme.Spinner

	keys := DefaultKeyMap()
	status := components.NewStatusBar(theme)
	for _, b := range keys.ShortHelp() {
		status.Shortcuts = append(status.Shortcuts, components.Shortcut{Key: b.Help().Key, Desc: b.Help().Desc})
	}

	m := Model{
		ctrl:        NewController(store, cloud.NewResponder(opts.Completer), opts.RevealInterval),
		viewport:    viewport.New(80, 20),
		input:       ti,
		spinner:     sp,
		theme:       theme,
		markdown:    components.NewMarkdownRenderer(markdownStyle(opts.MarkdownStyle, theme)),
		statusBar:   status,
		keys:        keys,
		counter:     counter,
		profile:     profile,
		modelName:   modelName,
		historyMode: historyMode,
		exportDir:   opts.ExportDir,
		width:       80,
		height:      24,
		showSidebar: true,
	}
	m.refresh()
	return m
}

// markdownStyle picks the glamour style. "auto" follows the theme so the
// light/dark toggle also flips markdown.
func markdownStyle(style string, theme *styles.Theme) string {
	if style == "" || style == "auto" {
		return theme.ModeName()
	}
	return style
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Controller exposes the turn state machine.
func (m Model) Controller() *Controller {
	return m.ctrl
}

// Phase returns the current turn phase.
func (m Model) Phase() Phase {
	return m.ctrl.Phase()
}

// Profile returns the current profile.
func (m Model) Profile() model.Profile {
	return m.profile
}

// Teardown stops in-flight work. The app calls it when leaving the screen.
func (m Model) Teardown() {
	m.ctrl.Teardown()
}

// SetTheme re-styles the screen after a theme change.
func (m Model) SetTheme(theme *styles.Theme, mdStyle string) Model {
	m.theme = theme
	m.statusBar.SetTheme(theme)
	m.spinner.Style = theme.Spinner
	m.markdown.SetStyle(markdownStyle(mdStyle, theme))
	m.profile.Theme = model.ParseTheme(theme.ModeName())
	m.refreshForce()
	return m
}

// ApplyConfig picks up settings that may change while running.
func (m Model) ApplyConfig(cfg *config.Config) Model {
	if cfg == nil {
		return m
	}
	if cfg.Completion.Model != "" {
		m.modelName = cfg.Completion.Model
	}
	if cfg.Completion.HistoryMode != "" {
		m.historyMode = cfg.Completion.HistoryMode
	}
	if cfg.UI.RevealIntervalMs > 0 {
		m.ctrl.Typewriter().SetInterval(time.Duration(cfg.UI.RevealIntervalMs) * time.Millisecond)
	}
	m.refreshForce()
	return m
}

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// refresh re-renders the conversation when the store changed or a reveal is
// running, and keeps the view pinned to the newest message.
func (m *Model) refresh() {
	rev := m.ctrl.Store().Revision()
	if rev == m.lastRevision && m.ctrl.Phase() != PhaseRevealing {
		return
	}
	m.lastRevision = rev
	m.refreshForce()
}

func (m *Model) refreshForce() {
	m.lastRevision = m.ctrl.Store().Revision()
	msgs := m.ctrl.DisplayMessages()
	content := components.RenderConversation(msgs, m.ctrl.Phase() == PhaseRevealing, components.MessageOptions{
		Width:     m.viewport.Width,
		Theme:     m.theme,
		Markdown:  m.markdown,
		UserLabel: m.profile.Initials(),
	})
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
	m.syncInput()
	m.syncStatus(msgs)
}

// syncInput enables the input only while idle.
func (m *Model) syncInput() {
	if m.ctrl.CanSubmit() && m.settings == nil {
		m.input.Placeholder = "Message LokiAI..."
		m.input.Focus()
		return
	}
	m.input.Blur()
	switch m.ctrl.Phase() {
	case PhaseAwaitingReply:
		m.input.Placeholder = "LokiAI is thinking..."
	case PhaseRevealing:
		m.input.Placeholder = "LokiAI is typing..."
	}
}

func (m *Model) syncStatus(msgs []model.Message) {
	m.statusBar.Model = m.modelName
	m.statusBar.HistoryMode = m.historyMode
	m.statusBar.Phase = m.ctrl.Phase().String()
	m.statusBar.TokensUsed = m.counter.CountMessages(msgs)
}

// layout recomputes component sizes from the window size.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	mainWidth := m.width
	if m.sidebarVisible() {
		mainWidth -= sidebarWidth
	}
	if mainWidth < 20 {
		mainWidth = 20
	}

	vpHeight := m.height - headerHeight - inputHeight - thinkingHeight - statusHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight

	// border (2) + padding (2) + prompt (2)
	m.input.Width = mainWidth - 6
	if m.input.Width < 10 {
		m.input.Width = 10
	}
	m.statusBar.Width = m.width
}

func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width >= 60
}

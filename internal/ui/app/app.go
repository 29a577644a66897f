// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model. It routes between the landing,
// login and chat screens, owns the session and the toast stack, and fans
// out theme and config changes.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/auth"
	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/tokens"
	"github.com/jeranaias/loki-tui/internal/ui/chat"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/landing"
	"github.com/jeranaias/loki-tui/internal/ui/login"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// ConfigReloadedMsg carries a config re-read from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Options configure the app.
type Options struct {
	Config    *config.Config
	Completer cloud.Completer
	// Client receives runtime config changes. Optional.
	Client   *cloud.Client
	Provider auth.Provider
	Counter  *tokens.Counter
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root model.
type Model struct {
	cfg       *config.Config
	theme     *styles.Theme
	themeMode string

	completer cloud.Completer
	client    *cloud.Client
	provider  auth.Provider
	counter   *tokens.Counter

	route   string
	landing landing.Model
	login   login.Model
	chat    chat.Model
	inChat  bool

	session *auth.Session
	profile model.Profile

	toasts       *components.ToastManager
	toastTicking bool

	// startCmd is the command produced by routing to the start route.
	startCmd tea.Cmd

	width  int
	height int
}

// New creates the root model. The start route comes from the config; the
// chat guard still applies to it.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	provider := opts.Provider
	if provider == nil {
		provider = auth.NoopProvider{}
	}

	theme := styles.ApplyMode(cfg.UI.Theme)
	m := &Model{
		cfg:       cfg,
		theme:     theme,
		themeMode: cfg.UI.Theme,
		completer: opts.Completer,
		client:    opts.Client,
		provider:  provider,
		counter:   opts.Counter,
		landing:   landing.New(theme),
		login:     login.New(provider, theme),
		profile: model.NewProfile(cfg.Profile.Name, cfg.Profile.Email, cfg.Profile.Avatar,
			model.ParseTheme(theme.ModeName())),
		toasts: components.NewToastManager(),
		route:  components.RouteHome,
		width:  80,
		height: 24,
	}
	if start := cfg.UI.StartRoute; start != "" && start != components.RouteHome {
		m.startCmd = m.navigate(start)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.startCmd != nil {
		return m.startCmd
	}
	return m.landing.Init()
}

// Route returns the current route.
func (m *Model) Route() string {
	return m.route
}

// Session returns the signed-in session, or nil.
func (m *Model) Session() *auth.Session {
	return m.session
}

// Toasts returns the visible toasts.
func (m *Model) Toasts() []components.Toast {
	return m.toasts.Toasts()
}

// requiresSession reports whether /chat needs a signed-in user.
func (m *Model) requiresSession() bool {
	return m.provider.Name() != config.AuthNone
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		return m, m.resizeAll()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.teardownChat()
			return m, tea.Quit
		}

	case components.NavigateMsg:
		return m, m.navigate(msg.Route)

	case components.ToastMsg:
		return m, m.addToast(msg.Toast)

	case components.ToastTickMsg:
		m.toasts.Sweep()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		return m, nil

	case login.AuthenticatedMsg:
		m.session = msg.Session
		if msg.Session.Username != "" {
			m.profile.Name = msg.Session.Username
		}
		if msg.Session.Email != "" {
			m.profile.Email = msg.Session.Email
		}
		return m, tea.Batch(
			m.addToast(components.NewSuccessToast("", msg.Notice)),
			m.navigate(components.RouteChat),
		)

	case chat.SignOutMsg:
		if m.session != nil {
			log.Info().Str("user", m.session.UserID).Msg("signed out")
		}
		m.session = nil
		return m, tea.Batch(
			m.navigate(components.RouteHome),
			m.addToast(components.NewStatusToast("", "Signed out.")),
		)

	case chat.ThemeChangedMsg:
		m.applyTheme(msg.Theme)
		return m, nil

	case chat.ProfileUpdatedMsg:
		m.profile.Name = msg.Name
		m.profile.Email = msg.Email
		if m.inChat {
			m.profile.Avatar = m.chat.Profile().Avatar
		}
		return m, nil

	case ConfigReloadedMsg:
		return m, m.applyConfig(msg.Config)
	}

	return m, m.forward(msg)
}

// forward hands msg to the active screen.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	var next tea.Model
	switch m.route {
	case components.RouteLogin:
		next, cmd = m.login.Update(msg)
		m.login = next.(login.Model)
	case components.RouteChat:
		if !m.inChat {
			return nil
		}
		next, cmd = m.chat.Update(msg)
		m.chat = next.(chat.Model)
	default:
		next, cmd = m.landing.Update(msg)
		m.landing = next.(landing.Model)
	}
	return cmd
}

func (m *Model) resizeAll() tea.Cmd {
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}

	next, _ := m.landing.Update(size)
	m.landing = next.(landing.Model)
	next, _ = m.login.Update(size)
	m.login = next.(login.Model)
	if m.inChat {
		next, _ = m.chat.Update(size)
		m.chat = next.(chat.Model)
	}
	return nil
}

// =============================================================================
// ROUTING
// =============================================================================

// navigate switches screens. Leaving /chat tears the chat down, which
// discards its conversations.
func (m *Model) navigate(route string) tea.Cmd {
	switch route {
	case components.RouteHome, components.RouteLogin, components.RouteChat:
	default:
		log.Warn().Str("route", route).Msg("unknown route")
		return nil
	}
	if route == m.route && (route != components.RouteChat || m.inChat) {
		return nil
	}

	if route == components.RouteChat && m.requiresSession() && !m.session.IsValid() {
		m.session = nil
		cmd := m.navigate(components.RouteLogin)
		return tea.Batch(cmd, m.addToast(components.NewStatusToast("", "Sign in to start chatting.")))
	}

	if m.route == components.RouteChat {
		m.teardownChat()
	}

	log.Debug().Str("from", m.route).Str("to", route).Msg("navigate")
	m.route = route

	switch route {
	case components.RouteLogin:
		m.login = login.New(m.provider, m.theme)
		m.resizeAll()
		return m.login.Init()
	case components.RouteChat:
		m.chat = m.newChat()
		m.inChat = true
		m.resizeAll()
		return m.chat.Init()
	}
	return nil
}

func (m *Model) newChat() chat.Model {
	return chat.New(chat.Options{
		Completer:      m.completer,
		Greeting:       m.cfg.UI.Greeting,
		ModelName:      m.cfg.Completion.Model,
		HistoryMode:    m.cfg.Completion.HistoryMode,
		RevealInterval: time.Duration(m.cfg.UI.RevealIntervalMs) * time.Millisecond,
		MarkdownStyle:  m.cfg.UI.MarkdownStyle,
		Theme:          m.theme,
		Counter:        m.counter,
		Profile:        m.profile,
	})
}

func (m *Model) teardownChat() {
	if !m.inChat {
		return
	}
	m.chat.Teardown()
	m.profile = m.chat.Profile()
	m.chat = chat.Model{}
	m.inChat = false
}

// =============================================================================
// THEME / CONFIG
// =============================================================================

func (m *Model) applyTheme(mode string) {
	m.themeMode = mode
	m.theme = styles.ApplyMode(mode)
	m.theme.SetSize(m.width, m.height)
	m.profile.Theme = model.ParseTheme(m.theme.ModeName())

	m.landing = m.landing.SetTheme(m.theme)
	m.login = m.login.SetTheme(m.theme)
	if m.inChat {
		m.chat = m.chat.SetTheme(m.theme, m.cfg.UI.MarkdownStyle)
	}
	log.Debug().Str("mode", m.theme.ModeName()).Msg("theme applied")
}

func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	if cfg == nil {
		return nil
	}
	prevTheme := m.cfg.UI.Theme
	m.cfg = cfg

	if m.client != nil {
		m.client.Apply(cfg.Completion)
	}
	if cfg.UI.Theme != prevTheme {
		m.applyTheme(cfg.UI.Theme)
	}
	if m.inChat {
		m.chat = m.chat.ApplyConfig(cfg)
	}
	log.Info().Str("model", cfg.Completion.Model).Str("history", cfg.Completion.HistoryMode).Msg("config reloaded")
	return m.addToast(components.NewStatusToast("", "Configuration reloaded"))
}

func (m *Model) addToast(t components.Toast) tea.Cmd {
	m.toasts.Add(t)
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	var base string
	keep := 0
	switch m.route {
	case components.RouteLogin:
		base = m.login.View()
	case components.RouteChat:
		if m.inChat {
			base = m.chat.View()
			keep = 1 // status bar
		}
	default:
		base = m.landing.View()
		keep = 1 // key hint
	}

	if !m.toasts.HasToasts() {
		return base
	}
	stack := components.RenderToastStack(m.theme, m.toasts.Toasts(), m.width, 0)
	return components.OverlayBottom(base, stack, m.width, keep)
}

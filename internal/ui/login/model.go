// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login implements the sign-in and sign-up screen shown at "/login".
package login

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/auth"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// authTimeout bounds one sign-in or sign-up call.
const authTimeout = 20 * time.Second

const fieldWidth = 36

// Field indexes. Username is only shown on sign-up.
const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// =============================================================================
// MESSAGES
// =============================================================================

// AuthenticatedMsg is emitted when a session was obtained. The app stores
// the session, shows Notice as a toast and opens the chat.
type AuthenticatedMsg struct {
	Session *auth.Session
	Notice  string
}

// resultMsg carries a provider call's outcome back to the screen.
type resultMsg struct {
	signUp bool
	result *auth.SignUpResult
	err    error
}

// =============================================================================
// KEYS
// =============================================================================

// KeyMap defines the login screen bindings.
type KeyMap struct {
	Submit     key.Binding
	Next       key.Binding
	Prev       key.Binding
	ToggleMode key.Binding
	Back       key.Binding
}

// DefaultKeyMap returns the default login bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "submit")),
		Next:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("Tab", "next field")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-Tab", "previous field")),
		ToggleMode: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "sign in / sign up")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "home")),
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the login screen.
type Model struct {
	provider auth.Provider
	theme    *styles.Theme
	navbar   *components.Navbar
	keys     KeyMap
	spinner  spinner.Model

	inputs  []textinput.Model
	focus   int
	signUp  bool
	loading bool
	err     string

	width  int
	height int
}

// New creates the login screen backed by provider.
func New(provider auth.Provider, theme *styles.Theme) Model {
	username := textinput.New()
	username.Placeholder = "loki_of_asgard"
	username.CharLimit = 32

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	inputs := []textinput.Model{username, email, password}
	for i := range inputs {
		inputs[i].Prompt = ""
		inputs[i].Width = fieldWidth - 4
	}

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Bubble()
	sp.Style = theme.Spinner

	nav := components.NewNavbar(theme)
	nav.Active = components.RouteLogin

	m := Model{
		provider: provider,
		theme:    theme,
		navbar:   nav,
		keys:     DefaultKeyMap(),
		spinner:  sp,
		inputs:   inputs,
		width:    80,
		height:   24,
	}
	m.setFocus(fieldEmail)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetTheme re-styles the screen.
func (m Model) SetTheme(theme *styles.Theme) Model {
	m.theme = theme
	m.navbar.SetTheme(theme)
	m.spinner.Style = theme.Spinner
	return m
}

// IsSignUp reports whether the form is in sign-up mode.
func (m Model) IsSignUp() bool {
	return m.signUp
}

// Loading reports whether a provider call is in flight.
func (m Model) Loading() bool {
	return m.loading
}

func (m Model) firstField() int {
	if m.signUp {
		return fieldUsername
	}
	return fieldEmail
}

func (m *Model) setFocus(i int) {
	first := m.firstField()
	n := fieldPassword - first + 1
	m.focus = first + ((i-first)%n+n)%n
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// credentials collects the form values.
func (m Model) credentials() auth.Credentials {
	creds := auth.Credentials{
		Email:    m.inputs[fieldEmail].Value(),
		Password: m.inputs[fieldPassword].Value(),
	}
	if m.signUp {
		creds.Username = m.inputs[fieldUsername].Value()
	}
	return creds.Normalize()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.navbar.Width = msg.Width
		return m, nil

	case resultMsg:
		return m.handleResult(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, components.Navigate(components.RouteHome)
		case key.Matches(msg, m.keys.ToggleMode):
			m.signUp = !m.signUp
			m.err = ""
			m.setFocus(m.firstField())
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setFocus(m.focus - 1)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	creds := m.credentials()
	if creds.Email == "" || creds.Password == "" {
		m.err = "Email and password are required."
		return m, nil
	}
	if m.signUp && creds.Username == "" {
		m.err = "Choose a username."
		return m, nil
	}
	if err := creds.Validate(); err != nil {
		m.err = userMessage(err)
		return m, nil
	}

	m.err = ""
	m.loading = true
	provider := m.provider
	signUp := m.signUp

	call := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		if signUp {
			res, err := provider.SignUp(ctx, creds)
			return resultMsg{signUp: true, result: res, err: err}
		}
		session, err := provider.SignIn(ctx, creds)
		return resultMsg{result: &auth.SignUpResult{Session: session}, err: err}
	}
	return m, tea.Batch(call, m.spinner.Tick)
}

func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.loading = false

	if msg.err != nil {
		log.Warn().Err(msg.err).Str("provider", m.provider.Name()).Bool("sign_up", msg.signUp).Msg("authentication failed")
		m.err = userMessage(msg.err)
		m.inputs[fieldPassword].Reset()
		return m, components.ShowToast(components.NewErrorToast("", m.err))
	}

	if msg.result != nil && msg.result.NeedsConfirmation {
		// Back to sign-in so the user can log in after verifying.
		m.signUp = false
		m.inputs[fieldPassword].Reset()
		m.setFocus(fieldPassword)
		return m, components.ShowToast(components.NewSuccessToast("", auth.MsgCheckEmail))
	}

	if msg.result == nil || !msg.result.Session.IsValid() {
		m.err = "The server did not return a session."
		return m, components.ShowToast(components.NewErrorToast("", m.err))
	}

	notice := auth.MsgSignedIn
	if msg.signUp {
		notice = auth.MsgSignedUp
	}
	session := msg.result.Session
	log.Info().Str("provider", m.provider.Name()).Str("user", session.UserID).Msg("signed in")

	m.inputs[fieldPassword].Reset()
	return m, func() tea.Msg { return AuthenticatedMsg{Session: session, Notice: notice} }
}

// userMessage maps provider errors to form text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid login credentials"
	case errors.Is(err, auth.ErrLockedOut):
		return "Too many failed attempts. Try again later."
	case errors.Is(err, auth.ErrInvalidEmail):
		return "Enter a valid email address."
	case errors.Is(err, auth.ErrWeakPassword):
		return "Password should be at least 6 characters."
	case errors.Is(err, auth.ErrUserExists):
		return "User already registered"
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		return "Email not confirmed"
	case errors.Is(err, context.DeadlineExceeded):
		return "The sign-in service did not respond."
	default:
		return err.Error()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme

	title, subtitle, button := "Welcome Back", "Continue your journey with us", "Sign In"
	switchText, switchAction := "Don't have an account?", "Sign Up"
	if m.signUp {
		title, subtitle, button = "Create Account", "Join our community of emotional growth", "Create Account"
		switchText, switchAction = "Already have an account?", "Sign In"
	}

	var rows []string
	rows = append(rows, t.FormTitle.Render(title), t.HeroSubtitle.Render(subtitle), "")

	labels := []string{"Username", "Email", "Password"}
	for i := m.firstField(); i <= fieldPassword; i++ {
		style := t.Field
		if i == m.focus {
			style = t.FieldFocused
		}
		rows = append(rows, t.Label.Render(labels[i]), style.Width(fieldWidth).Render(m.inputs[i].View()))
	}

	rows = append(rows, "")
	if m.loading {
		rows = append(rows, m.spinner.View()+" "+t.ThinkingText.Render("Contacting "+m.provider.Name()+"..."))
	} else {
		rows = append(rows, t.Button.Render(button+"  [Enter]"))
	}
	if m.err != "" {
		rows = append(rows, "", styles.RenderError(m.err))
	}
	rows = append(rows, "", t.CardBody.Render(switchText+" ")+t.Link.Render(switchAction)+t.ShortcutDesc.Render(" [C-t]"))

	form := t.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	nav := m.navbar.View()
	body := lipgloss.Place(m.width, max(m.height-lipgloss.Height(nav), lipgloss.Height(form)), lipgloss.Center, lipgloss.Center, form)
	return lipgloss.JoinVertical(lipgloss.Left, nav, strings.TrimRight(body, "\n"))
}

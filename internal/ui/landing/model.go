// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package landing implements the marketing screen shown at "/".
package landing

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// KeyMap defines the landing screen bindings.
type KeyMap struct {
	GetStarted key.Binding
	Chat       key.Binding
	Up         key.Binding
	Down       key.Binding
}

// DefaultKeyMap returns the default landing bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		GetStarted: key.NewBinding(key.WithKeys("enter", "g"), key.WithHelp("Enter", "get started")),
		Chat:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "open chat")),
		Up:         key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑", "scroll")),
		Down:       key.NewBinding(key.WithKeys("down", "j", "pgdown"), key.WithHelp("↓", "scroll")),
	}
}

// Model is the landing screen.
type Model struct {
	theme    *styles.Theme
	navbar   *components.Navbar
	viewport viewport.Model
	keys     KeyMap
	width    int
	height   int
}

// New creates the landing screen.
func New(theme *styles.Theme) Model {
	nav := components.NewNavbar(theme)
	nav.Active = components.RouteHome
	m := Model{
		theme:    theme,
		navbar:   nav,
		viewport: viewport.New(80, 20),
		keys:     DefaultKeyMap(),
		width:    80,
		height:   24,
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTheme re-styles the screen.
func (m Model) SetTheme(theme *styles.Theme) Model {
	m.theme = theme
	m.navbar.SetTheme(theme)
	m.viewport.SetContent(m.renderContent())
	return m
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.navbar.Width = msg.Width
		m.viewport.Width = msg.Width
		// navbar is two lines, footer hint one
		m.viewport.Height = max(3, msg.Height-3)
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.GetStarted):
			return m, components.Navigate(components.RouteLogin)
		case key.Matches(msg, m.keys.Chat):
			return m, components.Navigate(components.RouteChat)
		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(3)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(3)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	hint := m.theme.ShortcutKey.Render("Enter") + m.theme.ShortcutDesc.Render(" get started  ") +
		m.theme.ShortcutKey.Render("c") + m.theme.ShortcutDesc.Render(" chat  ") +
		m.theme.ShortcutKey.Render("↑/↓") + m.theme.ShortcutDesc.Render(" scroll  ") +
		m.theme.ShortcutKey.Render("C-c") + m.theme.ShortcutDesc.Render(" quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		m.navbar.View(),
		m.viewport.View(),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hint),
	)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderContent() string {
	sections := []string{
		m.renderHero(),
		m.renderCards("Why LokiAI", features, false),
		m.renderCards("How It Works", steps, true),
		m.renderTestimonials(),
		m.renderCTA(),
	}
	return strings.Join(sections, "\n")
}

func (m Model) contentWidth() int {
	return min(max(m.width-4, 30), 100)
}

func (m Model) center(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

func (m Model) renderHero() string {
	w := m.contentWidth()
	t := m.theme
	hero := lipgloss.JoinVertical(lipgloss.Center,
		"",
		t.HeroTitle.Width(w).Render(heroTitle),
		"",
		t.HeroSubtitle.Width(w).Render(heroSubtitle),
		"",
		t.Button.Render(heroButton+"  [Enter]"),
	)
	return m.center(hero)
}

func (m Model) renderCards(title string, cards []Card, numbered bool) string {
	t := m.theme
	w := m.contentWidth()

	perRow := 1
	switch t.GetLayoutMode() {
	case styles.LayoutMedium:
		perRow = 2
	case styles.LayoutWide:
		perRow = len(cards)
	}
	// card border (2) + padding (4) + gap (1)
	cardWidth := max(w/perRow-7, 16)

	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		heading := t.CardTitle.Render(c.Title)
		if numbered {
			heading = t.StepNumber.Render(fmt.Sprint(i+1)) + " " + heading
		}
		body := t.CardBody.Width(cardWidth).Render(c.Body)
		rendered = append(rendered, t.Card.Width(cardWidth+4).Render(heading+"\n"+body))
	}

	var rows []string
	for i := 0; i < len(rendered); i += perRow {
		end := min(i+perRow, len(rendered))
		row := make([]string, 0, 2*(end-i))
		for j, card := range rendered[i:end] {
			if j > 0 {
				row = append(row, " ")
			}
			row = append(row, card)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return m.center(lipgloss.JoinVertical(lipgloss.Center,
		t.SectionTitle.Render(title),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	))
}

func (m Model) renderTestimonials() string {
	t := m.theme
	w := min(m.contentWidth(), 72)

	var b strings.Builder
	for i, q := range testimonials {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(t.Quote.Width(w).Render(`"` + q.Quote + `"`))
		b.WriteString("\n")
		b.WriteString(t.QuoteAuthor.Render(strings.Repeat("*", q.Rating) + "  " + q.Author))
	}
	return m.center(lipgloss.JoinVertical(lipgloss.Center,
		t.SectionTitle.Render("What Users Say"),
		b.String(),
	))
}

func (m Model) renderCTA() string {
	t := m.theme
	w := m.contentWidth()
	return m.center(lipgloss.JoinVertical(lipgloss.Center,
		t.SectionTitle.Render(ctaTitle),
		t.HeroSubtitle.Width(w).Render(ctaBody),
		"",
		t.ButtonSecondary.Render(ctaButton+"  [g]"),
		t.Footer.Render("LokiAI  ·  For all time. Always."),
	))
}

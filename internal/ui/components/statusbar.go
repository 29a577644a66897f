// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
	"github.com/jeranaias/loki-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is a key hint shown on the right of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of the chat screen.
type StatusBar struct {
	Model       string
	HistoryMode string
	Phase       string
	TokensUsed  int
	Shortcuts   []Shortcut
	Width       int
	theme       *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetTheme swaps the theme after a light/dark toggle.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// ContextPercent returns how much of the model's window the conversation
// fills.
func (s *StatusBar) ContextPercent() float64 {
	window := model.GetModelInfo(s.Model).ContextWindow
	if window <= 0 {
		return 0
	}
	return float64(s.TokensUsed) * 100 / float64(window)
}

// View renders the status bar for the current width.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}
	t := s.theme

	left := []string{t.StatusValue.Render(s.Model)}
	if s.HistoryMode != "" {
		left = append(left, t.StatusKey.Render("history ")+t.StatusValue.Render(s.HistoryMode))
	}
	if s.Phase != "" {
		left = append(left, t.StatusKey.Render(s.Phase))
	}

	var right []string
	if width >= 60 {
		right = append(right, t.StatusKey.Render("ctx ")+
			styles.RenderProgressBar(10, s.ContextPercent())+" "+
			t.StatusKey.Render(FormatNumber(s.TokensUsed)+" tok"))
	}
	if width >= 100 {
		for _, sc := range s.Shortcuts {
			right = append(right, t.ShortcutKey.Render(sc.Key)+" "+t.ShortcutDesc.Render(sc.Desc))
		}
	}

	leftText := strings.Join(left, t.StatusKey.Render(" | "))
	rightText := strings.Join(right, "  ")

	inner := width - 2
	gap := inner - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	if gap < 1 {
		leftText = util.TruncateWidth(s.Model, inner)
		return t.StatusBar.Width(width).Render(leftText)
	}
	return t.StatusBar.Width(width).Render(leftText + strings.Repeat(" ", gap) + rightText)
}

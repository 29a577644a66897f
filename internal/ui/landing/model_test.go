// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package landing

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

func sized(width, height int) Model {
	m := New(styles.NewTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model)
}

func route(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected a navigation command")
	}
	nav, ok := cmd().(components.NavigateMsg)
	if !ok {
		t.Fatal("Expected NavigateMsg")
	}
	return nav.Route
}

func TestLanding_Navigation(t *testing.T) {
	m := sized(120, 40)

	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, components.RouteLogin},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")}, components.RouteLogin},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}, components.RouteChat},
	}
	for _, tc := range tests {
		_, cmd := m.Update(tc.msg)
		if got := route(t, cmd); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.msg.String(), tc.want, got)
		}
	}
}

func TestLanding_ContentSections(t *testing.T) {
	m := sized(140, 200)
	content := m.renderContent()

	for _, want := range []string{
		"Your Emotional AI Companion",
		"How It Works",
		"What Users Say",
		"Get Started Now",
		"Sarah J.",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Landing content missing %q", want)
		}
	}
	if !strings.Contains(m.View(), components.Brand) {
		t.Error("View should include the navbar brand")
	}
}

func TestLanding_Scroll(t *testing.T) {
	m := sized(50, 10)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if m.viewport.YOffset == 0 {
		t.Error("Down should scroll the content")
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	if m.viewport.YOffset != 0 {
		t.Errorf("Up should scroll back, offset %d", m.viewport.YOffset)
	}
}

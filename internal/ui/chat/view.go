// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.settings != nil {
		return m.renderSettings()
	}
	if m.showHelp {
		return m.renderHelp()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderThinking(),
		m.renderInput(),
	)
	if m.sidebarVisible() {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		main,
		m.statusBar.View(),
	)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	t := m.theme
	title := model.DefaultTitle
	if conv, ok := m.ctrl.Store().Active(); ok && conv.Title != "" {
		title = conv.Title
	}

	left := t.NavBrand.Render(components.Brand)
	right := t.Avatar.Render(m.profile.Initials())
	avail := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if avail < 0 {
		avail = 0
	}
	mid := t.RoleLabel.Render(util.TruncateWidth(title, avail))

	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	lg := gap / 2
	return t.Navbar.Width(m.width).Render(left + strings.Repeat(" ", lg) + mid + strings.Repeat(" ", gap-lg) + right)
}

func (m Model) renderSidebar() string {
	t := m.theme
	inner := sidebarWidth - 3 // border + padding

	var b strings.Builder
	b.WriteString(t.SidebarTitle.Render("Timelines"))
	b.WriteString("\n")

	for i, meta := range m.ctrl.Store().List() {
		label := util.PadRight(util.TruncateWidth(fmt.Sprintf("%d. %s", i+1, meta.Title), inner), inner)
		if meta.Active {
			b.WriteString(t.SidebarItemActive.Render(label))
		} else {
			b.WriteString(t.SidebarItem.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(t.SidebarMeta.Render(fmt.Sprintf("   %d messages", meta.MessageCount)))
		b.WriteString("\n")
	}

	height := m.viewport.Height + thinkingHeight + inputHeight
	return t.Sidebar.Width(sidebarWidth - 1).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderThinking() string {
	switch m.ctrl.Phase() {
	case PhaseAwaitingReply:
		return m.spinner.View() + " " + m.theme.ThinkingText.Render("LokiAI is thinking...")
	case PhaseRevealing:
		return m.theme.ThinkingText.Render("  Esc to skip")
	}
	return ""
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if !m.ctrl.CanSubmit() {
		style = m.theme.InputDisabled
	}
	return style.Width(m.viewport.Width - 2).Render(m.input.View())
}

func (m Model) renderHelp() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.FormTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for i, group := range m.keys.FullHelp() {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, kb := range group {
			h := kb.Help()
			b.WriteString(t.ShortcutKey.Render(util.PadRight(h.Key, 8)))
			b.WriteString(t.ShortcutDesc.Render(h.Desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(t.ShortcutDesc.Render("F1 or Esc to close"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, t.Overlay.Render(b.String()))
}

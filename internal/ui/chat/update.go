// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/storage"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/util"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refreshForce()
		return m, nil

	case tea.KeyMsg:
		if m.settings != nil {
			return m.handleSettingsKey(msg)
		}
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case TypeTickMsg:
		cmd := m.ctrl.HandleTick(msg)
		m.refresh()
		return m, cmd

	case spinner.TickMsg:
		if m.ctrl.Phase() != PhaseAwaitingReply {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case exportedMsg:
		if msg.Err != nil {
			return m, components.ShowToast(components.NewErrorToast("Export failed", msg.Err.Error()))
		}
		return m, components.ShowToast(components.NewSuccessToast("Exported", msg.Path))

	case copiedMsg:
		if msg.Err != nil {
			return m, components.ShowToast(components.NewErrorToast("Copy failed", msg.Err.Error()))
		}
		return m, components.ShowToast(components.NewSuccessToast("", "Copied last reply"))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	accepted := m.ctrl.Accepts(msg)
	cmd := m.ctrl.HandleReply(msg)
	m.refresh()

	if accepted && msg.Reply.Err != nil {
		// The fallback notice is already in the conversation; the toast
		// only explains why.
		return m, tea.Batch(cmd, components.ShowToast(components.NewErrorToast("LokiAI is unavailable", errorSummary(msg.Reply.Err))))
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl.Interrupt() {
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		if err := m.ctrl.NewConversation(); err != nil {
			return m, busyToast()
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PrevChat):
		return m.switchBy(-1)

	case key.Matches(msg, m.keys.NextChat):
		return m.switchBy(1)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd()

	case key.Matches(msg, m.keys.ToggleTheme):
		return m, toggleThemeCmd(string(m.profile.Theme.Toggle()))

	case key.Matches(msg, m.keys.Settings):
		m.settings = newSettingsForm(m.profile)
		m.syncInput()
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		m.showSidebar = !m.showSidebar
		m.layout()
		m.refreshForce()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m, func() tea.Msg { return SignOutMsg{} }
	}

	if !m.ctrl.CanSubmit() {
		// Input is disabled; keys still scroll.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	cmd := m.ctrl.Submit(m.input.Value())
	if cmd == nil {
		return m, nil
	}
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) switchBy(delta int) (tea.Model, tea.Cmd) {
	if err := m.ctrl.SwitchBy(delta); err != nil {
		if errors.Is(err, ErrBusy) {
			return m, busyToast()
		}
		log.Warn().Err(err).Msg("switch conversation")
		return m, nil
	}
	m.refresh()
	return m, nil
}

func busyToast() tea.Cmd {
	return components.ShowToast(components.NewStatusToast("", "Wait for LokiAI to finish replying."))
}

func toggleThemeCmd(theme string) tea.Cmd {
	return func() tea.Msg { return ThemeChangedMsg{Theme: theme} }
}

// errorSummary shortens an error chain for a toast.
func errorSummary(err error) string {
	s := err.Error()
	if i := strings.LastIndex(s, ": "); i > 0 && len(s) > 80 {
		s = s[i+2:]
	}
	return util.TruncateRunes(s, 120)
}

// =============================================================================
// EXPORT / CLIPBOARD
// =============================================================================

func (m Model) exportCmd() tea.Cmd {
	conv, ok := m.ctrl.Store().Active()
	if !ok {
		return nil
	}
	dir := m.exportDir
	return func() tea.Msg {
		path, err := storage.WriteExport(dir, conv, time.Now())
		return exportedMsg{Path: path, Err: err}
	}
}

func (m Model) copyCmd() tea.Cmd {
	conv, ok := m.ctrl.Store().Active()
	if !ok {
		return nil
	}
	last, ok := conv.LastAssistantMessage()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return copiedMsg{Err: clipboard.WriteAll(last.Content)}
	}
}

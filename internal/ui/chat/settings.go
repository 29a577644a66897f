// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/mail"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
	"github.com/jeranaias/loki-tui/internal/util"
)

// =============================================================================
// SETTINGS OVERLAY
// =============================================================================

// settingsForm edits the profile. Changes apply on save and last for the
// process only.
type settingsForm struct {
	name   textinput.Model
	email  textinput.Model
	avatar string
	focus  int
	err    string
}

func newSettingsForm(p model.Profile) *settingsForm {
	name := textinput.New()
	name.Prompt = ""
	name.CharLimit = 64
	name.SetValue(p.Name)
	name.Focus()

	email := textinput.New()
	email.Prompt = ""
	email.CharLimit = 128
	email.SetValue(p.Email)

	return &settingsForm{name: name, email: email, avatar: p.Avatar}
}

func (f *settingsForm) setFocus(i int) {
	f.focus = (i + 2) % 2
	if f.focus == 0 {
		f.name.Focus()
		f.email.Blur()
	} else {
		f.email.Focus()
		f.name.Blur()
	}
}

// validate returns the cleaned name and email, or sets err.
func (f *settingsForm) validate() (string, string, bool) {
	name := strings.TrimSpace(f.name.Value())
	email := strings.TrimSpace(f.email.Value())
	if name == "" {
		f.err = "Name cannot be empty."
		return "", "", false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		f.err = "Enter a valid email address."
		return "", "", false
	}
	f.err = ""
	return name, email, true
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.settings

	switch msg.String() {
	case "esc":
		m.settings = nil
		m.syncInput()
		return m, nil

	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil

	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil

	case "ctrl+r":
		f.avatar = model.RandomAvatar()
		return m, nil

	case "ctrl+t":
		return m, toggleThemeCmd(string(m.profile.Theme.Toggle()))

	case "enter":
		name, email, ok := f.validate()
		if !ok {
			return m, nil
		}
		m.profile.Name = name
		m.profile.Email = email
		m.profile.Avatar = f.avatar
		m.settings = nil
		m.refreshForce()
		return m, tea.Batch(
			func() tea.Msg { return ProfileUpdatedMsg{Name: name, Email: email} },
			components.ShowToast(components.NewSuccessToast("", "Profile updated")),
		)
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.name, cmd = f.name.Update(msg)
	} else {
		f.email, cmd = f.email.Update(msg)
	}
	return m, cmd
}

func (m Model) renderSettings() string {
	f := m.settings
	t := m.theme

	field := func(label string, in textinput.Model, focused bool) string {
		style := t.Field
		if focused {
			style = t.FieldFocused
		}
		return t.Label.Render(label) + "\n" + style.Width(40).Render(in.View())
	}

	var b strings.Builder
	b.WriteString(t.FormTitle.Render("Profile Settings"))
	b.WriteString("\n")
	b.WriteString(t.Avatar.Render(m.profile.Initials()) + " " + t.Timestamp.Render(util.TruncateRunes(f.avatar, 44)))
	b.WriteString("\n\n")
	b.WriteString(field("Name", f.name, f.focus == 0))
	b.WriteString("\n")
	b.WriteString(field("Email", f.email, f.focus == 1))
	b.WriteString("\n\n")
	b.WriteString(t.Label.Render("Theme ") + t.StatusValue.Render(string(m.profile.Theme)))
	if f.err != "" {
		b.WriteString("\n\n" + styles.RenderError(f.err))
	}
	b.WriteString("\n\n")
	b.WriteString(t.ShortcutDesc.Render("Enter save  Tab next  C-t theme  C-r new avatar  Esc close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, t.Overlay.Render(b.String()))
}

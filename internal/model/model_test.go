// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		want string
	}{
		{"no messages", nil, DefaultTitle},
		{"short first message", []Message{NewUserMessage("hi")}, "hi"},
		{"empty first message", []Message{NewUserMessage("")}, DefaultTitle},
		{"exactly thirty", []Message{NewUserMessage(strings.Repeat("a", 30))}, strings.Repeat("a", 30)},
		{"longer than thirty", []Message{NewUserMessage(strings.Repeat("b", 45))}, strings.Repeat("b", 30)},
		{"multibyte kept whole", []Message{NewUserMessage(strings.Repeat("é", 40))}, strings.Repeat("é", 30)},
		{"only first message counts", []Message{NewAssistantMessage("first"), NewUserMessage("second")}, "first"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.msgs))
		})
	}
}

func TestNewConversation_SeedsGreeting(t *testing.T) {
	c := NewConversation(DefaultGreeting)

	require.Len(t, c.Messages, 1)
	assert.Equal(t, RoleAssistant, c.Messages[0].Role)
	assert.Equal(t, DefaultGreeting, c.Messages[0].Content)
	assert.Equal(t, []rune(DefaultGreeting)[:TitleRunes], []rune(c.Title))
	assert.NotEmpty(t, c.ID)
}

func TestNewConversation_NoGreeting(t *testing.T) {
	c := NewConversation("")
	assert.True(t, c.IsEmpty())
	assert.Equal(t, DefaultTitle, c.Title)
}

func TestConversationIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := GenerateConversationID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestConversation_CloneDoesNotAlias(t *testing.T) {
	c := NewConversation(DefaultGreeting)
	clone := c.Clone()
	clone.Messages[0].Content = "changed"
	clone.Messages = append(clone.Messages, NewUserMessage("x"))

	assert.Equal(t, DefaultGreeting, c.Messages[0].Content)
	assert.Len(t, c.Messages, 1)
}

func TestConversation_LastAssistantMessage(t *testing.T) {
	c := NewConversation("")
	_, ok := c.LastAssistantMessage()
	assert.False(t, ok)

	c.SetMessages([]Message{NewAssistantMessage("a1"), NewUserMessage("u1")})
	m, ok := c.LastAssistantMessage()
	require.True(t, ok)
	assert.Equal(t, "a1", m.Content)

	last, ok := c.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "u1", last.Content)
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_Preview(t *testing.T) {
	m := NewUserMessage("first line is long enough\nsecond")
	assert.Equal(t, "first line is long enough", m.Preview(0))
	assert.Equal(t, "first l...", m.Preview(10))
	assert.Equal(t, "fir", m.Preview(3))
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "LokiAI", RoleAssistant.DisplayName())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("system").Valid())
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestNewProfile_Defaults(t *testing.T) {
	p := NewProfile("", "  ", "", "")
	assert.Equal(t, DefaultProfileName, p.Name)
	assert.Equal(t, DefaultProfileEmail, p.Email)
	assert.True(t, strings.HasPrefix(p.Avatar, avatarBaseURL+"?seed="))
	assert.Equal(t, ThemeDark, p.Theme)
	assert.Equal(t, "LV", p.Initials())
}

func TestTheme_Toggle(t *testing.T) {
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ParseTheme("LIGHT"))
	assert.Equal(t, ThemeDark, ParseTheme("bogus"))
}

// =============================================================================
// MODEL INFO TESTS
// =============================================================================

func TestGetModelInfo(t *testing.T) {
	info := GetModelInfo("GPT-3.5-Turbo")
	assert.Equal(t, "gpt-3.5-turbo", info.ID)
	assert.Equal(t, "16K ctx", info.ContextString())

	custom := GetModelInfo("my-model")
	assert.Equal(t, "my-model", custom.ID)
	assert.Equal(t, 4096, custom.ContextWindow)

	ids := KnownModelIDs()
	assert.Contains(t, ids, DefaultModel)
}

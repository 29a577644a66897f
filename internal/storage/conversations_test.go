// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/loki-tui/internal/model"
)

// =============================================================================
// CREATE / ACTIVE
// =============================================================================

func TestConversationStore_CreateSeedsAndActivates(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)

	_, ok := s.Active()
	assert.False(t, ok, "no active conversation before the first create")

	first := s.Create()
	require.Len(t, first.Messages, 1)
	assert.Equal(t, model.RoleAssistant, first.Messages[0].Role)

	second := s.Create()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second.ID, s.ActiveID())
	assert.Equal(t, 2, s.Len())
}

func TestConversationStore_ActiveReturnsCopy(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)
	conv := s.Create()

	active, ok := s.Active()
	require.True(t, ok)
	active.Messages = append(active.Messages, model.NewUserMessage("not committed"))

	again, _ := s.Active()
	assert.Len(t, again.Messages, 1)
	assert.Equal(t, conv.ID, again.ID)
}

func TestConversationStore_SetActive(t *testing.T) {
	s := NewConversationStore("")
	a := s.Create()
	s.Create()

	require.NoError(t, s.SetActive(a.ID))
	assert.Equal(t, a.ID, s.ActiveID())

	err := s.SetActive("missing")
	assert.True(t, errors.Is(err, ErrConversationNotFound))
	assert.Equal(t, a.ID, s.ActiveID())
}

// =============================================================================
// APPEND
// =============================================================================

func TestConversationStore_AppendMessagesRetitles(t *testing.T) {
	s := NewConversationStore("")
	conv := s.Create()
	assert.Equal(t, model.DefaultTitle, conv.Title)

	long := strings.Repeat("x", 50)
	msgs := []model.Message{model.NewUserMessage(long)}
	require.NoError(t, s.AppendMessages(conv.ID, msgs))

	got, _ := s.Get(conv.ID)
	assert.Equal(t, strings.Repeat("x", 30), got.Title)
	assert.Len(t, got.Messages, 1)
}

func TestConversationStore_AppendMessagesUnknownIDIsNoop(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)
	s.Create()
	rev := s.Revision()

	err := s.AppendMessages("missing", []model.Message{model.NewUserMessage("hi")})
	assert.NoError(t, err)
	assert.Equal(t, rev, s.Revision())
}

func TestConversationStore_AppendMessagesRejectsRewrite(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)
	conv := s.Create()
	greeting := conv.Messages[0]

	user := model.NewUserMessage("hello")
	require.NoError(t, s.AppendMessages(conv.ID, []model.Message{greeting, user}))

	// Dropping a message
	err := s.AppendMessages(conv.ID, []model.Message{greeting})
	assert.True(t, errors.Is(err, ErrHistoryRewrite))

	// Reordering
	err = s.AppendMessages(conv.ID, []model.Message{user, greeting})
	assert.True(t, errors.Is(err, ErrHistoryRewrite))

	got, _ := s.Get(conv.ID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, greeting.ID, got.Messages[0].ID)
	assert.Equal(t, user.ID, got.Messages[1].ID)
}

func TestConversationStore_AppendPreservesPrefix(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)
	conv := s.Create()

	var prefix []model.Message
	for i := 0; i < 5; i++ {
		before, _ := s.Get(conv.ID)
		prefix = before.Messages
		require.NoError(t, s.Append(conv.ID, model.NewUserMessage("u"), model.NewAssistantMessage("a")))
		after, _ := s.Get(conv.ID)
		assert.Equal(t, prefix, after.Messages[:len(prefix)])
	}
	got, _ := s.Get(conv.ID)
	assert.Len(t, got.Messages, 11)
}

func TestConversationStore_RevisionIncrements(t *testing.T) {
	s := NewConversationStore("")
	r0 := s.Revision()
	conv := s.Create()
	r1 := s.Revision()
	require.NoError(t, s.Append(conv.ID, model.NewUserMessage("x")))
	r2 := s.Revision()

	assert.Greater(t, r1, r0)
	assert.Greater(t, r2, r1)
}

// =============================================================================
// LIST / SEARCH
// =============================================================================

func TestConversationStore_ListAndSearch(t *testing.T) {
	s := NewConversationStore("")
	a := s.Create()
	b := s.Create()
	require.NoError(t, s.Append(a.ID, model.NewUserMessage("Tell me about the TVA")))
	require.NoError(t, s.Append(b.ID, model.NewUserMessage("Sacred timeline")))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.False(t, list[0].Active)
	assert.True(t, list[1].Active)
	assert.Equal(t, "Tell me about the TVA", list[0].Preview)

	found := s.Search("tva")
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)
	assert.Len(t, s.Search(""), 2)

	idx := s.IndexOf(b.ID)
	assert.Equal(t, 1, idx)
	id, err := s.IDAt(1)
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)
	_, err = s.IDAt(5)
	assert.Error(t, err)
}

func TestConversationStore_ConcurrentAccess(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)
	conv := s.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Append(conv.ID, model.NewUserMessage("m"))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Active()
			_ = s.List()
		}()
	}
	wg.Wait()

	got, _ := s.Get(conv.ID)
	assert.Len(t, got.Messages, 21)
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatConversationList(t *testing.T) {
	assert.Equal(t, "No conversations yet.", FormatConversationList(nil))

	s := NewConversationStore(model.DefaultGreeting)
	s.Create()
	out := FormatConversationList(s.List())
	assert.Contains(t, out, " * 1")
	assert.Contains(t, out, "Greetings, Variant.")
}

func TestExportMarkdown(t *testing.T) {
	s := NewConversationStore(model.DefaultGreeting)
	conv := s.Create()
	require.NoError(t, s.Append(conv.ID, model.NewUserMessage("hello")))
	got, _ := s.Get(conv.ID)

	md := ExportMarkdown(got)
	assert.True(t, strings.HasPrefix(md, "# "+got.Title))
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**LokiAI**")
	assert.Contains(t, md, "hello")
}

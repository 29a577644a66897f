// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle is shown for a conversation with no messages.
	DefaultTitle = "New Timeline"

	// TitleRunes is the number of leading characters of the first message
	// used as the conversation title.
	TitleRunes = 30

	// DefaultGreeting seeds every new conversation.
	DefaultGreeting = "Greetings, Variant. I'm LokiAI, your companion across every timeline. " +
		"How are you feeling today?"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered, append-only list of messages with a derived title.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates a conversation seeded with one assistant greeting.
// An empty greeting yields a conversation with no messages.
func NewConversation(greeting string) *Conversation {
	now := time.Now()
	c := &Conversation{
		ID:        GenerateConversationID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if greeting != "" {
		c.Messages = []Message{NewAssistantMessage(greeting)}
	}
	c.Title = DeriveTitle(c.Messages)
	return c
}

// SetMessages replaces the message list and recomputes the title.
func (c *Conversation) SetMessages(msgs []Message) {
	c.Messages = append([]Message(nil), msgs...)
	c.Title = DeriveTitle(c.Messages)
	c.UpdatedAt = time.Now()
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastAssistantMessage returns the most recent assistant message, if any.
func (c *Conversation) LastAssistantMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsAssistant() {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// Clone returns a deep copy so callers never alias the original slice.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Messages = append([]Message(nil), c.Messages...)
	return &clone
}

// DeriveTitle returns the first TitleRunes characters of the first message,
// or DefaultTitle when there is nothing to derive from.
func DeriveTitle(msgs []Message) string {
	if len(msgs) == 0 {
		return DefaultTitle
	}
	runes := []rune(msgs[0].Content)
	if len(runes) > TitleRunes {
		runes = runes[:TitleRunes]
	}
	if len(runes) == 0 {
		return DefaultTitle
	}
	return string(runes)
}

// GenerateConversationID returns a unique, time-ordered identifier.
func GenerateConversationID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

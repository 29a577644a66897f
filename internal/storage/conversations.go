// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/util"
)

// =============================================================================
// CONVERSATION META
// =============================================================================

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // First user message truncated
	Active       bool      `json:"active"`
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore is the in-memory collection of conversations.
// Exactly one conversation is active once the first has been created.
// Nothing is written to disk; contents live for the process lifetime.
type ConversationStore struct {
	mu       sync.RWMutex
	convs    []*model.Conversation
	byID     map[string]*model.Conversation
	activeID string
	revision uint64

	// Greeting seeds every new conversation. Empty means no seed.
	greeting string
}

// NewConversationStore creates an empty store whose conversations are seeded
// with greeting.
func NewConversationStore(greeting string) *ConversationStore {
	return &ConversationStore{
		byID:     make(map[string]*model.Conversation),
		greeting: greeting,
	}
}

// Create adds a new seeded conversation, makes it active, and returns a copy.
func (s *ConversationStore) Create() *model.Conversation {
	conv := model.NewConversation(s.greeting)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Time-ordered ids can collide within one clock tick on fast machines.
	for s.byID[conv.ID] != nil {
		conv.ID = model.GenerateConversationID()
	}
	s.convs = append(s.convs, conv)
	s.byID[conv.ID] = conv
	s.activeID = conv.ID
	s.revision++
	return conv.Clone()
}

// AppendMessages replaces the message list of conversation id with msgs and
// recomputes its title. An unknown id is a no-op. msgs must extend the
// current list; anything that would reorder or drop a committed message is
// rejected with ErrHistoryRewrite and leaves the conversation unchanged.
func (s *ConversationStore) AppendMessages(id string, msgs []model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[id]
	if !ok {
		return nil
	}
	if !extends(conv.Messages, msgs) {
		return ErrHistoryRewrite
	}
	conv.SetMessages(msgs)
	s.revision++
	return nil
}

// Append adds msgs to the end of conversation id.
func (s *ConversationStore) Append(id string, msgs ...model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[id]
	if !ok {
		return nil
	}
	next := make([]model.Message, 0, len(conv.Messages)+len(msgs))
	next = append(next, conv.Messages...)
	next = append(next, msgs...)
	conv.SetMessages(next)
	s.revision++
	return nil
}

// Active returns a copy of the active conversation.
func (s *ConversationStore) Active() (*model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byID[s.activeID]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// ActiveID returns the id of the active conversation, or "" before the first
// Create.
func (s *ConversationStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Get returns a copy of conversation id.
func (s *ConversationStore) Get(id string) (*model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// SetActive makes conversation id the active one.
func (s *ConversationStore) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrConversationNotFound
	}
	if s.activeID != id {
		s.activeID = id
		s.revision++
	}
	return nil
}

// IDAt returns the id of the conversation at index (creation order).
func (s *ConversationStore) IDAt(index int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.convs) {
		return "", ErrConversationNotFound
	}
	return s.convs[index].ID, nil
}

// IndexOf returns the creation-order index of id, or -1.
func (s *ConversationStore) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, c := range s.convs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// List returns metadata for every conversation in creation order.
func (s *ConversationStore) List() []ConversationMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]ConversationMeta, 0, len(s.convs))
	for _, c := range s.convs {
		metas = append(metas, ConversationMeta{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			MessageCount: len(c.Messages),
			Preview:      preview(c),
			Active:       c.ID == s.activeID,
		})
	}
	return metas
}

// Search returns conversations where any message contains query,
// case-insensitively. An empty query returns everything.
func (s *ConversationStore) Search(query string) []ConversationMeta {
	all := s.List()
	if query == "" {
		return all
	}
	query = strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []ConversationMeta
	for _, meta := range all {
		conv := s.byID[meta.ID]
		if conv == nil {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results
}

// Len returns the number of conversations.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}

// Revision increases on every mutation. Views compare it to decide whether
// to re-render and scroll to the newest message.
func (s *ConversationStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// extends reports whether next keeps every message of cur in place.
func extends(cur, next []model.Message) bool {
	if len(next) < len(cur) {
		return false
	}
	for i := range cur {
		if cur[i].ID != next[i].ID || cur[i].Content != next[i].Content || cur[i].Role != next[i].Role {
			return false
		}
	}
	return true
}

// preview returns the first user message truncated, or "".
func preview(c *model.Conversation) string {
	for _, msg := range c.Messages {
		if msg.IsUser() && msg.Content != "" {
			return util.TruncateRunes(util.SingleLine(msg.Content), 80)
		}
	}
	return ""
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

	// ErrHistoryRewrite is returned when an update would change messages
	// that were already committed.
	ErrHistoryRewrite = &ConversationError{Message: "conversation history is append-only"}
)

// ConversationError represents a conversation-related error.
// It can be compared using errors.Is.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

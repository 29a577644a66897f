// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/loki-tui/internal/cloud"
)

// =============================================================================
// COMPLETION MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of one completion request. Gen ties it to the
// submit that started it; replies for an older generation are dropped.
type ReplyMsg struct {
	Gen            uint64
	ConversationID string
	Reply          cloud.Reply
	Duration       time.Duration
}

// TypeTickMsg advances the typing effect.
type TypeTickMsg struct {
	Gen  uint64
	Time time.Time
}

// =============================================================================
// SCREEN MESSAGES
// =============================================================================

// ThemeChangedMsg is emitted when the settings overlay toggles the theme.
// The app re-themes every screen in response.
type ThemeChangedMsg struct {
	Theme string
}

// ProfileUpdatedMsg is emitted when the settings overlay saves the profile.
type ProfileUpdatedMsg struct {
	Name  string
	Email string
}

// SignOutMsg asks the app to drop the session and return to the landing
// screen.
type SignOutMsg struct{}

// exportedMsg reports the result of writing a conversation to disk.
type exportedMsg struct {
	Path string
	Err  error
}

// copiedMsg reports the result of a clipboard copy.
type copiedMsg struct {
	Err error
}

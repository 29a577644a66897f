// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the typing effect: a reply that has already arrived
// is revealed one rune per tick. Each reveal carries a generation number so
// ticks from a cancelled reveal are dropped instead of touching new state.

package chat

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRevealInterval is the period between revealed runes.
const DefaultRevealInterval = 10 * time.Millisecond

// generations numbers turns and reveals for the whole process, so a
// Controller or Typewriter never reuses a number issued by a disposed one.
var generations atomic.Uint64

func nextGen() uint64 {
	return generations.Add(1)
}

// =============================================================================
// TYPEWRITER
// =============================================================================

// Typewriter reveals one reply at a time. It is owned by the Controller and
// only touched from the Bubble Tea update loop.
type Typewriter struct {
	interval time.Duration

	gen    uint64
	active bool
	convID string
	full   []rune
	shown  int
}

// NewTypewriter creates a typewriter ticking every interval.
func NewTypewriter(interval time.Duration) *Typewriter {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Typewriter{interval: interval}
}

// SetInterval changes the period for the next reveal.
func (t *Typewriter) SetInterval(interval time.Duration) {
	if interval > 0 {
		t.interval = interval
	}
}

// Interval returns the reveal period.
func (t *Typewriter) Interval() time.Duration {
	return t.interval
}

// Start begins revealing text for convID and returns the first tick. It
// returns false, and schedules nothing, when text is empty or a reveal is
// already running; the caller commits empty text directly.
func (t *Typewriter) Start(convID, text string) (tea.Cmd, bool) {
	if t.active || text == "" {
		return nil, false
	}
	t.gen = nextGen()
	t.active = true
	t.convID = convID
	t.full = []rune(text)
	t.shown = 0
	return t.tick(), true
}

// Tick reveals the next rune. done is true exactly once per reveal, on the
// tick that shows the last rune; the typewriter is idle again after it.
// Ticks from another generation are ignored.
func (t *Typewriter) Tick(msg TypeTickMsg) (done bool, cmd tea.Cmd) {
	if !t.active || msg.Gen != t.gen {
		return false, nil
	}
	if t.shown < len(t.full) {
		t.shown++
	}
	if t.shown >= len(t.full) {
		t.active = false
		return true, nil
	}
	return false, t.tick()
}

// Finish stops the reveal and returns the full text so the caller can
// commit it at once.
func (t *Typewriter) Finish() (convID, text string, ok bool) {
	if !t.active {
		return "", "", false
	}
	convID, text = t.convID, string(t.full)
	t.reset()
	return convID, text, true
}

// Cancel stops the reveal without producing anything. Pending ticks become
// stale.
func (t *Typewriter) Cancel() {
	t.reset()
}

func (t *Typewriter) reset() {
	t.gen = nextGen()
	t.active = false
	t.convID = ""
	t.full = nil
	t.shown = 0
}

// Active reports whether a reveal is running.
func (t *Typewriter) Active() bool {
	return t.active
}

// ConversationID is the conversation the running reveal belongs to.
func (t *Typewriter) ConversationID() string {
	return t.convID
}

// Buffer returns the revealed prefix. It is empty when idle.
func (t *Typewriter) Buffer() string {
	if !t.active {
		return ""
	}
	return string(t.full[:t.shown])
}

// Full returns the complete text of the running reveal.
func (t *Typewriter) Full() string {
	return string(t.full)
}

func (t *Typewriter) tick() tea.Cmd {
	gen := t.gen
	return tea.Tick(t.interval, func(now time.Time) tea.Msg {
		return TypeTickMsg{Gen: gen, Time: now}
	})
}

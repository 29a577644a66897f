// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/storage"
)

// CancelledNotice is committed when the user abandons a pending request.
const CancelledNotice = "Request cancelled."

// ErrBusy is returned when an action needs the idle phase.
var ErrBusy = errors.New("a reply is still in progress")

// =============================================================================
// PHASE
// =============================================================================

// Phase is the state of the current turn.
type Phase int

const (
	// PhaseIdle accepts input.
	PhaseIdle Phase = iota
	// PhaseAwaitingReply has a completion request in flight.
	PhaseAwaitingReply
	// PhaseRevealing is running the typing effect.
	PhaseRevealing
)

// String returns the phase name shown in the status bar.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingReply:
		return "awaiting reply"
	case PhaseRevealing:
		return "revealing"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the turn state machine:
//
//	idle -> awaiting reply -> revealing -> idle
//	        awaiting reply -> idle (fallback or empty reply, notice committed at once)
//
// Every method runs on the Bubble Tea update loop. The only work done
// elsewhere is the completion call, which reads a copy of the history.
type Controller struct {
	store     *storage.ConversationStore
	responder *cloud.Responder
	typer     *Typewriter
	cancel    *cancelManager

	phase   Phase
	pending string // conversation awaiting a reply
	gen     uint64
	sentAt  time.Time
}

// NewController creates a controller and makes sure a conversation is
// active.
func NewController(store *storage.ConversationStore, responder *cloud.Responder, interval time.Duration) *Controller {
	c := &Controller{
		store:     store,
		responder: responder,
		typer:     NewTypewriter(interval),
		cancel:    newCancelManager(),
	}
	if _, ok := store.Active(); !ok {
		store.Create()
	}
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// CanSubmit reports whether input is accepted.
func (c *Controller) CanSubmit() bool {
	return c.phase == PhaseIdle
}

// Store returns the conversation store.
func (c *Controller) Store() *storage.ConversationStore {
	return c.store
}

// Typewriter returns the reveal driver.
func (c *Controller) Typewriter() *Typewriter {
	return c.typer
}

// Buffer returns the revealed prefix of the pending reply.
func (c *Controller) Buffer() string {
	return c.typer.Buffer()
}

// Submit appends a user message to the active conversation and starts the
// completion request. It returns nil and changes nothing when text is blank,
// no conversation is active or a turn is already in progress.
func (c *Controller) Submit(text string) tea.Cmd {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" || c.phase != PhaseIdle {
		return nil
	}
	conv, ok := c.store.Active()
	if !ok {
		return nil
	}

	user := model.NewUserMessage(text)
	if err := c.store.Append(conv.ID, user); err != nil {
		log.Error().Err(err).Str("conversation", conv.ID).Msg("append user message")
		return nil
	}
	history := append(conv.Messages, user)

	gen := nextGen()
	c.gen = gen
	c.phase = PhaseAwaitingReply
	c.pending = conv.ID
	c.sentAt = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel.set(cancel)

	log.Debug().Str("conversation", conv.ID).Int("history", len(history)).Msg("submitting turn")

	responder := c.responder
	start := c.sentAt
	return func() tea.Msg {
		reply := responder.Reply(ctx, history)
		return ReplyMsg{Gen: gen, ConversationID: conv.ID, Reply: reply, Duration: time.Since(start)}
	}
}

// Accepts reports whether msg answers the request currently in flight.
func (c *Controller) Accepts(msg ReplyMsg) bool {
	return c.phase == PhaseAwaitingReply && msg.Gen == c.gen && msg.ConversationID == c.pending
}

// HandleReply moves awaiting reply to revealing, or straight to idle when
// the reply is a fallback notice. Stale replies are ignored.
func (c *Controller) HandleReply(msg ReplyMsg) tea.Cmd {
	if !c.Accepts(msg) {
		log.Debug().Uint64("gen", msg.Gen).Msg("dropping stale reply")
		return nil
	}
	c.cancel.cancel()

	log.Debug().
		Bool("fallback", msg.Reply.Fallback).
		Dur("duration", msg.Duration).
		Int("chars", len(msg.Reply.Content)).
		Msg("reply received")

	if msg.Reply.Fallback {
		c.commit(msg.ConversationID, msg.Reply.Content)
		return nil
	}
	if strings.TrimSpace(msg.Reply.Content) == "" {
		c.commit(msg.ConversationID, cloud.NoResponseNotice)
		return nil
	}

	cmd, started := c.typer.Start(msg.ConversationID, msg.Reply.Content)
	if !started {
		c.commit(msg.ConversationID, msg.Reply.Content)
		return nil
	}
	c.phase = PhaseRevealing
	return cmd
}

// HandleTick advances the reveal and commits the reply on its last rune.
func (c *Controller) HandleTick(msg TypeTickMsg) tea.Cmd {
	if c.phase != PhaseRevealing {
		return nil
	}
	done, cmd := c.typer.Tick(msg)
	if done {
		c.commit(c.typer.ConversationID(), c.typer.Full())
	}
	return cmd
}

// Interrupt handles the cancel key. An awaiting request is abandoned with
// CancelledNotice; a running reveal is completed at once.
func (c *Controller) Interrupt() bool {
	switch c.phase {
	case PhaseAwaitingReply:
		c.cancel.cancel()
		c.gen = nextGen()
		c.commit(c.pending, CancelledNotice)
		return true
	case PhaseRevealing:
		if convID, text, ok := c.typer.Finish(); ok {
			c.commit(convID, text)
		}
		return true
	default:
		return false
	}
}

// Teardown stops all in-flight work when the view goes away. Nothing is
// committed afterwards: late replies and ticks are stale.
func (c *Controller) Teardown() {
	c.cancel.cancel()
	c.typer.Cancel()
	c.gen = nextGen()
	c.phase = PhaseIdle
	c.pending = ""
}

// NewConversation creates and activates a conversation. Only allowed when
// idle.
func (c *Controller) NewConversation() error {
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	c.store.Create()
	return nil
}

// SwitchTo activates conversation id. Only allowed when idle.
func (c *Controller) SwitchTo(id string) error {
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	return c.store.SetActive(id)
}

// SwitchBy moves the active conversation delta places in list order,
// wrapping around.
func (c *Controller) SwitchBy(delta int) error {
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	n := c.store.Len()
	if n == 0 {
		return nil
	}
	idx := c.store.IndexOf(c.store.ActiveID())
	next := ((idx+delta)%n + n) % n
	id, err := c.store.IDAt(next)
	if err != nil {
		return err
	}
	return c.store.SetActive(id)
}

// DisplayMessages returns the active conversation's messages plus, during a
// reveal, a partial assistant message holding the revealed prefix.
func (c *Controller) DisplayMessages() []model.Message {
	conv, ok := c.store.Active()
	if !ok {
		return nil
	}
	msgs := conv.Messages
	if c.phase == PhaseRevealing && c.typer.ConversationID() == conv.ID {
		msgs = append(msgs, model.Message{Role: model.RoleAssistant, Content: c.typer.Buffer()})
	}
	return msgs
}

// commit appends the assistant message, clears the buffer and returns to
// idle. It runs on every exit path of a turn.
func (c *Controller) commit(convID, text string) {
	if err := c.store.Append(convID, model.NewAssistantMessage(text)); err != nil {
		log.Error().Err(err).Str("conversation", convID).Msg("commit reply")
	}
	c.typer.Cancel()
	c.phase = PhaseIdle
	c.pending = ""
}

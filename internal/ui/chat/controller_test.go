// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

func newTestController(fn cloud.CompleterFunc) *Controller {
	store := storage.NewConversationStore(model.DefaultGreeting)
	return NewController(store, cloud.NewResponder(fn), time.Millisecond)
}

func replyWith(content string, err error) cloud.CompleterFunc {
	return func(ctx context.Context, history []model.Message) (string, error) {
		return content, err
	}
}

// runReply executes the submit command and feeds its ReplyMsg back.
func runReply(t *testing.T, c *Controller, text string) ReplyMsg {
	t.Helper()
	cmd := c.Submit(text)
	if cmd == nil {
		t.Fatalf("Submit(%q) returned nil", text)
	}
	msg, ok := cmd().(ReplyMsg)
	if !ok {
		t.Fatalf("Expected ReplyMsg, got %T", msg)
	}
	return msg
}

// drainReveal ticks until the controller is idle and returns the buffer
// seen after every tick.
func drainReveal(c *Controller) []string {
	var seen []string
	for i := 0; c.Phase() == PhaseRevealing && i < 10000; i++ {
		c.HandleTick(TypeTickMsg{Gen: c.typer.gen})
		seen = append(seen, c.Buffer())
	}
	return seen
}

func activeMessages(t *testing.T, c *Controller) []model.Message {
	t.Helper()
	conv, ok := c.Store().Active()
	if !ok {
		t.Fatal("No active conversation")
	}
	return conv.Messages
}

// =============================================================================
// TURN SCENARIOS
// =============================================================================

func TestController_StartsWithGreeting(t *testing.T) {
	c := newTestController(replyWith("", nil))
	msgs := activeMessages(t, c)
	if len(msgs) != 1 || !msgs[0].IsAssistant() || msgs[0].Content != model.DefaultGreeting {
		t.Fatalf("Expected one greeting message, got %+v", msgs)
	}
	if c.Phase() != PhaseIdle || !c.CanSubmit() {
		t.Error("New controller should be idle")
	}
}

func TestController_SuccessfulTurn(t *testing.T) {
	var sent []model.Message
	c := newTestController(func(ctx context.Context, history []model.Message) (string, error) {
		sent = history
		return "Hi there!", nil
	})

	msg := runReply(t, c, "  Hello  ")
	if c.Phase() != PhaseAwaitingReply {
		t.Errorf("Expected awaiting reply, got %s", c.Phase())
	}
	if len(sent) != 2 || sent[1].Content != "Hello" {
		t.Errorf("Expected greeting plus trimmed user message, got %+v", sent)
	}

	if cmd := c.HandleReply(msg); cmd == nil {
		t.Fatal("Expected a tick command to start the reveal")
	}
	if c.Phase() != PhaseRevealing {
		t.Fatalf("Expected revealing, got %s", c.Phase())
	}

	display := c.DisplayMessages()
	if len(display) != 3 || display[2].Content != "" {
		t.Errorf("Expected an empty partial message, got %+v", display)
	}

	seen := drainReveal(c)
	if len(seen) != len("Hi there!") {
		t.Errorf("Expected %d ticks, got %d", len("Hi there!"), len(seen))
	}
	for i := 0; i < len(seen)-1; i++ {
		if !strings.HasPrefix("Hi there!", seen[i]) {
			t.Errorf("Buffer %q is not a prefix of the reply", seen[i])
		}
	}

	msgs := activeMessages(t, c)
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Role != model.RoleUser || msgs[1].Content != "Hello" {
		t.Errorf("Unexpected user message %+v", msgs[1])
	}
	if msgs[2].Role != model.RoleAssistant || msgs[2].Content != "Hi there!" {
		t.Errorf("Unexpected assistant message %+v", msgs[2])
	}
	if c.Phase() != PhaseIdle || c.Buffer() != "" {
		t.Error("Expected idle with an empty buffer after the reveal")
	}
}

func TestController_FallbackCommittedImmediately(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server error", &cloud.StatusError{Status: 500}, cloud.ErrorNotice},
		{"no choices", cloud.ErrNoChoices, cloud.NoResponseNotice},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestController(replyWith("", tc.err))
			msg := runReply(t, c, "Hello")

			if cmd := c.HandleReply(msg); cmd != nil {
				t.Error("Fallback replies should not start a reveal")
			}
			if c.Phase() != PhaseIdle {
				t.Errorf("Expected idle, got %s", c.Phase())
			}
			msgs := activeMessages(t, c)
			if len(msgs) != 3 || msgs[2].Content != tc.want {
				t.Errorf("Expected %q as the last message, got %+v", tc.want, msgs)
			}
		})
	}
}

func TestController_EmptyReplyCommitsNotice(t *testing.T) {
	c := newTestController(replyWith("x", nil))
	msg := runReply(t, c, "Hello")
	msg.Reply = cloud.Reply{Content: " \n"}

	if cmd := c.HandleReply(msg); cmd != nil {
		t.Error("Empty reply should not schedule ticks")
	}
	msgs := activeMessages(t, c)
	if len(msgs) != 3 || !msgs[2].IsAssistant() || msgs[2].Content != cloud.NoResponseNotice {
		t.Errorf("Expected the no-response notice, got %+v", msgs)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("Expected idle, got %s", c.Phase())
	}
}

func TestController_ReplyFromDisposedControllerIgnored(t *testing.T) {
	old := newTestController(replyWith("from the old screen", nil))
	late := runReply(t, old, "question in A")
	old.Teardown()

	c := newTestController(replyWith("from the new screen", nil))
	own := runReply(t, c, "question in B")

	if c.Accepts(late) {
		t.Fatalf("Reply %d from a disposed controller accepted (own %d)", late.Gen, own.Gen)
	}
	if cmd := c.HandleReply(late); cmd != nil {
		t.Error("Stale reply should not start a reveal")
	}
	if c.Phase() != PhaseAwaitingReply {
		t.Fatalf("Expected awaiting reply, got %s", c.Phase())
	}

	c.HandleReply(own)
	drainReveal(c)

	msgs := activeMessages(t, c)
	if len(msgs) != 3 || msgs[2].Content != "from the new screen" {
		t.Errorf("Expected greeting+user+assistant, got %+v", msgs)
	}
}

func TestController_AcceptsRequiresPendingConversation(t *testing.T) {
	c := newTestController(replyWith("ok", nil))
	msg := runReply(t, c, "Hello")

	other := msg
	other.ConversationID = "elsewhere"
	if c.Accepts(other) {
		t.Error("Reply for another conversation should be rejected")
	}
	if !c.Accepts(msg) {
		t.Error("Reply for the pending conversation should be accepted")
	}
}

func TestController_BlankInputIgnored(t *testing.T) {
	c := newTestController(replyWith("unused", nil))
	for _, text := range []string{"", "   ", "\n\t"} {
		if cmd := c.Submit(text); cmd != nil {
			t.Errorf("Submit(%q) should be a no-op", text)
		}
	}
	if n := len(activeMessages(t, c)); n != 1 {
		t.Errorf("Expected only the greeting, got %d messages", n)
	}
	if c.Phase() != PhaseIdle {
		t.Error("Blank input should not leave idle")
	}
}

// =============================================================================
// GUARDS
// =============================================================================

func TestController_BusyGuards(t *testing.T) {
	c := newTestController(replyWith("Hi", nil))
	msg := runReply(t, c, "Hello")

	if cmd := c.Submit("again"); cmd != nil {
		t.Error("Submit should be refused while awaiting")
	}
	if err := c.NewConversation(); err != ErrBusy {
		t.Errorf("Expected ErrBusy from NewConversation, got %v", err)
	}
	if err := c.SwitchBy(1); err != ErrBusy {
		t.Errorf("Expected ErrBusy from SwitchBy, got %v", err)
	}
	if err := c.SwitchTo(c.Store().ActiveID()); err != ErrBusy {
		t.Errorf("Expected ErrBusy from SwitchTo, got %v", err)
	}

	c.HandleReply(msg)
	if c.Phase() != PhaseRevealing {
		t.Fatalf("Expected revealing, got %s", c.Phase())
	}
	if cmd := c.Submit("again"); cmd != nil {
		t.Error("Submit should be refused while revealing")
	}
	if err := c.NewConversation(); err != ErrBusy {
		t.Errorf("Expected ErrBusy while revealing, got %v", err)
	}
	if c.Store().Len() != 1 {
		t.Errorf("No conversation should have been created, got %d", c.Store().Len())
	}
}

func TestController_InterruptWhileAwaiting(t *testing.T) {
	c := newTestController(func(ctx context.Context, history []model.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	cmd := c.Submit("Hello")
	if !c.Interrupt() {
		t.Fatal("Interrupt should act while awaiting")
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("Expected idle, got %s", c.Phase())
	}

	// The cancelled request still delivers a message; it must be dropped.
	late := cmd().(ReplyMsg)
	if c.Accepts(late) {
		t.Error("Late reply should be stale")
	}
	c.HandleReply(late)

	msgs := activeMessages(t, c)
	if len(msgs) != 3 || msgs[2].Content != CancelledNotice {
		t.Errorf("Expected exactly one cancellation notice, got %+v", msgs)
	}
}

func TestController_InterruptWhileRevealing(t *testing.T) {
	c := newTestController(replyWith("A long reply", nil))
	msg := runReply(t, c, "Hello")
	c.HandleReply(msg)
	gen := c.typer.gen
	c.HandleTick(TypeTickMsg{Gen: gen})

	if !c.Interrupt() {
		t.Fatal("Interrupt should act while revealing")
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("Expected idle, got %s", c.Phase())
	}
	if cmd := c.HandleTick(TypeTickMsg{Gen: gen}); cmd != nil {
		t.Error("Ticks after skipping should be ignored")
	}

	msgs := activeMessages(t, c)
	if len(msgs) != 3 || msgs[2].Content != "A long reply" {
		t.Errorf("Expected the full reply committed once, got %+v", msgs)
	}
	if c.Interrupt() {
		t.Error("Interrupt should do nothing when idle")
	}
}

func TestController_Teardown(t *testing.T) {
	c := newTestController(replyWith("Hi", nil))
	msg := runReply(t, c, "Hello")

	c.Teardown()
	if c.Phase() != PhaseIdle {
		t.Errorf("Expected idle after teardown, got %s", c.Phase())
	}
	if cmd := c.HandleReply(msg); cmd != nil {
		t.Error("Reply after teardown should be dropped")
	}
	if n := len(activeMessages(t, c)); n != 2 {
		t.Errorf("Expected no assistant message after teardown, got %d messages", n)
	}
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func TestController_SwitchByWraps(t *testing.T) {
	c := newTestController(replyWith("Hi", nil))
	first := c.Store().ActiveID()
	if err := c.NewConversation(); err != nil {
		t.Fatal(err)
	}
	if err := c.NewConversation(); err != nil {
		t.Fatal(err)
	}
	third := c.Store().ActiveID()

	if err := c.SwitchBy(1); err != nil {
		t.Fatal(err)
	}
	if c.Store().ActiveID() != first {
		t.Error("SwitchBy(1) from the last conversation should wrap to the first")
	}
	if err := c.SwitchBy(-1); err != nil {
		t.Fatal(err)
	}
	if c.Store().ActiveID() != third {
		t.Error("SwitchBy(-1) from the first conversation should wrap to the last")
	}
}

func TestController_TurnsStayInTheirConversation(t *testing.T) {
	c := newTestController(replyWith("one", nil))
	firstID := c.Store().ActiveID()
	c.HandleReply(runReply(t, c, "first"))
	drainReveal(c)

	if err := c.NewConversation(); err != nil {
		t.Fatal(err)
	}
	if n := len(activeMessages(t, c)); n != 1 {
		t.Errorf("New conversation should hold only the greeting, got %d", n)
	}

	first, _ := c.Store().Get(firstID)
	if len(first.Messages) != 3 {
		t.Errorf("First conversation should keep its turn, got %d messages", len(first.Messages))
	}
}

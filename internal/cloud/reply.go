// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/model"
)

// Fallback texts shown as assistant messages when no real reply exists.
const (
	ErrorNotice      = "⚠️ Sorry, I couldn't get a response. Please try again later."
	NoResponseNotice = "No response received. Try asking again."
)

// Reply is the outcome of one turn. Content is always safe to show: when
// Fallback is set it holds a notice and Err holds the cause, if any.
type Reply struct {
	Content  string
	Fallback bool
	Err      error
}

// Responder turns every Completer outcome into a displayable Reply so
// callers never branch on transport errors.
type Responder struct {
	completer Completer
}

// NewResponder wraps completer.
func NewResponder(completer Completer) *Responder {
	return &Responder{completer: completer}
}

// Reply asks for the next assistant message.
//
// Errors (transport, non-success status, cancellation) yield ErrorNotice.
// A reply without choices or with blank content yields NoResponseNotice.
func (r *Responder) Reply(ctx context.Context, history []model.Message) Reply {
	content, err := r.completer.Complete(ctx, history)
	switch {
	case errors.Is(err, ErrNoChoices):
		log.Warn().Msg("completion returned no choices")
		return Reply{Content: NoResponseNotice, Fallback: true, Err: err}
	case err != nil:
		log.Error().Err(err).Msg("completion failed")
		return Reply{Content: ErrorNotice, Fallback: true, Err: err}
	case strings.TrimSpace(content) == "":
		log.Warn().Msg("completion returned empty content")
		return Reply{Content: NoResponseNotice, Fallback: true}
	default:
		return Reply{Content: content}
	}
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, history []model.Message) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, history []model.Message) (string, error) {
	return f(ctx, history)
}

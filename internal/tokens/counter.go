// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokens counts prompt tokens for chat completion requests.
package tokens

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"github.com/jeranaias/loki-tui/internal/model"
)

// perMessageOverhead approximates the role and separator tokens the chat
// format adds around every message.
const perMessageOverhead = 4

// Counter counts tokens with the cl100k codec used by the GPT-3.5 and GPT-4
// families. When the codec cannot be loaded it falls back to an estimate of
// four characters per token.
type Counter struct {
	codec tokenizer.Codec
}

var (
	defaultCounter *Counter
	defaultOnce    sync.Once
)

// Default returns a shared counter, loading the codec on first use.
func Default() *Counter {
	defaultOnce.Do(func() {
		defaultCounter = New(model.DefaultModel)
	})
	return defaultCounter
}

// New creates a counter for modelID. Unknown models use cl100k.
func New(modelID string) *Counter {
	codec, err := tokenizer.ForModel(tokenizer.Model(modelID))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
	}
	if err != nil {
		log.Warn().Err(err).Str("model", modelID).Msg("tokenizer unavailable, using estimate")
		return &Counter{}
	}
	return &Counter{codec: codec}
}

// Estimated reports whether counts are estimates rather than exact.
func (c *Counter) Estimated() bool {
	return c == nil || c.codec == nil
}

// Count returns the number of tokens in s.
func (c *Counter) Count(s string) int {
	if s == "" {
		return 0
	}
	if c.Estimated() {
		return Estimate(s)
	}
	ids, _, err := c.codec.Encode(s)
	if err != nil {
		return Estimate(s)
	}
	return len(ids)
}

// CountMessage returns the tokens a message costs inside a chat request.
func (c *Counter) CountMessage(m model.Message) int {
	return c.Count(m.Content) + perMessageOverhead
}

// CountMessages sums CountMessage over msgs.
func (c *Counter) CountMessages(msgs []model.Message) int {
	total := 0
	for _, m := range msgs {
		total += c.CountMessage(m)
	}
	return total
}

// Estimate approximates the token count of s at four characters per token.
func Estimate(s string) int {
	return (len(s) + 3) / 4
}

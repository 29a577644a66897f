// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/tokens"
)

// BuildMessages converts a conversation into request messages.
//
// In single mode only the latest user message is sent. In full mode the
// whole conversation is sent, dropping the oldest messages until the token
// count fits budget; the newest message is always kept.
func BuildMessages(mode string, history []model.Message, counter *tokens.Counter, budget int) []openai.ChatCompletionMessage {
	var selected []model.Message
	switch mode {
	case config.HistoryFull:
		selected = TrimToBudget(history, counter, budget)
	default:
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].IsUser() {
				selected = []model.Message{history[i]}
				break
			}
		}
	}

	out := make([]openai.ChatCompletionMessage, 0, len(selected))
	for _, m := range selected {
		out = append(out, toWire(m))
	}
	return out
}

// TrimToBudget drops messages from the front of history until the rest fit
// in budget tokens. A non-positive budget disables trimming.
func TrimToBudget(history []model.Message, counter *tokens.Counter, budget int) []model.Message {
	if len(history) == 0 {
		return nil
	}
	if budget <= 0 {
		return history
	}

	start := 0
	total := counter.CountMessages(history)
	for total > budget && start < len(history)-1 {
		total -= counter.CountMessage(history[start])
		start++
	}
	return history[start:]
}

func toWire(m model.Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if m.Role == model.RoleAssistant {
		role = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionMessage{Role: role, Content: m.Content}
}

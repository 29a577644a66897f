// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud is the remote chat completion client.
//
// Client speaks the OpenAI chat completion API through go-openai, with a
// per-call timeout, client-side pacing and retries on 429/5xx. Responder
// sits on top and converts every failure into a fallback assistant text.
//
// # Key Types
//
//   - Client: Completer backed by an OpenAI-compatible endpoint
//   - Responder: maps outcomes to a displayable Reply
//   - UsageTracker: token usage reported by the API
//
// # Usage
//
//	client := cloud.NewClient(cfg.Completion)
//	reply := cloud.NewResponder(client).Reply(ctx, conv.Messages)
//	fmt.Println(reply.Content)
//
// API keys are never logged; KeyFingerprint identifies them instead.
package cloud

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: append-only list of messages with a derived title
//   - Message: single message with role, content and timestamp
//   - Profile: locally editable user identity and theme
//   - ModelInfo: information about a completion model
//
// # Usage
//
//	conv := model.NewConversation(model.DefaultGreeting)
//	conv.SetMessages(append(conv.Messages, model.NewUserMessage("Hello!")))
//	fmt.Println(conv.Title)
package model

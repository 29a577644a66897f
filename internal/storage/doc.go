// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage holds the in-memory conversation store.
//
// The store keeps every conversation created during the process lifetime and
// tracks which one is active. Message lists only ever grow: AppendMessages
// accepts a replacement list only if it extends the committed one.
//
// Usage:
//
//	store := storage.NewConversationStore(model.DefaultGreeting)
//	conv := store.Create()
//	_ = store.Append(conv.ID, model.NewUserMessage("hello"))
//	active, _ := store.Active()
//
// Every mutation increments Revision so views know when to re-render.
//
// Exports are the only thing written to disk: WriteExport saves one
// conversation as Markdown on explicit request.
package storage

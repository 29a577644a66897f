// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the chat screen.
//
// A Controller owns the turn state machine: idle, awaiting a reply, and
// revealing the reply through the Typewriter. Only idle accepts a new
// submission or a conversation switch. Every submission ends with exactly
// one assistant message, whether the request succeeds, fails or is
// cancelled. The Model wraps the Controller in a Bubble Tea screen with a
// sidebar, message viewport, input box and status bar.
package chat

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the loki command tree.
//
//	loki                  full-screen client (landing, sign in, chat)
//	loki ask <prompt>     one-shot question, Markdown on a terminal
//	loki repl             line-mode chat with /new, /list, /switch, /export
//	loki config ...       show, get, check, path, init
//	loki version
//
// Every command loads the config once in the root PersistentPreRunE: .env
// files first, then the config file, then LOKI_* variables, then flags.
// Logging goes to ~/.loki/loki.log so it never corrupts the alternate screen.
package cli

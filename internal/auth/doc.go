// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth signs users in for the chat screen.
//
// Three providers exist: LocalProvider keeps bcrypt-hashed accounts in
// memory and mints HS256 tokens, SupabaseProvider talks to a Supabase
// project's auth API, and NoopProvider accepts anyone. Password-checking
// providers are wrapped by WithLockout, which locks an email after
// repeated failures.
package auth

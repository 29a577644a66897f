// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for loki.
//
// TOML, YAML and JSON files are accepted, with defaults, .env support,
// environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: main configuration structure
//   - CompletionConfig: endpoint, model, timeouts and history mode
//   - AuthConfig: sign-in provider and lockout policy
//   - UIConfig: theme, typing speed and start screen
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LOKI_*, OPENAI_API_KEY, SUPABASE_*), including
//     those read from .env files
//   - --config flag, or the first of ~/.loki/config.{toml,yaml,json}
//   - Built-in defaults
//
// # Usage
//
//	config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	go config.Watch(ctx, path, 0, func(c *config.Config) { ... })
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a completion model the client knows about.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// ContextWindow is the maximum prompt plus completion size in tokens
	ContextWindow int `json:"context_window"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`
}

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// Models is the registry of well-known chat completion models.
var Models = map[string]ModelInfo{
	"gpt-3.5-turbo": {
		ID:            "gpt-3.5-turbo",
		Name:          "GPT-3.5 Turbo",
		ContextWindow: 16385,
		Description:   "Fast and inexpensive",
	},
	"gpt-4o": {
		ID:            "gpt-4o",
		Name:          "GPT-4o",
		ContextWindow: 128000,
		Description:   "Fast multimodal flagship",
	},
	"gpt-4o-mini": {
		ID:            "gpt-4o-mini",
		Name:          "GPT-4o Mini",
		ContextWindow: 128000,
		Description:   "Cost-effective for simple tasks",
	},
	"gpt-4-turbo": {
		ID:            "gpt-4-turbo",
		Name:          "GPT-4 Turbo",
		ContextWindow: 128000,
		Description:   "Strong reasoning",
	},
}

// GetModelInfo returns the registry entry for id, or a generic entry for
// models the registry does not know. Lookup is case-insensitive.
func GetModelInfo(id string) ModelInfo {
	if info, ok := Models[strings.ToLower(id)]; ok {
		return info
	}
	return ModelInfo{
		ID:            id,
		Name:          id,
		ContextWindow: 4096,
		Description:   "Custom model",
	}
}

// KnownModelIDs returns the registry keys in sorted order.
func KnownModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for id := range Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ContextString formats the context window for display, e.g. "16K ctx".
func (m ModelInfo) ContextString() string {
	if m.ContextWindow >= 1000 {
		return fmt.Sprintf("%dK ctx", m.ContextWindow/1000)
	}
	return fmt.Sprintf("%d ctx", m.ContextWindow)
}

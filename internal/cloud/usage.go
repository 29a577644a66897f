// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"sync"
	"time"
)

// TokenCount tracks prompt and completion tokens.
type TokenCount struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// Total returns prompt plus completion tokens.
func (t TokenCount) Total() int {
	return t.Prompt + t.Completion
}

// UsageSnapshot is a point-in-time copy of the tracked usage.
type UsageSnapshot struct {
	Requests  int                   `json:"requests"`
	Tokens    TokenCount            `json:"tokens"`
	ByModel   map[string]TokenCount `json:"by_model"`
	StartTime time.Time             `json:"start_time"`
	LastCall  time.Time             `json:"last_call"`
}

// UsageTracker accumulates token usage reported by the API for the process
// lifetime. Nothing is persisted.
type UsageTracker struct {
	mu       sync.RWMutex
	requests int
	total    TokenCount
	byModel  map[string]TokenCount
	start    time.Time
	last     time.Time
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		byModel: make(map[string]TokenCount),
		start:   time.Now(),
	}
}

// Record adds one response's usage.
func (u *UsageTracker) Record(modelID string, prompt, completion int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.requests++
	u.total.Prompt += prompt
	u.total.Completion += completion
	m := u.byModel[modelID]
	m.Prompt += prompt
	m.Completion += completion
	u.byModel[modelID] = m
	u.last = time.Now()
}

// Snapshot returns a copy of the current totals.
func (u *UsageTracker) Snapshot() UsageSnapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	byModel := make(map[string]TokenCount, len(u.byModel))
	for k, v := range u.byModel {
		byModel[k] = v
	}
	return UsageSnapshot{
		Requests:  u.requests,
		Tokens:    u.total,
		ByModel:   byModel,
		StartTime: u.start,
		LastCall:  u.last,
	}
}

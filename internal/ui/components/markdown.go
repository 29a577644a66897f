// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// MarkdownRenderer renders assistant replies with glamour. Renderers are
// built per (style, width) and cached, since building one is expensive.
type MarkdownRenderer struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer for a glamour style name ("dark",
// "light", "notty", ...). "auto" and "" use glamour's detection.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// SetStyle switches style and drops cached renderers.
func (r *MarkdownRenderer) SetStyle(style string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if style == r.style {
		return
	}
	r.style = style
	r.renderers = make(map[int]*glamour.TermRenderer)
}

// Style returns the current style name.
func (r *MarkdownRenderer) Style() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// Render returns content rendered for width. On any failure the content is
// returned unchanged.
func (r *MarkdownRenderer) Render(content string, width int) string {
	if r == nil || strings.TrimSpace(content) == "" {
		return content
	}
	tr := r.renderer(width)
	if tr == nil {
		return content
	}
	out, err := tr.Render(content)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed")
		return content
	}
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) renderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.renderers[width]; ok {
		return tr
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if r.style == "" || r.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		log.Warn().Err(err).Str("style", r.style).Msg("markdown renderer unavailable")
		return nil
	}
	r.renderers[width] = tr
	return tr
}

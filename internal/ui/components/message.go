// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// timestampFormat is shown under each bubble.
const timestampFormat = "15:04"

// MessageOptions control how RenderMessage draws one message.
type MessageOptions struct {
	Width     int
	Theme     *styles.Theme
	Markdown  *MarkdownRenderer
	UserLabel string // initials for the user avatar

	// Partial marks an assistant message that is still being revealed. It
	// is drawn as plain text with a cursor so the layout does not jump as
	// markdown constructs open and close.
	Partial bool
}

// RenderMessage draws a message as a bubble: assistant on the left with the
// Loki avatar, user on the right with the profile initials.
func RenderMessage(msg model.Message, opts MessageOptions) string {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	width := opts.Width
	if width < 30 {
		width = 30
	}
	bubbleWidth := width * 3 / 4
	innerWidth := bubbleWidth - 4

	var body string
	switch {
	case msg.IsUser():
		body = lipgloss.NewStyle().Width(innerWidth).Render(msg.Content)
	case opts.Partial:
		body = lipgloss.NewStyle().Width(innerWidth).Render(msg.Content + "▌")
	case opts.Markdown == nil:
		body = lipgloss.NewStyle().Width(innerWidth).Render(msg.Content)
	default:
		body = opts.Markdown.Render(msg.Content, innerWidth)
	}

	label := theme.RoleLabel.Render(msg.Role.DisplayName())
	if !msg.Timestamp.IsZero() {
		label += " " + theme.Timestamp.Render(msg.Timestamp.Format(timestampFormat))
	}

	if msg.IsUser() {
		initials := opts.UserLabel
		if initials == "" {
			initials = "V"
		}
		bubble := theme.UserBubble.Render(body)
		column := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		row := lipgloss.JoinHorizontal(lipgloss.Top, column, " ", theme.Avatar.Render(initials))
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, row)
	}

	bubble := theme.AssistantBubble.Render(body)
	column := lipgloss.JoinVertical(lipgloss.Left, label, bubble)
	return lipgloss.JoinHorizontal(lipgloss.Top, theme.Avatar.Render("L"), " ", column)
}

// RenderConversation draws every message separated by a blank line. When
// revealing is set, the last message is drawn as partial.
func RenderConversation(msgs []model.Message, revealing bool, opts MessageOptions) string {
	parts := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		o := opts
		o.Partial = revealing && i == len(msgs)-1 && msg.IsAssistant()
		parts = append(parts, RenderMessage(msg, o))
	}
	return strings.Join(parts, "\n\n")
}

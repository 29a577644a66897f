// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/util"
)

// FormatConversationList renders conversations as a plain-text table for
// line-mode output. The active conversation is marked with "*".
func FormatConversationList(convs []ConversationMeta) string {
	if len(convs) == 0 {
		return "No conversations yet."
	}

	var sb strings.Builder
	sb.WriteString("   " + util.PadRight("#", 4) + util.PadRight("Title", 32) + util.PadRight("Msgs", 6) + "Updated\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	for i, c := range convs {
		marker := "   "
		if c.Active {
			marker = " * "
		}
		sb.WriteString(marker +
			util.PadRight(strconv.Itoa(i+1), 4) +
			util.PadRight(c.Title, 32) +
			util.PadRight(strconv.Itoa(c.MessageCount), 6) +
			c.UpdatedAt.Format("15:04:05") + "\n")
	}
	return sb.String()
}

// ExportMarkdown renders a conversation as Markdown with role labels.
func ExportMarkdown(c *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("# " + c.Title + "\n\n")
	sb.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

var numberPrinter = message.NewPrinter(language.English)

// FormatNumber formats a number with thousand separators.
func FormatNumber(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// FormatPercent formats a percentage with one decimal place.
func FormatPercent(p float64) string {
	return numberPrinter.Sprintf("%.1f%%", p)
}

// OverlayBottom replaces the lines of base just above its last keep lines
// with overlay, right-aligned to width. base is returned unchanged when the
// overlay does not fit.
func OverlayBottom(base, overlay string, width, keep int) string {
	if overlay == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	overLines := strings.Split(overlay, "\n")

	end := len(baseLines) - keep
	start := end - len(overLines)
	if start < 0 || end > len(baseLines) {
		return base
	}
	for i, line := range overLines {
		baseLines[start+i] = lipgloss.PlaceHorizontal(width, lipgloss.Right, line)
	}
	return strings.Join(baseLines, "\n")
}

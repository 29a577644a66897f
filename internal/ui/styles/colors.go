// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// LokiGreen - Primary brand color, assistant accents, buttons
var LokiGreen = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

// LokiGreenDeep - Darker green for backgrounds and active items
var LokiGreenDeep = lipgloss.AdaptiveColor{Light: "#166534", Dark: "#14532D"}

// LokiGold - Secondary accent, horns on the logo, highlights
var LokiGold = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}

// TVAOrange - Time Variance Authority accents, user highlights
var TVAOrange = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, destructive toasts
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Sky - Informational toasts
var Sky = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#38BDF8"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0F1A14"}

// SurfaceDim - Navbar, sidebar and status bar
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#0B130F"}

// SurfaceBright - Cards and overlays
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#F9FAFB", Dark: "#1A2B22"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#2D4236"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E7F5EC"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#A7C4B2"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#5E7A69"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0F1A14"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User messages sit on the right in TVA orange tones.
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#7C2D12", Dark: "#FFEDD5"}
var UserBubbleBorder = TVAOrange

// Assistant messages sit on the left in Loki green.
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#14532D", Dark: "#DCFCE7"}
var AssistantBubbleBorder = LokiGreen

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains text indicators that work without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Active  string
}

// StatusIndicators are ASCII so they render on any terminal.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Active:  "[*]",
}

// RenderSuccess renders a success message with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(LokiGreen).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderInfo renders an info message with its indicator.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Sky).Bold(true).
		Render(StatusIndicators.Info + " " + message)
}

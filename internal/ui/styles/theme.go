// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by ApplyMode.
const (
	ModeDark  = "dark"
	ModeLight = "light"
	ModeAuto  = "auto"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// NAVBAR
	// ==========================================================================

	Navbar        lipgloss.Style
	NavBrand      lipgloss.Style
	NavLink       lipgloss.Style
	NavLinkActive lipgloss.Style

	// ==========================================================================
	// LANDING
	// ==========================================================================

	HeroTitle       lipgloss.Style
	HeroSubtitle    lipgloss.Style
	Button          lipgloss.Style
	ButtonSecondary lipgloss.Style
	SectionTitle    lipgloss.Style
	Card            lipgloss.Style
	CardTitle       lipgloss.Style
	CardBody        lipgloss.Style
	StepNumber      lipgloss.Style
	Quote           lipgloss.Style
	QuoteAuthor     lipgloss.Style
	Footer          lipgloss.Style

	// ==========================================================================
	// LOGIN FORM
	// ==========================================================================

	FormBox      lipgloss.Style
	FormTitle    lipgloss.Style
	Label        lipgloss.Style
	Field        lipgloss.Style
	FieldFocused lipgloss.Style
	Link         lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarMeta       lipgloss.Style
	UserBubble        lipgloss.Style
	AssistantBubble   lipgloss.Style
	RoleLabel         lipgloss.Style
	Timestamp         lipgloss.Style
	Avatar            lipgloss.Style
	InputContainer    lipgloss.Style
	InputDisabled     lipgloss.Style
	Spinner           lipgloss.Style
	ThinkingText      lipgloss.Style
	StatusBar         lipgloss.Style
	StatusKey         lipgloss.Style
	StatusValue       lipgloss.Style
	Overlay           lipgloss.Style
	ShortcutKey       lipgloss.Style
	ShortcutDesc      lipgloss.Style

	// ==========================================================================
	// TOASTS
	// ==========================================================================

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
}

// NewTheme creates a theme for the detected terminal background.
func NewTheme() *Theme {
	return newTheme(termenv.HasDarkBackground())
}

// ApplyMode resolves mode ("dark", "light" or "auto"), tells lipgloss which
// side of every AdaptiveColor to use and returns the matching theme.
func ApplyMode(mode string) *Theme {
	dark := ResolveDark(mode)
	lipgloss.SetHasDarkBackground(dark)
	return newTheme(dark)
}

// ResolveDark reports whether mode means a dark background. Unknown modes
// fall back to terminal detection.
func ResolveDark(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		return true
	case ModeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

func newTheme(dark bool) *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       dark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// ModeName returns "dark" or "light".
func (t *Theme) ModeName() string {
	if t.IsDark {
		return ModeDark
	}
	return ModeLight
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Navbar
	t.Navbar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.NavBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(LokiGreen)

	t.NavLink = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.NavLinkActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(LokiGreen).
		Bold(true).
		Padding(0, 1)

	// Landing
	t.HeroTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(LokiGreen).
		Align(lipgloss.Center)

	t.HeroSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		Align(lipgloss.Center)

	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(LokiGreen).
		Bold(true).
		Padding(0, 3)

	t.ButtonSecondary = lipgloss.NewStyle().
		Foreground(LokiGreen).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(LokiGreen).
		Padding(0, 2)

	t.SectionTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(LokiGold).
		MarginTop(1).
		MarginBottom(1)

	t.Card = lipgloss.NewStyle().
		Background(SurfaceBright).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(LokiGreen)

	t.CardBody = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StepNumber = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(LokiGold).
		Bold(true).
		Padding(0, 1)

	t.Quote = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Italic(true).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(LokiGold).
		PaddingLeft(2)

	t.QuoteAuthor = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(3)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center).
		MarginTop(1)

	// Login form
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(LokiGreen).
		Padding(1, 3)

	t.FormTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(LokiGreen).
		MarginBottom(1)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.FieldFocused = t.Field.
		BorderForeground(LokiGreen)

	t.Link = lipgloss.NewStyle().
		Foreground(LokiGold).
		Underline(true)

	// Chat
	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(LokiGold).
		MarginBottom(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SidebarItemActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(LokiGreen).
		Bold(true)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Avatar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(LokiGold).
		Bold(true).
		Padding(0, 1)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(LokiGreen).
		Padding(0, 1)

	t.InputDisabled = t.InputContainer.
		BorderForeground(Overlay).
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(LokiGreen)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusValue = lipgloss.NewStyle().
		Foreground(LokiGreen).
		Bold(true)

	t.Overlay = lipgloss.NewStyle().
		Background(SurfaceBright).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(LokiGold).
		Padding(1, 2)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(LokiGreen).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.ToastInfo = toast.
		BorderForeground(Sky).
		Foreground(Sky)

	t.ToastSuccess = toast.
		BorderForeground(LokiGreen).
		Foreground(LokiGreen)

	t.ToastError = toast.
		BorderForeground(Rose).
		Foreground(Rose)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

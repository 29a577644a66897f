// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements non-blocking toasts. They stack in the bottom-right
// corner and auto-dismiss, so the login form and chat stay usable while a
// message is shown.

package components

import (
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast
	ToastKindStatus ToastKind = iota
	// ToastKindError is a destructive toast
	ToastKindError
	// ToastKindSuccess is a success toast
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is longer so errors can be read.
const ErrorToastDuration = 8 * time.Second

// toastTickInterval is how often expired toasts are swept.
const toastTickInterval = 100 * time.Millisecond

// maxToasts is the number of toasts visible at once.
const maxToasts = 3

// =============================================================================
// TOAST
// =============================================================================

// Toast is a non-blocking notification with an optional title.
type Toast struct {
	ID        int
	Title     string
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

func newToast(kind ToastKind, title, message string, d time.Duration) Toast {
	return Toast{
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// NewErrorToast creates a destructive toast.
func NewErrorToast(title, message string) Toast {
	return newToast(ToastKindError, title, message, ErrorToastDuration)
}

// NewStatusToast creates an informational toast.
func NewStatusToast(title, message string) Toast {
	return newToast(ToastKindStatus, title, message, DefaultToastDuration)
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(title, message string) Toast {
	return newToast(ToastKindSuccess, title, message, DefaultToastDuration)
}

// IsExpired returns true if the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// TimeRemaining returns how much time is left before auto-dismiss.
func (t *Toast) TimeRemaining() time.Duration {
	remaining := t.Duration - time.Since(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the visible toasts, newest first.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	max    int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, max: maxToasts}
}

// Add shows toast and returns its ID.
func (m *ToastManager) Add(toast Toast) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	toast.ID = m.nextID
	m.nextID++
	if toast.CreatedAt.IsZero() {
		toast.CreatedAt = time.Now()
	}
	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.max {
		m.toasts = m.toasts[:m.max]
	}
	return toast.ID
}

// AddError is a convenience method to add an error toast.
func (m *ToastManager) AddError(title, message string) int {
	return m.Add(NewErrorToast(title, message))
}

// AddStatus is a convenience method to add a status toast.
func (m *ToastManager) AddStatus(title, message string) int {
	return m.Add(NewStatusToast(title, message))
}

// AddSuccess is a convenience method to add a success toast.
func (m *ToastManager) AddSuccess(title, message string) int {
	return m.Add(NewSuccessToast(title, message))
}

// Dismiss removes a toast by ID.
func (m *ToastManager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Sweep drops expired toasts and reports whether any remain.
func (m *ToastManager) Sweep() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.IsExpired() {
			active = append(active, toast)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Toasts returns a copy of the current toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// HasToasts returns true if there are any active toasts.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically while toasts are visible.
type ToastTickMsg struct {
	Time time.Time
}

// ToastMsg asks the app to show a toast. Screens return it from commands
// instead of holding the manager themselves.
type ToastMsg struct {
	Toast Toast
}

// ShowToast returns a command emitting ToastMsg.
func ShowToast(toast Toast) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Toast: toast} }
}

// ToastTickCmd schedules the next sweep.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast notification.
func RenderToast(theme *styles.Theme, toast Toast, width int) string {
	maxWidth := 50
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 24 {
		maxWidth = 24
	}

	var style lipgloss.Style
	var icon string
	switch toast.Kind {
	case ToastKindError:
		style, icon = theme.ToastError, styles.StatusIndicators.Error
	case ToastKindSuccess:
		style, icon = theme.ToastSuccess, styles.StatusIndicators.Success
	default:
		style, icon = theme.ToastInfo, styles.StatusIndicators.Info
	}

	textWidth := maxWidth - 4
	var lines []string
	if toast.Title != "" {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(icon+" "+toast.Title))
		if toast.Message != "" {
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(wrapToastText(toast.Message, textWidth)))
		}
	} else {
		lines = append(lines, icon+" "+wrapToastText(toast.Message, textWidth-len(icon)-1))
	}

	if secs := int(toast.TimeRemaining().Seconds()); secs > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true).
			Render("[x] Dismiss  "+strconv.Itoa(secs)+"s"))
	}

	return style.MaxWidth(maxWidth).Render(strings.Join(lines, "\n"))
}

// RenderToastStack renders toasts stacked in the bottom-right corner.
func RenderToastStack(theme *styles.Theme, toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(theme, toast, width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, stack)
	}
	return stack
}

// wrapToastText performs simple word wrapping for toast messages.
func wrapToastText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var current strings.Builder
	for _, word := range words {
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= maxWidth:
			current.WriteString(" ")
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

// Package toaster shows transient notification toasts for drop outcomes
// and other one-shot events.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/ferry/internal/ui/overlay"
	"github.com/zjrosen/ferry/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	// StyleSuccess shows ✅ with a green border (drop landed).
	StyleSuccess Style = iota
	// StyleError shows ❌ with a red border (drop handler failed).
	StyleError
	// StyleInfo shows ℹ️ with a blue border.
	StyleInfo
	// StyleWarn shows ⚠️ with a yellow border (drop refused or canceled).
	StyleWarn
)

var toastDecor = map[Style]struct {
	icon   string
	border lipgloss.AdaptiveColor
}{
	StyleSuccess: {"✅", styles.ToastBorderSuccessColor},
	StyleError:   {"❌", styles.ToastBorderErrorColor},
	StyleInfo:    {"ℹ️", styles.ToastBorderInfoColor},
	StyleWarn:    {"⚠️", styles.ToastBorderWarnColor},
}

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// Show displays a toast with the given message and style. A toast already
// on screen is replaced.
func (m Model) Show(message string, style Style) Model {
	m.message = message
	m.style = style
	m.visible = true
	return m
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	decor := toastDecor[m.style]
	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(decor.border).
		Render(decor.icon + " " + m.message)
}

// Overlay renders the toast bottom-centered on top of a background view,
// padded one row off the bottom edge.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}

	cfg := overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}

	return overlay.Place(cfg, m.View(), bg)
}

// DismissMsg signals that the toast should be dismissed.
type DismissMsg struct{}

// ScheduleDismiss returns a command that dismisses the toast after a duration.
func ScheduleDismiss(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return DismissMsg{}
	})
}

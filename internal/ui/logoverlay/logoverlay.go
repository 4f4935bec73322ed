// Package logoverlay provides an in-app log viewer overlay that shows
// recent log entries without leaving the TUI.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/ferry/internal/log"
	"github.com/zjrosen/ferry/internal/ui/overlay"
	"github.com/zjrosen/ferry/internal/ui/styles"
)

const (
	viewportMaxHeight = 25  // Fixed viewport height in lines
	viewportMinHeight = 5   // Minimum viewport height for very small screens
	boxMaxWidth       = 160 // Maximum box width in characters
	boxMinWidth       = 40  // Minimum box width in characters
)

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state.
type Model struct {
	visible  bool
	minLevel log.Level
	width    int
	height   int
	viewport viewport.Model
}

// New creates a new log overlay model.
func New() Model {
	return Model{
		visible:  false,
		minLevel: log.LevelDebug,
	}
}

// NewWithSize creates a new log overlay with the given dimensions.
func NewWithSize(width, height int) Model {
	return Model{
		visible:  false,
		minLevel: log.LevelDebug,
		width:    width,
		height:   height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the log overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			log.ClearBuffer()
			m.refreshViewport()
			return m, nil

		case "d":
			m.minLevel = log.LevelDebug
			m.refreshViewport()
			return m, nil

		case "i":
			m.minLevel = log.LevelInfo
			m.refreshViewport()
			return m, nil

		case "w":
			m.minLevel = log.LevelWarn
			m.refreshViewport()
			return m, nil

		case "e":
			m.minLevel = log.LevelError
			m.refreshViewport()
			return m, nil

		case "j", "down":
			m.viewport.ScrollDown(1)
			return m, nil

		case "k", "up":
			m.viewport.ScrollUp(1)
			return m, nil

		case "g":
			m.viewport.GotoTop()
			return m, nil

		case "G":
			m.viewport.GotoBottom()
			return m, nil

		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+x", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshViewport()
	}

	return m, nil
}

// View renders the log overlay content.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)

	dividerStyle := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var result strings.Builder
	result.WriteString(titleStyle.Render("Logs"))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.viewport.View())
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.buildFilterHint())

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth)

	return boxStyle.Render(result.String())
}

// getFilteredLogs returns log entries matching the current filter level.
func (m Model) getFilteredLogs() []string {
	logs := log.GetRecentLogs(10000)
	var filtered []string
	for _, entry := range logs {
		if m.matchesLevel(entry) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// buildLogContent builds the log content string for display.
func (m Model) buildLogContent(contentWidth int) string {
	filtered := m.getFilteredLogs()

	if len(filtered) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true)
		return emptyStyle.Render("No logs to display")
	}

	var lines []string
	for _, entry := range filtered {
		lines = append(lines, m.colorizeEntry(entry, contentWidth))
	}
	return strings.Join(lines, "\n")
}

// refreshViewport initializes or updates the viewport with current log content.
func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}

	contentWidth := m.contentWidth()

	// Header (2 lines), footer (2 lines) and borders (2 lines) cost 6 rows
	maxAllowed := m.height - 6
	viewportHeight := min(viewportMaxHeight, maxAllowed)
	viewportHeight = max(viewportHeight, viewportMinHeight)

	m.viewport = viewport.New(contentWidth, viewportHeight)
	m.viewport.SetContent(m.buildLogContent(contentWidth))
}

// Overlay renders the log overlay centered on the given background.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible returns whether the overlay is currently visible.
func (m Model) Visible() bool {
	return m.visible
}

// boxWidth returns the calculated box width based on screen size.
func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

// contentWidth returns the content width (box width minus borders).
func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// Toggle toggles the overlay visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
	}
}

// Show makes the overlay visible.
func (m *Model) Show() {
	m.visible = true
	m.refreshViewport()
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// Refresh re-reads the log buffer into the viewport. A hidden overlay skips
// the work; Toggle and Show refresh on their own when it opens.
func (m *Model) Refresh() {
	if !m.visible {
		return
	}
	m.refreshViewport()
}

// SetSize updates the overlay's knowledge of viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

// levelOf maps an entry back to its severity by the level tag in the line.
// Entries without a recognizable tag are always shown.
func levelOf(entry string) (log.Level, bool) {
	switch {
	case strings.Contains(entry, "[ERROR]"):
		return log.LevelError, true
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn, true
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo, true
	case strings.Contains(entry, "[DEBUG]"):
		return log.LevelDebug, true
	default:
		return 0, false
	}
}

// matchesLevel checks if a log entry is at or above the current filter level.
func (m Model) matchesLevel(entry string) bool {
	level, ok := levelOf(entry)
	if !ok {
		return true
	}
	return level >= m.minLevel
}

// colorizeEntry applies color to a log entry based on its level.
func (m Model) colorizeEntry(entry string, maxWidth int) string {
	entry = strings.TrimSuffix(entry, "\n")

	// ANSI-aware truncation handles UTF-8 correctly
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth-3, "...")
	}

	color := styles.TextPrimaryColor
	if level, ok := levelOf(entry); ok {
		switch level {
		case log.LevelError:
			color = styles.StatusErrorColor
		case log.LevelWarn:
			color = styles.StatusWarningColor
		case log.LevelInfo:
			color = styles.ToastBorderInfoColor
		case log.LevelDebug:
			color = styles.TextMutedColor
		}
	}

	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

// buildFilterHint creates the footer hint showing filter options.
// The active filter level is highlighted with bold styling.
func (m Model) buildFilterHint() string {
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	activeStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor).
		Bold(true)

	hints := []string{hintStyle.Render("[c] Clear")}

	filters := []struct {
		label string
		level log.Level
	}{
		{"[d] Debug", log.LevelDebug},
		{"[i] Info", log.LevelInfo},
		{"[w] Warn", log.LevelWarn},
		{"[e] Error", log.LevelError},
	}
	for _, f := range filters {
		if m.minLevel == f.level {
			hints = append(hints, activeStyle.Render(f.label))
		} else {
			hints = append(hints, hintStyle.Render(f.label))
		}
	}

	return strings.Join(hints, "  ")
}

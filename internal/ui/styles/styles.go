// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // Card ids, secondary info
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors

	// Toast border colors
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = StatusWarningColor

	// Drag feedback colors, keyed to a node's derived drag status
	DragSourceColor  = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#5C5C5C"} // The card being dragged (ghost)
	DropTargetColor  = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Deck under the pointer
	DropPendingColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Deck with an in-flight drop
	DropRefusedColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Deck refusing the hover

	// Card styles
	CardStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Padding(0, 1)

	CardSelectedStyle = CardStyle.
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"})

	CardGhostStyle = CardStyle.
			Foreground(DragSourceColor).
			Faint(true)

	// Overlay chrome
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	OverlayBorderColor = BorderDefaultColor

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DropTargetColor).
			Padding(0, 1)

	BadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextMutedColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)
)

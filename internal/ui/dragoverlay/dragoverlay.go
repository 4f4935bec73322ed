// Package dragoverlay renders the floating preview of dragged entities
// that follows the pointer during a gesture.
package dragoverlay

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/ferry/internal/dnd"
	"github.com/zjrosen/ferry/internal/ui/styles"
)

// Renderer turns one dragged entity into its visual representation.
type Renderer[T any] func(e dnd.Entity[T]) string

// Model renders up to maxRendered dragged entities. Dragging more adds a
// "+N" badge instead of drawing every entity.
type Model[T any] struct {
	renderer    Renderer[T]
	maxRendered int
}

// New creates a drag overlay. maxRendered must be at least 1.
func New[T any](renderer Renderer[T], maxRendered int) Model[T] {
	if maxRendered < 1 {
		maxRendered = 1
	}
	return Model[T]{renderer: renderer, maxRendered: maxRendered}
}

// View renders the overlay for the given dragging sequence.
// Returns an empty string when nothing is being dragged.
func (m Model[T]) View(dragging []dnd.Entity[T]) string {
	if len(dragging) == 0 {
		return ""
	}

	shown := dragging
	if len(shown) > m.maxRendered {
		shown = shown[:m.maxRendered]
	}

	rows := make([]string, 0, len(shown)+1)
	for _, e := range shown {
		rows = append(rows, m.renderer(e))
	}
	if extra := len(dragging) - len(shown); extra > 0 {
		rows = append(rows, styles.BadgeStyle.Render(fmt.Sprintf("+%d more", extra)))
	}

	stack := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.OverlayStyle.Render(stack)
}

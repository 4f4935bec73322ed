// Package pointer turns raw terminal mouse events into drag gesture
// events. It walks bubblezone hit regions to decide which draggable the
// press landed on and which droppable the pointer is currently over.
package pointer

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/ferry/internal/dnd"
	"github.com/zjrosen/ferry/internal/log"
)

type gestureState int

const (
	gestureIdle gestureState = iota
	gestureArmed
	gestureDragging
)

// Resolver maps a zone id to its entity. It returns false for ids the
// application no longer knows (a card removed mid-gesture, for example).
type Resolver[T any] func(id string) (dnd.Entity[T], bool)

// Engine recognizes press/motion/release drag gestures against a set of
// registered zones. A press over a draggable arms the gesture; the first
// motion while armed starts the drag; release ends it over whatever
// droppable the pointer is inside, if any. Hit testing goes through the
// global bubblezone manager, which the application initializes at startup.
type Engine[T any] struct {
	resolve    Resolver[T]
	draggables map[string]struct{}
	droppables map[string]struct{}

	state    gestureState
	activeID string
	lastOver string
	hasOver  bool
	x, y     int
}

// NewEngine creates an engine resolving zone ids through resolve.
func NewEngine[T any](resolve Resolver[T]) *Engine[T] {
	return &Engine[T]{
		resolve:    resolve,
		draggables: make(map[string]struct{}),
		droppables: make(map[string]struct{}),
	}
}

// SetZones replaces the sets of draggable and droppable zone ids.
// Called whenever the application's layout changes.
func (e *Engine[T]) SetZones(draggables, droppables []string) {
	e.draggables = make(map[string]struct{}, len(draggables))
	for _, id := range draggables {
		e.draggables[id] = struct{}{}
	}
	e.droppables = make(map[string]struct{}, len(droppables))
	for _, id := range droppables {
		e.droppables[id] = struct{}{}
	}
}

// Dragging reports whether a drag gesture is in progress.
func (e *Engine[T]) Dragging() bool {
	return e.state == gestureDragging
}

// ActiveID returns the id of the dragged zone while a gesture is active.
func (e *Engine[T]) ActiveID() string {
	if e.state != gestureDragging {
		return ""
	}
	return e.activeID
}

// Position returns the pointer's last known cell coordinates.
func (e *Engine[T]) Position() (x, y int) {
	return e.x, e.y
}

// Cancel aborts any gesture in progress, reporting whether a drag was
// active. A canceled drag ends with no target, as if released over
// empty space.
func (e *Engine[T]) Cancel() (dnd.EndEvent, bool) {
	wasDragging := e.state == gestureDragging
	e.reset()
	if !wasDragging {
		return dnd.EndEvent{}, false
	}
	log.Debug(log.CatPointer, "gesture canceled")
	return dnd.EndEvent{HasTarget: false}, true
}

// Handle consumes one mouse message and returns the gesture events it
// produced, in order. Most messages produce none; a motion that crosses
// a zone boundary produces one; a release over a target produces one.
func (e *Engine[T]) Handle(msg tea.MouseMsg) []any {
	e.x, e.y = msg.X, msg.Y

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		return e.press(msg)
	case tea.MouseActionMotion:
		return e.motion(msg)
	case tea.MouseActionRelease:
		return e.release(msg)
	default:
		return nil
	}
}

// press arms a gesture when the pointer lands on a draggable zone.
// The drag itself does not start until the pointer moves, so plain
// clicks never produce gesture events.
func (e *Engine[T]) press(msg tea.MouseMsg) []any {
	for id := range e.draggables {
		if zone.Get(id).InBounds(msg) {
			e.state = gestureArmed
			e.activeID = id
			return nil
		}
	}
	return nil
}

func (e *Engine[T]) motion(msg tea.MouseMsg) []any {
	switch e.state {
	case gestureArmed:
		entity, ok := e.resolve(e.activeID)
		if !ok {
			log.Warn(log.CatPointer, "armed zone vanished", "id", e.activeID)
			e.reset()
			return nil
		}
		e.state = gestureDragging
		log.Debug(log.CatPointer, "gesture started", "id", e.activeID)

		events := []any{dnd.StartEvent[T]{
			ActiveID: e.activeID,
			Entities: []dnd.Entity[T]{entity},
		}}
		return append(events, e.overEvents(msg)...)

	case gestureDragging:
		return e.overEvents(msg)

	default:
		return nil
	}
}

// overEvents emits an over event only when the hovered target changed
// since the last motion, since motion messages arrive for every cell.
func (e *Engine[T]) overEvents(msg tea.MouseMsg) []any {
	targetID, found := e.hitDroppable(msg)

	if found == e.hasOver && targetID == e.lastOver {
		return nil
	}
	e.lastOver = targetID
	e.hasOver = found

	if !found {
		return []any{dnd.OverEvent[T]{HasTarget: false}}
	}

	entity, ok := e.resolve(targetID)
	if !ok {
		return []any{dnd.OverEvent[T]{HasTarget: false}}
	}
	return []any{dnd.OverEvent[T]{TargetID: targetID, Entity: entity, HasTarget: true}}
}

func (e *Engine[T]) release(msg tea.MouseMsg) []any {
	switch e.state {
	case gestureArmed:
		// Never moved: a click, not a drag.
		e.reset()
		return nil

	case gestureDragging:
		targetID, found := e.hitDroppable(msg)
		log.Debug(log.CatPointer, "gesture ended", "target", targetID, "found", found)
		e.reset()
		return []any{dnd.EndEvent{TargetID: targetID, HasTarget: found}}

	default:
		return nil
	}
}

// hitDroppable finds the droppable zone containing the pointer. The
// active zone is skipped so an item cannot target itself.
func (e *Engine[T]) hitDroppable(msg tea.MouseMsg) (string, bool) {
	for id := range e.droppables {
		if id == e.activeID {
			continue
		}
		if zone.Get(id).InBounds(msg) {
			return id, true
		}
	}
	return "", false
}

func (e *Engine[T]) reset() {
	e.state = gestureIdle
	e.activeID = ""
	e.lastOver = ""
	e.hasOver = false
}

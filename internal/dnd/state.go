package dnd

// OverStatus marks the removal phase of a hovered target entry.
type OverStatus string

const (
	// OverActive means the pointer is currently over the target.
	OverActive OverStatus = "over"
	// OverLeaving means removal is pending while the target's leave
	// cleanup runs. The entry is purged once cleanup settles.
	OverLeaving OverStatus = "leave"
)

// OverEntry records one hovered drop target and its removal phase.
type OverEntry[T any] struct {
	Entity Entity[T]
	Status OverStatus
}

// Snapshot is a frozen copy of the interactive drag state, captured at the
// moment a drop was initiated and retained while its mutation is in flight.
type Snapshot[T any] struct {
	TargetID string
	Dragging []Entity[T]
	Over     map[string]OverEntry[T]
}

// State is the global drag/drop state. Dragging holds the entities of the
// active gesture in selection order. Over maps qualified node ids to their
// hover entries. Dropping holds one frozen snapshot per in-flight drop.
type State[T any] struct {
	Dragging []Entity[T]
	Over     map[string]OverEntry[T]
	Dropping []Snapshot[T]
}

// NewState returns an empty state with an initialized over map.
func NewState[T any]() State[T] {
	return State[T]{Over: make(map[string]OverEntry[T])}
}

// IsDragging reports whether id matches the qualified id of any entity in
// the active dragging sequence.
func (s State[T]) IsDragging(id string) bool {
	for _, e := range s.Dragging {
		if e.QualifiedID() == id {
			return true
		}
	}
	return false
}

// snapshotFor returns the first in-flight snapshot captured for id.
func (s State[T]) snapshotFor(id string) (Snapshot[T], bool) {
	for _, snap := range s.Dropping {
		if snap.TargetID == id {
			return snap, true
		}
	}
	return Snapshot[T]{}, false
}

// NodeStatus is the derived per-node display status.
type NodeStatus string

const (
	StatusIdle        NodeStatus = "idle"
	StatusDragging    NodeStatus = "dragging"
	StatusOver        NodeStatus = "over"
	StatusOverPending NodeStatus = "over-pending"
)

// StatusFor derives a node's display status from the global state.
// Precedence: hovered target, then dragged entity, then pending drop
// target, then idle.
func StatusFor[T any](s State[T], id string) NodeStatus {
	if _, ok := s.Over[id]; ok {
		return StatusOver
	}
	if s.IsDragging(id) {
		return StatusDragging
	}
	if _, ok := s.snapshotFor(id); ok {
		return StatusOverPending
	}
	return StatusIdle
}

// DraggingFor returns the entity sequence a node should expose to its
// descendants: the live dragging set while hovered or dragged, the frozen
// snapshot's set while a drop on the node is pending, nil otherwise.
func DraggingFor[T any](s State[T], id string) []Entity[T] {
	switch StatusFor(s, id) {
	case StatusOver, StatusDragging:
		return s.Dragging
	case StatusOverPending:
		snap, _ := s.snapshotFor(id)
		return snap.Dragging
	default:
		return nil
	}
}

func cloneOver[T any](over map[string]OverEntry[T]) map[string]OverEntry[T] {
	out := make(map[string]OverEntry[T], len(over))
	for k, v := range over {
		out[k] = v
	}
	return out
}

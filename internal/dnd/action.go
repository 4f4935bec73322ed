package dnd

// Action is one transition of the drag/drop state machine. The set of
// actions is closed: they are produced only by the Monitor, never by
// arbitrary callers.
type Action interface {
	// Name identifies the action kind for logging and transition events.
	Name() string
	isAction()
}

type dragStart[T any] struct {
	entities []Entity[T]
}

type dragOver[T any] struct {
	entity Entity[T]
}

// dragLeave carries the target id explicitly so overlapping leaves resolve
// independently instead of racing over a single last-hovered slot.
type dragLeave struct {
	id string
}

type dragLeaveResolved struct {
	id string
}

type dragCanceled struct{}

type dropPending struct {
	targetID string
}

type dropResolved struct {
	targetID string
}

type dropCanceled struct {
	targetID string
}

func (dragStart[T]) Name() string      { return "drag-start" }
func (dragOver[T]) Name() string       { return "drag-over" }
func (dragLeave) Name() string         { return "drag-leave" }
func (dragLeaveResolved) Name() string { return "drag-leave-resolved" }
func (dragCanceled) Name() string      { return "drag-canceled" }
func (dropPending) Name() string       { return "drop-pending" }
func (dropResolved) Name() string      { return "drop-resolved" }
func (dropCanceled) Name() string      { return "drop-canceled" }

func (dragStart[T]) isAction()      {}
func (dragOver[T]) isAction()       {}
func (dragLeave) isAction()         {}
func (dragLeaveResolved) isAction() {}
func (dragCanceled) isAction()      {}
func (dropPending) isAction()       {}
func (dropResolved) isAction()      {}
func (dropCanceled) isAction()      {}

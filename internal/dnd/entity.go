// Package dnd coordinates drag-and-drop interactions across independently
// rendered UI nodes. It tracks which entities are being dragged, which drop
// target the pointer is over, and the lifecycle of asynchronous drop
// mutations that may succeed, fail, or be cancelled.
package dnd

// Separator joins a namespace and a local id into a qualified id.
const Separator = ":"

// Entity is an identified, namespaced unit of draggable/droppable data
// carrying an opaque application payload. Entities are values; callers
// recreate them on each render rather than mutating them.
type Entity[T any] struct {
	ID        string
	Namespace string
	State     T
}

// QualifiedID returns the entity's id qualified by its namespace.
// Qualified ids are what the state machine and registry key on.
func (e Entity[T]) QualifiedID() string {
	if e.Namespace == "" {
		return e.ID
	}
	return e.Namespace + Separator + e.ID
}

// Qualify returns a copy of the entity re-homed under ns.
func (e Entity[T]) Qualify(ns string) Entity[T] {
	e.Namespace = ns
	return e
}

// QualifyAll re-homes every entity in the sequence under ns.
func QualifyAll[T any](entities []Entity[T], ns string) []Entity[T] {
	out := make([]Entity[T], len(entities))
	for i, e := range entities {
		out[i] = e.Qualify(ns)
	}
	return out
}

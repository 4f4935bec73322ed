package dnd

// reduce applies one action to the state and returns the next state.
// It is a pure function: no side effects, no I/O, and the input state is
// never mutated (maps and slices are copied before modification).
func reduce[T any](s State[T], action Action) State[T] {
	switch a := action.(type) {
	case dragStart[T]:
		// Overwrites any prior dragging set.
		s.Dragging = append([]Entity[T](nil), a.entities...)
		return s

	case dragCanceled:
		// Clears the gesture only; hover entries and in-flight drops
		// are settled by their own actions.
		s.Dragging = nil
		return s

	case dragOver[T]:
		over := cloneOver(s.Over)
		over[a.entity.QualifiedID()] = OverEntry[T]{Entity: a.entity, Status: OverActive}
		s.Over = over
		return s

	case dragLeave:
		entry, ok := s.Over[a.id]
		if !ok {
			return s
		}
		over := cloneOver(s.Over)
		entry.Status = OverLeaving
		over[a.id] = entry
		s.Over = over
		return s

	case dragLeaveResolved:
		if _, ok := s.Over[a.id]; !ok {
			return s
		}
		over := cloneOver(s.Over)
		delete(over, a.id)
		s.Over = over
		return s

	case dropPending:
		// Hand-off from interactive state to in-flight mutation state.
		// The snapshot append and the clearing of dragging/over happen
		// in one transition so no observer sees a gap between them.
		snap := Snapshot[T]{
			TargetID: a.targetID,
			Dragging: s.Dragging,
			Over:     s.Over,
		}
		s.Dropping = append(append([]Snapshot[T](nil), s.Dropping...), snap)
		s.Dragging = nil
		s.Over = make(map[string]OverEntry[T])
		return s

	case dropResolved:
		s.Dropping = removeSnapshots(s.Dropping, a.targetID)
		return s

	case dropCanceled:
		// Failure and success converge here: the snapshot is removed
		// either way and the state is indistinguishable afterwards.
		s.Dropping = removeSnapshots(s.Dropping, a.targetID)
		return s

	default:
		return s
	}
}

// removeSnapshots filters out every snapshot captured for targetID.
// Unknown ids are a no-op.
func removeSnapshots[T any](dropping []Snapshot[T], targetID string) []Snapshot[T] {
	found := false
	for _, snap := range dropping {
		if snap.TargetID == targetID {
			found = true
			break
		}
	}
	if !found {
		return dropping
	}

	out := make([]Snapshot[T], 0, len(dropping))
	for _, snap := range dropping {
		if snap.TargetID != targetID {
			out = append(out, snap)
		}
	}
	return out
}

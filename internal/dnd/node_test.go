package dnd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNode_BindRegistersAndWatches(t *testing.T) {
	c := NewCoordinator[string]()
	defer c.Close()

	node := c.Bind(Binding[string]{
		ID:         "todo",
		Namespace:  "deck",
		State:      "To Do",
		EnableDrag: false,
	})

	require.Equal(t, "deck:todo", node.ID())
	require.Equal(t, StatusIdle, node.Status())
	require.False(t, node.Draggable())

	_, ok := c.registry.Lookup("deck:todo")
	require.True(t, ok)
}

func TestNode_UnbindRoundTrip(t *testing.T) {
	c := NewCoordinator[string]()
	defer c.Close()

	node := c.Bind(Binding[string]{ID: "todo", Namespace: "deck"})
	node.Unbind()

	_, ok := c.registry.Lookup("deck:todo")
	require.False(t, ok)
	require.Equal(t, 0, c.registry.Len())
}

func TestNode_RebindReplacesCallbacks(t *testing.T) {
	c := NewCoordinator[string]()
	defer c.Close()

	node := c.Bind(Binding[string]{ID: "todo", Namespace: "deck"})
	node.Rebind(Binding[string]{
		ID:         "todo",
		Namespace:  "deck",
		EnableDrop: func([]Entity[string]) bool { return false },
	})

	reg, ok := c.registry.Lookup("deck:todo")
	require.True(t, ok)
	require.NotNil(t, reg.EnableDrop)
	require.Equal(t, 1, c.registry.Len())
}

func TestNode_StatusChangesDeliverOnlyOwnEvents(t *testing.T) {
	c := NewCoordinator[string]()
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	todo := c.Bind(Binding[string]{ID: "todo", Namespace: "deck"})
	done := c.Bind(Binding[string]{ID: "done", Namespace: "deck"})

	todoCh := todo.StatusChanges(ctx)
	doneCh := done.StatusChanges(ctx)

	c.Handle(ctx, StartEvent[string]{ActiveID: "card:a", Entities: []Entity[string]{entity("card", "a")}})
	c.Handle(ctx, OverEvent[string]{TargetID: "deck:todo", HasTarget: true})

	select {
	case event := <-todoCh:
		require.Equal(t, StatusOver, event.Payload.Status)
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for todo status change")
	}

	select {
	case event := <-doneCh:
		require.Fail(t, "done should see no events", "got %v", event.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCoordinator_EndToEndDrop(t *testing.T) {
	c := NewCoordinator[string]()
	defer c.Close()
	ctx := context.Background()

	moved := make(chan []Entity[string], 1)
	card := c.Bind(Binding[string]{ID: "a", Namespace: "card", State: "Fix login", EnableDrag: true})
	deck := c.Bind(Binding[string]{
		ID:        "done",
		Namespace: "deck",
		OnDrop: func(_ context.Context, entities []Entity[string]) error {
			moved <- entities
			return nil
		},
	})

	c.Handle(ctx, StartEvent[string]{ActiveID: card.ID(), Entities: []Entity[string]{card.Entity()}})
	require.Equal(t, StatusDragging, card.Status())

	c.Handle(ctx, OverEvent[string]{TargetID: deck.ID(), HasTarget: true})
	require.Equal(t, StatusOver, deck.Status())
	require.Len(t, deck.Dragging(), 1)

	c.Handle(ctx, EndEvent{TargetID: deck.ID(), HasTarget: true})

	select {
	case entities := <-moved:
		require.Len(t, entities, 1)
		require.Equal(t, "card:a", entities[0].QualifiedID())
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for drop handler")
	}

	require.Eventually(t, func() bool {
		return len(c.State().Dropping) == 0
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, StatusIdle, card.Status())
	require.Equal(t, StatusIdle, deck.Status())
}

package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/ferry/internal/cards"
	"github.com/zjrosen/ferry/internal/config"
	"github.com/zjrosen/ferry/internal/dnd"
	"github.com/zjrosen/ferry/internal/log"
	"github.com/zjrosen/ferry/internal/pubsub"
	"github.com/zjrosen/ferry/internal/testutil"
	"github.com/zjrosen/ferry/internal/ui/board"
)

// TestMain initializes the global zone manager for all tests in this package.
func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

// fakeClipboard records copied text instead of touching the system.
type fakeClipboard struct {
	copied []string
}

func (f *fakeClipboard) Copy(text string) error {
	f.copied = append(f.copied, text)
	return nil
}

// newTestModel creates an app model against an in-memory database.
func newTestModel(t *testing.T, seed ...cards.Card) Model {
	t.Helper()

	db := testutil.NewTestDB(t)
	repo := db.Cards()
	testutil.SeedCards(t, repo, seed...)

	cfg := config.Defaults()
	m := New(Services{
		Config:     &cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Repo:       repo,
		Clipboard:  &fakeClipboard{},
	})
	t.Cleanup(func() {
		m.cancel()
		m.coord.Close()
	})

	sized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return sized.(Model)
}

// loadCards runs the load command synchronously and applies the result.
func loadCards(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadCardsCmd()()
	loaded, ok := msg.(cardsLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)

	updated, _ := m.Update(loaded)
	return updated.(Model)
}

func TestNew_BindsDeckDropNodes(t *testing.T) {
	m := newTestModel(t)

	require.Len(t, m.deckNodes, 3)
	for _, name := range []string{"To Do", "Doing", "Done"} {
		require.Contains(t, m.deckNodes, board.DeckZoneID(name))
	}
}

func TestCardsLoaded_PopulatesBoardAndBindings(t *testing.T) {
	m := newTestModel(t,
		cards.Card{ID: "c1", Deck: "To Do", Title: "First"},
		cards.Card{ID: "c2", Deck: "Doing", Title: "Second"},
	)

	m = loadCards(t, m)

	require.Len(t, m.cardNodes, 2)
	require.Contains(t, m.cardNodes, board.CardZoneID("c1"))
	require.Equal(t, 2, m.shared.total())
	require.Contains(t, m.View(), "First")
}

func TestCardsLoaded_RemovedCardUnbound(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "Doomed"})
	m = loadCards(t, m)
	require.Len(t, m.cardNodes, 1)

	require.NoError(t, m.services.Repo.Delete("c1"))
	updated, _ := m.Update(m.invalidateAndLoadCmd()())
	m = updated.(Model)

	require.Empty(t, m.cardNodes)
}

func TestTransition_DropResolvedShowsToast(t *testing.T) {
	m := newTestModel(t)

	ev := pubsub.Event[dnd.Transition[cards.Card]]{
		Type:    pubsub.TransitionEvent,
		Payload: dnd.Transition[cards.Card]{Action: "drop-resolved"},
	}
	updated, cmd := m.Update(ev)
	m = updated.(Model)

	require.True(t, m.toast.Visible())
	require.Contains(t, m.toast.View(), "Card moved")
	require.NotNil(t, cmd)
}

func TestTransition_DropCanceledShowsErrorToast(t *testing.T) {
	m := newTestModel(t)

	ev := pubsub.Event[dnd.Transition[cards.Card]]{
		Type:    pubsub.TransitionEvent,
		Payload: dnd.Transition[cards.Card]{Action: "drop-canceled"},
	}
	updated, _ := m.Update(ev)
	m = updated.(Model)

	require.True(t, m.toast.Visible())
	require.Contains(t, m.toast.View(), "Drop failed")
}

func TestDrop_MovesCardThroughRepository(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "Mover"})
	m = loadCards(t, m)

	c, _ := m.shared.card("c1")
	entity := dnd.Entity[cards.Card]{ID: "c1", Namespace: cards.NamespaceCard, State: c}

	m.coord.Handle(m.ctx, dnd.StartEvent[cards.Card]{
		ActiveID: board.CardZoneID("c1"),
		Entities: []dnd.Entity[cards.Card]{entity},
	})
	m.coord.Handle(m.ctx, dnd.OverEvent[cards.Card]{
		TargetID:  board.DeckZoneID("Done"),
		Entity:    dnd.Entity[cards.Card]{ID: "Done", Namespace: cards.NamespaceDeck},
		HasTarget: true,
	})
	m.coord.Handle(m.ctx, dnd.EndEvent{
		TargetID:  board.DeckZoneID("Done"),
		HasTarget: true,
	})

	require.Eventually(t, func() bool {
		moved, err := m.services.Repo.FindByID("c1")
		return err == nil && moved.Deck == "Done"
	}, time.Second, 5*time.Millisecond, "drop handler should persist the move")

	require.Eventually(t, func() bool {
		s := m.coord.State()
		return len(s.Dragging) == 0 && len(s.Dropping) == 0
	}, time.Second, 5*time.Millisecond, "state should settle after the drop resolves")
}

func TestDeckAtLimit_RefusesHover(t *testing.T) {
	seed := []cards.Card{
		{ID: "d1", Deck: "Doing", Title: "one"},
		{ID: "d2", Deck: "Doing", Title: "two"},
		{ID: "d3", Deck: "Doing", Title: "three"},
		{ID: "c1", Deck: "To Do", Title: "extra"},
	}
	m := newTestModel(t, seed...)
	m = loadCards(t, m)

	c, _ := m.shared.card("c1")
	m.coord.Handle(m.ctx, dnd.StartEvent[cards.Card]{
		ActiveID: board.CardZoneID("c1"),
		Entities: []dnd.Entity[cards.Card]{{ID: "c1", Namespace: cards.NamespaceCard, State: c}},
	})
	m.coord.Handle(m.ctx, dnd.OverEvent[cards.Card]{
		TargetID:  board.DeckZoneID("Doing"),
		Entity:    dnd.Entity[cards.Card]{ID: "Doing", Namespace: cards.NamespaceDeck},
		HasTarget: true,
	})

	// Doing is at its limit of 3, so the hover never creates an entry.
	require.Empty(t, m.coord.State().Over)
}

func TestKey_AddCardCreatesInFocusedDeck(t *testing.T) {
	m := newTestModel(t)
	m = loadCards(t, m)

	cmd := m.addCardCmd()
	require.NotNil(t, cmd)

	msg := cmd()
	mutated, ok := msg.(cardMutatedMsg)
	require.True(t, ok)
	require.NoError(t, mutated.err)

	all, err := m.services.Repo.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "To Do", all[0].Deck)
}

func TestKey_MoveSelectedRespectsBounds(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "edge"})
	m = loadCards(t, m)

	require.Nil(t, m.moveSelectedCmd(-1), "no deck to the left of the first")

	cmd := m.moveSelectedCmd(1)
	require.NotNil(t, cmd)
	mutated := cmd().(cardMutatedMsg)
	require.NoError(t, mutated.err)

	moved, err := m.services.Repo.FindByID("c1")
	require.NoError(t, err)
	require.Equal(t, "Doing", moved.Deck)
}

func TestKey_DeleteWithoutSelectionIsNoop(t *testing.T) {
	m := newTestModel(t)
	m = loadCards(t, m)

	require.Nil(t, m.deleteSelectedCmd())
}

func TestKey_EscCancelsActiveDragOnly(t *testing.T) {
	m := newTestModel(t)

	// No drag in flight: esc falls through without dispatching anything.
	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	require.Empty(t, m.coord.State().Dragging)
}

func TestView_RendersStatusBar(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "solo"})
	m = loadCards(t, m)

	require.Contains(t, m.View(), "1 cards")
}

func TestView_DraggingStatusBar(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "solo"})
	m = loadCards(t, m)

	c, _ := m.shared.card("c1")
	m.coord.Handle(m.ctx, dnd.StartEvent[cards.Card]{
		ActiveID: board.CardZoneID("c1"),
		Entities: []dnd.Entity[cards.Card]{{ID: "c1", Namespace: cards.NamespaceCard, State: c}},
	})

	require.Contains(t, m.View(), "Dragging 1 card(s)")
}

// TestApp_SmokeRunAndQuit drives the full program headless: boot, first
// paint with a seeded card, then quit with "q".
func TestApp_SmokeRunAndQuit(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "Ship release"})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Ship release"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
}

func TestKey_YankCopiesSelectedCardID(t *testing.T) {
	m := newTestModel(t, cards.Card{ID: "c1", Deck: "To Do", Title: "keeper"})
	m = loadCards(t, m)

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(Model)

	clip := m.clip.(*fakeClipboard)
	require.Equal(t, []string{"c1"}, clip.copied)
	require.True(t, m.toast.Visible())
	require.Contains(t, m.toast.View(), "Copied: c1")
}

func TestKey_YankWithoutSelectionIsNoop(t *testing.T) {
	m := newTestModel(t)
	m = loadCards(t, m)

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(Model)

	require.Empty(t, m.clip.(*fakeClipboard).copied)
	require.False(t, m.toast.Visible())
}

func TestKey_HelpTogglesFullHelpOverlay(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = updated.(Model)
	require.True(t, m.help.ShowAll)
	require.Contains(t, m.View(), "quit")

	updated, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = updated.(Model)
	require.False(t, m.help.ShowAll)
}

// savedDecks reads the deck section back out of the config file.
func savedDecks(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed struct {
		Decks []map[string]any `yaml:"decks"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	return parsed.Decks
}

func TestKey_RaiseLimitPersistsDeckConfig(t *testing.T) {
	m := newTestModel(t)
	m = loadCards(t, m)

	// The first deck starts unlimited; raising takes it to 1.
	updated, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = updated.(Model)
	require.NotNil(t, cmd)

	require.Equal(t, 1, m.board.Deck(0).Limit())
	require.Equal(t, 1, m.services.Config.Decks[0].Limit)
	require.Equal(t, 1, m.shared.deckLimit("To Do"))

	saved, ok := cmd().(decksSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	decks := savedDecks(t, m.services.ConfigPath)
	require.Len(t, decks, 3)
	require.Equal(t, "To Do", decks[0]["name"])
	require.Equal(t, 1, decks[0]["limit"])
}

func TestKey_LowerLimitStopsAtZero(t *testing.T) {
	m := newTestModel(t)
	m = loadCards(t, m)

	// The first deck is already unlimited; lowering is a noop.
	updated, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m = updated.(Model)
	require.Nil(t, cmd)
	require.Zero(t, m.board.Deck(0).Limit())
}

func TestKey_RaiseLimitAllowsPreviouslyRefusedHover(t *testing.T) {
	seed := []cards.Card{
		{ID: "d1", Deck: "Doing", Title: "one"},
		{ID: "d2", Deck: "Doing", Title: "two"},
		{ID: "d3", Deck: "Doing", Title: "three"},
		{ID: "c1", Deck: "To Do", Title: "extra"},
	}
	m := newTestModel(t, seed...)
	m = loadCards(t, m)
	m.board = m.board.SetFocus(1)

	updated, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.Equal(t, 4, m.shared.deckLimit("Doing"))

	c, _ := m.shared.card("c1")
	m.coord.Handle(m.ctx, dnd.StartEvent[cards.Card]{
		ActiveID: board.CardZoneID("c1"),
		Entities: []dnd.Entity[cards.Card]{{ID: "c1", Namespace: cards.NamespaceCard, State: c}},
	})
	m.coord.Handle(m.ctx, dnd.OverEvent[cards.Card]{
		TargetID:  board.DeckZoneID("Doing"),
		Entity:    dnd.Entity[cards.Card]{ID: "Doing", Namespace: cards.NamespaceDeck},
		HasTarget: true,
	})

	require.Contains(t, m.coord.State().Over, board.DeckZoneID("Doing"))
}

func TestLogFeed_NilWithoutLogger(t *testing.T) {
	m := newTestModel(t)

	require.Nil(t, m.logFeed)
	require.Nil(t, m.listenLogsCmd())
}

func TestLogFeed_RefreshesOpenOverlayOnNewEntries(t *testing.T) {
	cleanup, err := log.Init(filepath.Join(t.TempDir(), "test.log"))
	require.NoError(t, err)
	defer cleanup()

	m := newTestModel(t)
	require.NotNil(t, m.logFeed, "listener subscribes when logging is initialized")

	m.logs.Show()
	log.Info(log.CatBoard, "feed entry")

	// Entries queue in publish order, so reading until the marker shows up
	// skips whatever the model logged while booting.
	found := false
	for i := 0; i < 50 && !found; i++ {
		cmd := m.listenLogsCmd()
		require.NotNil(t, cmd)
		ev, ok := cmd().(log.LogEvent)
		require.True(t, ok)

		updated, next := m.Update(ev)
		m = updated.(Model)
		require.NotNil(t, next, "the feed re-arms after every entry")
		found = strings.Contains(ev.Payload, "feed entry")
	}
	require.True(t, found)
	require.Contains(t, m.logs.View(), "feed entry")
}

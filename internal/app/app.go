// Package app wires the board UI, pointer engine, and drag coordinator
// into the top-level Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/ferry/internal/cachemanager"
	"github.com/zjrosen/ferry/internal/cards"
	"github.com/zjrosen/ferry/internal/config"
	"github.com/zjrosen/ferry/internal/dnd"
	"github.com/zjrosen/ferry/internal/keys"
	"github.com/zjrosen/ferry/internal/log"
	"github.com/zjrosen/ferry/internal/pointer"
	"github.com/zjrosen/ferry/internal/pubsub"
	"github.com/zjrosen/ferry/internal/ui/board"
	"github.com/zjrosen/ferry/internal/ui/dragoverlay"
	"github.com/zjrosen/ferry/internal/ui/logoverlay"
	"github.com/zjrosen/ferry/internal/ui/overlay"
	"github.com/zjrosen/ferry/internal/ui/styles"
	"github.com/zjrosen/ferry/internal/ui/toaster"
	"github.com/zjrosen/ferry/internal/watcher"
)

const (
	cardListCacheKey = "all"
	cardListTTL      = 5 * time.Minute
	toastDuration    = 3 * time.Second
)

// Services holds the dependencies the app model needs.
type Services struct {
	Config     *config.Config
	ConfigPath string
	Repo       cards.Repository
	Watcher    *watcher.Watcher // nil disables auto refresh
	Clipboard  Clipboard        // nil falls back to the system clipboard
}

// sharedCards is the card index shared with drop/enable-drop callbacks,
// which run on monitor goroutines rather than the update loop.
type sharedCards struct {
	mu     sync.Mutex
	byDeck map[string]int
	byID   map[string]cards.Card
	limits map[string]int
}

func newSharedCards() *sharedCards {
	return &sharedCards{
		byDeck: make(map[string]int),
		byID:   make(map[string]cards.Card),
		limits: make(map[string]int),
	}
}

func (s *sharedCards) set(cs []cards.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDeck = make(map[string]int, len(s.byDeck))
	s.byID = make(map[string]cards.Card, len(cs))
	for _, c := range cs {
		s.byDeck[c.Deck]++
		s.byID[c.ID] = c
	}
}

func (s *sharedCards) card(id string) (cards.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	return c, ok
}

func (s *sharedCards) deckCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byDeck[name]
}

func (s *sharedCards) setDeckLimit(name string, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[name] = limit
}

func (s *sharedCards) deckLimit(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits[name]
}

func (s *sharedCards) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Model is the top-level application state.
type Model struct {
	services Services
	ctx      context.Context
	cancel   context.CancelFunc

	coord  *dnd.Coordinator[cards.Card]
	engine *pointer.Engine[cards.Card]
	shared *sharedCards

	board board.Model
	drag  dragoverlay.Model[cards.Card]
	toast toaster.Model
	logs  logoverlay.Model
	keys  keys.KeyMap
	help  help.Model
	clip  Clipboard

	listCache *cachemanager.ReadThroughCache[string, []cards.Card, struct{}]

	cardNodes map[string]*dnd.Node[cards.Card]
	deckNodes map[string]*dnd.Node[cards.Card]

	transitions <-chan pubsub.Event[dnd.Transition[cards.Card]]
	refreshes   <-chan struct{}
	logFeed     *log.LogListener

	width         int
	height        int
	showStatusBar bool
	err           error
}

// New creates the app model and binds a drop node for every configured deck.
func New(services Services) Model {
	ctx, cancel := context.WithCancel(context.Background())

	coord := dnd.NewCoordinator[cards.Card]()
	shared := newSharedCards()
	repo := services.Repo

	for _, dc := range services.Config.Decks {
		shared.setDeckLimit(dc.Name, dc.Limit)
	}

	statusFn := func(nodeID string) dnd.NodeStatus {
		return dnd.StatusFor(coord.State(), nodeID)
	}

	resolve := func(zoneID string) (dnd.Entity[cards.Card], bool) {
		if deck, ok := cutPrefix(zoneID, cards.NamespaceDeck); ok {
			return dnd.Entity[cards.Card]{ID: deck, Namespace: cards.NamespaceDeck}, true
		}
		if id, ok := cutPrefix(zoneID, cards.NamespaceCard); ok {
			c, found := shared.card(id)
			if !found {
				return dnd.Entity[cards.Card]{}, false
			}
			return dnd.Entity[cards.Card]{ID: c.ID, Namespace: cards.NamespaceCard, State: c}, true
		}
		return dnd.Entity[cards.Card]{}, false
	}

	listCache := cachemanager.NewReadThroughCache(
		cachemanager.NewInMemoryCacheManager[string, []cards.Card]("cards", cardListTTL, 10*time.Minute),
		func(_ context.Context, _ struct{}) ([]cards.Card, error) {
			return repo.ListAll()
		},
		false,
	)

	m := Model{
		services:      services,
		ctx:           ctx,
		cancel:        cancel,
		coord:         coord,
		engine:        pointer.NewEngine(resolve),
		shared:        shared,
		keys:          keys.DefaultKeyMap(),
		toast:         toaster.New(),
		logs:          logoverlay.New(),
		help:          help.New(),
		clip:          services.Clipboard,
		listCache:     listCache,
		cardNodes:     make(map[string]*dnd.Node[cards.Card]),
		deckNodes:     make(map[string]*dnd.Node[cards.Card]),
		transitions:   coord.Transitions(ctx),
		logFeed:       log.NewListener(ctx),
		showStatusBar: services.Config.UI.ShowStatusBar,
	}

	m.board = board.NewFromConfig(services.Config.Decks, statusFn).
		SetShowCounts(services.Config.UI.ShowCounts)

	m.drag = dragoverlay.New(renderCardPreview, services.Config.Overlay.MaxRendered)
	if m.clip == nil {
		m.clip = SystemClipboard{}
	}

	m.bindDecks()

	if services.Watcher != nil {
		ch, err := services.Watcher.Start()
		if err != nil {
			log.ErrorErr(log.CatWatcher, "watcher failed to start", err)
		} else {
			m.refreshes = ch
		}
	}

	return m
}

// bindDecks registers every configured deck as a drop target. A deck with a
// limit refuses hovers that would push it past capacity, so the user sees
// the refusal before releasing.
func (m *Model) bindDecks() {
	repo := m.services.Repo
	shared := m.shared
	cache := m.listCache

	for _, dc := range m.services.Config.Decks {
		dc := dc
		node := m.coord.Bind(dnd.Binding[cards.Card]{
			ID:        dc.Name,
			Namespace: cards.NamespaceDeck,
			EnableDrop: func(dragging []dnd.Entity[cards.Card]) bool {
				limit := shared.deckLimit(dc.Name)
				if limit <= 0 {
					return true
				}
				return shared.deckCount(dc.Name)+len(dragging) <= limit
			},
			OnDrop: func(ctx context.Context, dragging []dnd.Entity[cards.Card]) error {
				for _, e := range dragging {
					if err := repo.Move(e.ID, dc.Name); err != nil {
						return fmt.Errorf("move card %s to %s: %w", e.ID, dc.Name, err)
					}
				}
				return cache.Invalidate(ctx, cardListCacheKey)
			},
		})
		m.deckNodes[node.ID()] = node
	}
}

// syncCardNodes reconciles card drag bindings with the loaded card set and
// refreshes the pointer engine's zone registry.
func (m Model) syncCardNodes(cs []cards.Card) {
	seen := make(map[string]struct{}, len(cs))
	draggables := make([]string, 0, len(cs))

	for _, c := range cs {
		b := dnd.Binding[cards.Card]{
			ID:         c.ID,
			Namespace:  cards.NamespaceCard,
			State:      c,
			EnableDrag: true,
		}
		qid := board.CardZoneID(c.ID)
		if node, ok := m.cardNodes[qid]; ok {
			node.Rebind(b)
		} else {
			m.cardNodes[qid] = m.coord.Bind(b)
		}
		seen[qid] = struct{}{}
		draggables = append(draggables, qid)
	}

	for qid, node := range m.cardNodes {
		if _, ok := seen[qid]; !ok {
			node.Unbind()
			delete(m.cardNodes, qid)
		}
	}

	droppables := make([]string, 0, len(m.deckNodes))
	for qid := range m.deckNodes {
		droppables = append(droppables, qid)
	}
	m.engine.SetZones(draggables, droppables)
}

// previewWidth bounds the drag preview so long titles wrap instead of
// pushing the overlay off screen.
const previewWidth = 30

// renderCardPreview draws one dragged card in the floating overlay.
func renderCardPreview(e dnd.Entity[cards.Card]) string {
	title := e.State.Title
	if title == "" {
		title = e.ID
	}
	return styles.CardStyle.Render(wordwrap.String(title, previewWidth))
}

// cutPrefix splits a qualified zone id, returning the local part when the
// namespace matches.
func cutPrefix(qualified, ns string) (string, bool) {
	prefix := ns + dnd.Separator
	if len(qualified) > len(prefix) && qualified[:len(prefix)] == prefix {
		return qualified[len(prefix):], true
	}
	return "", false
}

// Messages

type cardsLoadedMsg struct {
	cards []cards.Card
	err   error
}

type cardMutatedMsg struct {
	verb string
	err  error
}

type dbChangedMsg struct{}

type decksSavedMsg struct {
	err error
}

// Commands

func (m Model) loadCardsCmd() tea.Cmd {
	ctx := m.ctx
	cache := m.listCache
	return func() tea.Msg {
		cs, err := cache.Get(ctx, cardListCacheKey, struct{}{}, cardListTTL)
		return cardsLoadedMsg{cards: cs, err: err}
	}
}

func (m Model) listenTransitionsCmd() tea.Cmd {
	return pubsub.ListenCmd(m.ctx, m.transitions)
}

// listenLogsCmd waits for the next log entry. Nil when logging was never
// initialized, which Init and Update tolerate.
func (m Model) listenLogsCmd() tea.Cmd {
	if m.logFeed == nil {
		return nil
	}
	return m.logFeed.Listen()
}

func (m Model) waitRefreshCmd() tea.Cmd {
	if m.refreshes == nil {
		return nil
	}
	ctx := m.ctx
	ch := m.refreshes
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return dbChangedMsg{}
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCardsCmd(), m.listenTransitionsCmd()}
	if cmd := m.waitRefreshCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.listenLogsCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.board = m.board.SetSize(msg.Width, m.boardHeight())
		m.logs.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		for _, ev := range m.engine.Handle(msg) {
			m.coord.Handle(m.ctx, ev)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pubsub.Event[dnd.Transition[cards.Card]]:
		return m.handleTransition(msg)

	case log.LogEvent:
		// New entries repaint the overlay live while it is open.
		m.logs.Refresh()
		return m, m.listenLogsCmd()

	case cardsLoadedMsg:
		return m.handleCardsLoaded(msg)

	case cardMutatedMsg:
		return m.handleCardMutated(msg)

	case dbChangedMsg:
		log.Info(log.CatWatcher, "database changed externally, reloading")
		return m, tea.Batch(m.invalidateAndLoadCmd(), m.waitRefreshCmd())

	case decksSavedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatConfig, "deck config save failed", msg.err)
			m.toast = m.toast.Show("Failed to save deck config", toaster.StyleError)
			return m, toaster.ScheduleDismiss(toastDuration)
		}
		return m, nil

	case toaster.DismissMsg:
		m.toast = m.toast.Hide()
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The log overlay owns the keyboard while visible.
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.CancelDrag):
		if end, ok := m.engine.Cancel(); ok {
			m.coord.Handle(m.ctx, end)
		}
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.logs.SetSize(m.width, m.height)
		m.logs.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.invalidateAndLoadCmd()

	case key.Matches(msg, m.keys.Yank):
		return m.yankSelected()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.ToggleStatus):
		m.showStatusBar = !m.showStatusBar
		m.board = m.board.SetSize(m.width, m.boardHeight())
		return m, nil

	case key.Matches(msg, m.keys.AddCard):
		return m, m.addCardCmd()

	case key.Matches(msg, m.keys.DeleteCard):
		return m, m.deleteSelectedCmd()

	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.moveSelectedCmd(-1)

	case key.Matches(msg, m.keys.MoveRight):
		return m, m.moveSelectedCmd(1)

	case key.Matches(msg, m.keys.RaiseLimit):
		return m.adjustDeckLimit(1)

	case key.Matches(msg, m.keys.LowerLimit):
		return m.adjustDeckLimit(-1)
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

func (m Model) handleTransition(ev pubsub.Event[dnd.Transition[cards.Card]]) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listenTransitionsCmd()}

	switch ev.Payload.Action {
	case "drop-resolved":
		m.toast = m.toast.Show("Card moved", toaster.StyleSuccess)
		cmds = append(cmds, m.loadCardsCmd(), toaster.ScheduleDismiss(toastDuration))
	case "drop-canceled":
		m.toast = m.toast.Show("Drop failed", toaster.StyleError)
		cmds = append(cmds, m.invalidateAndLoadCmd(), toaster.ScheduleDismiss(toastDuration))
	}

	// Every transition repaints: statuses are re-derived during View.
	return m, tea.Batch(cmds...)
}

func (m Model) handleCardsLoaded(msg cardsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatBoard, "card load failed", msg.err)
		m.err = msg.err
		return m, nil
	}

	m.err = nil
	m.shared.set(msg.cards)
	m.syncCardNodes(msg.cards)

	// Preserve the selection across reloads when possible.
	var selectedID string
	if sel := m.board.SelectedCard(); sel != nil {
		selectedID = sel.ID
	}
	m.board = m.board.SetCards(msg.cards)
	if selectedID != "" {
		m.board, _ = m.board.SelectByID(selectedID)
	}
	return m, nil
}

func (m Model) handleCardMutated(msg cardMutatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatBoard, "card mutation failed", msg.err, "verb", msg.verb)
		m.toast = m.toast.Show("Failed to "+msg.verb+" card", toaster.StyleError)
		return m, toaster.ScheduleDismiss(toastDuration)
	}
	m.toast = m.toast.Show("Card "+msg.verb+"d", toaster.StyleSuccess)
	return m, tea.Batch(m.invalidateAndLoadCmd(), toaster.ScheduleDismiss(toastDuration))
}

func (m Model) invalidateAndLoadCmd() tea.Cmd {
	ctx := m.ctx
	cache := m.listCache
	load := m.loadCardsCmd()
	return func() tea.Msg {
		if err := cache.Invalidate(ctx, cardListCacheKey); err != nil {
			log.ErrorErr(log.CatCache, "cache invalidation failed", err)
		}
		return load()
	}
}

func (m Model) addCardCmd() tea.Cmd {
	deck := m.board.Deck(m.board.FocusedDeck())
	if deck.Name() == "" {
		return nil
	}
	if deck.AtCapacity(1) {
		m.warnCapacity(deck.Name())
		return nil
	}
	repo := m.services.Repo
	name := deck.Name()
	return func() tea.Msg {
		card := cards.NewCard(name, "New card", "")
		return cardMutatedMsg{verb: "create", err: repo.Save(card)}
	}
}

func (m Model) deleteSelectedCmd() tea.Cmd {
	sel := m.board.SelectedCard()
	if sel == nil {
		return nil
	}
	repo := m.services.Repo
	id := sel.ID
	return func() tea.Msg {
		return cardMutatedMsg{verb: "delete", err: repo.Delete(id)}
	}
}

func (m Model) moveSelectedCmd(dir int) tea.Cmd {
	sel := m.board.SelectedCard()
	if sel == nil {
		return nil
	}
	idx := m.board.FocusedDeck() + dir
	if idx < 0 || idx >= m.board.DeckCount() {
		return nil
	}
	target := m.board.Deck(idx)
	if target.AtCapacity(1) {
		m.warnCapacity(target.Name())
		return nil
	}
	repo := m.services.Repo
	id := sel.ID
	name := target.Name()
	return func() tea.Msg {
		return cardMutatedMsg{verb: "move", err: repo.Move(id, name)}
	}
}

// yankSelected copies the selected card's id to the clipboard.
func (m Model) yankSelected() (tea.Model, tea.Cmd) {
	sel := m.board.SelectedCard()
	if sel == nil {
		return m, nil
	}
	if err := m.clip.Copy(sel.ID); err != nil {
		log.ErrorErr(log.CatBoard, "clipboard copy failed", err)
		m.toast = m.toast.Show("Copy failed", toaster.StyleError)
		return m, toaster.ScheduleDismiss(toastDuration)
	}
	m.toast = m.toast.Show("Copied: "+sel.ID, toaster.StyleSuccess)
	return m, toaster.ScheduleDismiss(toastDuration)
}

// adjustDeckLimit changes the focused deck's capacity by delta and persists
// the new deck configuration. A limit of zero means unlimited, so lowering
// stops there.
func (m Model) adjustDeckLimit(delta int) (tea.Model, tea.Cmd) {
	deck := m.board.Deck(m.board.FocusedDeck())
	name := deck.Name()
	if name == "" {
		return m, nil
	}

	limit := deck.Limit() + delta
	if limit < 0 {
		return m, nil
	}

	m.board = m.board.SetDeckLimit(name, limit)
	m.shared.setDeckLimit(name, limit)
	for i := range m.services.Config.Decks {
		if m.services.Config.Decks[i].Name == name {
			m.services.Config.Decks[i].Limit = limit
		}
	}

	log.Info(log.CatConfig, "deck limit changed", "deck", name, "limit", limit)
	return m, m.saveDecksCmd()
}

func (m Model) saveDecksCmd() tea.Cmd {
	path := m.services.ConfigPath
	decks := append([]config.DeckConfig(nil), m.services.Config.Decks...)
	return func() tea.Msg {
		return decksSavedMsg{err: config.SaveDecks(path, decks)}
	}
}

func (m Model) warnCapacity(deck string) {
	log.Warn(log.CatBoard, "deck at capacity", "deck", deck)
}

func (m Model) quit() tea.Cmd {
	if m.services.Watcher != nil {
		if err := m.services.Watcher.Stop(); err != nil {
			log.ErrorErr(log.CatWatcher, "watcher stop failed", err)
		}
	}
	m.cancel()
	m.coord.Close()
	return tea.Quit
}

// boardHeight returns the height available to the board, reserving a line
// for the status bar when it is shown.
func (m Model) boardHeight() int {
	if m.showStatusBar {
		return m.height - 1
	}
	return m.height
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.board.View()
	if m.showStatusBar {
		view += "\n" + m.renderStatusBar()
	}

	// The drag preview floats next to the pointer while a gesture is live.
	if m.engine.Dragging() {
		if fg := m.drag.View(m.coord.State().Dragging); fg != "" {
			x, y := m.engine.Position()
			view = overlay.PlaceAt(overlay.Config{Width: m.width, Height: m.height}, x+1, y+1, fg, view)
		}
	}

	if m.help.ShowAll {
		box := styles.OverlayStyle.Render(m.help.View(m.keys))
		view = overlay.Place(overlay.Config{
			Width:    m.width,
			Height:   m.height,
			Position: overlay.Center,
		}, box, view)
	}

	view = m.toast.Overlay(view, m.width, m.height)
	view = m.logs.Overlay(view)

	// Scan registers the zone marks so the next mouse event hit-tests
	// against this frame's layout.
	return zone.Scan(view)
}

func (m Model) renderStatusBar() string {
	state := m.coord.State()

	var content string
	switch {
	case m.err != nil:
		content = "Error: " + m.err.Error()
	case len(state.Dragging) > 0:
		content = fmt.Sprintf("Dragging %d card(s)", len(state.Dragging))
	case len(state.Dropping) > 0:
		content = "Dropping..."
	default:
		content = fmt.Sprintf("%d cards", m.shared.total())
	}

	return styles.StatusBarStyle.Width(m.width).Render(content)
}

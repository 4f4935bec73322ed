package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/ferry/internal/cards"
	"github.com/zjrosen/ferry/internal/dnd"
	"github.com/zjrosen/ferry/internal/ui/styles"
)

// StatusFn reports the drag status for a qualified node id. The board uses
// it to restyle cards and decks while a drag is in flight.
type StatusFn func(nodeID string) dnd.NodeStatus

// CardZoneID returns the bubblezone id marking a card on screen.
func CardZoneID(cardID string) string {
	return cards.NamespaceCard + dnd.Separator + cardID
}

// DeckZoneID returns the bubblezone id marking a deck on screen.
func DeckZoneID(deck string) string {
	return cards.NamespaceDeck + dnd.Separator + deck
}

// cardDelegate is a custom delegate for rendering cards with drag-status
// styling and per-card zone marks.
type cardDelegate struct {
	focused  *bool    // pointer to deck's focused state
	statusFn StatusFn // nil means every card renders idle
}

func newCardDelegate(focused *bool, statusFn StatusFn) cardDelegate {
	return cardDelegate{
		focused:  focused,
		statusFn: statusFn,
	}
}

// Height returns the height of each item.
func (d cardDelegate) Height() int {
	return 1
}

// Spacing returns the spacing between items.
func (d cardDelegate) Spacing() int {
	return 0
}

// Update handles any delegate-level updates.
func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders a card line. Cards that are part of the active drag render
// as a faint ghost so the user can see the source while dragging.
func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	card, ok := item.(cards.Card)
	if !ok {
		return
	}

	isSelected := index == m.Index() && d.focused != nil && *d.focused

	idStyle := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
	titleStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)

	status := dnd.StatusIdle
	if d.statusFn != nil {
		status = d.statusFn(CardZoneID(card.ID))
	}
	if status == dnd.StatusDragging {
		idStyle = styles.CardGhostStyle
		titleStyle = styles.CardGhostStyle
	}

	line := strings.Join([]string{
		idStyle.Render(fmt.Sprintf("[%s]", shortID(card.ID))),
		titleStyle.Render(" " + card.Title),
	}, "")

	if isSelected {
		line = titleStyle.Bold(true).Render(">") + line
	} else {
		line = " " + line
	}
	if m.Width() > 0 {
		line = ansi.Truncate(line, m.Width(), "…")
	}

	_, _ = fmt.Fprint(w, zone.Mark(CardZoneID(card.ID), line))
}

// shortID abbreviates a uuid for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Deck represents a single column of cards on the board.
type Deck struct {
	name       string
	color      lipgloss.TerminalColor // custom color for deck border/title
	limit      int                    // max cards accepted by drop, 0 = unlimited
	list       list.Model
	items      []cards.Card
	width      int
	height     int
	focused    *bool // pointer so it survives value copies
	showCounts *bool // pointer so it survives value copies (nil = default true)
}

// NewDeck creates a new deck.
func NewDeck(name string, statusFn StatusFn) Deck {
	// Allocate focused state on heap so pointer survives copies
	focused := new(bool)

	delegate := newCardDelegate(focused, statusFn)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Deck{
		name:    name,
		list:    l,
		focused: focused,
	}
}

// Name returns the deck's name, which doubles as its persistence key.
func (d Deck) Name() string {
	return d.name
}

// NodeID returns the deck's qualified drag node id.
func (d Deck) NodeID() string {
	return DeckZoneID(d.name)
}

// SetLimit sets the maximum number of cards the deck accepts via drop.
// Zero means unlimited.
func (d Deck) SetLimit(limit int) Deck {
	d.limit = limit
	return d
}

// Limit returns the deck's card limit, 0 when unlimited.
func (d Deck) Limit() int {
	return d.limit
}

// AtCapacity reports whether dropping n more cards would exceed the limit.
func (d Deck) AtCapacity(n int) bool {
	return d.limit > 0 && len(d.items)+n > d.limit
}

// SetSize updates deck dimensions.
func (d Deck) SetSize(width, height int) Deck {
	d.width = width
	d.height = height

	// Size list to fit inside borders (2 chars for left/right borders)
	listWidth := width - 2
	if listWidth < 1 {
		listWidth = 1
	}
	// Account for top/bottom borders and bubbles list internal chrome
	listHeight := height - 5
	if listHeight < 1 {
		listHeight = 1
	}
	d.list.SetSize(listWidth, listHeight)
	return d
}

// SetFocused sets whether this deck is focused.
func (d Deck) SetFocused(focused bool) Deck {
	*d.focused = focused
	return d
}

// SetItems populates the deck with cards.
func (d Deck) SetItems(cs []cards.Card) Deck {
	d.items = cs
	items := make([]list.Item, len(cs))
	for i, c := range cs {
		items[i] = c
	}
	d.list.SetItems(items)
	return d
}

// SetShowCounts sets whether to display counts in the deck title.
func (d Deck) SetShowCounts(show bool) Deck {
	if d.showCounts == nil {
		d.showCounts = new(bool)
	}
	*d.showCounts = show
	return d
}

// SelectedCard returns the currently selected card.
func (d Deck) SelectedCard() *cards.Card {
	if item := d.list.SelectedItem(); item != nil {
		card := item.(cards.Card)
		return &card
	}
	return nil
}

// Items returns all cards in the deck.
func (d Deck) Items() []cards.Card {
	return d.items
}

// SelectByID selects the card with the given ID. Returns true if found.
func (d Deck) SelectByID(id string) (Deck, bool) {
	for i, c := range d.items {
		if c.ID == id {
			d.list.Select(i)
			return d, true
		}
	}
	return d, false
}

// Update handles messages.
func (d Deck) Update(msg tea.Msg) (Deck, tea.Cmd) {
	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return d, cmd
}

// Title returns the formatted title with optional count for border rendering.
// Decks with a limit show "name (n/limit)", unlimited decks show "name (n)".
func (d Deck) Title() string {
	if d.showCounts != nil && !*d.showCounts {
		return d.name
	}
	if d.limit > 0 {
		return fmt.Sprintf("%s (%d/%d)", d.name, len(d.items), d.limit)
	}
	return fmt.Sprintf("%s (%d)", d.name, len(d.items))
}

// View renders the deck content (without border - border applied by board).
func (d Deck) View() string {
	if len(d.items) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Padding(1, 2)
		return emptyStyle.Render("No cards")
	}
	return d.list.View()
}

// SetColor sets the deck's border/title color.
func (d Deck) SetColor(color lipgloss.TerminalColor) Deck {
	d.color = color
	return d
}

// Color returns the deck's color for rendering.
func (d Deck) Color() lipgloss.TerminalColor {
	if d.color == nil {
		return styles.BorderDefaultColor // Default fallback
	}
	return d.color
}

// Package board contains the card board component.
package board

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/ferry/internal/cards"
	"github.com/zjrosen/ferry/internal/config"
	"github.com/zjrosen/ferry/internal/dnd"
	"github.com/zjrosen/ferry/internal/ui/styles"
)

// Model holds the board state: one deck per configured deck, left to right.
type Model struct {
	decks    []Deck
	statusFn StatusFn
	focused  int
	width    int
	height   int
}

// New creates a board with the default decks.
func New(statusFn StatusFn) Model {
	return NewFromConfig(config.DefaultDecks(), statusFn)
}

// NewFromConfig creates a board with decks from configuration.
func NewFromConfig(configs []config.DeckConfig, statusFn StatusFn) Model {
	decks := make([]Deck, len(configs))

	for i, cfg := range configs {
		deck := NewDeck(cfg.Name, statusFn).SetLimit(cfg.Limit)
		if cfg.Color != "" {
			deck = deck.SetColor(lipgloss.Color(cfg.Color))
		}
		decks[i] = deck
	}

	return Model{
		decks:    decks,
		statusFn: statusFn,
	}
}

// DeckCount returns the number of decks.
func (m Model) DeckCount() int {
	return len(m.decks)
}

// SetSize updates board dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	deckCount := len(m.decks)
	if deckCount == 0 {
		return m
	}

	contentWidth := width / deckCount
	for i := range m.decks {
		m.decks[i] = m.decks[i].SetSize(contentWidth, height)
	}
	return m
}

// SetShowCounts sets whether to display counts in deck titles.
func (m Model) SetShowCounts(show bool) Model {
	for i := range m.decks {
		m.decks[i] = m.decks[i].SetShowCounts(show)
	}
	return m
}

// SetCards distributes cards into their decks. Cards referencing an
// unconfigured deck are dropped from display.
func (m Model) SetCards(cs []cards.Card) Model {
	byDeck := make(map[string][]cards.Card, len(m.decks))
	for _, c := range cs {
		byDeck[c.Deck] = append(byDeck[c.Deck], c)
	}
	for i := range m.decks {
		m.decks[i] = m.decks[i].SetItems(byDeck[m.decks[i].Name()])
	}
	return m
}

// SelectedCard returns the currently selected card.
func (m Model) SelectedCard() *cards.Card {
	if m.focused < 0 || m.focused >= len(m.decks) {
		return nil
	}
	return m.decks[m.focused].SelectedCard()
}

// FocusedDeck returns the currently focused deck index.
func (m Model) FocusedDeck() int {
	return m.focused
}

// SetFocus sets the focused deck.
func (m Model) SetFocus(idx int) Model {
	if idx >= 0 && idx < len(m.decks) {
		m.focused = idx
	}
	return m
}

// SelectByID finds a card by ID across all decks and selects it.
// Returns the model and true if found, false otherwise.
func (m Model) SelectByID(id string) (Model, bool) {
	for i := range m.decks {
		deck, found := m.decks[i].SelectByID(id)
		if found {
			m.decks[i] = deck
			m.focused = i
			return m, true
		}
	}
	return m, false
}

// Deck returns the deck at the given index.
func (m Model) Deck(idx int) Deck {
	if idx < 0 || idx >= len(m.decks) {
		return Deck{}
	}
	return m.decks[idx]
}

// DeckByName returns the deck with the given name.
func (m Model) DeckByName(name string) (Deck, bool) {
	for _, d := range m.decks {
		if d.Name() == name {
			return d, true
		}
	}
	return Deck{}, false
}

// SetDeckLimit updates the capacity of the named deck. Unknown names are
// ignored.
func (m Model) SetDeckLimit(name string, limit int) Model {
	for i := range m.decks {
		if m.decks[i].Name() == name {
			m.decks[i] = m.decks[i].SetLimit(limit)
		}
	}
	return m
}

// IsEmpty returns true if all decks have no cards.
func (m Model) IsEmpty() bool {
	for _, d := range m.decks {
		if len(d.Items()) > 0 {
			return false
		}
	}
	return true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "h", "left":
			if m.focused > 0 {
				m.focused--
			}
			return m, nil

		case "l", "right":
			if m.focused < len(m.decks)-1 {
				m.focused++
			}
			return m, nil

		case "j", "down", "k", "up":
			if m.focused >= 0 && m.focused < len(m.decks) {
				deck := m.decks[m.focused]
				deck, _ = deck.Update(msg)
				m.decks[m.focused] = deck
			}
			return m, nil
		}
	}
	return m, nil
}

// View renders the board. Each deck is zone-marked so the pointer engine
// can resolve drop targets, and deck borders restyle while a drag is over
// them or a drop is settling.
func (m Model) View() string {
	if len(m.decks) == 0 {
		return m.renderEmptyState()
	}

	var rendered []string

	contentHeight := m.height
	if contentHeight < 3 {
		contentHeight = 3
	}

	for i, deck := range m.decks {
		isFocused := i == m.focused
		deck = deck.SetFocused(isFocused)

		borderColor := deck.Color()
		active := isFocused
		if m.statusFn != nil {
			switch m.statusFn(deck.NodeID()) {
			case dnd.StatusOver:
				borderColor = styles.DropTargetColor
				active = true
			case dnd.StatusOverPending:
				borderColor = styles.DropPendingColor
				active = true
			}
		}

		block := styles.RenderWithTitleBorder(
			deck.View(),
			deck.Title(),
			deck.width,
			contentHeight,
			active,
			deck.Color(),
			borderColor,
		)
		rendered = append(rendered, zone.Mark(deck.NodeID(), block))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderEmptyState renders a centered message when no decks are configured.
func (m Model) renderEmptyState() string {
	emptyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Italic(true)

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor)

	content := messageStyle.Render("No decks configured") + "\n\n" +
		hintStyle.Render("Add decks to your config file to get started")

	return emptyStyle.Render(content)
}

// Package cards defines the card domain model for the demo board.
package cards

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Namespace values used to qualify drag entities on the board.
const (
	NamespaceCard = "card"
	NamespaceDeck = "deck"
)

// Card is one movable item on the board.
type Card struct {
	ID        string
	Deck      string
	Title     string
	Body      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCard creates a card with a fresh id in the given deck.
func NewCard(deck, title, body string) Card {
	now := time.Now().UTC()
	return Card{
		ID:        uuid.NewString(),
		Deck:      deck,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FilterValue implements list.Item for the bubbles list component.
func (c Card) FilterValue() string {
	return c.Title
}

// NotFoundError indicates a card lookup by id matched nothing.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("card not found: %s", e.ID)
}

// Repository persists cards.
type Repository interface {
	// Save inserts the card, or updates it if the id already exists.
	Save(card Card) error
	// FindByID returns the card with the given id.
	// Returns NotFoundError if no such card exists.
	FindByID(id string) (Card, error)
	// ListByDeck returns the cards in a deck ordered by position.
	ListByDeck(deck string) ([]Card, error)
	// ListAll returns every card ordered by deck then position.
	ListAll() ([]Card, error)
	// Move reassigns the card to deck, appending it after the deck's
	// current last position. Returns NotFoundError for unknown ids.
	Move(id, deck string) error
	// Delete removes the card. Unknown ids are a no-op.
	Delete(id string) error
}

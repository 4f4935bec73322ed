package sqlite

import (
	"time"

	"github.com/zjrosen/ferry/internal/cards"
)

// CardModel represents the database row for the cards table.
// Fields map directly to SQL columns with Unix timestamps for time values.
type CardModel struct {
	ID        string
	Deck      string
	Title     string
	Body      string
	Position  int
	CreatedAt int64 // Unix timestamp
	UpdatedAt int64 // Unix timestamp
}

// toCardModel converts a domain card to its database row.
func toCardModel(c cards.Card) CardModel {
	return CardModel{
		ID:        c.ID,
		Deck:      c.Deck,
		Title:     c.Title,
		Body:      c.Body,
		Position:  c.Position,
		CreatedAt: c.CreatedAt.Unix(),
		UpdatedAt: c.UpdatedAt.Unix(),
	}
}

// toDomain converts a database row back to a domain card.
func (m CardModel) toDomain() cards.Card {
	return cards.Card{
		ID:        m.ID,
		Deck:      m.Deck,
		Title:     m.Title,
		Body:      m.Body,
		Position:  m.Position,
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(m.UpdatedAt, 0).UTC(),
	}
}

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/ferry/internal/cards"
)

// cardColumns is the list of columns to select for card queries.
const cardColumns = `id, deck, title, body, position, created_at, updated_at`

// cardRepository implements cards.Repository using SQLite.
type cardRepository struct {
	db *sql.DB
}

// newCardRepository creates a new cardRepository instance.
func newCardRepository(db *sql.DB) *cardRepository {
	return &cardRepository{db: db}
}

// Ensure cardRepository implements cards.Repository.
var _ cards.Repository = (*cardRepository)(nil)

// scanCard scans a row into a CardModel.
func scanCard(scanner interface{ Scan(...any) error }) (CardModel, error) {
	var model CardModel
	err := scanner.Scan(
		&model.ID, &model.Deck, &model.Title, &model.Body,
		&model.Position, &model.CreatedAt, &model.UpdatedAt,
	)
	return model, err
}

// Save inserts the card, or replaces the existing row for its id.
func (r *cardRepository) Save(card cards.Card) error {
	model := toCardModel(card)
	_, err := r.db.Exec(
		`INSERT INTO cards (id, deck, title, body, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deck = excluded.deck, title = excluded.title, body = excluded.body,
			position = excluded.position, updated_at = excluded.updated_at`,
		model.ID, model.Deck, model.Title, model.Body, model.Position, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// FindByID retrieves a card by id.
// Returns cards.NotFoundError if no matching card exists.
func (r *cardRepository) FindByID(id string) (cards.Card, error) {
	row := r.db.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	model, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cards.Card{}, &cards.NotFoundError{ID: id}
	}
	if err != nil {
		return cards.Card{}, fmt.Errorf("failed to find card: %w", err)
	}
	return model.toDomain(), nil
}

// ListByDeck returns the cards in one deck ordered by position.
func (r *cardRepository) ListByDeck(deck string) ([]cards.Card, error) {
	rows, err := r.db.Query(
		`SELECT `+cardColumns+` FROM cards WHERE deck = ? ORDER BY position, created_at`, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// ListAll returns every card ordered by deck then position.
func (r *cardRepository) ListAll() ([]cards.Card, error) {
	rows, err := r.db.Query(
		`SELECT ` + cardColumns + ` FROM cards ORDER BY deck, position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

func collectCards(rows *sql.Rows) ([]cards.Card, error) {
	out := []cards.Card{}
	for rows.Next() {
		model, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		out = append(out, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return out, nil
}

// Move reassigns the card to deck, appending it after the deck's current
// last position. The position read and the update run in one transaction
// so two concurrent moves cannot claim the same slot.
func (r *cardRepository) Move(id, deck string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin move: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM cards WHERE deck = ?`, deck).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute position: %w", err)
	}

	result, err := tx.Exec(
		`UPDATE cards SET deck = ?, position = ?, updated_at = ? WHERE id = ?`,
		deck, next, time.Now().UTC().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to move card: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read move result: %w", err)
	}
	if affected == 0 {
		return &cards.NotFoundError{ID: id}
	}

	return tx.Commit()
}

// Delete removes the card. Unknown ids are a no-op.
func (r *cardRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

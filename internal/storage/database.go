package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Deck is a named deck stored in the database.
type Deck struct {
	ID        int64
	Name      string
	CreatedAt sql.NullTime
}

// InsertDeck inserts a new deck and returns its ID.
func (db *DB) InsertDeck(name string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO decks (name, created_at)
		VALUES (?, ?)
	`, name, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert deck %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for deck %s: %w", name, err)
	}
	return id, nil
}

// FindDeckByName retrieves a deck by its name. It returns nil when no such
// deck exists.
func (db *DB) FindDeckByName(name string) (*Deck, error) {
	var d Deck
	row := db.conn.QueryRow(`
		SELECT id, name, created_at
		FROM decks WHERE name = ?
	`, name)

	err := row.Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Deck not found
		}
		return nil, fmt.Errorf("failed to find deck by name %s: %w", name, err)
	}
	return &d, nil
}

// GetAllDecks retrieves all stored decks ordered by name.
func (db *DB) GetAllDecks() ([]Deck, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, created_at
		FROM decks ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// Deck returns the record store for the named deck, creating the deck if
// it does not exist yet.
func (db *DB) Deck(name string) (*DeckStore, error) {
	d, err := db.FindDeckByName(name)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return &DeckStore{db: db, deckID: d.ID, name: name}, nil
	}
	id, err := db.InsertDeck(name)
	if err != nil {
		return nil, err
	}
	return &DeckStore{db: db, deckID: id, name: name}, nil
}

// DeckStore is the record store of a single deck held in the database.
type DeckStore struct {
	db     *DB
	deckID int64
	name   string
}

// Load retrieves every record of the deck ordered by row index. A row that
// cannot be scanned fails the whole load with a *domain.LoadError.
func (s *DeckStore) Load() ([]domain.Record, error) {
	rows, err := s.db.conn.Query(`
		SELECT question, answer, date_created, cur_interval, ease_factor,
		       times_reviewed, times_failed, times_correct
		FROM records WHERE deck_id = ?
		ORDER BY row_index
	`, s.deckID)
	if err != nil {
		return nil, &domain.LoadError{Source: s.name, Row: -1, Err: err}
	}
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(
			&rec.Question,
			&rec.Answer,
			&rec.CreatedAt,
			&rec.Interval,
			&rec.EaseFactor,
			&rec.TimesReviewed,
			&rec.TimesFailed,
			&rec.TimesCorrect,
		); err != nil {
			return nil, &domain.LoadError{Source: s.name, Row: len(recs), Err: err}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.LoadError{Source: s.name, Row: -1, Err: err}
	}
	return recs, nil
}

// AppendRow inserts rec after the deck's last row.
func (s *DeckStore) AppendRow(rec domain.Record) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin append to deck %s: %w", s.name, err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(row_index) + 1, 0) FROM records WHERE deck_id = ?
	`, s.deckID).Scan(&next); err != nil {
		return fmt.Errorf("failed to find next row for deck %s: %w", s.name, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO records (deck_id, row_index, question, answer, date_created,
		                     cur_interval, ease_factor, times_reviewed, times_failed, times_correct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.deckID, next,
		rec.Question, rec.Answer, rec.CreatedAt,
		rec.Interval, rec.EaseFactor,
		rec.TimesReviewed, rec.TimesFailed, rec.TimesCorrect,
	); err != nil {
		return fmt.Errorf("failed to append row to deck %s: %w", s.name, err)
	}
	return tx.Commit()
}

// RewriteRow replaces the record at index.
func (s *DeckStore) RewriteRow(index int, rec domain.Record) error {
	res, err := s.db.conn.Exec(`
		UPDATE records
		SET question = ?, answer = ?, date_created = ?, cur_interval = ?, ease_factor = ?,
		    times_reviewed = ?, times_failed = ?, times_correct = ?
		WHERE deck_id = ? AND row_index = ?
	`,
		rec.Question, rec.Answer, rec.CreatedAt,
		rec.Interval, rec.EaseFactor,
		rec.TimesReviewed, rec.TimesFailed, rec.TimesCorrect,
		s.deckID, index,
	)
	if err != nil {
		return fmt.Errorf("failed to rewrite row %d of deck %s: %w", index, s.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rewrite row %d of deck %s: %w", index, s.name, err)
	}
	if n == 0 {
		return fmt.Errorf("row %d out of range for deck %s", index, s.name)
	}
	return nil
}

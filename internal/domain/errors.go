package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for lookups of a card that is not indexed or
	// not scheduled.
	ErrNotFound = errors.New("card not found")
	// ErrIndexFull is returned when the hash index has no free slot. The
	// index is left unchanged.
	ErrIndexFull = errors.New("hash index is full")
	// ErrInvalidGrade is returned for a grade outside Again..Exit.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrInvalidMode is returned for an unknown study mode.
	ErrInvalidMode = errors.New("invalid study mode")
	// ErrInvalidCard is returned when a card fails validation.
	ErrInvalidCard = errors.New("invalid card")
	// ErrDuplicateQuestion is returned when a question is already used by
	// another card of the deck. Questions compare case-insensitively.
	ErrDuplicateQuestion = errors.New("question already in deck")
	// ErrDeckFull is returned when adding past MaxDeckSize cards.
	ErrDeckFull = errors.New("deck is full")
	// ErrNoDeck is returned when studying before a deck is loaded.
	ErrNoDeck = errors.New("no deck loaded")
)

// LoadError reports a record store that could not be read or holds a
// malformed row. Row is the 0-based data row, or -1 when the failure is not
// tied to a row.
type LoadError struct {
	Source string
	Row    int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("failed to load deck %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to load deck %s: row %d: %v", e.Source, e.Row, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write. The in-memory card has already
// been updated when this is returned.
type PersistenceError struct {
	Row int
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist row %d: %v", e.Row, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

package domain

import "time"

// CreatedAtLayout is the format of Record.CreatedAt.
const CreatedAtLayout = "2006-01-02 15:04:05"

const (
	DefaultInterval   = 1.0
	DefaultEaseFactor = 2.5
	DefaultPriority   = 2.5
	MaxDeckSize       = 100
)

// Record is one persisted row of a deck, in header order.
type Record struct {
	Question      string  `validate:"required"`
	Answer        string  `validate:"required"`
	CreatedAt     string
	Interval      float64 `validate:"gte=0"`
	EaseFactor    float64 `validate:"gte=1"`
	TimesReviewed int     `validate:"gte=0"`
	TimesFailed   int     `validate:"gte=0"`
	TimesCorrect  int     `validate:"gte=0"`
}

// Card is a single question-answer entry together with its review statistics.
// RowIndex is the card's position in the record store and ReviewPriority the
// key it was last scheduled under; neither is persisted.
type Card struct {
	Record
	RowIndex       int
	ReviewPriority float64
}

// NewRecord returns a fresh record with default scheduling values.
func NewRecord(question, answer string, now time.Time) Record {
	return Record{
		Question:   question,
		Answer:     answer,
		CreatedAt:  now.Format(CreatedAtLayout),
		Interval:   DefaultInterval,
		EaseFactor: DefaultEaseFactor,
	}
}

// NewCard wraps a record loaded from (or appended to) row index.
func NewCard(rec Record, index int) *Card {
	return &Card{Record: rec, RowIndex: index, ReviewPriority: DefaultPriority}
}

// Hardness is (failed+1)/(reviewed+1). A fresh card scores 1.
func (c *Card) Hardness() float64 {
	return float64(c.TimesFailed+1) / float64(c.TimesReviewed+1)
}

// Easiness is (correct+1)/(reviewed+1).
func (c *Card) Easiness() float64 {
	return float64(c.TimesCorrect+1) / float64(c.TimesReviewed+1)
}

// Created parses CreatedAt. Cards written by other tools may carry a
// fractional second or nothing at all; those sort as the zero time.
func (c *Card) Created() time.Time {
	t, err := time.Parse(CreatedAtLayout, c.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

package storage

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Header is the fixed, order-significant column list of a deck.
var Header = []string{
	"question",
	"answer",
	"date_created",
	"cur_interval",
	"ease_factor",
	"times_reviewed",
	"times_failed",
	"times_correct",
}

// EncodeRecord renders rec as a row in Header order.
func EncodeRecord(rec domain.Record) []string {
	return []string{
		rec.Question,
		rec.Answer,
		rec.CreatedAt,
		strconv.FormatFloat(rec.Interval, 'f', -1, 64),
		strconv.FormatFloat(rec.EaseFactor, 'f', -1, 64),
		strconv.Itoa(rec.TimesReviewed),
		strconv.Itoa(rec.TimesFailed),
		strconv.Itoa(rec.TimesCorrect),
	}
}

// DecodeRecord parses a row in Header order.
func DecodeRecord(row []string) (domain.Record, error) {
	if len(row) != len(Header) {
		return domain.Record{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}

	rec := domain.Record{
		Question:  row[0],
		Answer:    row[1],
		CreatedAt: row[2],
	}
	var err error
	if rec.Interval, err = parseFinite(row[3]); err != nil {
		return domain.Record{}, fmt.Errorf("cur_interval: %w", err)
	}
	if rec.EaseFactor, err = parseFinite(row[4]); err != nil {
		return domain.Record{}, fmt.Errorf("ease_factor: %w", err)
	}
	counters := []*int{&rec.TimesReviewed, &rec.TimesFailed, &rec.TimesCorrect}
	for i, dst := range counters {
		if *dst, err = strconv.Atoi(row[5+i]); err != nil {
			return domain.Record{}, fmt.Errorf("%s: %w", Header[5+i], err)
		}
	}
	return rec, nil
}

// parseFinite parses a float and rejects NaN and the infinities, which
// strconv accepts.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// IsHeader reports whether row is exactly Header.
func IsHeader(row []string) bool {
	return slices.Equal(row, Header)
}

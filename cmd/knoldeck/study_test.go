package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/engine"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedSession(t *testing.T, recs ...domain.Record) (*engine.Session, *storage.CSVStore) {
	t.Helper()
	store, err := storage.CreateCSV(filepath.Join(t.TempDir(), "deck.csv"), recs)
	require.NoError(t, err)
	s := engine.New(store, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, s.Load())
	return s, store
}

func TestRunStudy(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s, store := loadedSession(t, domain.NewRecord("Capital of France?", "Paris", now))
	require.NoError(t, s.StartStudy(engine.ReviewTime))

	// Reveal, an invalid grade, then Good; reveal again and Exit.
	in := strings.NewReader("\n9\n3\n\nexit\n")
	var out bytes.Buffer
	require.NoError(t, runStudy(s, in, &out))

	text := out.String()
	assert.Contains(t, text, "Capital of France?")
	assert.Contains(t, text, "Paris")
	assert.Contains(t, text, "Invalid Input!")
	assert.Contains(t, text, "Session finished, 1 cards graded.")
	assert.Equal(t, engine.Done, s.State())

	recs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, recs[0].TimesCorrect)
	assert.InDelta(t, 2.5, recs[0].Interval, 1e-9)
}

func TestRunStudyEndOfInput(t *testing.T) {
	s, _ := loadedSession(t, domain.NewRecord("q", "a", time.Now()))
	require.NoError(t, s.StartStudy(engine.ReviewTime))

	var out bytes.Buffer
	require.NoError(t, runStudy(s, strings.NewReader("\n"), &out))
	assert.Contains(t, out.String(), "Session finished, 0 cards graded.")
}

func TestRunStudyEmptyDeck(t *testing.T) {
	s, _ := loadedSession(t)
	require.NoError(t, s.StartStudy(engine.StudyHard))

	var out bytes.Buffer
	require.NoError(t, runStudy(s, strings.NewReader(""), &out))
	assert.Equal(t, "Session finished, 0 cards graded.\n", out.String())
}

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "knoldeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDeckCreatedOnce(t *testing.T) {
	db := openTestDB(t)

	first, err := db.Deck("spanish")
	require.NoError(t, err)
	second, err := db.Deck("spanish")
	require.NoError(t, err)
	assert.Equal(t, first.deckID, second.deckID)

	_, err = db.Deck("french")
	require.NoError(t, err)

	decks, err := db.GetAllDecks()
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "french", decks[0].Name)

	missing, err := db.FindDeckByName("german")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeckStoreRows(t *testing.T) {
	db := openTestDB(t)
	store, err := db.Deck("go")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := domain.NewRecord("What is Go?", "A language", now)
	b := domain.NewRecord("Who made Go?", "Google", now)
	require.NoError(t, store.AppendRow(a))
	require.NoError(t, store.AppendRow(b))

	recs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{a, b}, recs)

	b.Interval, b.TimesReviewed, b.TimesCorrect = 2.5, 1, 1
	require.NoError(t, store.RewriteRow(1, b))
	assert.Error(t, store.RewriteRow(2, b))

	recs, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{a, b}, recs)
}

func TestDeckStoresAreIsolated(t *testing.T) {
	db := openTestDB(t)
	one, err := db.Deck("one")
	require.NoError(t, err)
	two, err := db.Deck("two")
	require.NoError(t, err)

	require.NoError(t, one.AppendRow(domain.NewRecord("Q1", "A1", time.Now())))

	recs, err := two.Load()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

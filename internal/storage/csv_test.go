package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDeck = `question,answer,date_created,cur_interval,ease_factor,times_reviewed,times_failed,times_correct
What is Go?,A language,2024-01-02 10:00:00,1,2.5,0,0,0
"Capital of France, Europe?",Paris,2024-01-02 10:01:00,6.25,4,3,1,2
`

func writeDeck(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestCSVLoad(t *testing.T) {
	store := OpenCSV(writeDeck(t, sampleDeck))

	recs, err := store.Load()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Capital of France, Europe?", recs[1].Question)
	assert.Equal(t, 6.25, recs[1].Interval)
	assert.Equal(t, 4.0, recs[1].EaseFactor)
	assert.Equal(t, 3, recs[1].TimesReviewed)
	assert.Equal(t, 1, recs[1].TimesFailed)
	assert.Equal(t, 2, recs[1].TimesCorrect)
}

func TestCSVRoundTrip(t *testing.T) {
	path := writeDeck(t, sampleDeck)
	store := OpenCSV(path)

	recs, err := store.Load()
	require.NoError(t, err)
	for i, rec := range recs {
		require.NoError(t, store.RewriteRow(i, rec))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDeck, string(data))
}

func TestCSVLoadErrors(t *testing.T) {
	testCases := []struct {
		name     string
		contents string
		row      int
	}{
		{name: "empty file", contents: "", row: -1},
		{name: "bad header", contents: "q,a,d,i,e,r,f,c\n", row: -1},
		{name: "short row", contents: sampleDeck + "only,three,fields\n", row: -1},
		{name: "bad interval", contents: sampleDeck + "Q,A,now,soon,2.5,0,0,0\n", row: 2},
		{name: "bad counter", contents: sampleDeck + "Q,A,now,1,2.5,0,x,0\n", row: 2},
		{name: "NaN interval", contents: sampleDeck + "Q,A,now,NaN,2.5,0,0,0\n", row: 2},
		{name: "infinite ease", contents: sampleDeck + "Q,A,now,1,+Inf,0,0,0\n", row: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := OpenCSV(writeDeck(t, tc.contents)).Load()
			assert.Nil(t, recs)

			var loadErr *domain.LoadError
			require.True(t, errors.As(err, &loadErr), "got %v", err)
			assert.Equal(t, tc.row, loadErr.Row)
		})
	}
}

func TestCSVLoadMissingFile(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "nope.csv")).Load()

	var loadErr *domain.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVAppendKeepsRowIndexes(t *testing.T) {
	path := writeDeck(t, sampleDeck)
	store := OpenCSV(path)

	added := domain.NewRecord("New?", "Yes", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.AppendRow(added))

	recs, err := store.Load()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "What is Go?", recs[0].Question)
	assert.Equal(t, added, recs[2])
}

func TestCSVRewriteRow(t *testing.T) {
	store := OpenCSV(writeDeck(t, sampleDeck))

	recs, err := store.Load()
	require.NoError(t, err)
	updated := recs[0]
	updated.Interval = 2.5
	updated.TimesReviewed, updated.TimesCorrect = 1, 1
	require.NoError(t, store.RewriteRow(0, updated))

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded[0])
	assert.Equal(t, recs[1], reloaded[1])

	assert.Error(t, store.RewriteRow(5, updated))
	assert.Error(t, store.RewriteRow(-1, updated))
}

func TestCSVRewriteRowKeepsFileMode(t *testing.T) {
	path := writeDeck(t, sampleDeck)
	require.NoError(t, os.Chmod(path, 0o600))
	store := OpenCSV(path)

	recs, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.RewriteRow(1, recs[1]))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".deck-*.csv"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCSVRewriteRowMissingDeck(t *testing.T) {
	path := writeDeck(t, sampleDeck)
	store := OpenCSV(path)
	recs, err := store.Load()
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	assert.Error(t, store.RewriteRow(0, recs[0]))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".deck-*.csv"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCreateCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.csv")
	rec := domain.NewRecord("Q", "A", time.Now())

	store, err := CreateCSV(path, []domain.Record{rec})
	require.NoError(t, err)

	recs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{rec}, recs)

	_, err = CreateCSV(path, nil)
	assert.Error(t, err)
}

func TestDecodeRecord(t *testing.T) {
	rec := domain.Record{
		Question: "Q", Answer: "A", CreatedAt: "2024-01-01 00:00:00",
		Interval: 7.5, EaseFactor: 2.5, TimesReviewed: 2, TimesFailed: 1, TimesCorrect: 1,
	}
	decoded, err := DecodeRecord(EncodeRecord(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)

	_, err = DecodeRecord([]string{"too", "short"})
	assert.Error(t, err)

	for _, bad := range []string{"NaN", "Inf", "-Inf"} {
		row := EncodeRecord(rec)
		row[3] = bad
		_, err = DecodeRecord(row)
		assert.Error(t, err, bad)
	}
}

package knol

import (
	"github.com/conorfennell/knoldeck/internal/domain"
)

// DefaultCapacity leaves headroom above domain.MaxDeckSize so probe chains
// stay short.
const DefaultCapacity = domain.MaxDeckSize + 1

type slotState uint8

const (
	empty slotState = iota
	live
	tombstone
)

type slot struct {
	state slotState
	key   string
	card  *domain.Card
}

// Entry is a key and the card indexed under it.
type Entry struct {
	Key  string
	Card *domain.Card
}

// Index is a fixed-capacity open-addressed hash table with linear probing.
// Deleted slots become tombstones so later probe chains stay intact. The
// index borrows its cards; it never copies or owns them.
type Index struct {
	slots []slot
	size  int
	hash  func(string) uint64
}

// Option configures an Index.
type Option func(*Index)

// WithHashFunc replaces the default SHA-256 based hash.
func WithHashFunc(fn func(string) uint64) Option {
	return func(ix *Index) { ix.hash = fn }
}

// NewIndex creates an empty index. A non-positive capacity falls back to
// DefaultCapacity.
func NewIndex(capacity int, opts ...Option) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ix := &Index{slots: make([]slot, capacity), hash: Hash}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Cap returns the number of slots.
func (ix *Index) Cap() int { return len(ix.slots) }

// Len returns the number of live entries.
func (ix *Index) Len() int { return ix.size }

func (ix *Index) start(key string) int {
	return int(ix.hash(key) % uint64(len(ix.slots)))
}

// Insert stores card under key. A live slot with the same key is
// overwritten; otherwise the first empty or tombstoned slot on the probe
// path is taken. If no slot is found the index is unchanged and
// domain.ErrIndexFull is returned.
func (ix *Index) Insert(key string, card *domain.Card) error {
	if i := ix.find(key); i >= 0 {
		ix.slots[i].card = card
		return nil
	}

	i := ix.start(key)
	for count := 0; count < len(ix.slots); count++ {
		if ix.slots[i].state != live {
			ix.slots[i] = slot{state: live, key: key, card: card}
			ix.size++
			return nil
		}
		i = (i + 1) % len(ix.slots)
	}
	return domain.ErrIndexFull
}

// find returns the slot position of key, or -1. Probing stops at the first
// never-used slot and walks past tombstones.
func (ix *Index) find(key string) int {
	i := ix.start(key)
	for count := 0; count < len(ix.slots); count++ {
		s := ix.slots[i]
		switch {
		case s.state == empty:
			return -1
		case s.state == live && s.key == key:
			return i
		}
		i = (i + 1) % len(ix.slots)
	}
	return -1
}

// Get looks up key.
func (ix *Index) Get(key string) (Entry, bool) {
	i := ix.find(key)
	if i < 0 {
		return Entry{}, false
	}
	return Entry{Key: ix.slots[i].key, Card: ix.slots[i].card}, true
}

// Delete removes key, leaving a tombstone, and returns the removed entry.
func (ix *Index) Delete(key string) (Entry, bool) {
	i := ix.find(key)
	if i < 0 {
		return Entry{}, false
	}
	removed := Entry{Key: ix.slots[i].key, Card: ix.slots[i].card}
	ix.slots[i] = slot{state: tombstone}
	ix.size--
	return removed, true
}

// Reset clears every slot, tombstones included.
func (ix *Index) Reset() {
	clear(ix.slots)
	ix.size = 0
}

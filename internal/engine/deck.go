package engine

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/knol"
)

// SortKey selects the ordering of Sorted.
type SortKey int

const (
	ByQuestion SortKey = iota
	ByAnswer
	ByCreated
)

// ParseSortKey accepts "question", "answer" or "created".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "question":
		return ByQuestion, nil
	case "answer":
		return ByAnswer, nil
	case "created", "date":
		return ByCreated, nil
	}
	return 0, fmt.Errorf("unknown sort key %q", s)
}

// Cards returns the deck's cards in row order, without removed cards.
func (s *Session) Cards() []*domain.Card {
	cards := make([]*domain.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if !s.removed[c] {
			cards = append(cards, c)
		}
	}
	return cards
}

// Sorted returns the deck's cards ordered by key. Equal keys keep row order.
func (s *Session) Sorted(key SortKey) []*domain.Card {
	cards := s.Cards()
	var compare func(a, b *domain.Card) int
	switch key {
	case ByAnswer:
		compare = func(a, b *domain.Card) int { return strings.Compare(a.Answer, b.Answer) }
	case ByCreated:
		compare = func(a, b *domain.Card) int { return a.Created().Compare(b.Created()) }
	default:
		compare = func(a, b *domain.Card) int { return strings.Compare(a.Question, b.Question) }
	}
	slices.SortStableFunc(cards, func(a, b *domain.Card) int {
		return cmp.Or(compare(a, b), cmp.Compare(a.RowIndex, b.RowIndex))
	})
	return cards
}

// Find looks a card up by question, ignoring case.
func (s *Session) Find(question string) (*domain.Card, error) {
	entry, ok := s.index.Get(knol.Key(question))
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, question)
	}
	return entry.Card, nil
}

// AddCard appends a new card to the deck. A running review-time session
// picks it up at the default priority.
func (s *Session) AddCard(question, answer string) (*domain.Card, error) {
	if !s.loaded {
		return nil, domain.ErrNoDeck
	}
	if len(s.cards) >= s.maxCards {
		return nil, fmt.Errorf("%w: %d cards", domain.ErrDeckFull, s.maxCards)
	}

	rec := domain.NewRecord(question, answer, s.now())
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	key := knol.Key(question)
	if err := s.checkQuestionFree(key, nil); err != nil {
		return nil, err
	}
	// A live count below capacity guarantees Insert finds a slot.
	if s.index.Len() >= s.index.Cap() {
		return nil, domain.ErrIndexFull
	}
	if err := s.store.AppendRow(rec); err != nil {
		return nil, &domain.PersistenceError{Row: len(s.cards), Err: err}
	}

	card := domain.NewCard(rec, len(s.cards))
	if err := s.index.Insert(key, card); err != nil {
		return nil, err
	}
	s.cards = append(s.cards, card)
	if s.state == AwaitingGrade && s.mode == ReviewTime {
		s.queue.Enqueue(domain.DefaultPriority, card)
	}

	s.logger.Info("card added", "row", card.RowIndex)
	return card, nil
}

// EditCard changes a card's question and answer. The index entry is moved
// to the new key and the row is rewritten.
func (s *Session) EditCard(card *domain.Card, question, answer string) error {
	oldKey := knol.Key(card.Question)
	if entry, ok := s.index.Get(oldKey); !ok || entry.Card != card {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, card.Question)
	}

	rec := card.Record
	rec.Question, rec.Answer = question, answer
	if err := rec.Validate(); err != nil {
		return err
	}
	newKey := knol.Key(question)
	if err := s.checkQuestionFree(newKey, card); err != nil {
		return err
	}

	s.index.Delete(oldKey)
	card.Record = rec
	if err := s.index.Insert(newKey, card); err != nil {
		return err
	}
	return s.persist(card)
}

// checkQuestionFree fails with ErrDuplicateQuestion when key belongs to a
// card other than self. Removed cards still hold a row in the store, so
// their questions stay taken.
func (s *Session) checkQuestionFree(key string, self *domain.Card) error {
	if entry, ok := s.index.Get(key); ok && entry.Card != self {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateQuestion, entry.Card.Question)
	}
	for c := range s.removed {
		if c != self && knol.Key(c.Question) == key {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateQuestion, c.Question)
		}
	}
	return nil
}

// RemoveCard drops a card from the deck: its index entry is deleted, it
// leaves any running session and it is no longer persisted. Its row stays
// in the store.
func (s *Session) RemoveCard(question string) error {
	entry, ok := s.index.Delete(knol.Key(question))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, question)
	}

	card := entry.Card
	s.removed[card] = true
	if s.queue.Remove(card) && s.visited != nil {
		s.visited.Add(card)
	}
	if s.state == AwaitingGrade && s.queue.Empty() {
		s.finish()
	}

	s.logger.Info("card removed", "row", card.RowIndex)
	return nil
}

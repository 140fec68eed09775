package queue

import (
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/emirpasic/gods/queues/priorityqueue"
)

type entry struct {
	priority float64
	seq      uint64
	card     *domain.Card
}

// byPriority orders entries by priority, then by insertion sequence so that
// equal priorities come out first-in first-out.
func byPriority(a, b interface{}) int {
	x, y := a.(*entry), b.(*entry)
	switch {
	case x.priority < y.priority:
		return -1
	case x.priority > y.priority:
		return 1
	case x.seq < y.seq:
		return -1
	case x.seq > y.seq:
		return 1
	}
	return 0
}

// Queue is a binary min-heap of cards keyed by priority. Lower priorities
// are served first.
type Queue struct {
	heap *priorityqueue.Queue
	seq  uint64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{heap: priorityqueue.NewWith(byPriority)}
}

// Enqueue schedules card under priority and records the priority on the
// card.
func (q *Queue) Enqueue(priority float64, card *domain.Card) {
	q.seq++
	card.ReviewPriority = priority
	q.heap.Enqueue(&entry{priority: priority, seq: q.seq, card: card})
}

// Dequeue removes and returns the card with the smallest priority. It
// returns false on an empty queue.
func (q *Queue) Dequeue() (*domain.Card, bool) {
	v, ok := q.heap.Dequeue()
	if !ok {
		return nil, false
	}
	return v.(*entry).card, true
}

// PeekFront returns the card with the smallest priority without removing it.
func (q *Queue) PeekFront() (*domain.Card, bool) {
	v, ok := q.heap.Peek()
	if !ok {
		return nil, false
	}
	return v.(*entry).card, true
}

// Contains reports whether card is scheduled.
func (q *Queue) Contains(card *domain.Card) bool {
	for _, v := range q.heap.Values() {
		if v.(*entry).card == card {
			return true
		}
	}
	return false
}

// Remove unschedules every entry for card and reports whether any existed.
// The heap is rebuilt, which is linear in the queue size.
func (q *Queue) Remove(card *domain.Card) bool {
	values := q.heap.Values()
	kept := make([]interface{}, 0, len(values))
	for _, v := range values {
		if v.(*entry).card != card {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(values) {
		return false
	}
	q.heap.Clear()
	for _, v := range kept {
		q.heap.Enqueue(v)
	}
	return true
}

// Len returns the number of scheduled entries.
func (q *Queue) Len() int { return q.heap.Size() }

// Empty reports whether nothing is scheduled.
func (q *Queue) Empty() bool { return q.heap.Empty() }

// Clear drops every entry.
func (q *Queue) Clear() { q.heap.Clear() }

package graph

import (
	"testing"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/queue"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hardness(c *domain.Card) float64 { return c.Hardness() }

// cardWith returns a card whose hardness is (failed+1)/(reviewed+1).
func cardWith(q string, reviewed, failed int) *domain.Card {
	return &domain.Card{Record: domain.Record{
		Question:      q,
		TimesReviewed: reviewed,
		TimesFailed:   failed,
		TimesCorrect:  reviewed - failed,
	}}
}

func TestBuildCompleteGraph(t *testing.T) {
	cards := []*domain.Card{
		cardWith("fresh", 0, 0),    // 1.0
		cardWith("easy", 4, 0),     // 0.2
		cardWith("hard", 3, 2),     // 0.75
		cardWith("boundary", 4, 2), // 0.6
	}

	g := Build(cards, hardness, 0.6)

	require.Equal(t, 3, g.Len())
	assert.False(t, g.Has(cards[1]))
	assert.Equal(t, 3, g.Edges())
	for _, v := range g.Vertices() {
		assert.Len(t, g.Neighbors(v), 2)
		assert.NotContains(t, g.Neighbors(v), v)
	}
}

func TestBuildEmpty(t *testing.T) {
	g := Build([]*domain.Card{cardWith("easy", 9, 0)}, hardness, 0.6)
	assert.Zero(t, g.Len())
	assert.Zero(t, g.Edges())
}

func TestAddEdgeRules(t *testing.T) {
	g := New()
	a, b, outside := cardWith("a", 0, 0), cardWith("b", 0, 0), cardWith("x", 0, 0)
	g.AddVertex(a)
	g.AddVertex(b)
	assert.False(t, g.AddVertex(a))

	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, a))
	require.NoError(t, g.AddEdge(a, a))
	assert.Equal(t, 1, g.Edges())
	assert.ErrorIs(t, g.AddEdge(a, outside), ErrUnknownVertex)
}

func TestNextWithoutCurrentPeeksScheduler(t *testing.T) {
	a, b := cardWith("a", 0, 0), cardWith("b", 1, 1)
	g := Build([]*domain.Card{a, b}, hardness, 0.6)
	q := queue.New()
	q.Enqueue(-a.Hardness(), a)
	q.Enqueue(-0.5, b)

	next := g.Next(q, nil, hashset.New(), hardness)

	assert.Same(t, a, next)
	assert.Equal(t, 2, q.Len())
}

func TestNextPicksBestUnvisitedNeighbour(t *testing.T) {
	cur := cardWith("cur", 3, 2)     // 0.75
	mid := cardWith("mid", 4, 3)     // 0.8
	top := cardWith("top", 0, 0)     // 1.0
	other := cardWith("other", 2, 1) // 0.667
	g := Build([]*domain.Card{cur, mid, top, other}, hardness, 0.6)
	q := queue.New()

	assert.Same(t, top, g.Next(q, cur, hashset.New(), hardness))
	assert.Same(t, mid, g.Next(q, cur, hashset.New(top), hardness))
	assert.Same(t, cur, g.Next(q, cur, hashset.New(top, mid), hardness))
}

func TestNextStaysOnStrictlyBetterCurrent(t *testing.T) {
	cur := cardWith("cur", 0, 0)  // 1.0
	peer := cardWith("peer", 0, 0) // 1.0, tie does not stay
	low := cardWith("low", 3, 2)   // 0.75
	g := Build([]*domain.Card{cur, peer, low}, hardness, 0.6)
	q := queue.New()

	assert.Same(t, peer, g.Next(q, cur, hashset.New(), hardness))
	assert.Same(t, cur, g.Next(q, cur, hashset.New(peer), hardness))
	assert.Nil(t, g.Next(q, cur, hashset.New(peer, low, cur), hardness))
}

func TestBFSAndDFS(t *testing.T) {
	a, b, c, d := cardWith("a", 0, 0), cardWith("b", 0, 0), cardWith("c", 0, 0), cardWith("d", 0, 0)
	g := New()
	for _, v := range []*domain.Card{a, b, c, d} {
		g.AddVertex(v)
	}
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(a, c))
	require.NoError(t, g.AddEdge(b, d))

	assert.Equal(t, []*domain.Card{a, b, c, d}, g.BFS(a))
	assert.Equal(t, []*domain.Card{a, c, b, d}, g.DFS(a))
	assert.Nil(t, g.BFS(cardWith("x", 0, 0)))
}

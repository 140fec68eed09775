package graph

import (
	"errors"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// ErrUnknownVertex is returned when an edge names a card that is not a vertex.
var ErrUnknownVertex = errors.New("graph: unknown vertex")

// Metric scores a card for custom study.
type Metric func(*domain.Card) float64

// Set is the membership test used for visited cards.
type Set interface {
	Contains(items ...interface{}) bool
}

// Fronter exposes the scheduler's current minimum.
type Fronter interface {
	PeekFront() (*domain.Card, bool)
}

// Graph is an undirected, unweighted adjacency list over cards. It has no
// self loops and no duplicate edges. Vertices keep their insertion order so
// scans are deterministic.
type Graph struct {
	vertices []*domain.Card
	adj      map[*domain.Card][]*domain.Card
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[*domain.Card][]*domain.Card)}
}

// Build returns the complete graph over the cards whose metric is at least
// threshold.
func Build(cards []*domain.Card, metric Metric, threshold float64) *Graph {
	g := New()
	for _, c := range cards {
		if metric(c) >= threshold {
			g.AddVertex(c)
		}
	}
	for i := range g.vertices {
		for j := i + 1; j < len(g.vertices); j++ {
			_ = g.AddEdge(g.vertices[i], g.vertices[j])
		}
	}
	return g
}

// AddVertex adds c and reports whether it was new.
func (g *Graph) AddVertex(c *domain.Card) bool {
	if _, ok := g.adj[c]; ok {
		return false
	}
	g.adj[c] = nil
	g.vertices = append(g.vertices, c)
	return true
}

// AddEdge links a and b. Self loops and repeated edges are ignored.
func (g *Graph) AddEdge(a, b *domain.Card) error {
	na, okA := g.adj[a]
	_, okB := g.adj[b]
	if !okA || !okB {
		return ErrUnknownVertex
	}
	if a == b {
		return nil
	}
	for _, n := range na {
		if n == b {
			return nil
		}
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	return nil
}

// Has reports whether c is a vertex.
func (g *Graph) Has(c *domain.Card) bool {
	_, ok := g.adj[c]
	return ok
}

// Neighbors returns the cards adjacent to c.
func (g *Graph) Neighbors(c *domain.Card) []*domain.Card {
	return g.adj[c]
}

// Vertices returns the vertices in insertion order.
func (g *Graph) Vertices() []*domain.Card {
	return g.vertices
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// Edges returns the number of undirected edges.
func (g *Graph) Edges() int {
	n := 0
	for _, ns := range g.adj {
		n += len(ns)
	}
	return n / 2
}

// Next picks the card to show after current. With no current card it is the
// scheduler's minimum, left in place. Otherwise it is the unvisited
// neighbour with the highest metric, unless current itself is unvisited and
// scores strictly higher than that neighbour, in which case study stays on
// current. A nil result means no candidate was found.
func (g *Graph) Next(front Fronter, current *domain.Card, visited Set, metric Metric) *domain.Card {
	if current == nil {
		c, _ := front.PeekFront()
		return c
	}

	var best *domain.Card
	bestScore := 0.0
	for _, n := range g.adj[current] {
		if visited.Contains(n) {
			continue
		}
		if s := metric(n); s > bestScore {
			best, bestScore = n, s
		}
	}

	if metric(current) > bestScore && !visited.Contains(current) {
		return current
	}
	return best
}

// BFS returns the vertices reachable from start in breadth-first order.
func (g *Graph) BFS(start *domain.Card) []*domain.Card {
	if !g.Has(start) {
		return nil
	}
	var order []*domain.Card
	seen := map[*domain.Card]bool{}
	pending := linkedlistqueue.New()
	pending.Enqueue(start)

	for !pending.Empty() {
		v, _ := pending.Dequeue()
		c := v.(*domain.Card)
		if seen[c] {
			continue
		}
		seen[c] = true
		order = append(order, c)
		for _, n := range g.adj[c] {
			if !seen[n] {
				pending.Enqueue(n)
			}
		}
	}
	return order
}

// DFS returns the vertices reachable from start in depth-first order.
func (g *Graph) DFS(start *domain.Card) []*domain.Card {
	if !g.Has(start) {
		return nil
	}
	var order []*domain.Card
	seen := map[*domain.Card]bool{}
	pending := arraystack.New()
	pending.Push(start)

	for !pending.Empty() {
		v, _ := pending.Pop()
		c := v.(*domain.Card)
		if seen[c] {
			continue
		}
		seen[c] = true
		order = append(order, c)
		for _, n := range g.adj[c] {
			if !seen[n] {
				pending.Push(n)
			}
		}
	}
	return order
}

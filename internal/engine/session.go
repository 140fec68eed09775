package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/graph"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/queue"
	"github.com/conorfennell/knoldeck/internal/srs"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/google/uuid"
)

// DefaultThreshold is the custom-study metric a card needs to be studied.
const DefaultThreshold = 0.6

// RecordStore persists the rows of one deck. Row i of Load corresponds to
// the card with RowIndex i.
type RecordStore interface {
	Load() ([]domain.Record, error)
	AppendRow(rec domain.Record) error
	RewriteRow(index int, rec domain.Record) error
}

// State is the study state of a Session.
type State int

const (
	Idle State = iota
	AwaitingGrade
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingGrade:
		return "awaiting_grade"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session owns one loaded deck: its cards, the hash index over them and the
// active study queue. It is not safe for concurrent use.
type Session struct {
	store     RecordStore
	params    *srs.Params
	threshold float64
	capacity  int
	maxCards  int
	logger    *slog.Logger
	now       func() time.Time

	loaded  bool
	cards   []*domain.Card
	removed map[*domain.Card]bool
	index   *knol.Index

	id      string
	mode    Mode
	state   State
	queue   *queue.Queue
	graph   *graph.Graph
	visited *hashset.Set
	current *domain.Card
}

// Option configures a Session.
type Option func(*Session)

// WithParams sets the interval/ease update constants.
func WithParams(p *srs.Params) Option {
	return func(s *Session) { s.params = p }
}

// WithThreshold sets the custom-study eligibility threshold.
func WithThreshold(t float64) Option {
	return func(s *Session) { s.threshold = t }
}

// WithIndexCapacity sets the hash index capacity.
func WithIndexCapacity(n int) Option {
	return func(s *Session) { s.capacity = n }
}

// WithMaxCards caps the number of rows a deck may hold.
func WithMaxCards(n int) Option {
	return func(s *Session) { s.maxCards = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock replaces time.Now for card creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session over store. Call Load before studying.
func New(store RecordStore, opts ...Option) *Session {
	s := &Session{
		store:     store,
		params:    srs.DefaultParams(),
		threshold: DefaultThreshold,
		capacity:  knol.DefaultCapacity,
		maxCards:  domain.MaxDeckSize,
		logger:    slog.Default(),
		now:       time.Now,
		queue:     queue.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.index = knol.NewIndex(s.capacity)
	return s
}

// Load reads the deck from the store and rebuilds the hash index. On any
// error the session is left with no deck.
func (s *Session) Load() error {
	s.reset()

	recs, err := s.store.Load()
	if err != nil {
		return err
	}

	cards := make([]*domain.Card, 0, len(recs))
	for i, rec := range recs {
		if err := rec.Validate(); err != nil {
			s.index.Reset()
			return &domain.LoadError{Source: "record", Row: i, Err: err}
		}
		key := knol.Key(rec.Question)
		if _, taken := s.index.Get(key); taken {
			s.index.Reset()
			return &domain.LoadError{Source: "index", Row: i, Err: fmt.Errorf("%w: %q", domain.ErrDuplicateQuestion, rec.Question)}
		}
		card := domain.NewCard(rec, i)
		if err := s.index.Insert(key, card); err != nil {
			s.index.Reset()
			return &domain.LoadError{Source: "index", Row: i, Err: err}
		}
		cards = append(cards, card)
	}

	s.cards = cards
	s.loaded = true
	s.logger.Info("deck loaded", "cards", len(cards))
	return nil
}

func (s *Session) reset() {
	s.loaded = false
	s.cards = nil
	s.removed = make(map[*domain.Card]bool)
	s.index.Reset()
	s.endStudy()
	s.state = Idle
}

// StartStudy begins a study session over the loaded deck. A custom session
// with no eligible cards is Done immediately.
func (s *Session) StartStudy(mode Mode) error {
	if !s.loaded {
		return domain.ErrNoDeck
	}
	if !mode.IsValid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidMode, int(mode))
	}

	s.endStudy()
	s.id = uuid.NewString()
	s.mode = mode
	s.visited = hashset.New()

	active := s.Cards()
	if mode.Custom() {
		metric := mode.Metric()
		s.graph = graph.Build(active, metric, s.threshold)
		for _, c := range s.graph.Vertices() {
			s.queue.Enqueue(-metric(c), c)
		}
	} else {
		for _, c := range active {
			s.queue.Enqueue(c.EaseFactor, c)
		}
	}

	s.state = AwaitingGrade
	if s.queue.Empty() {
		s.state = Done
	}
	s.logger.Info("study session started",
		"session_id", s.id,
		"mode", mode.String(),
		"scheduled", s.queue.Len(),
	)
	return nil
}

// PresentNext returns the card to show next, or false once the session is
// done. It does not change the schedule; Grade does.
func (s *Session) PresentNext() (*domain.Card, bool) {
	if s.state != AwaitingGrade {
		return nil, false
	}
	if s.queue.Empty() {
		s.finish()
		return nil, false
	}

	var next *domain.Card
	if s.mode.Custom() {
		next = s.graph.Next(s.queue, s.current, s.visited, s.mode.Metric())
	}
	if next == nil {
		next, _ = s.queue.PeekFront()
	}
	s.current = next
	return next, true
}

// Grade applies g to card. Exit ends the session. Every other grade updates
// the card in memory first and then persists its row; a failed write is
// returned as a *domain.PersistenceError and the session carries on.
func (s *Session) Grade(card *domain.Card, g srs.Grade) error {
	if !g.IsValid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(g))
	}
	if g == srs.Exit {
		s.finish()
		return nil
	}
	if s.state != AwaitingGrade || card == nil || !s.queue.Contains(card) {
		return fmt.Errorf("%w: card is not scheduled", domain.ErrNotFound)
	}

	if s.mode.Custom() {
		s.gradeCustom(card, g)
	} else {
		s.gradeReview(card, g)
	}

	s.logger.Debug("card graded",
		"session_id", s.id,
		"row", card.RowIndex,
		"grade", g.String(),
		"interval", card.Interval,
		"ease_factor", card.EaseFactor,
		"priority", card.ReviewPriority,
	)

	err := s.persist(card)
	if s.queue.Empty() {
		s.finish()
	}
	return err
}

func (s *Session) gradeReview(card *domain.Card, g srs.Grade) {
	next, _ := s.params.NextState(card.Record, g)
	card.Record = next
	s.queue.Remove(card)
	if g != srs.Remove {
		s.queue.Enqueue(next.Interval, card)
	}
}

// gradeCustom only tallies the counters. Again and Hard leave the card where
// it is in the queue.
func (s *Session) gradeCustom(card *domain.Card, g srs.Grade) {
	card.Record = srs.Tally(card.Record, g)

	switch g {
	case srs.Good, srs.Easy:
		metric := s.mode.Metric()(card)
		s.queue.Remove(card)
		if metric < s.threshold {
			s.visited.Add(card)
		} else {
			s.queue.Enqueue(-metric, card)
		}
	case srs.Remove:
		s.queue.Remove(card)
		s.visited.Add(card)
	}
}

func (s *Session) persist(card *domain.Card) error {
	if s.removed[card] {
		return nil
	}
	if err := s.store.RewriteRow(card.RowIndex, card.Record); err != nil {
		s.logger.Error("failed to persist card", "row", card.RowIndex, "error", err)
		return &domain.PersistenceError{Row: card.RowIndex, Err: err}
	}
	return nil
}

func (s *Session) finish() {
	if s.state == AwaitingGrade {
		s.logger.Info("study session finished", "session_id", s.id, "unreviewed", s.queue.Len())
	}
	s.endStudy()
	if s.loaded {
		s.state = Done
	}
}

func (s *Session) endStudy() {
	s.queue.Clear()
	s.graph = nil
	s.current = nil
}

// State returns the study state.
func (s *Session) State() State { return s.state }

// Mode returns the mode of the current or last study session.
func (s *Session) Mode() Mode { return s.mode }

// ID returns the identifier of the current or last study session.
func (s *Session) ID() string { return s.id }

// Scheduled returns the number of cards left in the study queue.
func (s *Session) Scheduled() int { return s.queue.Len() }

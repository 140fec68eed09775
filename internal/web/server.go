package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/engine"
	"github.com/conorfennell/knoldeck/internal/srs"
)

// Server exposes one deck's study session over HTTP. Requests are
// serialised because a Session is single-threaded.
type Server struct {
	mu      sync.Mutex
	session *engine.Session
	current *domain.Card
	router  *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates and configures a new server over a loaded session.
func NewServer(session *engine.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		session: session,
		router:  http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/deck", s.handleGetDeck())
	s.router.HandleFunc("/study", s.handlePostStudy())
	s.router.HandleFunc("/review/next", s.handleGetNextReview())
	s.router.HandleFunc("/review/answer", s.handleShowAnswer())
	s.router.HandleFunc("/review", s.handlePostReview())
}

type deckView struct {
	Cards     int    `json:"cards"`
	State     string `json:"state"`
	Mode      string `json:"mode"`
	SessionID string `json:"session_id,omitempty"`
	Scheduled int    `json:"scheduled"`
}

type cardView struct {
	Row      int     `json:"row"`
	Question string  `json:"question"`
	Answer   string  `json:"answer,omitempty"`
	Interval float64 `json:"interval"`
	Ease     float64 `json:"ease_factor"`
}

func newCardView(c *domain.Card, withAnswer bool) cardView {
	v := cardView{Row: c.RowIndex, Question: c.Question, Interval: c.Interval, Ease: c.EaseFactor}
	if withAnswer {
		v.Answer = c.Answer
	}
	return v
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleGetDeck reports the deck size and the study state.
func (s *Server) handleGetDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.writeJSON(w, http.StatusOK, deckView{
			Cards:     len(s.session.Cards()),
			State:     s.session.State().String(),
			Mode:      s.session.Mode().String(),
			SessionID: s.session.ID(),
			Scheduled: s.session.Scheduled(),
		})
	}
}

// handlePostStudy starts a study session in the mode given by the "mode"
// form value and renders the first card.
func (s *Server) handlePostStudy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		mode, err := engine.ParseMode(r.PostFormValue("mode"))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.session.StartStudy(mode); err != nil {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		s.current = nil
		s.renderNext(w)
	}
}

// handleGetNextReview renders the front of the card awaiting a grade.
func (s *Server) handleGetNextReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.renderNext(w)
	}
}

// handleShowAnswer renders the back of the card awaiting a grade.
func (s *Server) handleShowAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.current == nil {
			http.NotFound(w, r)
			return
		}
		s.writeJSON(w, http.StatusOK, newCardView(s.current, true))
	}
}

// handlePostReview grades the card awaiting a grade and renders the next one.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		grade, err := srs.ParseGrade(r.PostFormValue("grade"))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if s.current == nil && grade != srs.Exit {
			http.NotFound(w, r)
			return
		}

		err = s.session.Grade(s.current, grade)
		var pe *domain.PersistenceError
		switch {
		case errors.As(err, &pe):
			s.logger.Warn("review not saved", "row", pe.Row, "error", pe.Err)
		case errors.Is(err, domain.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err)
			return
		case err != nil:
			s.writeError(w, http.StatusBadRequest, err)
			return
		}

		s.current = nil
		s.renderNext(w)
	}
}

// renderNext writes the front of the current card, choosing one if none is
// pending, or 204 once the session is done.
func (s *Server) renderNext(w http.ResponseWriter) {
	if s.current == nil {
		card, ok := s.session.PresentNext()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.current = card
	}
	s.writeJSON(w, http.StatusOK, newCardView(s.current, false))
}

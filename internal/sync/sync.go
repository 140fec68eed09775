package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/parser"
)

// Deck is the part of a loaded deck that reconciliation writes through.
type Deck interface {
	Find(question string) (*domain.Card, error)
	AddCard(question, answer string) (*domain.Card, error)
	EditCard(card *domain.Card, question, answer string) error
}

// Report summarises one reconciliation run.
type Report struct {
	Parsed    int
	Added     int
	Updated   int
	Unchanged int
	Errors    []error
}

// Reconcile walks root, a markdown file or a directory of them, and brings the
// deck in line with the notes: unknown questions become new cards and known
// questions whose answer changed are edited in place. Review history of
// existing cards is left alone. Cards without a note are kept.
//
// Per-entry failures are collected in the report. Reconciliation stops early
// once the deck is full.
func Reconcile(deck Deck, root string, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var report Report

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		entries, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		for _, e := range entries {
			report.Parsed++
			if err := reconcileEntry(deck, e, &report, logger); err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("%s: %w", path, err))
				if errors.Is(err, domain.ErrDeckFull) {
					return fs.SkipAll
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("failed to walk %s: %w", root, walkErr)
	}

	logger.Info("reconciliation complete",
		"path", root,
		"parsed_cards", report.Parsed,
		"added", report.Added,
		"updated", report.Updated,
		"errors", len(report.Errors),
	)
	return report, nil
}

func reconcileEntry(deck Deck, e parser.Entry, report *Report, logger *slog.Logger) error {
	answer := e.FullAnswer()

	card, err := deck.Find(e.Question)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if _, err := deck.AddCard(e.Question, answer); err != nil {
			return err
		}
		logger.Debug("new card found, adding", "question", e.Question)
		report.Added++
		return nil
	case err != nil:
		return err
	}

	if card.Answer == answer {
		report.Unchanged++
		return nil
	}
	if err := deck.EditCard(card, card.Question, answer); err != nil {
		return err
	}
	logger.Debug("answer changed, updating", "question", card.Question)
	report.Updated++
	return nil
}

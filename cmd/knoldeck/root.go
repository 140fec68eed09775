package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/engine"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "knoldeck",
	Short:         "Spaced-repetition flashcards in the terminal",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(decksCmd)
	rootCmd.AddCommand(serveCmd)
}

// deckNameRule rejects the characters that cannot appear in a file name on
// common filesystems. 0x7C is '|'.
const deckNameRule = `required,excludesall=\/:*?"<>0x7C`

// app bundles what every command needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, closer: func() error { return nil }}, nil
}

func (a *app) Close() error { return a.closer() }

// openDeck returns a loaded session over the named deck, creating the deck
// when create is set and it does not exist yet.
func (a *app) openDeck(name string, create bool) (*engine.Session, error) {
	if err := domain.Validator().Var(name, deckNameRule); err != nil {
		return nil, fmt.Errorf("invalid deck name %q", name)
	}

	store, err := a.deckStore(name, create)
	if err != nil {
		return nil, err
	}

	opts := append(a.cfg.SessionOptions(), engine.WithLogger(a.logger.With("deck", name)))
	s := engine.New(store, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) deckStore(name string, create bool) (engine.RecordStore, error) {
	if a.cfg.Store == "sqlite" {
		db, err := storage.Open(a.cfg.DB)
		if err != nil {
			return nil, err
		}
		a.closer = db.Close
		if !create {
			d, err := db.FindDeckByName(name)
			if err != nil {
				return nil, err
			}
			if d == nil {
				return nil, fmt.Errorf("deck %q does not exist", name)
			}
		}
		return db.Deck(name)
	}

	path := filepath.Join(a.cfg.DecksDir, name+".csv")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if !create {
			return nil, fmt.Errorf("deck %q does not exist in %s", name, a.cfg.DecksDir)
		}
		if err := os.MkdirAll(a.cfg.DecksDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create decks directory: %w", err)
		}
		a.logger.Info("creating deck", "path", path)
		return storage.CreateCSV(path, nil)
	}
	return storage.OpenCSV(path), nil
}

// deckNames lists the decks of the configured store.
func (a *app) deckNames() ([]string, error) {
	if a.cfg.Store == "sqlite" {
		db, err := storage.Open(a.cfg.DB)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		decks, err := db.GetAllDecks()
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(decks))
		for _, d := range decks {
			names = append(names, d.Name)
		}
		return names, nil
	}

	matches, err := filepath.Glob(filepath.Join(a.cfg.DecksDir, "*.csv"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	return names, nil
}

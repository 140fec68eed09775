package engine

import (
	"fmt"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/graph"
)

// Mode selects how a study session orders cards.
type Mode int

const (
	// ReviewTime serves every card by priority alone, lowest ease first.
	ReviewTime Mode = iota
	// StudyHard walks the cards whose hardness meets the threshold.
	StudyHard
	// StudyEasy walks the cards whose easiness meets the threshold.
	StudyEasy
)

var modeNames = [...]string{ReviewTime: "review", StudyHard: "hard", StudyEasy: "easy"}

func (m Mode) String() string {
	if m.IsValid() {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m >= ReviewTime && m <= StudyEasy
}

// Custom reports whether m is a custom-study mode.
func (m Mode) Custom() bool {
	return m == StudyHard || m == StudyEasy
}

// Metric returns the custom-study metric of m, or nil for ReviewTime.
func (m Mode) Metric() graph.Metric {
	switch m {
	case StudyHard:
		return (*domain.Card).Hardness
	case StudyEasy:
		return (*domain.Card).Easiness
	}
	return nil
}

// ParseMode accepts a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInvalidMode, s)
}

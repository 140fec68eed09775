package srs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Grade is the learner's response to a presented card.
// 1: Again (Incorrect)
// 2: Hard
// 3: Good
// 4: Easy
// 5: Remove the card from the current session
// 6: Exit the session
type Grade int

const (
	Again Grade = iota + 1
	Hard
	Good
	Easy
	Remove
	Exit
)

var gradeNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy", Remove: "remove", Exit: "exit"}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// IsValid reports whether g is one of Again through Exit.
func (g Grade) IsValid() bool {
	return g >= Again && g <= Exit
}

// Reviewed reports whether the grade counts as a review.
func (g Grade) Reviewed() bool {
	return g >= Again && g <= Easy
}

// Failed reports whether the grade counts as a failed review.
func (g Grade) Failed() bool {
	return g == Again || g == Hard
}

// ParseGrade accepts either the menu number ("1".."6") or the grade name.
func ParseGrade(s string) (Grade, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if g := Grade(n); g.IsValid() {
			return g, nil
		}
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidGrade, s)
	}
	for g := Again; g <= Exit; g++ {
		if gradeNames[g] == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInvalidGrade, s)
}

// Params holds the constants of the interval/ease update rule.
type Params struct {
	IntervalModifier float64 `validate:"gt=0"`  // scales every new interval
	HardFactor       float64 `validate:"gt=0"`  // interval growth on Hard
	EaseBonus        float64 `validate:"gte=0"` // added to the ease factor on Easy
}

// DefaultParams returns the stock update constants.
func DefaultParams() *Params {
	return &Params{
		IntervalModifier: 1,
		HardFactor:       1.2,
		EaseBonus:        1.5,
	}
}

// Tally applies the review counters for g and nothing else.
func Tally(rec domain.Record, g Grade) domain.Record {
	if !g.Reviewed() {
		return rec
	}
	rec.TimesReviewed++
	if g.Failed() {
		rec.TimesFailed++
	} else {
		rec.TimesCorrect++
	}
	return rec
}

// NextState computes the record after grading it with g. All formulas use
// the pre-grade interval and ease factor. Exit leaves the record untouched.
func (p *Params) NextState(rec domain.Record, g Grade) (domain.Record, error) {
	if !g.IsValid() {
		return rec, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(g))
	}
	if g == Exit {
		return rec, nil
	}

	next := Tally(rec, g)
	grown := rec.Interval * rec.EaseFactor * p.IntervalModifier

	switch g {
	case Again:
		next.Interval = rec.EaseFactor * p.IntervalModifier
	case Hard:
		next.Interval = rec.Interval * p.IntervalModifier * p.HardFactor
	case Good, Remove:
		next.Interval = grown
	case Easy:
		next.Interval = grown
		next.EaseFactor = rec.EaseFactor + p.EaseBonus
	}
	return next, nil
}

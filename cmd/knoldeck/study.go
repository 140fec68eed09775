package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/engine"
	"github.com/conorfennell/knoldeck/internal/srs"
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study <deck>",
	Short: "Study a deck by review time or as a custom hard/easy session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeName, _ := cmd.Flags().GetString("mode")
		mode, err := engine.ParseMode(modeName)
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.openDeck(args[0], false)
		if err != nil {
			return err
		}
		if err := s.StartStudy(mode); err != nil {
			return err
		}
		return runStudy(s, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	studyCmd.Flags().String("mode", "review", "Study mode: review, hard or easy")
}

const gradePrompt = "1): Again, 2): Hard, 3): Good, 4): Easy, 5): Remove Card, or 6): Exit\n"

// runStudy drives a session from line-oriented input until it is done, the
// learner exits or input ends.
func runStudy(s *engine.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	reviewed := 0

	for {
		card, ok := s.PresentNext()
		if !ok {
			break
		}

		fmt.Fprintf(out, "Question:\n%s\n", card.Question)
		fmt.Fprintln(out, "\nPress enter to see the answer")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fmt.Fprintf(out, "\nAnswer:\n%s\n\n", card.Answer)

		grade, err := readGrade(scanner, out)
		if err != nil {
			return err
		}

		err = s.Grade(card, grade)
		var pe *domain.PersistenceError
		switch {
		case errors.As(err, &pe):
			fmt.Fprintf(out, "Could not save the card: %v\n", pe.Err)
		case err != nil:
			return err
		}
		if grade == srs.Exit {
			break
		}
		reviewed++
	}

	fmt.Fprintf(out, "Session finished, %d cards graded.\n", reviewed)
	return nil
}

// readGrade prompts until a valid grade is entered.
func readGrade(scanner *bufio.Scanner, out io.Writer) (srs.Grade, error) {
	for {
		fmt.Fprint(out, gradePrompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return srs.Exit, nil
		}
		g, err := srs.ParseGrade(scanner.Text())
		if err == nil {
			return g, nil
		}
		fmt.Fprintln(out, "Invalid Input!")
	}
}

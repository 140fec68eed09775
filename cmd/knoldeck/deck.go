package main

import (
	"fmt"

	"github.com/conorfennell/knoldeck/internal/engine"
	"github.com/conorfennell/knoldeck/internal/sync"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <deck> <question> <answer>",
	Short: "Add a card, creating the deck if needed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.openDeck(args[0], true)
		if err != nil {
			return err
		}
		card, err := s.AddCard(args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Card added at row %d\n", card.RowIndex)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <deck> <notes>...",
	Short: "Bring a deck in line with Q:/A: markdown notes (files or directories)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.openDeck(args[0], true)
		if err != nil {
			return err
		}

		var total sync.Report
		for _, root := range args[1:] {
			report, err := sync.Reconcile(s, root, a.logger)
			if err != nil {
				return err
			}
			for _, e := range report.Errors {
				a.logger.Warn("skipping entry", "error", e)
			}
			total.Added += report.Added
			total.Updated += report.Updated
			total.Errors = append(total.Errors, report.Errors...)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d cards, updated %d, %d skipped.\n",
			total.Added, total.Updated, len(total.Errors))
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <deck> <question>",
	Short: "Look a card up by question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.openDeck(args[0], false)
		if err != nil {
			return err
		}
		card, err := s.Find(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Question): %s Answer): %s Date Created): %s\n",
			card.Question, card.Answer, card.CreatedAt)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <deck> <question>",
	Short: "Change a card's question or answer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.openDeck(args[0], false)
		if err != nil {
			return err
		}
		card, err := s.Find(args[1])
		if err != nil {
			return err
		}

		question, answer := card.Question, card.Answer
		if cmd.Flags().Changed("question") {
			question, _ = cmd.Flags().GetString("question")
		}
		if cmd.Flags().Changed("answer") {
			answer, _ = cmd.Flags().GetString("answer")
		}
		return s.EditCard(card, question, answer)
	},
}

var listCmd = &cobra.Command{
	Use:   "list <deck>",
	Short: "Print a deck's cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sortName, _ := cmd.Flags().GetString("sort")
		key, err := engine.ParseSortKey(sortName)
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
		out := cmd.OutOrStdout()
		for n, card := range s.Sorted(key) {
			fmt.Fprintf(out, "%d): Question): %s Answer): %s Date Created): %s\n",
				n+1, card.Question, card.Answer, card.CreatedAt)
		}
		return nil
	},
}

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List the available decks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		names, err := a.deckNames()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "There are no decks yet. Add a card with 'knoldeck add'.")
			return nil
		}
		for i, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%d): %s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	editCmd.Flags().String("question", "", "New question")
	editCmd.Flags().String("answer", "", "New answer")
	listCmd.Flags().String("sort", "question", "Sort by question, answer or created")
}

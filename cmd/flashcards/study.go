package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/study"
)

const msgNothingToStudy = "No flashcards available for study. Please add some."

func newStudyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "study",
		Short: "Study the flashcards one at a time",
		Long: `Study shows one question at a time. Commands, one per line:
  (empty) or s   show / hide the answer
  n              next question
  p              previous question
  q              quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards := c.app.Flashcards.List(cmd.Context())
			return runStudy(cmd.InOrStdin(), cmd.OutOrStdout(), cards)
		},
	}
}

func runStudy(in io.Reader, out io.Writer, cards []models.Flashcard) error {
	if len(cards) == 0 {
		fmt.Fprintln(out, msgNothingToStudy)
		return nil
	}

	var session study.Session
	scanner := bufio.NewScanner(in)
	for {
		showCard(out, session, cards)
		fmt.Fprint(out, "[enter] show/hide  [n]ext  [p]rev  [q]uit > ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "", "s":
			session = session.Toggle()
		case "n":
			session = session.Next(len(cards))
		case "p":
			session = session.Prev(len(cards))
		case "q":
			return nil
		default:
			fmt.Fprintln(out, "Unknown command.")
		}
	}
}

func showCard(out io.Writer, s study.Session, cards []models.Flashcard) {
	card, _ := s.Current(cards)
	fmt.Fprintf(out, "\nCard %d of %d\n", s.Position(len(cards)), len(cards))
	fmt.Fprintf(out, "Question: %s\n", card.Question)
	if s.ShowAnswer {
		fmt.Fprintf(out, "Answer: %s\n", card.Answer)
	}
}

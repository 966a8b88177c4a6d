package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vytor/flashcardhelper/internal/models"
)

const msgEmptyCollection = "No flashcards available. Please add some."

func newListCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all flashcards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards := c.app.Flashcards.List(cmd.Context())
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return writeCardsJSON(cmd.OutOrStdout(), cards)
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), msgEmptyCollection)
				return nil
			}
			for _, card := range cards {
				printCard(cmd.OutOrStdout(), card)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func printCard(w io.Writer, card models.Flashcard) {
	fmt.Fprintf(w, "[%d] Q: %s\n", card.ID, card.Question)
	fmt.Fprintf(w, "    A: %s\n", card.Answer)
}

func writeCardsJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <question> <answer>",
		Short: "Add a flashcard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := c.app.Flashcards.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flashcard added! (id %d)\n", card.ID)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flashcard ID %q", s)
	}
	return id, nil
}

func newEditCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the question and/or answer of a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			card, err := c.app.Flashcards.Get(cmd.Context(), id)
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

			if _, err := c.app.Flashcards.Update(cmd.Context(), id, question, answer); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Flashcard updated.")
			return nil
		},
	}
	cmd.Flags().String("question", "", "new question")
	cmd.Flags().String("answer", "", "new answer")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Flashcards.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Flashcard deleted.")
			return nil
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every flashcard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("refusing to remove %d flashcards without --yes", c.app.Flashcards.Count())
			}
			if err := c.app.Flashcards.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All flashcards removed.")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm removal")
	return cmd
}

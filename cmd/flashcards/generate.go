package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/flashcardhelper/internal/models"
	"github.com/vytor/flashcardhelper/internal/pdftext"
	"github.com/vytor/flashcardhelper/internal/services"
	"gopkg.in/yaml.v3"
)

func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("yes", false, "save the generated flashcards without asking")
	cmd.Flags().StringP("output", "o", "", "write the drafts to a JSON or YAML file for a later `save`")
}

func newGenerateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate flashcards from text",
		Long: `Generate flashcards from --text or --file. A PDF passed to --file is
converted to text first. The drafts are printed; pass --yes to save them or
--output to keep them for review.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetString("text")
			file, _ := cmd.Flags().GetString("file")

			switch {
			case text != "" && file != "":
				return errors.New("use either --text or --file, not both")
			case file != "":
				content, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if pdftext.IsPDF(content) {
					if _, err := c.app.Generation.LoadPDF(cmd.Context(), content); err != nil {
						return err
					}
				} else if err := c.app.Generation.SetSourceText(string(content)); err != nil {
					return err
				}
			case text != "":
				if err := c.app.Generation.SetSourceText(text); err != nil {
					return err
				}
			default:
				return errors.New("nothing to generate from: pass --text or --file")
			}
			return c.generate(cmd)
		},
	}
	cmd.Flags().String("text", "", "source text")
	cmd.Flags().String("file", "", "text or PDF file to read the source from")
	addGenerationFlags(cmd)
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <pdf>",
		Short: "Extract a PDF and generate flashcards from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := c.app.Generation.LoadPDF(cmd.Context(), content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d characters from %s\n", len(text), args[0])
			return c.generate(cmd)
		},
	}
	addGenerationFlags(cmd)
	return cmd
}

// generate runs the loaded source text and reports or stores the drafts.
func (c *cli) generate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	cfg := c.app.Settings.Active()
	if cfg.HasKey() {
		fmt.Fprintf(out, "Generating with %s...\n", cfg.Provider.Label())
	} else {
		fmt.Fprintf(out, "No API Key detected for %s. Using basic text splitting.\n", cfg.Provider)
	}

	outcome, err := c.app.Generation.Generate(cmd.Context())
	if err != nil {
		return err
	}

	drafts := c.app.Generation.State().Previews
	if outcome.Count == 0 {
		if outcome.Strategy == models.StrategyAI {
			fmt.Fprintln(out, services.MsgAIFoundNothing)
		} else {
			fmt.Fprintln(out, services.MsgNoPatternsFound)
		}
		return nil
	}

	fmt.Fprintf(out, "Preview (%d)\n", len(drafts))
	for i, d := range drafts {
		fmt.Fprintf(out, "%d. Q: %s\n   A: %s\n", i+1, d.Question, d.Answer)
	}

	path, _ := cmd.Flags().GetString("output")
	if path != "" {
		if err := writeDrafts(path, drafts); err != nil {
			return err
		}
		fmt.Fprintf(out, "Drafts written to %s. Run `flashcards save %s` to keep them.\n", path, path)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if path == "" {
			fmt.Fprintln(out, "Nothing saved. Run again with --yes to add these flashcards.")
		}
		return nil
	}
	saved, err := c.app.Generation.SaveAll(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully added %d flashcards!\n", len(saved))
	return nil
}

func writeDrafts(path string, drafts []models.CardDraft) error {
	format, err := formatFor(path, "")
	if err != nil {
		return err
	}
	return writeFile(path, format, drafts)
}

func newSaveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save <drafts-file>",
		Short: "Save drafts written by generate --output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := readDrafts(args[0])
			if err != nil {
				return err
			}
			saved, err := c.app.Flashcards.AddBatch(cmd.Context(), drafts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully added %d flashcards!\n", len(saved))
			return nil
		},
	}
}

// readDrafts accepts JSON or YAML; JSON parses as YAML.
func readDrafts(path string) ([]models.CardDraft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var drafts []models.CardDraft
	if err := yaml.Unmarshal(raw, &drafts); err != nil {
		return nil, fmt.Errorf("read drafts from %s: %w", path, err)
	}
	return drafts, nil
}

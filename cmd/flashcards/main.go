// Command flashcards manages the flashcard collection from the terminal:
// listing and editing cards, generating drafts from text or PDFs, studying
// and exporting.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/flashcardhelper/internal/app"
	"github.com/vytor/flashcardhelper/internal/config"
	"github.com/vytor/flashcardhelper/internal/logger"
)

// cli carries the application opened for the running command.
type cli struct {
	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "flashcards",
		Short: "Create, generate and study flashcards",
		Long: `flashcards works on the same collection as the web server. Cards can be
added by hand, generated from text or a PDF (with Gemini or Claude when an API
key is configured, otherwise by detecting Q:/A: markers), studied in the
terminal and exported as JSON or YAML.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.open,
		PersistentPostRunE: c.close,
	}

	root.PersistentFlags().String("config", "", "config file (default: ./flashcards.yaml)")
	root.PersistentFlags().String("db", "", "database path (overrides DB_PATH)")
	root.PersistentFlags().String("log-level", "WARN", "log level: DEBUG, INFO, WARN, ERROR")

	root.AddCommand(
		newListCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newDeleteCmd(c),
		newGenerateCmd(c),
		newImportCmd(c),
		newSaveCmd(c),
		newSettingsCmd(c),
		newStudyCmd(c),
		newExportCmd(c),
		newResetCmd(c),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db")
	level, _ := cmd.Flags().GetString("log-level")

	cfg := config.LoadFile(cfgFile)
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithLevel(logger.ParseLevel(level)),
	)
	logger.SetDefault(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.NewContext(ctx, log)
	cmd.SetContext(ctx)

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open flashcard store: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) close(cmd *cobra.Command, args []string) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

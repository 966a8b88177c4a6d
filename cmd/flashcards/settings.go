package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/flashcardhelper/internal/models"
)

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the AI provider and API keys",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the active provider and which keys are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			active := c.app.Settings.Active()
			fmt.Fprintf(out, "Provider: %s\n", active.Provider)
			for _, p := range models.Providers {
				fmt.Fprintf(out, "%s API key: %s\n", p.Label(), maskKey(c.app.Settings.APIKey(p)))
			}
			if active.HasKey() {
				fmt.Fprintf(out, "Mode: AI Ready (%s)\n", active.Provider)
			} else {
				fmt.Fprintln(out, "Mode: basic text splitting")
			}
			return nil
		},
	}

	provider := &cobra.Command{
		Use:       "provider <gemini|claude>",
		Short:     "Select the AI provider",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.ProviderGemini), string(models.ProviderClaude)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Settings.SetProvider(cmd.Context(), models.Provider(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider set to %s.\n", c.app.Settings.Provider())
			return nil
		},
	}

	key := &cobra.Command{
		Use:   "key <gemini|claude> [api-key]",
		Short: "Store an API key for a provider; omit the key to remove it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := models.ParseProvider(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q (use gemini or claude)", args[0])
			}
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := c.app.Settings.SetAPIKey(cmd.Context(), p, value); err != nil {
				return err
			}
			if value == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s API key removed.\n", p.Label())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s API key saved.\n", p.Label())
			}
			return nil
		},
	}

	cmd.AddCommand(show, provider, key)
	return cmd
}

// maskKey keeps only the last four characters visible.
func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 4 {
		return "set"
	}
	return "set (..." + key[len(key)-4:] + ")"
}

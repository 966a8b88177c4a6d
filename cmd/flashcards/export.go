package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatFor picks the explicit format, else guesses from the file extension,
// else JSON.
func formatFor(path, explicit string) (string, error) {
	if explicit != "" {
		switch f := strings.ToLower(explicit); f {
		case formatJSON, formatYAML:
			return f, nil
		case "yml":
			return formatYAML, nil
		default:
			return "", fmt.Errorf("unsupported format %q (use json or yaml)", explicit)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return formatJSON, nil
	}
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return writeCardsJSON(w, v)
}

// writeFile encodes v completely before touching path, so a failed encode
// leaves an existing file as it was.
func writeFile(path, format string, v any) error {
	var buf bytes.Buffer
	if err := encode(&buf, format, v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit, _ := cmd.Flags().GetString("format")
			path, _ := cmd.Flags().GetString("output")

			format, err := formatFor(path, explicit)
			if err != nil {
				return err
			}
			cards := c.app.Flashcards.List(cmd.Context())

			if path == "" {
				return encode(cmd.OutOrStdout(), format, cards)
			}
			if err := writeFile(path, format, cards); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d flashcards to %s\n", len(cards), path)
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "", "json or yaml (default: from --output extension, else json)")
	cmd.Flags().StringP("output", "o", "", "file to write instead of stdout")
	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pigment/internal/colour"
	"github.com/jmylchreest/pigment/internal/palette"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <colors.json>",
		Short: "Print the colours of a saved palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) // #nosec G304 - user-specified palette file
			if err != nil {
				return fmt.Errorf("failed to read palette: %w", err)
			}
			var p palette.Palette
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("invalid palette %s: %w", args[0], err)
			}
			return writePreview(cmd.OutOrStdout(), p)
		},
	}
}

// writePreview prints the special colours one per line followed by the 16
// slots in two rows of eight.
func writePreview(w io.Writer, p palette.Palette) error {
	pv := colour.NewPreviewer(w)
	if p.Wallpaper != "" {
		if _, err := fmt.Fprintf(w, "wallpaper    %s\n", p.Wallpaper); err != nil {
			return err
		}
	}
	specials := []struct {
		label string
		c     colour.RGB
	}{
		{"background", p.Special.Background},
		{"foreground", p.Special.Foreground},
		{"cursor", p.Special.Cursor},
	}
	for _, s := range specials {
		if err := pv.WriteLabelled(s.label, s.c); err != nil {
			return err
		}
	}
	return pv.WriteRows(p.Colors[:], 8)
}

// Package cli provides the command-line interface for pigment.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pigment/internal/config"
	"github.com/jmylchreest/pigment/internal/version"
)

// globals holds the persistent flags and the state derived from them in
// PersistentPreRunE.
type globals struct {
	verbose    bool
	quiet      bool
	configPath string

	cfg    config.Config
	logger hclog.Logger
}

// NewRootCmd builds the pigment command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "pigment",
		Short: "Generate terminal colour palettes from images",
		Long: `pigment extracts the dominant colours of an image with one of several
extraction backends and turns them into a 16 colour terminal palette with
background, foreground and cursor colours.

The palette is written as JSON for other tools to consume.`,
		Version:      version.Get().Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress non-error output")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "configuration file layered over the user configuration")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.SetVersionTemplate(version.Get().String() + "\n")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newGenerateCmd(g))
	root.AddCommand(newBackendsCmd(g))
	root.AddCommand(newPreviewCmd())

	return root
}

func (g *globals) init(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	level := cfg.Level()
	switch {
	case g.verbose:
		level = hclog.Debug
	case g.quiet:
		level = hclog.Error
	}
	g.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "pigment",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

func newVersionCmd() *cobra.Command {
	var short, asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit, build date, Go version and platform of this binary.`,
		Args:  cobra.NoArgs,
		// Skip configuration loading so version works with a broken config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case short:
				_, err := fmt.Fprintln(out, info.Short())
				return err
			default:
				_, err := fmt.Fprintln(out, info.String())
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build details as JSON")
	cmd.MarkFlagsMutuallyExclusive("short", "json")
	return cmd
}

package cli

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/backend/external"
)

const probeTimeout = 5 * time.Second

func newBackendsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "backends",
		Aliases: []string{"backend"},
		Short:   "List the available extraction backends",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			tbl := newTable("NAME", "DEFAULT", "STATUS", "DESCRIPTION").limit(3, 60)
			for _, b := range newRegistry(g.cfg, g.logger).All() {
				def := ""
				if b.Name() == g.cfg.Backend {
					def = "*"
				}
				tbl.add(b.Name(), def, backendStatus(ctx, b, g.logger), b.Description())
			}
			return tbl.render(cmd.OutOrStdout())
		},
	}
}

// backendStatus probes plugins for their version. Built-in backends report
// missing dependencies only when used.
func backendStatus(ctx context.Context, b backend.Backend, logger hclog.Logger) string {
	ext, ok := b.(*external.Backend)
	if !ok {
		return "builtin"
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	info, err := ext.Probe(ctx)
	if err != nil {
		logger.Warn("plugin probe failed", "plugin", b.Name(), "error", err)
		return "unavailable"
	}
	return "plugin " + info.Version
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/rebuild"
)

// NewRebuildCommand creates the rebuild command.
func NewRebuildCommand(rootOpts *RootOptions) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the graph from source rows",
		Long: `Clear the engine and replay every live source row through the edge
mapper. This is the recovery path for drift: idempotent and safe to
invoke repeatedly. An interrupted rebuild leaves the graph partial;
run rebuild again to reach a consistent state.

Exit codes:
  0 - rebuild completed
  1 - rebuild interrupted or failed mid-replay
  2 - command error (database not found, etc.)

Examples:
  repgraph rebuild --db ./repgraph.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			c := rebuild.New(e.store, e.router, rebuild.WithBatchSize(batchSize))
			stats, err := c.Rebuild(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "rebuild did not complete", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText(
				fmt.Sprintf("Rebuilt graph: %d votes, %d content rows, %d edges in %s",
					stats.Votes, stats.Content, stats.Edges, stats.Duration),
				stats,
			)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", rebuild.DefaultBatchSize, "replay scan batch size")

	return cmd
}

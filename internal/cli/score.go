package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/score"
)

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <subject> <object>",
		Short: "Query the reputation score for a pair",
		Long: `Compute object's reputation as seen from subject. The in-process
graph is rebuilt from the relational rows, then the score view queries
the engine with its fixed walk depth.

Examples:
  repgraph score alice bob --db ./repgraph.db
  repgraph score alice bob --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.populate(cmd.Context()); err != nil {
				return err
			}

			view := score.New(e.engine, score.WithDepth(e.cfg.WalkDepth))
			s, err := view.GetScore(cmd.Context(), args[0], args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to compute score", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText(
				fmt.Sprintf("%g", s),
				map[string]any{"subject": args[0], "object": args[1], "score": s},
			)
		},
	}
}

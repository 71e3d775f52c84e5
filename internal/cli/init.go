package cli

import (
	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the database",
		Long: `Create the SQLite database and apply the schema.

Idempotent: running init against an existing database re-applies the
schema and migrations without touching data.

Examples:
  repgraph init --db ./repgraph.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			// Schema-only open: no router, write paths stay disabled.
			st, err := store.Open(cfg.Database, nil)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to initialize database", err)
			}
			defer st.Close()

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText("Initialized "+cfg.Database, map[string]string{"database": cfg.Database})
		},
	}
}

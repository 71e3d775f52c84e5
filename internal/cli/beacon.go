package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/store"
)

// NewBeaconCommand creates the beacon command group.
func NewBeaconCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beacon",
		Short: "Manage beacon content rows",
	}
	cmd.AddCommand(newBeaconAddCommand(rootOpts))
	cmd.AddCommand(newBeaconRmCommand(rootOpts))
	return cmd
}

func newBeaconAddCommand(rootOpts *RootOptions) *cobra.Command {
	var author, title string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a beacon",
		Long: `Create a beacon row. The new row synthesizes its ownership edge
pair, (beacon -> author, 1) and (author -> beacon, 10); the generated
ID is printed.

Examples:
  repgraph beacon add --author alice --title "hello" --db ./repgraph.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := e.store.CreateBeacon(cmd.Context(), author, title)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create beacon", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText(id, map[string]string{"id": id, "author": author})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author identity (required)")
	_ = cmd.MarkFlagRequired("author")
	cmd.Flags().StringVar(&title, "title", "", "beacon title")

	return cmd
}

func newBeaconRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a beacon and its dependents",
		Long: `Delete a beacon row. Comments under it and votes on either cascade
in the same transaction; the ownership edge pair is removed as a unit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.DeleteBeacon(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return WrapExitError(ExitCommandError, "beacon not found", err)
				}
				return WrapExitError(ExitCommandError, "failed to delete beacon", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText("Deleted beacon "+args[0], map[string]string{"id": args[0]})
		},
	}
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/store"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage identity rows",
	}
	cmd.AddCommand(newUserAddCommand(rootOpts))
	cmd.AddCommand(newUserRmCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>",
		Short: "Create an identity",
		Long: `Create an identity row. Identities carry no edges of their own;
they are the endpoints votes and content refer to.

Examples:
  repgraph user add alice --db ./repgraph.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.CreateUser(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitCommandError, "failed to create user", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText("Created user "+args[0], map[string]string{"id": args[0]})
		},
	}
}

func newUserRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an identity and everything depending on it",
		Long: `Delete an identity row. The user's content, their votes, and votes
on their identity cascade in the same transaction, each firing its own
edge-removal event.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.DeleteUser(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return WrapExitError(ExitCommandError, "user not found", err)
				}
				return WrapExitError(ExitCommandError, "failed to delete user", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText("Deleted user "+args[0], map[string]string{"id": args[0]})
		},
	}
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/store"
)

// NewCommentCommand creates the comment command group.
func NewCommentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage comment content rows",
	}
	cmd.AddCommand(newCommentAddCommand(rootOpts))
	cmd.AddCommand(newCommentRmCommand(rootOpts))
	return cmd
}

func newCommentAddCommand(rootOpts *RootOptions) *cobra.Command {
	var author, beacon, body string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a comment under a beacon",
		Long: `Create a comment row. The new row synthesizes its ownership edge
pair, (comment -> author, 1) and (author -> comment, 1); the generated
ID is printed.

Examples:
  repgraph comment add --author bob --beacon <beacon-id> --body "nice"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := e.store.CreateComment(cmd.Context(), author, beacon, body)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create comment", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText(id, map[string]string{"id": id, "author": author, "beacon": beacon})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author identity (required)")
	_ = cmd.MarkFlagRequired("author")
	cmd.Flags().StringVar(&beacon, "beacon", "", "parent beacon ID (required)")
	_ = cmd.MarkFlagRequired("beacon")
	cmd.Flags().StringVar(&body, "body", "", "comment body")

	return cmd
}

func newCommentRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a comment and votes on it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.DeleteComment(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return WrapExitError(ExitCommandError, "comment not found", err)
				}
				return WrapExitError(ExitCommandError, "failed to delete comment", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText("Deleted comment "+args[0], map[string]string{"id": args[0]})
		},
	}
}

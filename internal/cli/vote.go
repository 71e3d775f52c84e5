package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/store"
)

// voteCategory resolves the CLI category argument to a vote namespace.
func voteCategory(arg string) (edge.Category, error) {
	switch arg {
	case "beacon":
		return edge.CategoryVoteBeacon, nil
	case "comment":
		return edge.CategoryVoteComment, nil
	case "user":
		return edge.CategoryVoteUser, nil
	default:
		return "", fmt.Errorf("unknown vote category %q: must be beacon, comment, or user", arg)
	}
}

// NewVoteCommand creates the vote command group.
func NewVoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Manage vote rows",
		Long: `Manage votes across the three independent categories: beacon,
comment, and user. Each category is its own edge namespace keyed by
(subject, object).`,
	}
	cmd.AddCommand(newVoteSetCommand(rootOpts))
	cmd.AddCommand(newVoteRmCommand(rootOpts))
	return cmd
}

func newVoteSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <subject> <object> <amount>",
		Short: "Cast or replace a vote",
		Long: `Insert a vote, or fully replace an existing one for the same
(subject, object) pair. A replace maps to delete-then-add at the
engine, never a weight patch.

Examples:
  repgraph vote set user alice bob 3
  repgraph vote set beacon alice <beacon-id> -- -2`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := voteCategory(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}
			amount, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid amount", err)
			}

			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.SetVote(cmd.Context(), category, args[1], args[2], amount); err != nil {
				return WrapExitError(ExitCommandError, "failed to set vote", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText(
				fmt.Sprintf("Vote %s: %s -> %s = %s", args[0], args[1], args[2], args[3]),
				map[string]any{"category": args[0], "subject": args[1], "object": args[2], "amount": amount},
			)
		},
	}
}

func newVoteRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <category> <subject> <object>",
		Short: "Retract a vote",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := voteCategory(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}

			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.DeleteVote(cmd.Context(), category, args[1], args[2]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return WrapExitError(ExitCommandError, "vote not found", err)
				}
				return WrapExitError(ExitCommandError, "failed to delete vote", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return f.SuccessText(
				fmt.Sprintf("Removed vote %s: %s -> %s", args[0], args[1], args[2]),
				map[string]string{"category": args[0], "subject": args[1], "object": args[2]},
			)
		},
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/knotvcs/knot/internal/repo"
	"github.com/knotvcs/knot/internal/repoerr"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branchName := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "merging %s into %s...\n", branchName, current)

			result, err := r.Merge(branchName)
			if err != nil {
				if errors.Is(err, repoerr.AlreadyUpToDate) {
					fmt.Fprintln(out, "already up to date.")
					return nil
				}
				if errors.Is(err, repoerr.MergeConflict) {
					fmt.Fprintln(out, repo.MergeConflictMessage)
					fmt.Fprintln(out, "fix conflicts and run knot commit")
					return err
				}
				return err
			}

			if result.FastForward {
				fmt.Fprintln(out, "fast-forward.")
				return nil
			}
			short := string(result.MergeCommit)
			if len(short) > 8 {
				short = short[:8]
			}
			fmt.Fprintf(out, "[%s %s] Merged %s into %s.\n", current, short, branchName, current)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/knotvcs/knot/internal/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged changes against HEAD, and untracked files",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}
			untracked, err := r.UntrackedFiles()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s\n", statusLabel(e.Status), e.Path)
			}
			for _, path := range untracked {
				fmt.Fprintf(out, "??  %s\n", path)
			}
			return nil
		},
	}
}

func statusLabel(s repo.FileStatus) string {
	switch s {
	case repo.StatusNew:
		return "A "
	case repo.StatusModified:
		return "M "
	case repo.StatusDeleted:
		return "D "
	default:
		return "? "
	}
}

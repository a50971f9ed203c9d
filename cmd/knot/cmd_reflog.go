package main

import (
	"fmt"

	"github.com/knotvcs/knot/internal/repo"
	"github.com/spf13/cobra"
)

func newReflogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflog",
		Short: "Show the history of HEAD's ref updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			entries, err := r.HeadReflog(0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s -> %s\n", e.Ref, shortHash(string(e.Old)), shortHash(string(e.New)))
			}
			return nil
		},
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

package main

import (
	"fmt"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repo"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <commit-digest>",
		Short: "Verify a commit's SSH signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			result, err := r.Verify(object.Hash(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case !result.Signed:
				fmt.Fprintln(out, "unsigned commit")
			case result.Valid:
				fmt.Fprintf(out, "good signature from %s\n", result.PublicKey)
			default:
				fmt.Fprintln(out, "BAD signature")
			}
			return nil
		},
	}
}

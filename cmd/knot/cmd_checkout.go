package main

import (
	"fmt"

	"github.com/knotvcs/knot/internal/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <name-or-digest>",
		Short: "Switch the working tree to a branch or digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.Checkout(target); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "switched to '%s'\n", target)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repo"
	"github.com/spf13/cobra"
)

func newPlumbingCmd() *cobra.Command {
	plumbing := &cobra.Command{
		Use:   "plumbing",
		Short: "Low-level commands that operate directly on objects, the index, and trees",
	}

	plumbing.AddCommand(newHashObjectCmd())
	plumbing.AddCommand(newCatFileCmd())
	plumbing.AddCommand(newUpdateIndexCmd())
	plumbing.AddCommand(newWriteTreeCmd())
	plumbing.AddCommand(newReadTreeCmd())
	plumbing.AddCommand(newCommitTreeCmd())
	plumbing.AddCommand(newCheckoutIndexCmd())

	return plumbing
}

func newHashObjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Hash a file's contents as a blob and write it to the object store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			h, err := r.HashObject(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <digest>",
		Short: "Print an object's raw payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			_, payload, err := r.CatFile(object.Hash(args[0]))
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(payload)
			return nil
		},
	}
}

func newUpdateIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-index <path>...",
		Short: "Stage or unstage paths per their current disk/index state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.UpdateIndex(args)
		},
	}
}

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write the current index as a tree object and print its digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newReadTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-tree <digest>",
		Short: "Replace the index with a tree's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.ReadTreeCmd(object.Hash(args[0]))
		},
	}
}

func newCommitTreeCmd() *cobra.Command {
	var message string
	var parents []string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree-digest>",
		Short: "Create a commit object directly from a tree digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			parentHashes := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				parentHashes = append(parentHashes, object.Hash(strings.TrimSpace(p)))
			}
			h, err := r.CommitTree(object.Hash(args[0]), parentHashes, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit digest (repeatable)")
	return cmd
}

func newCheckoutIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout-index",
		Short: "Materialize the current index into the working tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.CheckoutIndexCmd()
		},
	}
}

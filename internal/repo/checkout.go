package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knotvcs/knot/internal/index"
	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/refs"
	"github.com/knotvcs/knot/internal/repoerr"
)

// CheckoutIndex materializes ix into the working tree (spec §4.6): every
// path tracked by prevIndex but absent from ix is removed, and every path
// in ix is (re)written from its blob. Before touching anything it scans for
// collisions: a path that already exists on disk but was not tracked by
// prevIndex fails the whole operation with the exact literal message
// spec.md fixes, and neither the working tree nor the index is touched.
func (r *Repo) CheckoutIndex(ix *index.Index, prevIndex *index.Index) error {
	entries := ix.Iter()

	for _, e := range entries {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(e.Path))
		if _, err := os.Stat(abs); err == nil {
			if _, tracked := prevIndex.Get(e.Path); !tracked {
				return repoerr.New("checkout-index", repoerr.UntrackedOverwrite, errors.New(repoerr.UntrackedOverwriteMessage))
			}
		}
	}

	for _, e := range prevIndex.Iter() {
		if _, stillTracked := ix.Get(e.Path); stillTracked {
			continue
		}
		abs := filepath.Join(r.RootDir, filepath.FromSlash(e.Path))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return repoerr.New("checkout-index", repoerr.Io, err)
		}
		r.removeEmptyParents(filepath.Dir(abs))
	}

	for _, e := range entries {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return repoerr.New("checkout-index", repoerr.Io, err)
		}
		blob, err := object.GetBlob(r.Store, e.Hash)
		if err != nil {
			return repoerr.New("checkout-index", repoerr.Corrupt, err)
		}
		if err := os.WriteFile(abs, blob.Data, 0o644); err != nil {
			return repoerr.New("checkout-index", repoerr.Io, err)
		}
	}
	return nil
}

// removeEmptyParents removes dir and its ancestors, stopping at the first
// non-empty directory or at RootDir.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// Checkout resolves target (spec §4.9) to a commit digest, then to its tree,
// via a branch name or directly a commit or tree digest (spec §9's open
// question: both are accepted, dispatching on object type after ODB.Get).
func (r *Repo) Checkout(target string) error {
	prevIndex, err := r.LoadIndex()
	if err != nil {
		return err
	}

	isBranch := false
	var treeHash object.Hash

	if r.Refs.RefExists("refs/heads/" + target) {
		isBranch = true
		commitHash, err := r.Refs.ReadRef("refs/heads/" + target)
		if err != nil {
			return repoerr.New("checkout", repoerr.Io, err)
		}
		commit, err := object.GetCommit(r.Store, commitHash)
		if err != nil {
			return repoerr.New("checkout", repoerr.Corrupt, err)
		}
		treeHash = commit.Tree
	} else {
		digestHash := object.Hash(target)
		typ, payload, err := r.Store.Get(digestHash)
		if err != nil {
			return repoerr.New("checkout", repoerr.NotFound, err)
		}
		switch typ {
		case object.TypeCommit:
			commit, err := object.Parse(typ, payload)
			if err != nil {
				return repoerr.New("checkout", repoerr.Corrupt, err)
			}
			treeHash = commit.(*object.Commit).Tree
		case object.TypeTree:
			treeHash = digestHash
		default:
			return repoerr.New("checkout", repoerr.NotFound, fmt.Errorf("%q is not a commit or tree", target))
		}
	}

	newIndex, err := r.ReadTree(treeHash)
	if err != nil {
		return repoerr.New("checkout", repoerr.Corrupt, err)
	}
	if err := r.CheckoutIndex(newIndex, prevIndex); err != nil {
		return err
	}
	if err := r.SaveIndex(newIndex); err != nil {
		return err
	}

	if isBranch {
		return r.Refs.WriteHead(refs.HEAD{Symbolic: "refs/heads/" + target})
	}
	return r.Refs.WriteHead(refs.HEAD{Detached: object.Hash(target)})
}

package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knotvcs/knot/internal/index"
	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repoerr"
)

// UpdateIndex applies spec §4.3's update-index table over paths: a path
// that exists on disk is hashed and staged (inserted or updated-if-changed);
// a path absent on disk but present in the index is unstaged; a path absent
// from both fails with PathSpec.
func (r *Repo) UpdateIndex(paths []string) error {
	ix, err := r.LoadIndex()
	if err != nil {
		return err
	}

	for _, p := range paths {
		rel := filepath.ToSlash(p)
		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))

		data, readErr := os.ReadFile(abs)
		existsOnDisk := readErr == nil
		_, inIndex := ix.Get(rel)

		switch {
		case existsOnDisk:
			digest, err := object.PutBlob(r.Store, &object.Blob{Data: data})
			if err != nil {
				return repoerr.New("update-index", repoerr.Io, err)
			}
			if current, ok := ix.Get(rel); !ok || current != digest {
				ix.Set(rel, digest)
			}
		case inIndex:
			ix.Remove(rel)
		default:
			return repoerr.New("update-index", repoerr.PathSpec, fmt.Errorf("pathspec %q did not match any file known to knot", p))
		}
	}

	return r.SaveIndex(ix)
}

// Add is the `add` porcelain verb: update-index over paths.
func (r *Repo) Add(paths []string) error {
	return r.UpdateIndex(paths)
}

// Remove is the `rm` porcelain verb: delete paths from disk, then
// update-index over them so their removal is staged.
func (r *Repo) Remove(paths []string) error {
	for _, p := range paths {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(p))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return repoerr.New("rm", repoerr.Io, err)
		}
	}
	return r.UpdateIndex(paths)
}

// HashObject hashes data as a blob and writes it to the store, returning its
// digest (the `hash-object` plumbing verb).
func (r *Repo) HashObject(data []byte) (object.Hash, error) {
	h, err := object.PutBlob(r.Store, &object.Blob{Data: data})
	if err != nil {
		return "", repoerr.New("hash-object", repoerr.Io, err)
	}
	return h, nil
}

// CatFile returns the raw type and payload of the object at digest (the
// `cat-file` plumbing verb).
func (r *Repo) CatFile(h object.Hash) (object.Type, []byte, error) {
	typ, payload, err := r.Store.Get(h)
	if err != nil {
		return "", nil, repoerr.New("cat-file", repoerr.NotFound, err)
	}
	return typ, payload, nil
}

// WriteTree is the `write-tree` plumbing verb: build-tree over the current
// index.
func (r *Repo) WriteTree() (object.Hash, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	return r.BuildTree(ix)
}

// ReadTreeCmd is the `read-tree` plumbing verb: replace the persisted index
// with exactly h's flattened contents.
func (r *Repo) ReadTreeCmd(h object.Hash) error {
	ix, err := r.ReadTree(h)
	if err != nil {
		return repoerr.New("read-tree", repoerr.Corrupt, err)
	}
	return r.SaveIndex(ix)
}

// CheckoutIndexCmd is the `checkout-index` plumbing verb: materialize the
// persisted index into the working tree. The untracked-overwrite guard and
// stale-file removal in CheckoutIndex are judged against HEAD's tree, the
// last state this repository actually checked out onto disk, rather than
// against the target index itself (which would make the guard a no-op).
func (r *Repo) CheckoutIndexCmd() error {
	ix, err := r.LoadIndex()
	if err != nil {
		return err
	}
	prevIndex, err := r.headIndex()
	if err != nil {
		return err
	}
	return r.CheckoutIndex(ix, prevIndex)
}

// headIndex returns HEAD's tree flattened into an index, or an empty index
// if HEAD has no commits yet.
func (r *Repo) headIndex() (*index.Index, error) {
	headHash, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, repoerr.New("checkout-index", repoerr.Io, err)
	}
	if headHash == "" {
		return index.New(), nil
	}
	commit, err := object.GetCommit(r.Store, headHash)
	if err != nil {
		return nil, repoerr.New("checkout-index", repoerr.Corrupt, err)
	}
	return r.ReadTree(commit.Tree)
}

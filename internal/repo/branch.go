package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repoerr"
)

// CreateBranch writes target to refs/heads/<name> (spec §4.9). Fails with
// BranchExists if the ref already exists.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	refName := "refs/heads/" + name
	if r.Refs.RefExists(refName) {
		return repoerr.New("branch", repoerr.BranchExists, fmt.Errorf("branch %q already exists", name))
	}
	if err := r.Refs.WriteRef(refName, target); err != nil {
		return repoerr.New("branch", repoerr.Io, err)
	}
	return nil
}

// ListBranches returns every branch name under refs/heads/, sorted.
func (r *Repo) ListBranches() ([]string, error) {
	headsDir := filepath.Join(r.GitDir, "refs", "heads")
	entries, err := os.ReadDir(headsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, repoerr.New("branch list", repoerr.Io, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch returns the branch name HEAD points at, or "" if HEAD is
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Refs.ReadHead()
	if err != nil {
		return "", repoerr.New("current branch", repoerr.Io, err)
	}
	if !head.IsSymbolic() {
		return "", nil
	}
	return strings.TrimPrefix(head.Symbolic, "refs/heads/"), nil
}

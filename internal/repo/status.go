package repo

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repoerr"
)

// FileStatus is the three-state classification original_source's diff_index
// distinguishes between the working tree/index and HEAD's tree.
type FileStatus int

const (
	StatusNew      FileStatus = iota // staged, not present in HEAD's tree
	StatusModified                   // staged with a digest different from HEAD's
	StatusDeleted                    // present in HEAD's tree, absent from the index
)

// StatusEntry reports one path's classification.
type StatusEntry struct {
	Path   string
	Status FileStatus
}

// Status compares the current index against HEAD's tree, reporting new,
// modified, and deleted paths in sorted order.
func (r *Repo) Status() ([]StatusEntry, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}

	headHash, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, repoerr.New("status", repoerr.Io, err)
	}

	headMap := map[string]object.Hash{}
	if headHash != "" {
		commit, err := object.GetCommit(r.Store, headHash)
		if err != nil {
			return nil, repoerr.New("status", repoerr.Corrupt, err)
		}
		headMap, err = r.flattenToMap(commit.Tree)
		if err != nil {
			return nil, err
		}
	}

	var entries []StatusEntry
	for _, e := range ix.Iter() {
		headDigest, inHead := headMap[e.Path]
		switch {
		case !inHead:
			entries = append(entries, StatusEntry{Path: e.Path, Status: StatusNew})
		case headDigest != e.Hash:
			entries = append(entries, StatusEntry{Path: e.Path, Status: StatusModified})
		}
	}
	for path := range headMap {
		if _, staged := ix.Get(path); !staged {
			entries = append(entries, StatusEntry{Path: path, Status: StatusDeleted})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// UntrackedFiles walks the working directory and returns paths present on
// disk but absent from the index, skipping the .git directory.
func (r *Repo) UntrackedFiles() ([]string, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}

	var untracked []string
	err = filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == r.GitDir {
			return fs.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, tracked := ix.Get(rel); !tracked {
			untracked = append(untracked, rel)
		}
		return nil
	})
	if err != nil {
		return nil, repoerr.New("status", repoerr.Io, err)
	}
	sort.Strings(untracked)
	return untracked, nil
}

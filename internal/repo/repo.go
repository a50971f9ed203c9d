// Package repo implements the porcelain and plumbing operations of a
// content-addressed version control system: repository lifecycle, tree
// materialization, commits, branches, merges, and status, built on top of
// internal/object, internal/index, and internal/refs.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knotvcs/knot/internal/index"
	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/refs"
	"github.com/knotvcs/knot/internal/repoerr"
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

const gitDirName = ".git"
const indexFileName = "index"
const defaultBranch = "main"

// Repo is an opened repository: the working directory root, the .git
// directory, and handles onto the object store and ref store.
type Repo struct {
	RootDir string
	GitDir  string
	Store   object.Backend
	Refs    *refs.Store
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GitDir, indexFileName)
}

// LoadIndex reads the persisted index, or an empty one if none exists yet.
func (r *Repo) LoadIndex() (*index.Index, error) {
	ix, err := index.Load(r.indexPath())
	if err != nil {
		return nil, repoerr.New("load index", repoerr.Corrupt, err)
	}
	return ix, nil
}

// SaveIndex atomically persists ix.
func (r *Repo) SaveIndex(ix *index.Index) error {
	if err := ix.Save(r.indexPath()); err != nil {
		return repoerr.New("save index", repoerr.Io, err)
	}
	return nil
}

// Init creates a new repository at path: .git/, HEAD pointing at
// refs/heads/main, empty objects/ and refs/heads/.
func Init(path string) (*Repo, error) {
	gitDir := filepath.Join(path, gitDirName)

	if _, err := os.Stat(gitDir); err == nil {
		return nil, repoerr.New("init", repoerr.AlreadyInitialized, fmt.Errorf("%s already exists", gitDir))
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, repoerr.New("init", repoerr.Io, err)
		}
	}

	store := object.NewStore(gitDir)
	refStore := refs.NewStore(gitDir)
	if err := refStore.WriteHead(refs.HEAD{Symbolic: "refs/heads/" + defaultBranch}); err != nil {
		return nil, repoerr.New("init", repoerr.Io, err)
	}

	return &Repo{RootDir: path, GitDir: gitDir, Store: store, Refs: refStore}, nil
}

// Open searches upward from path for a .git directory and opens the
// repository it finds.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, repoerr.New("open", repoerr.Io, err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, gitDirName)
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				GitDir:  gitDir,
				Store:   object.NewStore(gitDir),
				Refs:    refs.NewStore(gitDir),
			}, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, repoerr.New("open", repoerr.NotARepository, fmt.Errorf("not a repository (or any parent up to /): %s", path))
		}
		cur = parent
	}
}

// Package refs implements the reference layer: named mutable commit
// pointers under refs/heads/, and the HEAD pointer (symbolic or detached)
// that resolves to the current commit.
package refs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repoerr"
)

// Store manages refs and HEAD under gitDir (the ".git" directory).
type Store struct {
	gitDir string
}

// NewStore creates a Store rooted at gitDir.
func NewStore(gitDir string) *Store {
	return &Store{gitDir: gitDir}
}

func (s *Store) refPath(name string) string {
	return filepath.Join(s.gitDir, filepath.FromSlash(name))
}

func (s *Store) headPath() string {
	return filepath.Join(s.gitDir, "HEAD")
}

// HEAD is the tagged variant from spec.md §3: either a symbolic pointer at
// a ref path, or a detached commit digest.
type HEAD struct {
	Symbolic string      // ref path, e.g. "refs/heads/main"; empty if detached
	Detached object.Hash // set only when Symbolic == ""
}

func (h HEAD) IsSymbolic() bool { return h.Symbolic != "" }

// ReadHead parses .git/HEAD.
func (s *Store) ReadHead() (HEAD, error) {
	data, err := os.ReadFile(s.headPath())
	if err != nil {
		return HEAD{}, repoerr.New("read head", repoerr.Corrupt, err)
	}
	content := strings.TrimRight(string(data), "\n")
	if rest, ok := strings.CutPrefix(content, "ref: "); ok {
		return HEAD{Symbolic: rest}, nil
	}
	return HEAD{Detached: object.Hash(content)}, nil
}

// WriteHead atomically persists HEAD.
func (s *Store) WriteHead(h HEAD) error {
	var content string
	if h.IsSymbolic() {
		content = "ref: " + h.Symbolic + "\n"
	} else {
		content = string(h.Detached) + "\n"
	}
	return atomicWrite(s.headPath(), []byte(content))
}

// ResolveHead follows a symbolic HEAD to its ref and returns the commit
// digest it points at, or "" if HEAD is symbolic and the ref does not yet
// exist (a freshly initialized repository with no commits).
func (s *Store) ResolveHead() (object.Hash, error) {
	h, err := s.ReadHead()
	if err != nil {
		return "", err
	}
	if !h.IsSymbolic() {
		return h.Detached, nil
	}
	hash, err := s.ReadRef(h.Symbolic)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}

// RefExists reports whether the named ref file exists.
func (s *Store) RefExists(name string) bool {
	_, err := os.Stat(s.refPath(name))
	return err == nil
}

// ReadRef reads the commit digest stored at name (e.g. "refs/heads/main").
func (s *Store) ReadRef(name string) (object.Hash, error) {
	data, err := os.ReadFile(s.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", repoerr.New("read ref "+name, repoerr.NotFound, err)
		}
		return "", repoerr.New("read ref "+name, repoerr.Io, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// WriteRef atomically writes h to the named ref, creating parent
// directories as needed, and appends a reflog entry recording the update.
func (s *Store) WriteRef(name string, h object.Hash) error {
	path := s.refPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return repoerr.New("write ref "+name, repoerr.Io, err)
	}

	old, _ := s.ReadRef(name) // zero value if it doesn't exist yet

	if err := atomicWrite(path, []byte(string(h)+"\n")); err != nil {
		return repoerr.New("write ref "+name, repoerr.Io, err)
	}

	// Reflog append failure does not roll back the ref write (spec §5:
	// the ref file is the source of truth; the reflog is a convenience
	// trail consumed by the supplemental `knot reflog` verb).
	_ = s.appendReflog(name, old, h)
	return nil
}

// DeleteRef removes the named ref file.
func (s *Store) DeleteRef(name string) error {
	if err := os.Remove(s.refPath(name)); err != nil {
		if os.IsNotExist(err) {
			return repoerr.New("delete ref "+name, repoerr.NotFound, err)
		}
		return repoerr.New("delete ref "+name, repoerr.Io, err)
	}
	return nil
}

func isNotFound(err error) bool {
	re, ok := err.(*repoerr.Error)
	return ok && re.Kind == repoerr.NotFound
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}


// Package index implements the staging index: a flat mapping from
// repository-relative path to blob digest, persisted between invocations.
//
// update-index semantics (spec §4.3):
//
//	workspace file | in index | action
//	exists         | absent   | read file, caller stores blob, insert entry
//	exists         | present  | recompute blob; update entry if digest changed
//	absent         | present  | remove entry
//	absent         | absent   | fail with PathSpec
//
// The table itself is applied by the repo layer (repo.UpdateIndex), which
// owns blob writes; it mutates an Index only through Set, Remove and Clear.
// The entries map is unexported, and Iter always yields sorted path order.
package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/knotvcs/knot/internal/object"
)

// Index is the in-memory staging snapshot: path -> blob digest.
type Index struct {
	entries map[string]object.Hash
}

// New creates an empty Index.
func New() *Index {
	return &Index{entries: make(map[string]object.Hash)}
}

// Get returns the staged digest for path, if any.
func (ix *Index) Get(path string) (object.Hash, bool) {
	h, ok := ix.entries[path]
	return h, ok
}

// Set stages path at digest h.
func (ix *Index) Set(path string, h object.Hash) {
	ix.entries[path] = h
}

// Remove unstages path, reporting whether it was present.
func (ix *Index) Remove(path string) bool {
	if _, ok := ix.entries[path]; !ok {
		return false
	}
	delete(ix.entries, path)
	return true
}

// Len returns the number of staged entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entry is one (path, digest) pair as yielded by Iter.
type Entry struct {
	Path string
	Hash object.Hash
}

// Iter returns all entries sorted by path ascending.
func (ix *Index) Iter() []Entry {
	out := make([]Entry, 0, len(ix.entries))
	for p, h := range ix.entries {
		out = append(out, Entry{Path: p, Hash: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clear empties the index in place, used by read-tree (spec §4.5: "the
// index is cleared first and then populated").
func (ix *Index) Clear() {
	ix.entries = make(map[string]object.Hash)
}

// ---------------------------------------------------------------------------
// Persistence
//
// On-disk framing (spec §9 open question, resolved): a sequence of records,
// each uvarint(len(path)) || path-bytes || 20-byte digest, in ascending
// path order. This is an implementation choice, not a shared wire format;
// the only requirement (spec §8 invariant 2) is that Save/Load round-trip.
// ---------------------------------------------------------------------------

// Load reads an Index from path. A missing file yields an empty Index, not
// an error (spec §4.3).
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("index: load %s: %w", path, err)
	}
	defer f.Close()

	ix := New()
	r := bufio.NewReader(f)
	for {
		pathLen, err := binary.ReadUvarint(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("index: load %s: read path length: %w", path, err)
		}
		pathBytes := make([]byte, pathLen)
		if _, err := io.ReadFull(r, pathBytes); err != nil {
			return nil, fmt.Errorf("index: load %s: read path: %w", path, err)
		}
		var digest object.Digest
		if _, err := io.ReadFull(r, digest[:]); err != nil {
			return nil, fmt.Errorf("index: load %s: read digest: %w", path, err)
		}
		ix.entries[string(pathBytes)] = object.HashHex(digest)
	}
	return ix, nil
}

// Save atomically (temp-file + rename) persists the index to path, in
// ascending path order.
func (ix *Index) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("index: save: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	var lenBuf [binary.MaxVarintLen64]byte
	for _, e := range ix.Iter() {
		digest, err := object.ParseHash(e.Hash)
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("index: save: entry %q has invalid hash %q: %w", e.Path, e.Hash, err)
		}
		n := binary.PutUvarint(lenBuf[:], uint64(len(e.Path)))
		if _, err := w.Write(lenBuf[:n]); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("index: save: write length: %w", err)
		}
		if _, err := w.WriteString(e.Path); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("index: save: write path: %w", err)
		}
		if _, err := w.Write(digest[:]); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("index: save: write digest: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("index: save: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: save: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: save: rename: %w", err)
	}
	return nil
}


package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/knotvcs/knot/internal/index"
	"github.com/knotvcs/knot/internal/object"
)

// FileEntry is one flattened (path, blob digest) pair, as produced by
// FlattenTree and consumed wherever a tree needs to be compared path-by-path
// (checkout, status, merge).
type FileEntry struct {
	Path string
	Blob object.Hash
}

// BuildTree converts the flat index into the corresponding forest of tree
// objects (write-tree, spec §4.4) and returns the root tree's digest.
func (r *Repo) BuildTree(ix *index.Index) (object.Hash, error) {
	return r.buildTreeDir(ix.Iter(), "")
}

// buildTreeDir builds and writes the tree object rooted at prefix, given all
// index entries (already sorted by path). prefix == "" is the root.
func (r *Repo) buildTreeDir(entries []index.Entry, prefix string) (object.Hash, error) {
	files := make(map[string]object.Hash)
	subdirs := make(map[string][]index.Entry)

	for _, e := range entries {
		rel := e.Path
		if prefix != "" {
			if !strings.HasPrefix(e.Path, prefix+"/") {
				continue
			}
			rel = e.Path[len(prefix)+1:]
		}
		if slash := strings.IndexByte(rel, '/'); slash < 0 {
			files[rel] = e.Hash
		} else {
			childName := rel[:slash]
			subdirs[childName] = append(subdirs[childName], index.Entry{Path: e.Path, Hash: e.Hash})
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		names = append(names, name)
	}
	sort.Strings(names)

	var treeEntries []object.TreeEntry
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if h, isFile := files[name]; isFile {
			treeEntries = append(treeEntries, object.TreeEntry{Kind: object.EntryBlob, Digest: h, Name: name})
			continue
		}
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		subHash, err := r.buildTreeDir(subdirs[name], childPrefix)
		if err != nil {
			return "", fmt.Errorf("build tree %q: %w", childPrefix, err)
		}
		treeEntries = append(treeEntries, object.TreeEntry{Kind: object.EntryTree, Digest: subHash, Name: name})
	}

	h, err := object.PutTree(r.Store, &object.Tree{Entries: treeEntries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively (read-tree's traversal, spec
// §4.5), returning every blob entry with its full repository-relative path.
func (r *Repo) FlattenTree(h object.Hash) ([]FileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]FileEntry, error) {
	tree, err := object.GetTree(r.Store, h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree %s: %w", h, err)
	}

	var out []FileEntry
	for _, e := range tree.Entries {
		full := e.Name
		if prefix != "" {
			full = path.Join(prefix, e.Name)
		}
		switch e.Kind {
		case object.EntryTree:
			sub, err := r.flattenTreeRec(e.Digest, full)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		default:
			out = append(out, FileEntry{Path: full, Blob: e.Digest})
		}
	}
	return out, nil
}

// ReadTree returns a new index holding exactly the tree's entries at their
// full relative paths (spec §4.5: "the index is cleared first"). It neither
// loads nor saves the persisted index; callers save the result if needed.
func (r *Repo) ReadTree(h object.Hash) (*index.Index, error) {
	entries, err := r.FlattenTree(h)
	if err != nil {
		return nil, err
	}
	ix := index.New()
	for _, e := range entries {
		ix.Set(e.Path, e.Blob)
	}
	return ix, nil
}

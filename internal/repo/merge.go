package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knotvcs/knot/internal/index"
	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/refs"
	"github.com/knotvcs/knot/internal/repoerr"
)

// MergeConflictMessage is the literal text emitted when a merge produces
// conflicts (spec §4.10).
const MergeConflictMessage = "Encountered a merge conflict."

// FindMergeBase computes the lowest common ancestor of h and g by two-
// pointer BFS set intersection (spec §4.10): collect H's ancestor set via
// BFS, then walk G's ancestors in BFS order and return the first one
// already in that set.
func (r *Repo) FindMergeBase(h, g object.Hash) (object.Hash, error) {
	if h == "" || g == "" {
		return "", nil
	}
	if h == g {
		return h, nil
	}

	ancestorsOfH, err := r.ancestorSet(h)
	if err != nil {
		return "", err
	}

	visited := map[object.Hash]bool{}
	queue := []object.Hash{g}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if ancestorsOfH[cur] {
			return cur, nil
		}
		commit, err := object.GetCommit(r.Store, cur)
		if err != nil {
			return "", repoerr.New("find merge base", repoerr.Corrupt, err)
		}
		queue = append(queue, commit.Parents...)
	}
	return "", nil
}

func (r *Repo) ancestorSet(start object.Hash) (map[object.Hash]bool, error) {
	set := map[object.Hash]bool{}
	queue := []object.Hash{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if set[cur] {
			continue
		}
		set[cur] = true
		commit, err := object.GetCommit(r.Store, cur)
		if err != nil {
			return nil, repoerr.New("find merge base", repoerr.Corrupt, err)
		}
		queue = append(queue, commit.Parents...)
	}
	return set, nil
}

// MergeResult reports what Merge did.
type MergeResult struct {
	FastForward  bool
	HasConflicts bool
	MergeCommit  object.Hash // set only on a clean, non-fast-forward merge
}

// Merge merges branchName into the current branch (spec §4.10).
func (r *Repo) Merge(branchName string) (*MergeResult, error) {
	head, err := r.Refs.ReadHead()
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Io, err)
	}
	hCommit, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Io, err)
	}
	gCommit, err := r.Refs.ReadRef("refs/heads/" + branchName)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.UnknownBranch, fmt.Errorf("branch %q: %w", branchName, err))
	}

	base, err := r.FindMergeBase(hCommit, gCommit)
	if err != nil {
		return nil, err
	}

	if base == gCommit {
		return nil, repoerr.New("merge", repoerr.AlreadyUpToDate, fmt.Errorf("already up to date with %q", branchName))
	}

	if base == hCommit {
		return r.fastForwardMerge(head, gCommit)
	}

	return r.threeWayMerge(head, branchName, hCommit, gCommit, base)
}

func (r *Repo) fastForwardMerge(head refs.HEAD, gCommit object.Hash) (*MergeResult, error) {
	if err := r.advanceHead(head, gCommit); err != nil {
		return nil, err
	}
	gObj, err := object.GetCommit(r.Store, gCommit)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Corrupt, err)
	}
	prevIndex, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	newIndex, err := r.ReadTree(gObj.Tree)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Corrupt, err)
	}
	if err := r.CheckoutIndex(newIndex, prevIndex); err != nil {
		return nil, err
	}
	if err := r.SaveIndex(newIndex); err != nil {
		return nil, err
	}
	return &MergeResult{FastForward: true}, nil
}

func (r *Repo) threeWayMerge(head refs.HEAD, branchName string, hCommit, gCommit, base object.Hash) (*MergeResult, error) {
	lObj, err := object.GetCommit(r.Store, base)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Corrupt, err)
	}
	hObj, err := object.GetCommit(r.Store, hCommit)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Corrupt, err)
	}
	gObj, err := object.GetCommit(r.Store, gCommit)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Corrupt, err)
	}

	ml, err := r.flattenToMap(lObj.Tree)
	if err != nil {
		return nil, err
	}
	mh, err := r.flattenToMap(hObj.Tree)
	if err != nil {
		return nil, err
	}
	mg, err := r.flattenToMap(gObj.Tree)
	if err != nil {
		return nil, err
	}

	paths := map[string]bool{}
	for p := range ml {
		paths[p] = true
	}
	for p := range mh {
		paths[p] = true
	}
	for p := range mg {
		paths[p] = true
	}

	newIndex := index.New()
	hasConflicts := false

	for p := range paths {
		l, lok := ml[p]
		h, hok := mh[p]
		g, gok := mg[p]

		action, blob, conflict := resolvePath(l, lok, h, hok, g, gok)
		switch {
		case conflict:
			hasConflicts = true
			conflictBlob, err := r.writeConflictMarkers(p, h, hok, g, gok)
			if err != nil {
				return nil, err
			}
			newIndex.Set(p, conflictBlob)
		case action == actionRemove:
			if err := r.removeWorkingFile(p); err != nil {
				return nil, err
			}
		case action == actionSetDirty:
			newIndex.Set(p, blob)
			if err := r.writeWorkingFile(p, blob); err != nil {
				return nil, err
			}
		case action == actionSetClean:
			newIndex.Set(p, blob)
		}
	}

	if hasConflicts {
		if err := r.SaveIndex(newIndex); err != nil {
			return nil, err
		}
		return &MergeResult{HasConflicts: true}, repoerr.New("merge", repoerr.MergeConflict, errors.New(MergeConflictMessage))
	}

	treeHash, err := r.BuildTree(newIndex)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Io, err)
	}
	currentBranch, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	commit := &object.Commit{
		Tree:      treeHash,
		Parents:   []object.Hash{hCommit, gCommit},
		Author:    r.Identity(),
		Timestamp: now.Unix(),
		TZ:        now.Format("-0700"),
		Message:   fmt.Sprintf("Merged %s into %s.", branchName, currentBranch),
	}
	newCommit, err := object.PutCommit(r.Store, commit)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Io, err)
	}
	if err := r.advanceHead(head, newCommit); err != nil {
		return nil, err
	}
	if err := r.SaveIndex(newIndex); err != nil {
		return nil, err
	}

	return &MergeResult{MergeCommit: newCommit}, nil
}

func (r *Repo) advanceHead(head refs.HEAD, target object.Hash) error {
	if head.IsSymbolic() {
		return r.Refs.WriteRef(head.Symbolic, target)
	}
	return r.Refs.WriteHead(refs.HEAD{Detached: target})
}

func (r *Repo) flattenToMap(tree object.Hash) (map[string]object.Hash, error) {
	entries, err := r.FlattenTree(tree)
	if err != nil {
		return nil, repoerr.New("merge", repoerr.Corrupt, err)
	}
	out := make(map[string]object.Hash, len(entries))
	for _, e := range entries {
		out[e.Path] = e.Blob
	}
	return out, nil
}

type mergeAction int

const (
	actionRemove mergeAction = iota
	actionSetClean
	actionSetDirty
)

// resolvePath applies spec §4.10's three-way resolution table for one path.
// actionSetClean means the resolved content already matches what's on disk
// in the current working tree (no write needed); actionSetDirty means the
// resolved content must be written from the object store.
func resolvePath(l object.Hash, lok bool, h object.Hash, hok bool, g object.Hash, gok bool) (action mergeAction, blob object.Hash, conflict bool) {
	switch {
	case lok && hok && gok:
		switch {
		case h == l && g == l:
			return actionSetClean, l, false
		case h == l && g != l:
			return actionSetDirty, g, false
		case g == l && h != l:
			return actionSetClean, h, false
		case h == g && h != l:
			return actionSetClean, h, false
		default:
			return 0, "", true
		}
	case lok && hok && !gok:
		if h == l {
			return actionRemove, "", false
		}
		return 0, "", true
	case lok && !hok && gok:
		if g == l {
			return actionRemove, "", false
		}
		return 0, "", true
	case lok && !hok && !gok:
		return actionRemove, "", false
	case !lok && hok && gok:
		if h == g {
			return actionSetClean, h, false
		}
		return 0, "", true
	case !lok && hok && !gok:
		return actionSetClean, h, false
	case !lok && !hok && gok:
		return actionSetDirty, g, false
	default: // !lok && !hok && !gok
		return actionRemove, "", false
	}
}

// writeConflictMarkers builds the conflict-marker blob for path (spec
// §4.10), writes it to the object store and the working tree, and returns
// its digest.
func (r *Repo) writeConflictMarkers(path string, h object.Hash, hok bool, g object.Hash, gok bool) (object.Hash, error) {
	var hContent, gContent []byte
	if hok {
		blob, err := object.GetBlob(r.Store, h)
		if err != nil {
			return "", repoerr.New("merge", repoerr.Corrupt, err)
		}
		hContent = blob.Data
	}
	if gok {
		blob, err := object.GetBlob(r.Store, g)
		if err != nil {
			return "", repoerr.New("merge", repoerr.Corrupt, err)
		}
		gContent = blob.Data
	}

	merged := []byte("<<<<<<< HEAD\n")
	merged = append(merged, hContent...)
	merged = append(merged, []byte("=======\n")...)
	merged = append(merged, gContent...)
	merged = append(merged, []byte(">>>>>>>\n")...)

	digest, err := object.PutBlob(r.Store, &object.Blob{Data: merged})
	if err != nil {
		return "", repoerr.New("merge", repoerr.Io, err)
	}
	if err := r.writeWorkingFile(path, digest); err != nil {
		return "", err
	}
	return digest, nil
}

func (r *Repo) writeWorkingFile(path string, blobHash object.Hash) error {
	blob, err := object.GetBlob(r.Store, blobHash)
	if err != nil {
		return repoerr.New("merge", repoerr.Corrupt, err)
	}
	abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return repoerr.New("merge", repoerr.Io, err)
	}
	if err := os.WriteFile(abs, blob.Data, 0o644); err != nil {
		return repoerr.New("merge", repoerr.Io, err)
	}
	return nil
}

func (r *Repo) removeWorkingFile(path string) error {
	abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return repoerr.New("merge", repoerr.Io, err)
	}
	return nil
}

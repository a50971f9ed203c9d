package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repoerr"
)

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	abs := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func openRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r, dir
}

// S1: init+commit.
func TestScenarioInitAndCommit(t *testing.T) {
	r, dir := openRepo(t)
	writeFile(t, dir, "a.txt", "hello\n")

	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	commitHash, err := r.Commit("c1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	commit, err := object.GetCommit(r.Store, commitHash)
	if err != nil {
		t.Fatalf("GetCommit: %v", err)
	}
	tree, err := object.GetTree(r.Store, commit.Tree)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Entries) != 1 || tree.Entries[0].Name != "a.txt" {
		t.Fatalf("tree entries = %+v", tree.Entries)
	}

	wantBlob := object.DigestOf(object.TypeBlob, []byte("hello\n"))
	if tree.Entries[0].Digest != object.HashHex(wantBlob) {
		t.Errorf("a.txt digest = %s, want %s", tree.Entries[0].Digest, object.HashHex(wantBlob))
	}

	head, err := r.Refs.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	if head != commitHash {
		t.Errorf("HEAD = %s, want %s", head, commitHash)
	}
}

// S2: nested tree.
func TestScenarioNestedTree(t *testing.T) {
	r, dir := openRepo(t)
	writeFile(t, dir, "a.txt", "hello\n")
	writeFile(t, dir, "dir/b.txt", "world\n")

	if err := r.Add([]string{"a.txt", "dir/b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	commitHash, err := r.Commit("c1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	commit, _ := object.GetCommit(r.Store, commitHash)
	rootTree, err := object.GetTree(r.Store, commit.Tree)
	if err != nil {
		t.Fatalf("GetTree root: %v", err)
	}

	var subtreeDigest object.Hash
	foundA := false
	for _, e := range rootTree.Entries {
		switch e.Name {
		case "a.txt":
			foundA = e.Kind == object.EntryBlob
		case "dir":
			if e.Kind == object.EntryTree {
				subtreeDigest = e.Digest
			}
		}
	}
	if !foundA {
		t.Fatal("root tree missing a.txt blob entry")
	}
	if subtreeDigest == "" {
		t.Fatal("root tree missing dir subtree entry")
	}

	subtree, err := object.GetTree(r.Store, subtreeDigest)
	if err != nil {
		t.Fatalf("GetTree dir: %v", err)
	}
	if len(subtree.Entries) != 1 || subtree.Entries[0].Name != "b.txt" {
		t.Fatalf("dir entries = %+v", subtree.Entries)
	}
}

// S3: idempotent commit.
func TestScenarioNothingStaged(t *testing.T) {
	r, dir := openRepo(t)
	writeFile(t, dir, "a.txt", "x\n")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("x"); err != nil {
		t.Fatalf("Commit #1: %v", err)
	}
	_, err := r.Commit("x")
	if !isKind(err, repoerr.NothingStaged) {
		t.Fatalf("Commit #2 err = %v, want NothingStaged", err)
	}
}

func TestCommitRejectsEmptyMessage(t *testing.T) {
	r, dir := openRepo(t)
	writeFile(t, dir, "a.txt", "x\n")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := r.Commit("   ")
	if !isKind(err, repoerr.EmptyMessage) {
		t.Fatalf("Commit err = %v, want EmptyMessage", err)
	}
}

func TestUpdateIndexPathSpecError(t *testing.T) {
	r, _ := openRepo(t)
	err := r.UpdateIndex([]string{"missing.txt"})
	if !isKind(err, repoerr.PathSpec) {
		t.Fatalf("UpdateIndex err = %v, want PathSpec", err)
	}
}

func TestBranchCreateAndExists(t *testing.T) {
	r, dir := openRepo(t)
	writeFile(t, dir, "a.txt", "x\n")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	commitHash, err := r.Commit("c1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CreateBranch("feat", commitHash); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	err = r.CreateBranch("feat", commitHash)
	if !isKind(err, repoerr.BranchExists) {
		t.Fatalf("CreateBranch dup err = %v, want BranchExists", err)
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	found := false
	for _, b := range branches {
		if b == "feat" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListBranches = %v, want to contain feat", branches)
	}
}

func isKind(err error, kind repoerr.Kind) bool {
	re, ok := err.(*repoerr.Error)
	return ok && re.Kind == kind
}

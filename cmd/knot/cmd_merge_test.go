package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knotvcs/knot/internal/repo"
)

func TestMergeCmdFastForward(t *testing.T) {
	dir := t.TempDir()
	r, err := repo.Init(dir)
	if err != nil {
		t.Fatalf("repo.Init: %v", err)
	}

	writeCmdTestFile(t, filepath.Join(dir, "a.txt"), []byte("base\n"))
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	baseHash, err := r.Commit("base")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.CreateBranch("feature", baseHash); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	writeCmdTestFile(t, filepath.Join(dir, "b.txt"), []byte("feature work\n"))
	if err := r.Add([]string{"b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("feature work"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Checkout("main"); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}

	restore := chdirForTest(t, dir)
	defer restore()

	var output bytes.Buffer
	mergeCmd := newMergeCmd()
	mergeCmd.SetOut(&output)
	mergeCmd.SetArgs([]string{"feature"})
	if err := mergeCmd.Execute(); err != nil {
		t.Fatalf("merge Execute: %v\noutput:\n%s", err, output.String())
	}
	if !strings.Contains(output.String(), "fast-forward") {
		t.Fatalf("merge output = %q, want to contain %q", output.String(), "fast-forward")
	}
}

func TestMergeCmdConflictReportsMessage(t *testing.T) {
	dir := t.TempDir()
	r, err := repo.Init(dir)
	if err != nil {
		t.Fatalf("repo.Init: %v", err)
	}

	writeCmdTestFile(t, filepath.Join(dir, "a.txt"), []byte("base\n"))
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	baseHash, err := r.Commit("base")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.CreateBranch("feature", baseHash); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	writeCmdTestFile(t, filepath.Join(dir, "a.txt"), []byte("main version\n"))
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("main edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout feature: %v", err)
	}
	writeCmdTestFile(t, filepath.Join(dir, "a.txt"), []byte("feature version\n"))
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("feature edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Checkout("main"); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}

	restore := chdirForTest(t, dir)
	defer restore()

	var output bytes.Buffer
	mergeCmd := newMergeCmd()
	mergeCmd.SetOut(&output)
	mergeCmd.SetArgs([]string{"feature"})
	err = mergeCmd.Execute()
	if err == nil {
		t.Fatal("merge command should fail on conflict")
	}
	if !strings.Contains(output.String(), repo.MergeConflictMessage) {
		t.Fatalf("merge output = %q, want to contain %q", output.String(), repo.MergeConflictMessage)
	}
}

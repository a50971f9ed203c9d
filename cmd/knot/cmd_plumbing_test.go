package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knotvcs/knot/internal/repo"
)

func TestPlumbingHashObjectAndCatFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if _, err := repo.Init(dir); err != nil {
		t.Fatalf("repo.Init: %v", err)
	}
	writeCmdTestFile(t, filepath.Join(dir, "a.txt"), []byte("plumbing\n"))

	restore := chdirForTest(t, dir)
	defer restore()

	var hashOut bytes.Buffer
	hashCmd := newHashObjectCmd()
	hashCmd.SetOut(&hashOut)
	hashCmd.SetArgs([]string{"a.txt"})
	if err := hashCmd.Execute(); err != nil {
		t.Fatalf("hash-object Execute: %v", err)
	}
	digest := strings.TrimSpace(hashOut.String())
	if digest == "" {
		t.Fatal("hash-object printed no digest")
	}

	var catOut bytes.Buffer
	catCmd := newCatFileCmd()
	catCmd.SetOut(&catOut)
	catCmd.SetArgs([]string{digest})
	if err := catCmd.Execute(); err != nil {
		t.Fatalf("cat-file Execute: %v", err)
	}
	if catOut.String() != "plumbing\n" {
		t.Fatalf("cat-file output = %q, want %q", catOut.String(), "plumbing\n")
	}
}

func TestPlumbingWriteTreeAndCommitTree(t *testing.T) {
	dir := t.TempDir()
	r, err := repo.Init(dir)
	if err != nil {
		t.Fatalf("repo.Init: %v", err)
	}
	writeCmdTestFile(t, filepath.Join(dir, "a.txt"), []byte("content\n"))
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	restore := chdirForTest(t, dir)
	defer restore()

	var treeOut bytes.Buffer
	writeTreeCmd := newWriteTreeCmd()
	writeTreeCmd.SetOut(&treeOut)
	writeTreeCmd.SetArgs([]string{})
	if err := writeTreeCmd.Execute(); err != nil {
		t.Fatalf("write-tree Execute: %v", err)
	}
	treeDigest := strings.TrimSpace(treeOut.String())
	if treeDigest == "" {
		t.Fatal("write-tree printed no digest")
	}

	var commitOut bytes.Buffer
	commitTreeCmd := newCommitTreeCmd()
	commitTreeCmd.SetOut(&commitOut)
	commitTreeCmd.SetArgs([]string{treeDigest, "-m", "plumbing commit"})
	if err := commitTreeCmd.Execute(); err != nil {
		t.Fatalf("commit-tree Execute: %v", err)
	}
	if strings.TrimSpace(commitOut.String()) == "" {
		t.Fatal("commit-tree printed no digest")
	}
}

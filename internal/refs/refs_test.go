package refs

import (
	"testing"

	"github.com/knotvcs/knot/internal/object"
)

const commitA = object.Hash("1111111111111111111111111111111111111111")
const commitB = object.Hash("2222222222222222222222222222222222222222")

func TestHeadSymbolicRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.WriteHead(HEAD{Symbolic: "refs/heads/main"}); err != nil {
		t.Fatalf("WriteHead: %v", err)
	}
	h, err := s.ReadHead()
	if err != nil {
		t.Fatalf("ReadHead: %v", err)
	}
	if !h.IsSymbolic() || h.Symbolic != "refs/heads/main" {
		t.Fatalf("ReadHead = %+v", h)
	}
}

func TestHeadDetachedRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.WriteHead(HEAD{Detached: commitA}); err != nil {
		t.Fatalf("WriteHead: %v", err)
	}
	h, err := s.ReadHead()
	if err != nil {
		t.Fatalf("ReadHead: %v", err)
	}
	if h.IsSymbolic() || h.Detached != commitA {
		t.Fatalf("ReadHead = %+v", h)
	}
}

func TestResolveHeadOnFreshRepoReturnsEmpty(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.WriteHead(HEAD{Symbolic: "refs/heads/main"}); err != nil {
		t.Fatalf("WriteHead: %v", err)
	}
	hash, err := s.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	if hash != "" {
		t.Errorf("ResolveHead on fresh repo = %q, want empty", hash)
	}
}

func TestResolveHeadFollowsSymbolicRef(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.WriteHead(HEAD{Symbolic: "refs/heads/main"}); err != nil {
		t.Fatalf("WriteHead: %v", err)
	}
	if err := s.WriteRef("refs/heads/main", commitA); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	hash, err := s.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	if hash != commitA {
		t.Errorf("ResolveHead = %q, want %q", hash, commitA)
	}
}

func TestRefExistsAndDelete(t *testing.T) {
	s := NewStore(t.TempDir())
	if s.RefExists("refs/heads/feature") {
		t.Fatal("RefExists should be false before creation")
	}
	if err := s.WriteRef("refs/heads/feature", commitA); err != nil {
		t.Fatalf("WriteRef: %v", err)
	}
	if !s.RefExists("refs/heads/feature") {
		t.Fatal("RefExists should be true after creation")
	}
	if err := s.DeleteRef("refs/heads/feature"); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if s.RefExists("refs/heads/feature") {
		t.Fatal("RefExists should be false after deletion")
	}
}

func TestReflogRecordsUpdates(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.WriteRef("refs/heads/main", commitA); err != nil {
		t.Fatalf("WriteRef #1: %v", err)
	}
	if err := s.WriteRef("refs/heads/main", commitB); err != nil {
		t.Fatalf("WriteRef #2: %v", err)
	}

	entries, err := s.ReadReflog("refs/heads/main", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].New != commitB || entries[0].Old != commitA {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].New != commitA {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

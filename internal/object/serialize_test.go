package object

import (
	"bytes"
	"testing"
)

func TestSerializeBlobRoundTrip(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	typ, data, err := Serialize(orig)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if typ != TypeBlob {
		t.Fatalf("type = %q, want blob", typ)
	}
	parsed, err := Parse(typ, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := parsed.(*Blob)
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("blob round-trip mismatch: got %q, want %q", got.Data, orig.Data)
	}
}

func TestSerializeTreeSortsEntries(t *testing.T) {
	unsorted := &Tree{Entries: []TreeEntry{
		{Kind: EntryBlob, Digest: "bb", Name: "zebra.go"},
		{Kind: EntryBlob, Digest: "aa", Name: "apple.go"},
		{Kind: EntryTree, Digest: "cc", Name: "mid"},
	}}
	sorted := &Tree{Entries: []TreeEntry{
		{Kind: EntryBlob, Digest: "aa", Name: "apple.go"},
		{Kind: EntryTree, Digest: "cc", Name: "mid"},
		{Kind: EntryBlob, Digest: "bb", Name: "zebra.go"},
	}}

	_, d1, err := Serialize(unsorted)
	if err != nil {
		t.Fatalf("Serialize unsorted: %v", err)
	}
	_, d2, err := Serialize(sorted)
	if err != nil {
		t.Fatalf("Serialize sorted: %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Errorf("permuted tree entries produced different bytes:\n%q\n%q", d1, d2)
	}
}

func TestParseTreeRejectsSlashInName(t *testing.T) {
	_, err := parseTree([]byte("blob deadbeef a/b\n"))
	if err == nil {
		t.Fatal("expected error for entry name containing '/'")
	}
}

func TestSerializeCommitRoundTrip(t *testing.T) {
	orig := &Commit{
		Tree:      "1111111111111111111111111111111111111111",
		Parents:   []Hash{"2222222222222222222222222222222222222222"},
		Author:    "Ada Lovelace <ada@example.com>",
		Timestamp: 1700000000,
		TZ:        "+0000",
		Message:   "first commit\n",
	}
	typ, data, err := Serialize(orig)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	parsed, err := Parse(typ, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := parsed.(*Commit)
	if got.Tree != orig.Tree || got.Author != orig.Author || got.Message != orig.Message {
		t.Errorf("commit round-trip mismatch: got %+v, want %+v", got, orig)
	}
	if len(got.Parents) != 1 || got.Parents[0] != orig.Parents[0] {
		t.Errorf("parents mismatch: got %v, want %v", got.Parents, orig.Parents)
	}
	if got.Signature != "" {
		t.Errorf("unsigned commit should round-trip with empty signature, got %q", got.Signature)
	}
}

func TestSerializeCommitWithSignatureRoundTrip(t *testing.T) {
	orig := &Commit{
		Tree:      "1111111111111111111111111111111111111111",
		Author:    "Ada Lovelace <ada@example.com>",
		Timestamp: 1700000000,
		TZ:        "+0000",
		Message:   "signed\n",
		Signature: "ssh-ed25519:cHVia2V5:c2ln",
	}
	_, data, err := Serialize(orig)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	parsed, err := Parse(TypeCommit, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := parsed.(*Commit)
	if got.Signature != orig.Signature {
		t.Errorf("signature: got %q, want %q", got.Signature, orig.Signature)
	}
	if got.Message != orig.Message {
		t.Errorf("message: got %q, want %q", got.Message, orig.Message)
	}
}

func TestSerializeCommitMultilineMessageNotMistakenForSignature(t *testing.T) {
	orig := &Commit{
		Tree:      "1111111111111111111111111111111111111111",
		Author:    "A <a@example.com>",
		Timestamp: 1,
		TZ:        "+0000",
		Message:   "subject\n\nsignature of intent: not a trailer\nmore text",
	}
	_, data, err := Serialize(orig)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	parsed, err := Parse(TypeCommit, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := parsed.(*Commit)
	if got.Message != orig.Message {
		t.Errorf("message mangled: got %q, want %q", got.Message, orig.Message)
	}
	if got.Signature != "" {
		t.Errorf("expected no signature extracted, got %q", got.Signature)
	}
}

func TestDigestOfDependsOnlyOnSerialization(t *testing.T) {
	a := &Blob{Data: []byte("same")}
	b := &Blob{Data: []byte("same")}
	_, da, _ := Serialize(a)
	_, db, _ := Serialize(b)
	if HashHex(DigestOf(TypeBlob, da)) != HashHex(DigestOf(TypeBlob, db)) {
		t.Error("structurally equal blobs hashed differently")
	}
}

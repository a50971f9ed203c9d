// Package object defines the content-addressed object model: blobs, trees,
// and commits, their canonical serialization, and a compressed on-disk
// store keyed by digest.
package object

// Digest is the raw 20-byte SHA-1 content address of a serialized object.
type Digest [20]byte

// Hash is the canonical 40-character lowercase hex encoding of a Digest.
type Hash string

// Type identifies the kind of object stored in the database.
type Type string

const (
	TypeBlob   Type = "blob"
	TypeTree   Type = "tree"
	TypeCommit Type = "commit"
)

// EntryKind distinguishes the two possible children of a Tree.
type EntryKind string

const (
	EntryBlob EntryKind = "blob"
	EntryTree EntryKind = "tree"
)

// Blob holds opaque file content. It carries no interpretation of its
// bytes — encoding, line endings, and executability are outside this
// object model (spec's file-mode bookkeeping is an external collaborator).
type Blob struct {
	Data []byte
}

// TreeEntry is one named child of a Tree: either a Blob or a nested Tree.
type TreeEntry struct {
	Kind   EntryKind
	Digest Hash
	Name   string
}

// Tree is an immutable directory snapshot: a list of named entries. Entries
// must be sorted by Name (byte-wise ascending) before serialization so that
// two structurally equal trees always hash identically.
type Tree struct {
	Entries []TreeEntry
}

// Commit is an immutable node in the history DAG. Parents is ordered: zero
// entries for a root commit, one for a normal commit, two for a merge.
type Commit struct {
	Tree      Hash
	Parents   []Hash
	Author    string
	Timestamp int64
	TZ        string
	Committer string
	// CommitterTimestamp/CommitterTZ default to Author's when empty, since
	// this is a single-actor client (no separate "apply on behalf of" flow).
	CommitterTimestamp int64
	CommitterTZ        string
	Message            string
	// Signature, when non-empty, is an opaque trailer of the form
	// "<algo>:<base64-pubkey>:<base64-sig>" produced by a CommitSigner over
	// SigningPayload(commit). Unsigned commits leave this empty.
	Signature string
}

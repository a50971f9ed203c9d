package object

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned by Store.Get when no object exists for a digest.
var ErrNotFound = fmt.Errorf("object: not found")

// Backend is the interface Store and storetest.MemoryStore both satisfy,
// letting internal/repo operate against either a filesystem-backed or an
// in-memory object database.
type Backend interface {
	Has(h Hash) bool
	Put(obj any) (Hash, error)
	PutRaw(typ Type, payload []byte) (Hash, error)
	Get(h Hash) (Type, []byte, error)
	GetParsed(h Hash, want Type) (any, error)
}

// Store is a content-addressed object database rooted at a directory, using
// a 2-character fan-out layout: objects/<hex[0:2]>/<hex[2:]>. Object
// payloads are compressed with zstd before being written to disk; Get
// transparently decompresses.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root. The objects/ subdirectory is
// created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectPath(h Hash) string {
	str := string(h)
	return filepath.Join(s.root, "objects", str[:2], str[2:])
}

// Has reports whether an object with the given hash is already stored.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores obj and returns its content digest. Put is idempotent: if an
// object already exists at the computed digest's path, the write is
// skipped and the digest is still returned.
func (s *Store) Put(obj any) (Hash, error) {
	typ, payload, err := Serialize(obj)
	if err != nil {
		return "", err
	}
	return s.PutRaw(typ, payload)
}

// PutRaw stores a pre-serialized payload of the given type under its
// content digest, as Put does.
func (s *Store) PutRaw(typ Type, payload []byte) (Hash, error) {
	digest := DigestOf(typ, payload)
	h := HashHex(digest)

	if s.Has(h) {
		return h, nil
	}

	envelope := append(envelopeHeader(typ, len(payload)), payload...)
	compressed, err := compress(envelope)
	if err != nil {
		return "", fmt.Errorf("object: compress %s: %w", h, err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object: tmpfile for %s: %w", h, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object: write %s: %w", h, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object: close %s: %w", h, err)
	}
	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object: rename %s: %w", h, err)
	}
	return h, nil
}

// Get retrieves and decompresses the raw envelope bytes for h (the
// canonical "type size\0payload" form) and parses out its payload.
func (s *Store) Get(h Hash) (Type, []byte, error) {
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object: get %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object: get %s: %w", h, err)
	}

	envelope, err := decompress(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object: decompress %s: %w", h, err)
	}

	nul := bytes.IndexByte(envelope, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("object: get %s: envelope missing NUL separator", h)
	}
	header := string(envelope[:nul])
	payload := envelope[nul+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object: get %s: malformed header %q", h, header)
	}
	size, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object: get %s: malformed size %q: %w", h, parts[1], err)
	}
	if size != len(payload) {
		return "", nil, fmt.Errorf("object: get %s: length mismatch (header=%d, actual=%d)", h, size, len(payload))
	}
	return Type(parts[0]), payload, nil
}

// GetParsed retrieves and parses an object, checking its type matches want.
func (s *Store) GetParsed(h Hash, want Type) (any, error) {
	typ, payload, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	if typ != want {
		return nil, fmt.Errorf("object: %s: type mismatch: got %q, want %q", h, typ, want)
	}
	return Parse(typ, payload)
}

// PutBlob, PutTree, and PutCommit, along with their Get counterparts below,
// are typed convenience wrappers over Backend so callers in internal/repo
// don't need type assertions at every call site.

func PutBlob(b Backend, blob *Blob) (Hash, error)  { return b.Put(blob) }
func PutTree(b Backend, tree *Tree) (Hash, error)  { return b.Put(tree) }
func PutCommit(b Backend, c *Commit) (Hash, error) { return b.Put(c) }

func GetBlob(b Backend, h Hash) (*Blob, error) {
	v, err := b.GetParsed(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return v.(*Blob), nil
}

func GetTree(b Backend, h Hash) (*Tree, error) {
	v, err := b.GetParsed(h, TypeTree)
	if err != nil {
		return nil, err
	}
	return v.(*Tree), nil
}

func GetCommit(b Backend, h Hash) (*Commit, error) {
	v, err := b.GetParsed(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return v.(*Commit), nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

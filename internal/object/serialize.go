package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func envelopeHeader(typ Type, size int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", typ, size))
}

// Serialize produces the canonical payload bytes for obj (without the
// envelope header — callers that need the full "type size\0payload" form
// use Store.Put, which applies the envelope once).
func Serialize(obj any) (Type, []byte, error) {
	switch v := obj.(type) {
	case *Blob:
		return TypeBlob, serializeBlob(v), nil
	case *Tree:
		return TypeTree, serializeTree(v), nil
	case *Commit:
		return TypeCommit, serializeCommit(v), nil
	default:
		return "", nil, fmt.Errorf("object: serialize: unsupported type %T", obj)
	}
}

// Parse decodes payload bytes of the given type back into a Blob, Tree, or
// Commit.
func Parse(typ Type, payload []byte) (any, error) {
	switch typ {
	case TypeBlob:
		return parseBlob(payload), nil
	case TypeTree:
		return parseTree(payload)
	case TypeCommit:
		return parseCommit(payload)
	default:
		return nil, fmt.Errorf("object: parse: unknown type %q", typ)
	}
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

func serializeBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

func parseBlob(data []byte) *Blob {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// SortEntries orders tree entries by Name, byte-wise ascending. This is
// the one degree of freedom callers have when building a Tree; Serialize
// always re-sorts so permuted input yields identical bytes (spec §8
// invariant 6).
func SortEntries(entries []TreeEntry) []TreeEntry {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

func serializeTree(t *Tree) []byte {
	sorted := SortEntries(t.Entries)
	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %s %s\n", e.Kind, e.Digest, e.Name)
	}
	return buf.Bytes()
}

func parseTree(data []byte) (*Tree, error) {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return &Tree{}, nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]TreeEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("object: parse tree: malformed entry %q", line)
		}
		kind := EntryKind(parts[0])
		if kind != EntryBlob && kind != EntryTree {
			return nil, fmt.Errorf("object: parse tree: unknown entry kind %q", parts[0])
		}
		if strings.Contains(parts[2], "/") {
			return nil, fmt.Errorf("object: parse tree: entry name %q contains '/'", parts[2])
		}
		entries = append(entries, TreeEntry{Kind: kind, Digest: Hash(parts[1]), Name: parts[2]})
	}
	return &Tree{Entries: entries}, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

func serializeCommit(c *Commit) []byte {
	return append(append([]byte{}, SigningPayload(c)...), signatureTrailer(c)...)
}

// SigningPayload is the canonical commit byte sequence minus any signature
// trailer — what a CommitSigner signs and what verification re-derives.
func SigningPayload(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	committer := c.Committer
	if committer == "" {
		committer = c.Author
	}
	committerTS := c.CommitterTimestamp
	committerTZ := c.CommitterTZ
	if committerTZ == "" {
		committerTS, committerTZ = c.Timestamp, c.TZ
	}
	fmt.Fprintf(&buf, "author %s %d %s\n", c.Author, c.Timestamp, c.TZ)
	fmt.Fprintf(&buf, "committer %s %d %s\n", committer, committerTS, committerTZ)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

func signatureTrailer(c *Commit) []byte {
	if strings.TrimSpace(c.Signature) == "" {
		return nil
	}
	return []byte("\nsignature " + c.Signature)
}

func parseCommit(data []byte) (*Commit, error) {
	text := string(data)
	sigLine, body := splitSignatureTrailer(text)

	idx := strings.Index(body, "\n\n")
	if idx < 0 {
		return nil, fmt.Errorf("object: parse commit: missing header/message separator")
	}
	header := body[:idx]
	message := body[idx+2:]

	c := &Commit{Message: message, Signature: sigLine}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("object: parse commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.Tree = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			name, ts, tz, err := parseIdentityLine(val)
			if err != nil {
				return nil, fmt.Errorf("object: parse commit: author: %w", err)
			}
			c.Author, c.Timestamp, c.TZ = name, ts, tz
		case "committer":
			name, ts, tz, err := parseIdentityLine(val)
			if err != nil {
				return nil, fmt.Errorf("object: parse commit: committer: %w", err)
			}
			c.Committer, c.CommitterTimestamp, c.CommitterTZ = name, ts, tz
		default:
			return nil, fmt.Errorf("object: parse commit: unknown header key %q", key)
		}
	}
	return c, nil
}

// splitSignatureTrailer peels a trailing "\nsignature <value>" line (if
// present) off the end of a commit's serialized bytes, returning the
// signature value and the remaining header+message text.
func splitSignatureTrailer(text string) (sig string, rest string) {
	const marker = "\nsignature "
	idx := strings.LastIndex(text, marker)
	if idx < 0 {
		return "", text
	}
	candidate := text[idx+len(marker):]
	if strings.Contains(candidate, "\n") {
		// A "\nsignature " occurring inside the free-form message body is
		// not a trailer; only a trailing, newline-free tail counts.
		return "", text
	}
	return candidate, text[:idx]
}

func parseIdentityLine(val string) (name string, ts int64, tz string, err error) {
	// "<name/email> <unix-seconds> <+-HHMM>"
	lastSpace := strings.LastIndex(val, " ")
	if lastSpace < 0 {
		return "", 0, "", fmt.Errorf("malformed identity %q", val)
	}
	tz = val[lastSpace+1:]
	rest := val[:lastSpace]
	secondSpace := strings.LastIndex(rest, " ")
	if secondSpace < 0 {
		return "", 0, "", fmt.Errorf("malformed identity %q", val)
	}
	name = rest[:secondSpace]
	ts, err = strconv.ParseInt(rest[secondSpace+1:], 10, 64)
	if err != nil {
		return "", 0, "", fmt.Errorf("malformed timestamp in identity %q: %w", val, err)
	}
	return name, ts, tz, nil
}

package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashHex returns the canonical lowercase hex form of a Digest.
func HashHex(d Digest) Hash {
	return Hash(hex.EncodeToString(d[:]))
}

// ParseHash decodes a canonical 40-character hex string back into a Digest.
func ParseHash(h Hash) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return d, err
	}
	if len(raw) != len(d) {
		return d, errDigestLength(len(raw))
	}
	copy(d[:], raw)
	return d, nil
}

// DigestBytes computes the raw SHA-1 digest of data.
func DigestBytes(data []byte) Digest {
	sum := sha1.Sum(data)
	return Digest(sum)
}

// DigestOf computes the content-address of an object's canonical envelope:
// sha1("<type> <decimal-size>\0<payload>").
func DigestOf(typ Type, payload []byte) Digest {
	h := sha1.New()
	h.Write(envelopeHeader(typ, len(payload)))
	h.Write(payload)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func errDigestLength(n int) error {
	return fmt.Errorf("object: hash must decode to 20 bytes, got %d", n)
}

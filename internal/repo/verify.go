package repo

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/repoerr"
	"golang.org/x/crypto/ssh"
)

// VerifyResult reports the outcome of verifying a signed commit.
type VerifyResult struct {
	Signed    bool
	Valid     bool
	PublicKey string // fingerprint-friendly base64 public key blob
}

// Verify checks a commit's SSH signature trailer, if present, against its
// canonical signing payload (the `verify` porcelain verb).
func (r *Repo) Verify(h object.Hash) (*VerifyResult, error) {
	commit, err := object.GetCommit(r.Store, h)
	if err != nil {
		return nil, repoerr.New("verify", repoerr.NotFound, err)
	}
	if commit.Signature == "" {
		return &VerifyResult{Signed: false}, nil
	}

	parts := strings.SplitN(commit.Signature, ":", 3)
	if len(parts) != 3 {
		return nil, repoerr.New("verify", repoerr.Corrupt, fmt.Errorf("unrecognized signature format"))
	}
	format, pubB64, sigB64 := parts[0], parts[1], parts[2]

	pubBytes, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return nil, repoerr.New("verify", repoerr.Corrupt, fmt.Errorf("decode public key: %w", err))
	}
	sigBytes, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return nil, repoerr.New("verify", repoerr.Corrupt, fmt.Errorf("decode signature: %w", err))
	}

	pubKey, err := ssh.ParsePublicKey(pubBytes)
	if err != nil {
		return nil, repoerr.New("verify", repoerr.Corrupt, fmt.Errorf("parse public key: %w", err))
	}

	payload := object.SigningPayload(commit)
	sig := &ssh.Signature{Format: format, Blob: sigBytes}
	valid := pubKey.Verify(payload, sig) == nil

	return &VerifyResult{Signed: true, Valid: valid, PublicKey: pubB64}, nil
}

package repo

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// defaultSigningKeyNames are tried, in order, under ~/.ssh when neither an
// explicit path nor KNOT_SIGNING_KEY names a key.
var defaultSigningKeyNames = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// SSHCommitSigner loads an SSH private key (see resolveSigningKeyPath for the
// precedence used to find one) and returns a CommitSigner that signs with
// it. The resulting signature trailer has the form
// "<algo>:<base64-pubkey>:<base64-sig>" (object.Commit.Signature).
func SSHCommitSigner(keyPath string) (CommitSigner, string, error) {
	resolved, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolved, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolved, err)
	}

	pub := signer.PublicKey()
	pubB64 := base64.StdEncoding.EncodeToString(pub.Marshal())

	commitSigner := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s", sig.Format, pubB64, sigB64), nil
	}
	return commitSigner, resolved, nil
}

// resolveSigningKeyPath picks the private key to sign with: an explicit
// path wins, then the KNOT_SIGNING_KEY environment variable, then the first
// existing file among defaultSigningKeyNames under ~/.ssh.
func resolveSigningKeyPath(explicit string) (string, error) {
	if candidate := strings.TrimSpace(explicit); candidate != "" {
		return expandUserPath(candidate)
	}
	if candidate := strings.TrimSpace(os.Getenv("KNOT_SIGNING_KEY")); candidate != "" {
		return expandUserPath(candidate)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}

	var tried []string
	for _, name := range defaultSigningKeyNames {
		candidate := filepath.Join(home, ".ssh", name)
		tried = append(tried, candidate)
		st, statErr := os.Stat(candidate)
		if statErr == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no signing key given, KNOT_SIGNING_KEY unset, and none of %s exist", strings.Join(tried, ", "))
}

// expandUserPath resolves a leading "~" segment against the user's home
// directory and returns an absolute path.
func expandUserPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		rest := strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}

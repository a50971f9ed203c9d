package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/knotvcs/knot/internal/object"
	"github.com/knotvcs/knot/internal/refs"
	"github.com/knotvcs/knot/internal/repoerr"
)

// CommitSigner signs a commit's canonical signing payload, returning the
// opaque trailer string to store in Commit.Signature.
type CommitSigner func(payload []byte) (string, error)

// Identity resolves the author identity used for new commits (spec §9:
// "sourced from environment or a placeholder"). SPEC_FULL.md fixes the
// fallback literal and the precedence: AUTHOR_NAME/AUTHOR_EMAIL env vars
// override .git/config.toml's [author] table, which overrides the default.
func (r *Repo) Identity() string {
	name := strings.TrimSpace(envOr("AUTHOR_NAME", ""))
	email := strings.TrimSpace(envOr("AUTHOR_EMAIL", ""))
	if name != "" || email != "" {
		return formatIdentity(name, email)
	}

	cfg, err := r.ReadConfig()
	if err == nil && (cfg.Author.Name != "" || cfg.Author.Email != "") {
		return formatIdentity(cfg.Author.Name, cfg.Author.Email)
	}

	return "knot <knot@localhost>"
}

func formatIdentity(name, email string) string {
	if name == "" {
		name = "knot"
	}
	if email == "" {
		email = "knot@localhost"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Commit creates a commit from the current index (spec §4.8).
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.CommitWithSigner(message, nil)
}

// CommitWithSigner is Commit, additionally signing the commit when signer is
// non-nil.
func (r *Repo) CommitWithSigner(message string, signer CommitSigner) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", repoerr.New("commit", repoerr.EmptyMessage, fmt.Errorf("commit message is empty"))
	}

	ix, err := r.LoadIndex()
	if err != nil {
		return "", err
	}

	treeHash, err := r.BuildTree(ix)
	if err != nil {
		return "", repoerr.New("commit", repoerr.Io, err)
	}

	parentHash, err := r.Refs.ResolveHead()
	if err != nil {
		return "", repoerr.New("commit", repoerr.Io, err)
	}

	if parentHash != "" {
		parentCommit, err := object.GetCommit(r.Store, parentHash)
		if err != nil {
			return "", repoerr.New("commit", repoerr.Corrupt, err)
		}
		if parentCommit.Tree == treeHash {
			return "", repoerr.New("commit", repoerr.NothingStaged, fmt.Errorf("nothing staged since %s", parentHash))
		}
	}

	var parents []object.Hash
	if parentHash != "" {
		parents = []object.Hash{parentHash}
	}

	identity := r.Identity()
	now := time.Now()
	commit := &object.Commit{
		Tree:      treeHash,
		Parents:   parents,
		Author:    identity,
		Timestamp: now.Unix(),
		TZ:        now.Format("-0700"),
		Message:   message,
	}

	if signer != nil {
		payload := object.SigningPayload(commit)
		sig, err := signer(payload)
		if err != nil {
			return "", repoerr.New("commit", repoerr.Io, fmt.Errorf("sign commit: %w", err))
		}
		commit.Signature = sig
	}

	newCommit, err := object.PutCommit(r.Store, commit)
	if err != nil {
		return "", repoerr.New("commit", repoerr.Io, err)
	}

	head, err := r.Refs.ReadHead()
	if err != nil {
		return "", repoerr.New("commit", repoerr.Io, err)
	}
	if head.IsSymbolic() {
		if err := r.Refs.WriteRef(head.Symbolic, newCommit); err != nil {
			return "", repoerr.New("commit", repoerr.Io, err)
		}
	} else {
		if err := r.Refs.WriteHead(refs.HEAD{Detached: newCommit}); err != nil {
			return "", repoerr.New("commit", repoerr.Io, err)
		}
	}

	return newCommit, nil
}

// CommitTree is the commit-tree plumbing verb: build a commit object
// directly from a tree digest and explicit parents, without consulting the
// index or HEAD.
func (r *Repo) CommitTree(tree object.Hash, parents []object.Hash, message string) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", repoerr.New("commit-tree", repoerr.EmptyMessage, fmt.Errorf("commit message is empty"))
	}
	now := time.Now()
	commit := &object.Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    r.Identity(),
		Timestamp: now.Unix(),
		TZ:        now.Format("-0700"),
		Message:   message,
	}
	h, err := object.PutCommit(r.Store, commit)
	if err != nil {
		return "", repoerr.New("commit-tree", repoerr.Io, err)
	}
	return h, nil
}

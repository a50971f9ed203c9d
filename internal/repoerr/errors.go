// Package repoerr defines the closed set of error kinds spec.md §7
// enumerates, so that cmd/knot and tests can branch on *what kind* of
// failure occurred rather than on error string matching.
package repoerr

import "fmt"

// Kind is a member of the closed error-kind set from spec.md §7.
type Kind string

const (
	AlreadyInitialized Kind = "already_initialized"
	NotARepository     Kind = "not_a_repository"
	NotFound           Kind = "not_found"
	PathSpec           Kind = "pathspec"
	EmptyMessage       Kind = "empty_message"
	NothingStaged      Kind = "nothing_staged"
	BranchExists       Kind = "branch_exists"
	UnknownBranch      Kind = "unknown_branch"
	UntrackedOverwrite Kind = "untracked_overwrite"
	MergeConflict      Kind = "merge_conflict"
	AlreadyUpToDate    Kind = "already_up_to_date"
	Corrupt            Kind = "corrupt"
	Io                 Kind = "io"
)

// UntrackedOverwriteMessage is the exact user-visible text spec.md §4.6
// fixes for the untracked-file-in-the-way guard.
const UntrackedOverwriteMessage = "There is an untracked file in the way; delete it, or add and commit it first."

// Error wraps an underlying cause with a Kind from the closed set above.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, so callers can write
// errors.Is(err, repoerr.NothingStaged) directly against a Kind value.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Error lets a bare Kind satisfy the error interface, so repoerr.NotFound
// itself works as an errors.Is target without constructing an *Error.
func (k Kind) Error() string { return string(k) }

// New constructs an *Error for op/kind, optionally wrapping cause.
func New(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

package repo

import "github.com/knotvcs/knot/internal/refs"

// Reflog returns up to limit reflog entries (0 for all) for the given ref
// name, newest first. Exposed for the supplemental `knot reflog` verb.
func (r *Repo) Reflog(refName string, limit int) ([]refs.ReflogEntry, error) {
	return r.Refs.ReadReflog(refName, limit)
}

// HeadReflog is Reflog for whichever ref HEAD currently points at.
func (r *Repo) HeadReflog(limit int) ([]refs.ReflogEntry, error) {
	head, err := r.Refs.ReadHead()
	if err != nil {
		return nil, err
	}
	if !head.IsSymbolic() {
		return nil, nil
	}
	return r.Reflog(head.Symbolic, limit)
}

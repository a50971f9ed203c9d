package refs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knotvcs/knot/internal/object"
)

const zeroHash = object.Hash("0000000000000000000000000000000000000000")

// ReflogEntry records one ref update, newest entries returned first by
// ReadReflog.
type ReflogEntry struct {
	Ref       string
	Old       object.Hash
	New       object.Hash
	Timestamp int64
}

func (s *Store) reflogPath(name string) string {
	return filepath.Join(s.gitDir, "logs", filepath.FromSlash(name))
}

func (s *Store) appendReflog(name string, old, newHash object.Hash) error {
	if strings.TrimSpace(string(old)) == "" {
		old = zeroHash
	}
	if strings.TrimSpace(string(newHash)) == "" {
		newHash = zeroHash
	}

	path := s.reflogPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %d\n", old, newHash, time.Now().Unix())
	_, err = f.WriteString(line)
	return err
}

// ReadReflog returns up to limit entries for name (or all, if limit <= 0),
// most recent first. A ref with no reflog yields an empty slice.
func (s *Store) ReadReflog(name string, limit int) ([]ReflogEntry, error) {
	f, err := os.Open(s.reflogPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ReflogEntry{Ref: name, Old: object.Hash(parts[0]), New: object.Hash(parts[1]), Timestamp: ts})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Package whitelist provides the externally maintained list of accepted
// canonical observation strings. The list is configuration data: it is loaded
// once at startup into an in-memory store (optionally mirrored to Redis) and
// never re-read per validation call.
package whitelist

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	pstrings "cycletracker/pkg/platform/strings"
)

// Store exposes whitelist membership and enumeration. List preserves the
// file's line order, which is the order the entry form presents choices in.
type Store interface {
	IsValid(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

//go:embed valid-observations.txt
var defaultList string

// FileStore keeps the whitelist in process memory. Immutable after load, so
// reads need no locking.
type FileStore struct {
	ordered []string
	members map[string]struct{}
}

// NewFileStore loads a newline-delimited whitelist file. Lines are trimmed,
// blank lines and duplicates dropped, matching the historical file format.
func NewFileStore(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open whitelist: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read whitelist: %w", err)
	}
	return newFileStore(pstrings.DedupeAndTrim(lines)), nil
}

// Default returns a store backed by the whitelist shipped with the binary.
func Default() *FileStore {
	return newFileStore(pstrings.DedupeAndTrim(strings.Split(defaultList, "\n")))
}

func newFileStore(lines []string) *FileStore {
	members := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		members[line] = struct{}{}
	}
	return &FileStore{ordered: lines, members: members}
}

func (s *FileStore) IsValid(_ context.Context, code string) (bool, error) {
	_, ok := s.members[code]
	return ok, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out, nil
}

// Len reports the number of whitelist entries.
func (s *FileStore) Len() int { return len(s.ordered) }

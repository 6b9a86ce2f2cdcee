package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// FileStore persists one JSON file per query hash under Dir, each
// holding the full snapshot history for that query. Reads and writes
// are whole-file, the same way cmd/config.go round-trips its
// configuration file. Append adds one snapshot per run and nothing
// prunes a file, so a query's stored history grows with every run;
// History returns at most limit snapshots, most recent first.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, creating it if
// necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("baseline: creating store directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(queryHash string) string {
	return filepath.Join(s.Dir, queryHash+".json")
}

func (s *FileStore) Append(ctx context.Context, snapshot model.BaselineSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll(snapshot.QueryHash)
	if err != nil {
		return err
	}
	existing = append(existing, snapshot)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("baseline: marshaling snapshot history: %w", err)
	}
	if err := os.WriteFile(s.path(snapshot.QueryHash), data, 0600); err != nil {
		return fmt.Errorf("baseline: writing snapshot history: %w", err)
	}
	return nil
}

func (s *FileStore) History(ctx context.Context, queryHash string, limit int) ([]model.BaselineSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll(queryHash)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp > all[j].Timestamp })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *FileStore) readAll(queryHash string) ([]model.BaselineSnapshot, error) {
	data, err := os.ReadFile(s.path(queryHash))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("baseline: reading snapshot history: %w", err)
	}
	var snapshots []model.BaselineSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("baseline: parsing snapshot history: %w", err)
	}
	return snapshots, nil
}

// Package baseline persists per-query diagnostic snapshots and compares
// a new run against its history to detect regressions, improvements,
// and benign data growth.
package baseline

import (
	"context"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// Store is the persistence port: append-only per-query-hash history,
// read back most-recent-first up to a limit.
type Store interface {
	Append(ctx context.Context, snapshot model.BaselineSnapshot) error
	History(ctx context.Context, queryHash string, limit int) ([]model.BaselineSnapshot, error)
}

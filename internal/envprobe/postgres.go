package envprobe

import (
	"context"
	"database/sql"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// Postgres collects EnvironmentContext from pg_settings and
// pg_stat_database, mapping Postgres's shared_buffers/block-hit-ratio
// concepts onto the same fields MySQL's buffer pool occupies.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Collect(ctx context.Context, database string) (model.EnvironmentContext, error) {
	env := model.EnvironmentContext{DatabaseName: database}

	env.MySQLVersion = p.setting(ctx, "server_version")
	env.BufferPoolSizeBytes = p.settingBytes(ctx, "shared_buffers")
	env.InnoDBPageSize = p.settingInt(ctx, "block_size")
	env.TmpTableSize = p.settingBytes(ctx, "temp_buffers")
	env.MaxHeapTableSize = env.TmpTableSize
	env.InnoDBIOCapacity = 0

	var hit, read sql.NullFloat64
	row := p.db.QueryRowContext(ctx, `
SELECT sum(blks_hit), sum(blks_hit) + sum(blks_read)
FROM pg_stat_database WHERE datname = $1`, database)
	if err := row.Scan(&hit, &read); err == nil && read.Float64 > 0 {
		env.BufferPoolUtilization = hit.Float64 / read.Float64
	}

	return env, nil
}

func (p *Postgres) setting(ctx context.Context, name string) string {
	var v string
	row := p.db.QueryRowContext(ctx, `SELECT setting FROM pg_settings WHERE name = $1`, name)
	if err := row.Scan(&v); err != nil {
		return ""
	}
	return v
}

func (p *Postgres) settingInt(ctx context.Context, name string) int64 {
	var v sql.NullInt64
	row := p.db.QueryRowContext(ctx, `SELECT setting::bigint FROM pg_settings WHERE name = $1`, name)
	if err := row.Scan(&v); err != nil {
		return 0
	}
	return v.Int64
}

// settingBytes reads a setting stored as a count of pg_settings.unit
// (8kB blocks for shared_buffers and temp_buffers), converting to bytes
// as setting * pg_size_bytes(unit); a unitless setting is returned as is.
func (p *Postgres) settingBytes(ctx context.Context, name string) int64 {
	var v sql.NullInt64
	row := p.db.QueryRowContext(ctx, `
SELECT setting::bigint * COALESCE(pg_size_bytes(unit), 1)
FROM pg_settings WHERE name = $1`, name)
	if err := row.Scan(&v); err != nil {
		return 0
	}
	return v.Int64
}

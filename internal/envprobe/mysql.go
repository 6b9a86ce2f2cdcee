package envprobe

import (
	"context"
	"database/sql"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// MySQL collects EnvironmentContext from SHOW VARIABLES / SHOW STATUS
// and information_schema, the same surface the teacher's
// internal/mysql/variables.go reads for version/flavor detection.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

func (p *MySQL) Collect(ctx context.Context, database string) (model.EnvironmentContext, error) {
	env := model.EnvironmentContext{DatabaseName: database}

	env.MySQLVersion = p.variable(ctx, "version")
	env.BufferPoolSizeBytes = p.variableInt(ctx, "innodb_buffer_pool_size")
	env.InnoDBIOCapacity = p.variableInt(ctx, "innodb_io_capacity")
	env.InnoDBPageSize = p.variableInt(ctx, "innodb_page_size")
	env.TmpTableSize = p.variableInt(ctx, "tmp_table_size")
	env.MaxHeapTableSize = p.variableInt(ctx, "max_heap_table_size")

	dataPages := p.statusFloat(ctx, "Innodb_buffer_pool_pages_data")
	totalPages := p.statusFloat(ctx, "Innodb_buffer_pool_pages_total")
	if totalPages > 0 {
		env.BufferPoolUtilization = dataPages / totalPages
	}

	return env, nil
}

func (p *MySQL) variable(ctx context.Context, name string) string {
	var varName, value string
	row := p.db.QueryRowContext(ctx, "SHOW VARIABLES LIKE ?", name)
	if err := row.Scan(&varName, &value); err != nil {
		return ""
	}
	return value
}

func (p *MySQL) variableInt(ctx context.Context, name string) int64 {
	var varName string
	var value sql.NullInt64
	row := p.db.QueryRowContext(ctx, "SHOW VARIABLES LIKE ?", name)
	if err := row.Scan(&varName, &value); err != nil {
		return 0
	}
	return value.Int64
}

func (p *MySQL) statusFloat(ctx context.Context, name string) float64 {
	var varName string
	var value sql.NullFloat64
	row := p.db.QueryRowContext(ctx, "SHOW GLOBAL STATUS LIKE ?", name)
	if err := row.Scan(&varName, &value); err != nil {
		return 0
	}
	return value.Float64
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/askdb/askdb/internal/config"
)

// Adapter defines the database operations needed by the schema inspector and
// the query agents.
type Adapter interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error)
	SampleRows(ctx context.Context, tableName string, limit int) ([]map[string]any, error)
	SampleValues(ctx context.Context, tableName, columnName string, limit int) ([]any, error)
	DistinctValues(ctx context.Context, tableName, columnName string) ([]any, error)
	Select(ctx context.Context, projection, tableName, whereCondition string, limit int) (string, []string, [][]any, error)
	Exec(ctx context.Context, query string) ([]string, [][]any, error)
	QuoteIdentifier(name string) string
	PatternMatchOperator() string
	Ping(ctx context.Context) error
	Close() error
}

var _ Adapter = (*DB)(nil)

// DB holds the database connection pool and dialect handler. Every read path
// is bounded by the configured query timeout and releases its rows and
// statement resources on all exit paths.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

// ColumnInfo holds the introspected shape of one column.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
	Default  sql.NullString
}

// DialectHandler abstracts the engine-specific parts: pool creation,
// identifier quoting, catalog queries, and statement shaping.
type DialectHandler interface {
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	// PatternMatchOperator is the case-insensitive pattern operator the
	// condition prompt instructs the model to use (ILIKE where supported).
	PatternMatchOperator() string
	// SelectWithLimit renders SELECT <projection> FROM <table> [WHERE <cond>]
	// capped at limit rows in the engine's syntax.
	SelectWithLimit(projection, table, whereCondition string, limit int) string
	ListTables(ctx context.Context, db *DB) ([]string, error)
	ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error)
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

// RegisterDialectHandler registers a handler for a dialect name. Handlers
// register themselves from init in their own packages.
func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// New creates a connection pool for the configured dialect and verifies it
// with a ping before handing it out.
func New(cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	db := &DB{Pool: pool, Handler: handler, Config: cfg}
	ctx, cancel := db.opContext(context.Background())
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}
	return db, nil
}

// opContext bounds a single database round-trip by the configured timeout.
func (db *DB) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := db.Config.QueryTimeout
	if timeout <= 0 {
		timeout = config.DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	return nil
}

func (db *DB) QuoteIdentifier(name string) string {
	return db.Handler.QuoteIdentifier(name)
}

func (db *DB) PatternMatchOperator() string {
	return db.Handler.PatternMatchOperator()
}

func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	return db.Handler.ListTables(ctx, db)
}

func (db *DB) ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	return db.Handler.ListColumns(ctx, db, tableName)
}

// SampleRows fetches up to limit full rows for the schema snapshot. Values
// come back as driver-native scalars keyed by column name.
func (db *DB) SampleRows(ctx context.Context, tableName string, limit int) ([]map[string]any, error) {
	query := db.Handler.SelectWithLimit("*", tableName, "", limit)
	columns, rows, err := db.Exec(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(columns))
		for i, col := range columns {
			m[col] = row[i]
		}
		out = append(out, m)
	}
	return out, nil
}

// SampleValues fetches up to limit distinct non-null values of one column.
func (db *DB) SampleValues(ctx context.Context, tableName, columnName string, limit int) ([]any, error) {
	quotedColumn := db.Handler.QuoteIdentifier(columnName)
	condition := fmt.Sprintf("%s IS NOT NULL", quotedColumn)
	query := db.Handler.SelectWithLimit("DISTINCT "+quotedColumn, tableName, condition, limit)
	return db.scalarColumn(ctx, query)
}

// DistinctValues fetches the complete distinct-value set of one column in
// ascending order. Used for prompt context columns, so no limit applies.
func (db *DB) DistinctValues(ctx context.Context, tableName, columnName string) ([]any, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY 1",
		db.Handler.QuoteIdentifier(columnName),
		db.Handler.QuoteIdentifier(tableName),
	)
	return db.scalarColumn(ctx, query)
}

// Select runs the fixed-shape statement SELECT <projection> FROM <table>
// [WHERE <condition>] LIMIT <n> and returns the rendered SQL alongside the
// result so failures can always report what was attempted.
func (db *DB) Select(ctx context.Context, projection, tableName, whereCondition string, limit int) (string, []string, [][]any, error) {
	query := db.Handler.SelectWithLimit(projection, tableName, whereCondition, limit)
	columns, rows, err := db.Exec(ctx, query)
	return query, columns, rows, err
}

// Exec runs an arbitrary statement and materializes the full result set.
func (db *DB) Exec(ctx context.Context, query string) ([]string, [][]any, error) {
	if db.Pool == nil {
		return nil, nil, fmt.Errorf("database connection pool is not initialized")
	}
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	rows, err := db.Pool.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading result columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("error scanning result row: %w", err)
		}
		out = append(out, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return columns, out, nil
}

func (db *DB) scalarColumn(ctx context.Context, query string) ([]any, error) {
	_, rows, err := db.Exec(ctx, query)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			values = append(values, row[0])
		}
	}
	return values, nil
}

// normalizeRow converts driver byte slices to strings so the rest of the
// system deals in plain scalars.
func normalizeRow(values []any) []any {
	for i, v := range values {
		switch t := v.(type) {
		case []byte:
			values[i] = string(t)
		case time.Time:
			values[i] = t
		}
	}
	return values
}

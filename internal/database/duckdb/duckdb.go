package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
)

// duckdbHandler implements database.DialectHandler for local DuckDB files,
// which is convenient for asking questions of analytical extracts without a
// running server.
type duckdbHandler struct{}

var _ database.DialectHandler = (*duckdbHandler)(nil)

func (h duckdbHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	pool, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (duckdb): %w", err)
	}
	return pool, nil
}

func (h duckdbHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("duckdb has no Cloud SQL variant")
}

func (h duckdbHandler) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, `"`, `""`)
	return fmt.Sprintf(`"%s"`, name)
}

func (h duckdbHandler) PatternMatchOperator() string { return "ILIKE" }

func (h duckdbHandler) SelectWithLimit(projection, table, whereCondition string, limit int) string {
	query := fmt.Sprintf("SELECT %s FROM %s", projection, h.QuoteIdentifier(table))
	if strings.TrimSpace(whereCondition) != "" {
		query += " WHERE " + whereCondition
	}
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (h duckdbHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		ORDER BY table_name;`

	rows, err := db.Pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("error scanning table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table rows: %w", err)
	}
	return tables, nil
}

func (h duckdbHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position;`

	rows, err := db.Pool.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []database.ColumnInfo
	for rows.Next() {
		var colInfo database.ColumnInfo
		var nullable string
		if err := rows.Scan(&colInfo.Name, &colInfo.DataType, &nullable, &colInfo.Default); err != nil {
			return nil, fmt.Errorf("error scanning column metadata: %w", err)
		}
		colInfo.Nullable = strings.EqualFold(nullable, "YES")
		columns = append(columns, colInfo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

func init() {
	database.RegisterDialectHandler("duckdb", duckdbHandler{})
}

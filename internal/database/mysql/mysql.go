package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/go-sql-driver/mysql"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
)

// mysqlHandler implements database.DialectHandler for MySQL.
type mysqlHandler struct{}

var _ database.DialectHandler = (*mysqlHandler)(nil)

func (h mysqlHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	mysqlCfg := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.DBName,
		AllowNativePasswords: true,
		ParseTime:            true,
	}

	pool, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard mysql): %w", err)
	}
	return pool, nil
}

func (h mysqlHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.User == "" || cfg.Password == "" || cfg.DBName == "" || cfg.CloudSQLInstanceConnectionName == "" {
		return nil, fmt.Errorf("missing required CloudSQL connection parameter (user, pass, db, instance)")
	}

	d, err := cloudsqlconn.NewDialer(context.Background())
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}
	instance := cfg.CloudSQLInstanceConnectionName
	var dialOpts []cloudsqlconn.DialOption
	if cfg.UsePrivateIP {
		dialOpts = append(dialOpts, cloudsqlconn.WithPrivateIP())
	}
	mysql.RegisterDialContext("cloudsqlconn", func(ctx context.Context, addr string) (net.Conn, error) {
		return d.Dial(ctx, instance, dialOpts...)
	})

	mysqlCfg := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Net:                  "cloudsqlconn",
		Addr:                 "localhost:3306",
		DBName:               cfg.DBName,
		AllowNativePasswords: true,
		ParseTime:            true,
	}

	pool, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open (cloudsql mysql): %w", err)
	}
	return pool, nil
}

func (h mysqlHandler) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, "`", "``")
	return fmt.Sprintf("`%s`", name)
}

// MySQL collations compare case-insensitively by default, so plain LIKE is
// what the prompt instructs the model to use.
func (h mysqlHandler) PatternMatchOperator() string { return "LIKE" }

func (h mysqlHandler) SelectWithLimit(projection, table, whereCondition string, limit int) string {
	query := fmt.Sprintf("SELECT %s FROM %s", projection, h.QuoteIdentifier(table))
	if strings.TrimSpace(whereCondition) != "" {
		query += " WHERE " + whereCondition
	}
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (h mysqlHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"

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

func (h mysqlHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION;`

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
	database.RegisterDialectHandler("mysql", mysqlHandler{})
	database.RegisterDialectHandler("cloudsqlmysql", mysqlHandler{})
}

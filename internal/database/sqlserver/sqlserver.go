package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	mssql "github.com/denisenkom/go-mssqldb"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
)

// sqlServerHandler implements database.DialectHandler for SQL Server.
type sqlServerHandler struct{}

var _ database.DialectHandler = (*sqlServerHandler)(nil)

type csqlDialer struct {
	dialer     *cloudsqlconn.Dialer
	connName   string
	usePrivate bool
}

// DialContext adheres to the mssql.Dialer interface.
func (c *csqlDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var opts []cloudsqlconn.DialOption
	if c.usePrivate {
		opts = append(opts, cloudsqlconn.WithPrivateIP())
	}
	return c.dialer.Dial(ctx, c.connName, opts...)
}

func (h sqlServerHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", cfg.DBName)

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}

	pool, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard sqlserver): %w", err)
	}
	return pool, nil
}

func (h sqlServerHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	// Lazy refresh avoids background certificate refreshes from throttling
	// CPU in serverless environments.
	dialer, err := cloudsqlconn.NewDialer(context.Background(), cloudsqlconn.WithLazyRefresh())
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}

	connector, err := mssql.NewConnector(fmt.Sprintf(
		"sqlserver://%s:%s@localhost:1433?database=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), url.QueryEscape(cfg.DBName),
	))
	if err != nil {
		return nil, fmt.Errorf("mssql.NewConnector: %w", err)
	}
	connector.Dialer = &csqlDialer{
		dialer:     dialer,
		connName:   cfg.CloudSQLInstanceConnectionName,
		usePrivate: cfg.UsePrivateIP,
	}

	return sql.OpenDB(connector), nil
}

func (h sqlServerHandler) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, "]", "]]")
	return fmt.Sprintf("[%s]", name)
}

func (h sqlServerHandler) PatternMatchOperator() string { return "LIKE" }

// SQL Server caps rows with TOP rather than LIMIT.
func (h sqlServerHandler) SelectWithLimit(projection, table, whereCondition string, limit int) string {
	top := fmt.Sprintf("TOP %d", limit)
	var query string
	if strings.HasPrefix(projection, "DISTINCT ") {
		query = fmt.Sprintf("SELECT DISTINCT %s %s FROM %s", top, strings.TrimPrefix(projection, "DISTINCT "), h.QuoteIdentifier(table))
	} else {
		query = fmt.Sprintf("SELECT %s %s FROM %s", top, projection, h.QuoteIdentifier(table))
	}
	if strings.TrimSpace(whereCondition) != "" {
		query += " WHERE " + whereCondition
	}
	return query
}

func (h sqlServerHandler) ListTables(ctx context.Context, db *database.DB) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME;`

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

func (h sqlServerHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1
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
	database.RegisterDialectHandler("sqlserver", sqlServerHandler{})
	database.RegisterDialectHandler("cloudsqlsqlserver", sqlServerHandler{})
}

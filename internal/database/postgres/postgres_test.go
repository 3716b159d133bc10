package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
)

func newMockPostgresDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error opening stub database connection: %s", err)
	}
	db := &database.DB{
		Pool:    mockDb,
		Handler: postgresHandler{},
		Config:  config.DatabaseConfig{Dialect: "postgres"},
	}
	return db, mock
}

func TestPostgresQuoteIdentifier(t *testing.T) {
	handler := postgresHandler{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple name", "gangs", `"gangs"`},
		{"Name with spaces", "night city", `"night city"`},
		{"Name with quotes", `my"table`, `"my""table"`},
		{"Empty name", "", `""`},
		{"Keyword", "user", `"user"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.QuoteIdentifier(tt.in); got != tt.want {
				t.Errorf("QuoteIdentifier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostgresSelectWithLimit(t *testing.T) {
	handler := postgresHandler{}

	tests := []struct {
		name       string
		projection string
		condition  string
		want       string
	}{
		{"No condition", "gang_name", "", `SELECT gang_name FROM "gangs" LIMIT 10`},
		{"With condition", "gang_name", "region = 1", `SELECT gang_name FROM "gangs" WHERE region = 1 LIMIT 10`},
		{"Blank condition omitted", "gang_name", "   ", `SELECT gang_name FROM "gangs" LIMIT 10`},
		{"Distinct projection", "DISTINCT region", "", `SELECT DISTINCT region FROM "gangs" LIMIT 10`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.SelectWithLimit(tt.projection, "gangs", tt.condition, 10); got != tt.want {
				t.Errorf("SelectWithLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostgresPatternMatchOperator(t *testing.T) {
	if got := (postgresHandler{}).PatternMatchOperator(); got != "ILIKE" {
		t.Errorf("PatternMatchOperator() = %v, want ILIKE", got)
	}
}

func TestPostgresListTables(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"table_name"}).
		AddRow("gangs").
		AddRow("regions")
	mock.ExpectQuery("SELECT table_name").WillReturnRows(rows)

	tables, err := db.Handler.ListTables(context.Background(), db)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 2 || tables[0] != "gangs" || tables[1] != "regions" {
		t.Errorf("ListTables() = %v, want [gangs regions]", tables)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestPostgresListColumns(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_default"}).
		AddRow("gang_name", "text", "NO", nil).
		AddRow("region", "text", "YES", "'unknown'")
	mock.ExpectQuery("SELECT column_name, data_type, is_nullable, column_default").
		WithArgs("gangs").
		WillReturnRows(rows)

	columns, err := db.Handler.ListColumns(context.Background(), db, "gangs")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	if len(columns) != 2 {
		t.Fatalf("ListColumns() returned %d columns, want 2", len(columns))
	}
	if columns[0].Name != "gang_name" || columns[0].Nullable {
		t.Errorf("first column = %+v, want gang_name NOT NULL", columns[0])
	}
	if !columns[1].Nullable || !columns[1].Default.Valid {
		t.Errorf("second column = %+v, want nullable with default", columns[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

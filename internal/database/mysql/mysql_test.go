package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
)

func TestMySQLQuoteIdentifier(t *testing.T) {
	handler := mysqlHandler{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple name", "gangs", "`gangs`"},
		{"Name with backtick", "my`table", "`my``table`"},
		{"Empty name", "", "``"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.QuoteIdentifier(tt.in); got != tt.want {
				t.Errorf("QuoteIdentifier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMySQLSelectWithLimit(t *testing.T) {
	handler := mysqlHandler{}
	got := handler.SelectWithLimit("gang_name", "gangs", "region = 1", 5)
	want := "SELECT gang_name FROM `gangs` WHERE region = 1 LIMIT 5"
	if got != want {
		t.Errorf("SelectWithLimit() = %v, want %v", got, want)
	}
}

func TestMySQLListColumns(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error opening stub database connection: %s", err)
	}
	db := &database.DB{
		Pool:    mockDb,
		Handler: mysqlHandler{},
		Config:  config.DatabaseConfig{Dialect: "mysql"},
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT"}).
		AddRow("gang_name", "varchar(255)", "NO", nil).
		AddRow("region", "int", "YES", "0")
	mock.ExpectQuery("SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT").
		WithArgs("gangs").
		WillReturnRows(rows)

	columns, err := db.Handler.ListColumns(context.Background(), db, "gangs")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	if len(columns) != 2 {
		t.Fatalf("ListColumns() returned %d columns, want 2", len(columns))
	}
	if columns[0].DataType != "varchar(255)" {
		t.Errorf("first column type = %v, want varchar(255)", columns[0].DataType)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeColumn(t *testing.T) {
	tests := []struct {
		name         string
		column       string
		declaredType string
		nullable     bool
		want         string
	}{
		{
			name:         "primary key",
			column:       "id",
			declaredType: "integer",
			nullable:     false,
			want:         "integer, primary key, required column of table users",
		},
		{
			name:         "foreign key",
			column:       "user_id",
			declaredType: "bigint",
			nullable:     true,
			want:         "integer, foreign key reference column of table users",
		},
		{
			name:         "email",
			column:       "email",
			declaredType: "character varying",
			nullable:     false,
			want:         "text, email address, required column of table users",
		},
		{
			name:         "timestamp suffix",
			column:       "updated_at",
			declaredType: "timestamp with time zone",
			nullable:     true,
			want:         "date/time, timestamp column of table users",
		},
		{
			name:         "status",
			column:       "status",
			declaredType: "text",
			nullable:     true,
			want:         "text, status field column of table users",
		},
		{
			name:         "monetary",
			column:       "price",
			declaredType: "numeric(10,2)",
			nullable:     true,
			want:         "numeric, monetary amount column of table users",
		},
		{
			name:         "boolean",
			column:       "active",
			declaredType: "boolean",
			nullable:     false,
			want:         "boolean, required column of table users",
		},
		{
			name:         "no heuristic matches",
			column:       "payload",
			declaredType: "jsonb",
			nullable:     true,
			want:         "data column of table users",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescribeColumn("users", tt.column, tt.declaredType, tt.nullable)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeTable(t *testing.T) {
	got := DescribeTable("users", []string{"id", "email", "payload", "status"}, 3)
	assert.Equal(t, "users table (4 columns), 3 sample rows captured. Key columns: id, email, status", got)

	got = DescribeTable("blobs", []string{"payload"}, 0)
	assert.Equal(t, "blobs table (1 columns)", got)
}

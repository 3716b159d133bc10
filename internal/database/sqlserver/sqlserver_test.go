package sqlserver

import "testing"

func TestSQLServerQuoteIdentifier(t *testing.T) {
	handler := sqlServerHandler{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple name", "gangs", "[gangs]"},
		{"Name with bracket", "my]table", "[my]]table]"},
		{"Empty name", "", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.QuoteIdentifier(tt.in); got != tt.want {
				t.Errorf("QuoteIdentifier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSQLServerSelectWithLimit(t *testing.T) {
	handler := sqlServerHandler{}

	tests := []struct {
		name       string
		projection string
		condition  string
		want       string
	}{
		{"No condition", "gang_name", "", "SELECT TOP 10 gang_name FROM [gangs]"},
		{"With condition", "gang_name", "region = 1", "SELECT TOP 10 gang_name FROM [gangs] WHERE region = 1"},
		{"Distinct keeps TOP after DISTINCT", "DISTINCT region", "", "SELECT DISTINCT TOP 10 region FROM [gangs]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.SelectWithLimit(tt.projection, "gangs", tt.condition, 10); got != tt.want {
				t.Errorf("SelectWithLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSQLServerPatternMatchOperator(t *testing.T) {
	if got := (sqlServerHandler{}).PatternMatchOperator(); got != "LIKE" {
		t.Errorf("PatternMatchOperator() = %v, want LIKE", got)
	}
}

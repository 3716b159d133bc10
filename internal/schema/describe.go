package schema

import (
	"strconv"
	"strings"
)

// DescribeColumn produces a best-effort human-readable description for a
// column from its declared type and naming conventions. The heuristic is
// deterministic: type-family label first, then name-convention labels,
// then "required" for NOT NULL columns.
func DescribeColumn(tableName, columnName, declaredType string, nullable bool) string {
	var parts []string

	typeLower := strings.ToLower(declaredType)
	switch {
	case strings.Contains(typeLower, "int") || strings.Contains(typeLower, "serial"):
		parts = append(parts, "integer")
	case strings.Contains(typeLower, "char") || strings.Contains(typeLower, "text"):
		parts = append(parts, "text")
	case strings.Contains(typeLower, "timestamp") || strings.Contains(typeLower, "date"):
		parts = append(parts, "date/time")
	case strings.Contains(typeLower, "bool"):
		parts = append(parts, "boolean")
	case strings.Contains(typeLower, "decimal") || strings.Contains(typeLower, "numeric") ||
		strings.Contains(typeLower, "float") || strings.Contains(typeLower, "double") ||
		strings.Contains(typeLower, "real"):
		parts = append(parts, "numeric")
	}

	nameLower := strings.ToLower(columnName)
	switch {
	case nameLower == "id" || nameLower == "pk" || nameLower == "primary_key":
		parts = append(parts, "primary key")
	case strings.HasSuffix(nameLower, "_id"):
		parts = append(parts, "foreign key reference")
	case nameLower == "name" || nameLower == "title":
		parts = append(parts, "name/title")
	case nameLower == "email" || nameLower == "mail":
		parts = append(parts, "email address")
	case nameLower == "phone" || nameLower == "tel" || nameLower == "mobile":
		parts = append(parts, "phone number")
	case nameLower == "address" || nameLower == "addr":
		parts = append(parts, "street address")
	case nameLower == "created_at" || nameLower == "create_time" || strings.HasSuffix(nameLower, "_at"):
		parts = append(parts, "timestamp")
	case nameLower == "status" || nameLower == "state":
		parts = append(parts, "status field")
	case nameLower == "count" || nameLower == "cnt":
		parts = append(parts, "counter")
	case nameLower == "price" || nameLower == "amount" || nameLower == "cost":
		parts = append(parts, "monetary amount")
	}

	if !nullable {
		parts = append(parts, "required")
	}

	if len(parts) == 0 {
		return "data column of table " + tableName
	}
	return strings.Join(parts, ", ") + " column of table " + tableName
}

// DescribeTable produces a short description of a table from its column list
// and how many sample rows were captured.
func DescribeTable(tableName string, columns []string, sampleCount int) string {
	var b strings.Builder
	b.WriteString(tableName)
	b.WriteString(" table (")
	b.WriteString(strconv.Itoa(len(columns)))
	b.WriteString(" columns)")

	if sampleCount > 0 {
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(sampleCount))
		b.WriteString(" sample rows captured")
	}

	var keyColumns []string
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, keyword := range []string{"id", "name", "title", "email", "status"} {
			if strings.Contains(lower, keyword) {
				keyColumns = append(keyColumns, col)
				break
			}
		}
		if len(keyColumns) == 3 {
			break
		}
	}
	if len(keyColumns) > 0 {
		b.WriteString(". Key columns: ")
		b.WriteString(strings.Join(keyColumns, ", "))
	}
	return b.String()
}

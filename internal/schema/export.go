package schema

import (
	"fmt"
	"strings"
)

// ExportGo renders the snapshot as a standalone Go source file so a detected
// schema can be checked in and reloaded without a live connection.
func ExportGo(s *Snapshot, packageName string) string {
	if packageName == "" {
		packageName = "detectedschema"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated from a live %s schema; edit with care.\n", s.Engine)
	fmt.Fprintf(&b, "package %s\n\n", packageName)
	b.WriteString("import \"github.com/askdb/askdb/internal/schema\"\n\n")
	b.WriteString("// DetectedSnapshot returns the schema captured at export time.\n")
	b.WriteString("func DetectedSnapshot() *schema.Snapshot {\n")
	b.WriteString("\treturn schema.NewSnapshot(" + quote(s.Engine) + ", []*schema.TableDescriptor{\n")

	for _, name := range s.TableNames() {
		t := s.Table(name)
		b.WriteString("\t\t{\n")
		fmt.Fprintf(&b, "\t\t\tName:        %s,\n", quote(t.Name))
		fmt.Fprintf(&b, "\t\t\tDescription: %s,\n", quote(t.Description))
		b.WriteString("\t\t\tColumns: []schema.ColumnDescriptor{\n")
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "\t\t\t\t{Name: %s, DeclaredType: %s, Nullable: %t, Default: %s, Description: %s},\n",
				quote(c.Name), quote(c.DeclaredType), c.Nullable, quote(c.Default), quote(c.Description))
		}
		b.WriteString("\t\t\t},\n")
		b.WriteString("\t\t},\n")
	}

	b.WriteString("\t})\n")
	b.WriteString("}\n")
	return b.String()
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteStringToFile writes content to path, creating parent directories as
// needed.
func WriteStringToFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// DefaultExportPath derives an output filename for a schema export when the
// user did not supply one.
func DefaultExportPath(dbName string) string {
	name := strings.TrimSpace(dbName)
	if name == "" {
		name = "database"
	}
	return fmt.Sprintf("%s_schema.go", name)
}

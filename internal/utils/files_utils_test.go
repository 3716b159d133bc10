package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStringToFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "schema.go")
	require.NoError(t, WriteStringToFile(path, "package schema\n"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package schema\n", string(content))
}

func TestDefaultExportPath(t *testing.T) {
	assert.Equal(t, "nightcity_schema.go", DefaultExportPath("nightcity"))
	assert.Equal(t, "database_schema.go", DefaultExportPath(""))
}

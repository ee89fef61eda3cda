package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := Files(embedded)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "001", files[0].Version)
	assert.Equal(t, "001_materials.sql", files[0].Name)
	assert.Equal(t, "002", files[1].Version)
}

func TestFilesSortsAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 1")},
		"002_second.sql": {Data: []byte("SELECT 1")},
		"README.md":      {Data: []byte("docs")},
		"noversion.sql":  {Data: []byte("SELECT 1")},
	}
	files, err := Files(fsys)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "002", files[0].Version)
	assert.Equal(t, "010", files[1].Version)
}

func TestChecksumStable(t *testing.T) {
	a := calculateChecksum([]byte("CREATE TABLE x ()"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, calculateChecksum([]byte("CREATE TABLE x ()")))
	assert.NotEqual(t, a, calculateChecksum([]byte("CREATE TABLE y ()")))
}

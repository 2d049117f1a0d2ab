package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"add visits":             "add_visits",
		"Add-Client  Tags":       "add_client_tags",
		"  quotation__items  ":   "quotation_items",
		"índice por sector 2026": "ndice_por_sector_2026",
		"!!!":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestList(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_visits.up.sql":    {Data: []byte("--")},
		"000001_init.up.sql":      {Data: []byte("--")},
		"000001_init.down.sql":    {Data: []byte("--")},
		"000010_orders.up.sql":    {Data: []byte("--")},
		"README.md":               {Data: []byte("x")},
		"embed.go":                {Data: []byte("package migrations")},
		"backup/000003_x.up.sql":  {Data: []byte("--")},
		"000004_Bad-Name.up.sql":  {Data: []byte("--")},
		"000005_seed.sql":         {Data: []byte("--")},
		"000006_notes.down.sql":   {Data: []byte("--")},
	}

	files, err := List(fsys)
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Version: 1, Name: "init", HasDown: true},
		{Version: 2, Name: "visits"},
		{Version: 6, Name: "notes", HasDown: true},
		{Version: 10, Name: "orders"},
	}, files)

	versions, err := Versions(fsys)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 6, 10}, versions)
}

func TestPendingAfter(t *testing.T) {
	versions := []uint{1, 2, 3, 4}
	assert.Equal(t, 4, pendingAfter(versions, 0))
	assert.Equal(t, 1, pendingAfter(versions, 3))
	assert.Equal(t, 0, pendingAfter(versions, 4))
}

func TestCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	f, paths, err := Create(dir, "create clients")
	require.NoError(t, err)
	assert.Equal(t, File{Version: 1, Name: "create_clients", HasDown: true}, f)
	require.Len(t, paths, 2)
	assert.FileExists(t, filepath.Join(dir, "000001_create_clients.up.sql"))
	assert.FileExists(t, filepath.Join(dir, "000001_create_clients.down.sql"))

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- create clients")

	f, _, err = Create(dir, "add visits")
	require.NoError(t, err)
	assert.Equal(t, uint(2), f.Version)

	files, err := List(os.DirFS(dir))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCreate_InvalidName(t *testing.T) {
	_, _, err := Create(t.TempDir(), "***")
	assert.Error(t, err)
}

package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	m := NewMigrator(nil)

	migrations, err := m.Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Equal(t, "correction_requests", migrations[2].Name)
	assert.Contains(t, migrations[2].SQL, "WHERE status = 'pending'")
}

func TestReadMigrations(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"010_later.sql": {Data: []byte("SELECT 10;")},
			"002_second.sql": {Data: []byte("SELECT 2;")},
			"README.md":      {Data: []byte("ignored")},
		}
		migrations, err := readMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, 2, migrations[0].Version)
		assert.Equal(t, 10, migrations[1].Version)
		assert.Equal(t, "later", migrations[1].Name)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := readMigrations(fsys)
		assert.ErrorContains(t, err, "duplicate migration version 1")
	})

	t.Run("bad filename", func(t *testing.T) {
		fsys := fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}}
		_, err := readMigrations(fsys)
		assert.Error(t, err)
	})

	t.Run("version zero", func(t *testing.T) {
		fsys := fstest.MapFS{"000_zero.sql": {Data: []byte("SELECT 1;")}}
		_, err := readMigrations(fsys)
		assert.Error(t, err)
	})
}

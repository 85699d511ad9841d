package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenFileAndMigrateTwice(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "cache.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM lookup_cache`).Scan(&n))
	require.Zero(t, n)
}

func TestOpenMemory(t *testing.T) {
	cfg := Config{Path: ":memory:"}
	require.True(t, cfg.Memory())

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	_, err = db.Exec(`INSERT INTO lookup_cache (isbn13, strategy, items, fetched_at) VALUES ('1', 'lookup', '[]', 0)`)
	require.NoError(t, err)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("BOOKMAP_DB_PATH", "/tmp/x.db")
	require.Equal(t, "/tmp/x.db", DefaultConfig().Path)
}

// Package seedcache persists perfect-hash search results. The seed search is
// deterministic but can be expensive for keyword sets that collide under
// many seeds, so the CLI memoizes (seed, prime) pairs per keyword-name set
// in a small SQLite database.
package seedcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS seeds (
	names      TEXT PRIMARY KEY,
	table_size INTEGER NOT NULL,
	seed       INTEGER NOT NULL,
	prime      INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

// Cache is the on-disk seed store.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the seed cache at .funcall/seeds.db under dir.
func Open(dir string) (*Cache, error) {
	cacheDir := filepath.Join(dir, ".funcall")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "seeds.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening seed cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Cache{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error { return c.db.Close() }

// DBPath returns the path to the database file.
func (c *Cache) DBPath() string { return c.dbPath }

// key canonicalizes a keyword-name set: order must not matter.
func key(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// Get looks up a cached search result for a keyword set.
func (c *Cache) Get(names []string) (seed, prime uint64, ok bool, err error) {
	var s, p int64
	var size int
	err = c.db.QueryRow(
		"SELECT seed, prime, table_size FROM seeds WHERE names = ?", key(names),
	).Scan(&s, &p, &size)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("querying seed cache: %w", err)
	}
	return uint64(s), uint64(p), true, nil
}

// Put stores a search result, replacing any previous entry for the set.
func (c *Cache) Put(names []string, tableSize int, seed, prime uint64) error {
	_, err := c.db.Exec(`
		INSERT INTO seeds (names, table_size, seed, prime, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(names) DO UPDATE SET
			table_size = excluded.table_size,
			seed = excluded.seed,
			prime = excluded.prime,
			created_at = excluded.created_at
	`, key(names), tableSize, int64(seed), int64(prime), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing seed: %w", err)
	}
	return nil
}

// Len counts the cached entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM seeds").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting seeds: %w", err)
	}
	return n, nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM seeds"); err != nil {
		return fmt.Errorf("clearing seed cache: %w", err)
	}
	return nil
}

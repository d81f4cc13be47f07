package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens or creates a cache rooted at rootPath. The relational
// store lives in rootPath/sciqlop-cache.db next to the content-store
// tree. maxSize is advisory; no eviction policy is attached to it yet.
func New(rootPath string, maxSize uint64) (*Cache, error) {
	return NewWithConfig(Config{RootPath: rootPath, MaxSize: maxSize})
}

// NewWithConfig opens a cache with explicit placement threshold and
// default TTL. Zero values fall back to the package defaults.
func NewWithConfig(config Config) (*Cache, error) {
	if config.FileSizeThreshold <= 0 {
		config.FileSizeThreshold = DefaultFileSizeThreshold
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTTL
	}

	if err := os.MkdirAll(config.RootPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(config.RootPath, DBFileName)
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=600000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps session pragmas in force for every
	// statement and rules out in-process writer contention.
	db.SetMaxOpenConns(1)

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure pragmas: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	disk, err := newDiskStorage(config.RootPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		config: config,
		db:     db,
		stmts:  newStmtCache(db),
		disk:   disk,
	}, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 10000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA mmap_size = 268435456",
		"PRAGMA analysis_limit = 1000",
		"PRAGMA busy_timeout = 600000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}

	return nil
}

func createSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT UNIQUE NOT NULL,
		path TEXT DEFAULT NULL,
		value BLOB DEFAULT NULL,
		expire REAL DEFAULT NULL,
		last_update REAL NOT NULL DEFAULT (strftime('%s','now')),
		last_use REAL NOT NULL DEFAULT (strftime('%s','now')),
		access_count_since_last_update INT NOT NULL DEFAULT 0,
		size INT NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_key ON cache (key);
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value
	);
	INSERT OR IGNORE INTO meta VALUES ('size', '0');
	CREATE TRIGGER IF NOT EXISTS cache_size_insert AFTER INSERT ON cache
	BEGIN
		UPDATE meta SET value = (SELECT COALESCE(SUM(size), 0) FROM cache) WHERE key = 'size';
	END;
	CREATE TRIGGER IF NOT EXISTS cache_size_delete AFTER DELETE ON cache
	BEGIN
		UPDATE meta SET value = (SELECT COALESCE(SUM(size), 0) FROM cache) WHERE key = 'size';
	END;
	CREATE TRIGGER IF NOT EXISTS cache_size_update AFTER UPDATE OF size ON cache
	BEGIN
		UPDATE meta SET value = (SELECT COALESCE(SUM(size), 0) FROM cache) WHERE key = 'size';
	END;
	`
	_, err := db.Exec(query)
	return err
}

// Close finalizes all compiled statements and then closes the
// connection. Statements must go first; the connection cannot close
// cleanly underneath them.
func (c *Cache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stmtErr := c.stmts.closeAll()
	dbErr := c.db.Close()
	return errors.Join(stmtErr, dbErr)
}

// now is replaceable in tests that need a fixed clock.
var now = time.Now

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Statement names. Each maps to one SQL text in statementSQL and one
// lazily compiled handle in the statement cache.
const (
	stmtCount              = "count"
	stmtKeys               = "keys"
	stmtExists             = "exists"
	stmtGetByKey           = "get-by-key"
	stmtGetPathByKey       = "get-path-by-key"
	stmtReplaceInline      = "replace-inline"
	stmtReplaceExternal    = "replace-external"
	stmtInsertInline       = "insert-inline"
	stmtInsertExternal     = "insert-external"
	stmtDeleteByKey        = "delete-by-key"
	stmtTouchByKey         = "touch-by-key"
	stmtSelectExpiredPaths = "select-expired-paths"
	stmtDeleteExpired      = "delete-expired"
	stmtMetaSize           = "meta-size"
)

// Readers must never observe an expired row, so every read statement
// carries the same expiry filter.
const notExpired = "(expire IS NULL OR expire > strftime('%s','now'))"

var statementSQL = map[string]string{
	stmtCount:  "SELECT COUNT(*) FROM cache WHERE " + notExpired + ";",
	stmtKeys:   "SELECT key FROM cache WHERE " + notExpired + ";",
	stmtExists: "SELECT 1 FROM cache WHERE key = ? AND " + notExpired + " LIMIT 1;",
	stmtGetByKey: "SELECT value, path FROM cache WHERE key = ? AND " +
		notExpired + ";",
	// Path lookups feed file cleanup, which must also reach rows that
	// have already expired.
	stmtGetPathByKey: "SELECT path FROM cache WHERE key = ?;",
	stmtReplaceInline: `REPLACE INTO cache (key, value, path, expire, last_update, last_use, size)
		VALUES (?, ?, NULL, strftime('%s','now') + ?, ?, ?, ?);`,
	stmtReplaceExternal: `REPLACE INTO cache (key, value, path, expire, last_update, last_use, size)
		VALUES (?, NULL, ?, strftime('%s','now') + ?, ?, ?, ?);`,
	stmtInsertInline: `INSERT INTO cache (key, value, path, expire, last_update, last_use, size)
		VALUES (?, ?, NULL, strftime('%s','now') + ?, ?, ?, ?);`,
	stmtInsertExternal: `INSERT INTO cache (key, value, path, expire, last_update, last_use, size)
		VALUES (?, NULL, ?, strftime('%s','now') + ?, ?, ?, ?);`,
	stmtDeleteByKey: "DELETE FROM cache WHERE key = ?;",
	stmtTouchByKey: `UPDATE cache SET last_update = ?, last_use = ?,
		expire = strftime('%s','now') + ? WHERE key = ?;`,
	stmtSelectExpiredPaths: "SELECT id, path FROM cache WHERE expire IS NOT NULL AND expire <= ?;",
	stmtDeleteExpired:      "DELETE FROM cache WHERE expire IS NOT NULL AND expire <= ?;",
	stmtMetaSize:           "SELECT value FROM meta WHERE key = 'size';",
}

// stmtCache amortizes statement preparation across calls. Handles are
// compiled on first use and must be closed before the connection.
type stmtCache struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, stmts: make(map[string]*sql.Stmt)}
}

func (sc *stmtCache) get(name string) (*sql.Stmt, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt, exists := sc.stmts[name]; exists {
		return stmt, nil
	}

	text, ok := statementSQL[name]
	if !ok {
		return nil, fmt.Errorf("unknown statement %q", name)
	}
	stmt, err := sc.db.Prepare(text)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement %q: %w", name, err)
	}
	sc.stmts[name] = stmt
	return stmt, nil
}

// closeAll finalizes every compiled statement in deterministic order.
// The cache is reusable afterwards; statements recompile on demand.
func (sc *stmtCache) closeAll() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	names := make([]string, 0, len(sc.stmts))
	for name := range sc.stmts {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := sc.stmts[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close statement %q: %w", name, err))
		}
		delete(sc.stmts, name)
	}
	return errors.Join(errs...)
}

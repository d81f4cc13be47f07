package cache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"sciqlop-cache/src/logger"
)

// ttlArg converts a TTL into the bind value for the
// strftime('%s','now') + ? expressions. ttl == 0 selects the default;
// a negative ttl binds NULL, which propagates and leaves the row
// without an expiration.
func (c *Cache) ttlArg(ttl time.Duration) any {
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}
	if ttl < 0 {
		return nil
	}
	return ttl.Seconds()
}

func (c *Cache) exec(name string, args ...any) (sql.Result, error) {
	stmt, err := c.stmts.get(name)
	if err != nil {
		return nil, err
	}
	return stmt.Exec(args...)
}

func (c *Cache) queryRow(name string, args ...any) (*sql.Row, error) {
	stmt, err := c.stmts.get(name)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRow(args...), nil
}

// pathForKey returns the external path recorded for key, expired rows
// included, so replace and delete can free the file.
func (c *Cache) pathForKey(key string) string {
	row, err := c.queryRow(stmtGetPathByKey, key)
	if err != nil {
		logger.Errorf("path lookup failed for key %q: %v", key, err)
		return ""
	}
	var path sql.NullString
	if err := row.Scan(&path); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Errorf("path lookup failed for key %q: %v", key, err)
		}
		return ""
	}
	return path.String
}

func isConstraintViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}

// write is the shared body of Set and Add. Values at or below the
// placement threshold go inline; larger ones are stored as a fresh
// content-store file first, with the file removed again if the row
// write does not go through.
func (c *Cache) write(key string, value []byte, ttl time.Duration, replace bool) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if value == nil {
		value = []byte{}
	}
	nowEpoch := timeToEpoch(now())
	size := uint64(len(value))

	var oldPath string
	if replace {
		oldPath = c.pathForKey(key)
	}

	var err error
	if len(value) <= c.config.FileSizeThreshold {
		name := stmtInsertInline
		if replace {
			name = stmtReplaceInline
		}
		_, err = c.exec(name, key, value, c.ttlArg(ttl), nowEpoch, nowEpoch, size)
	} else {
		var path string
		path, err = c.disk.store(value)
		if err != nil {
			logger.Errorf("blob store failed for key %q: %v", key, err)
			return false
		}
		name := stmtInsertExternal
		if replace {
			name = stmtReplaceExternal
		}
		if _, err = c.exec(name, key, path, c.ttlArg(ttl), nowEpoch, nowEpoch, size); err != nil {
			c.disk.remove(path, false)
		}
	}

	if err != nil {
		if !isConstraintViolation(err) {
			logger.Errorf("row write failed for key %q: %v", key, err)
		}
		return false
	}

	if oldPath != "" {
		c.disk.remove(oldPath, false)
	}
	return true
}

// Set stores value under key, replacing any previous entry. A ttl of 0
// applies the default; a negative ttl stores the entry without an
// expiration. The previous entry's external file, if any, is removed
// once the replace has succeeded.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) bool {
	return c.write(key, value, ttl, true)
}

// Add stores value under key only if the key is absent. Returns false
// on a duplicate key without modifying the stored value.
func (c *Cache) Add(key string, value []byte, ttl time.Duration) bool {
	return c.write(key, value, ttl, false)
}

// Get returns a read-only view of the value under key, or nil if the
// key is missing or expired. An external entry whose file can no
// longer be opened is dropped and reported as a miss.
func (c *Cache) Get(key string) *Buffer {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	row, err := c.queryRow(stmtGetByKey, key)
	if err != nil {
		logger.Errorf("get failed for key %q: %v", key, err)
		return nil
	}

	var value []byte
	var path sql.NullString
	if err := row.Scan(&value, &path); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Errorf("get failed for key %q: %v", key, err)
		}
		return nil
	}

	if path.String != "" {
		buf, err := c.disk.load(path.String)
		if err != nil {
			logger.Errorf("blob load failed for key %q: %v", key, err)
		}
		if buf == nil {
			// The row points at a file that is gone or unreadable.
			if _, derr := c.exec(stmtDeleteByKey, key); derr != nil {
				logger.Errorf("corrupt entry cleanup failed for key %q: %v", key, derr)
			}
			return nil
		}
		return buf
	}
	return newOwnedBuffer(value)
}

// Pop returns the value under key and deletes the entry. The delete is
// best-effort; its failure is logged and does not change the returned
// value.
func (c *Cache) Pop(key string) *Buffer {
	buf := c.Get(key)
	if buf != nil && !c.Del(key) {
		logger.Warnf("pop could not delete key %q", key)
	}
	return buf
}

// Del removes the entry under key together with its external file.
// Returns false if the key was absent.
func (c *Cache) Del(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	oldPath := c.pathForKey(key)
	res, err := c.exec(stmtDeleteByKey, key)
	if err != nil {
		logger.Errorf("delete failed for key %q: %v", key, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false
	}
	if oldPath != "" {
		c.disk.remove(oldPath, false)
	}
	return true
}

// Touch refreshes last_update, last_use and the expiration of an
// existing entry. Returns false if the key was absent.
func (c *Cache) Touch(key string, ttl time.Duration) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	nowEpoch := timeToEpoch(now())
	res, err := c.exec(stmtTouchByKey, nowEpoch, nowEpoch, c.ttlArg(ttl), key)
	if err != nil {
		logger.Errorf("touch failed for key %q: %v", key, err)
		return false
	}
	n, err := res.RowsAffected()
	return err == nil && n > 0
}

// Expire removes every entry whose expiration has elapsed, external
// files first, then the rows in a single statement. File removal is
// best-effort.
func (c *Cache) Expire() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	nowEpoch := timeToEpoch(now())

	stmt, err := c.stmts.get(stmtSelectExpiredPaths)
	if err != nil {
		logger.Errorf("expire scan failed: %v", err)
		return
	}
	rows, err := stmt.Query(nowEpoch)
	if err != nil {
		logger.Errorf("expire scan failed: %v", err)
		return
	}
	// Drain the scan before touching the store again; the connection
	// is busy until the rows are closed.
	var paths []string
	for rows.Next() {
		var id int64
		var path sql.NullString
		if err := rows.Scan(&id, &path); err != nil {
			logger.Errorf("expire scan failed: %v", err)
			break
		}
		if path.String != "" {
			paths = append(paths, path.String)
		}
	}
	rows.Close()

	for _, path := range paths {
		if !c.disk.remove(path, false) {
			logger.Warnf("failed to delete expired blob %s", path)
		}
	}

	if _, err := c.exec(stmtDeleteExpired, nowEpoch); err != nil {
		logger.Errorf("expired row delete failed: %v", err)
	}
}

// Evict is the hook for a size-driven policy. No policy is attached
// yet; it reports success.
func (c *Cache) Evict() bool {
	return true
}

// Clear deletes every entry and removes everything under the root
// except the relational store file and its WAL/shm siblings.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := c.db.Exec("DELETE FROM cache;"); err != nil {
		logger.Errorf("clear failed: %v", err)
		return
	}

	entries, err := os.ReadDir(c.config.RootPath)
	if err != nil {
		logger.Errorf("clear could not read cache directory: %v", err)
		return
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), DBFileName) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.config.RootPath, entry.Name())); err != nil {
			logger.Warnf("clear could not remove %s: %v", entry.Name(), err)
		}
	}
}

// Count returns the number of non-expired entries.
func (c *Cache) Count() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	row, err := c.queryRow(stmtCount)
	if err != nil {
		logger.Errorf("count failed: %v", err)
		return 0
	}
	var n uint64
	if err := row.Scan(&n); err != nil {
		logger.Errorf("count failed: %v", err)
		return 0
	}
	return n
}

// Size returns the running total of logical value bytes stored, as
// maintained by the meta triggers.
func (c *Cache) Size() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	row, err := c.queryRow(stmtMetaSize)
	if err != nil {
		logger.Errorf("size failed: %v", err)
		return 0
	}
	var n uint64
	if err := row.Scan(&n); err != nil {
		logger.Errorf("size failed: %v", err)
		return 0
	}
	return n
}

// Keys returns the non-expired keys in unspecified order.
func (c *Cache) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stmt, err := c.stmts.get(stmtKeys)
	if err != nil {
		logger.Errorf("keys failed: %v", err)
		return nil
	}
	rows, err := stmt.Query()
	if err != nil {
		logger.Errorf("keys failed: %v", err)
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			logger.Errorf("keys failed: %v", err)
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}

// Exists reports whether a non-expired entry with the given key
// exists.
func (c *Cache) Exists(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	row, err := c.queryRow(stmtExists, key)
	if err != nil {
		logger.Errorf("exists failed for key %q: %v", key, err)
		return false
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Errorf("exists failed for key %q: %v", key, err)
		}
		return false
	}
	return true
}

// Check verifies that the store is readable.
func (c *Cache) Check() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var n int64
	if err := c.db.QueryRow("SELECT COUNT(*) FROM cache;").Scan(&n); err != nil {
		logger.Errorf("check failed: %v", err)
		return false
	}
	return n >= 0
}

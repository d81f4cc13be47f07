package cache

import (
	"database/sql"
	"sync"
	"time"
)

// DBFileName is the fixed name of the relational store file under the
// cache root. Clear preserves it (and its -wal/-shm siblings) while
// removing everything else.
const DBFileName = "sciqlop-cache.db"

// DefaultFileSizeThreshold is the placement bound in bytes: values at
// or below it are stored inline in the row, values above it go to the
// content store.
const DefaultFileSizeThreshold = 8192

// DefaultTTL is applied when Set or Add is called with ttl == 0.
const DefaultTTL = 3600 * time.Second

type Config struct {
	RootPath          string
	MaxSize           uint64 // advisory; eviction policy is reserved
	FileSizeThreshold int
	DefaultTTL        time.Duration
}

// Cache is a persistent key/value store with TTL expiration and hybrid
// inline/external placement. It is safe for concurrent use by multiple
// goroutines; two Cache instances over the same root in one process
// are not supported.
type Cache struct {
	config Config
	mutex  sync.RWMutex
	db     *sql.DB
	stmts  *stmtCache
	disk   *diskStorage
}

// Config returns the configuration the cache was opened with.
func (c *Cache) Config() Config {
	return c.config
}

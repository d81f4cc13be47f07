package api

import (
	"time"

	"sciqlop-cache/src/cache"
)

var globalCache *cache.Cache

// Init opens the cache at rootPath. It must be called before any other
// function in this package.
func Init(rootPath string, maxSize uint64) bool {
	c, err := cache.New(rootPath, maxSize)
	if err != nil {
		return false
	}
	globalCache = c
	return true
}

func Close() bool {
	if globalCache == nil {
		return false
	}
	if err := globalCache.Close(); err != nil {
		return false
	}
	globalCache = nil
	return true
}

// Set stores value under key. ttlSeconds of 0 applies the default TTL;
// a negative value stores the entry without expiration.
func Set(key string, value []byte, ttlSeconds float64) bool {
	if globalCache == nil {
		return false
	}
	return globalCache.Set(key, value, ttl(ttlSeconds))
}

// Add stores value under key only if the key is absent.
func Add(key string, value []byte, ttlSeconds float64) bool {
	if globalCache == nil {
		return false
	}
	return globalCache.Add(key, value, ttl(ttlSeconds))
}

// Get returns an owned copy of the value under key, or nil on a miss.
func Get(key string) []byte {
	if globalCache == nil {
		return nil
	}
	buf := globalCache.Get(key)
	if buf == nil {
		return nil
	}
	defer buf.Close()
	return buf.Bytes()
}

// Pop returns an owned copy of the value under key and deletes the
// entry.
func Pop(key string) []byte {
	if globalCache == nil {
		return nil
	}
	buf := globalCache.Pop(key)
	if buf == nil {
		return nil
	}
	defer buf.Close()
	return buf.Bytes()
}

func Del(key string) bool {
	if globalCache == nil {
		return false
	}
	return globalCache.Del(key)
}

func Touch(key string, ttlSeconds float64) bool {
	if globalCache == nil {
		return false
	}
	return globalCache.Touch(key, ttl(ttlSeconds))
}

func Exists(key string) bool {
	if globalCache == nil {
		return false
	}
	return globalCache.Exists(key)
}

func Count() uint64 {
	if globalCache == nil {
		return 0
	}
	return globalCache.Count()
}

func Size() uint64 {
	if globalCache == nil {
		return 0
	}
	return globalCache.Size()
}

func Keys() []string {
	if globalCache == nil {
		return nil
	}
	return globalCache.Keys()
}

func Expire() bool {
	if globalCache == nil {
		return false
	}
	globalCache.Expire()
	return true
}

func Clear() bool {
	if globalCache == nil {
		return false
	}
	globalCache.Clear()
	return true
}

func Check() bool {
	if globalCache == nil {
		return false
	}
	return globalCache.Check()
}

func ttl(seconds float64) time.Duration {
	if seconds < 0 {
		return -time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}

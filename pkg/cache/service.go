package cache

import "time"

// CacheService is the in-process cache used for published catalogs and
// per-session workspaces.
type CacheService interface {
	// Get returns the value and true when the key is present and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value for duration. A zero duration uses the cache default.
	Set(key string, value interface{}, duration time.Duration)

	// Add stores a value only if the key is absent and reports whether it did.
	Add(key string, value interface{}, duration time.Duration) bool

	Delete(key string)

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(prefix string)

	Flush()
}

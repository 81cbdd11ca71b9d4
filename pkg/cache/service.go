package cache

import "time"

// CacheService is the small cache surface the usecases depend on.
type CacheService interface {
	// Get returns the value and true when the key is present and unexpired.
	Get(key string) (interface{}, bool)

	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	Flush()
}

// GetAs is Get with a type assertion. A value of the wrong type counts as a miss.
func GetAs[T any](c CacheService, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

package usecase

import (
	"sync/atomic"
	"time"

	"geozone-backend/pkg/cache"
)

// ZoneVersion counts committed zone writes. Readers that fill a cache note
// the version before loading and drop the entry if a write landed meanwhile.
// A nil *ZoneVersion is valid and never changes.
type ZoneVersion struct {
	n atomic.Uint64
}

func NewZoneVersion() *ZoneVersion {
	return &ZoneVersion{}
}

func (v *ZoneVersion) Load() uint64 {
	if v == nil {
		return 0
	}
	return v.n.Load()
}

func (v *ZoneVersion) bump() {
	if v != nil {
		v.n.Add(1)
	}
}

// cacheIfCurrent stores value under key unless a write bumped the version
// since seen. The post-Set check covers a write whose invalidation ran
// between the first check and the Set.
func cacheIfCurrent(c cache.CacheService, v *ZoneVersion, seen uint64, key string, value interface{}, ttl time.Duration) {
	if v.Load() != seen {
		return
	}
	c.Set(key, value, ttl)
	if v.Load() != seen {
		c.Delete(key)
	}
}

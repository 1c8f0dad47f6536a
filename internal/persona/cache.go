package persona

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/aiox-platform/persona/internal/metrics"
)

// profileCache is a bounded, keyed LRU of profiles with a fixed TTL. Each
// entry is swapped as a whole, so readers never see a torn profile.
type profileCache struct {
	lru *expirable.LRU[string, *Profile]
	// gen is bumped on every invalidation. A load that started under an
	// older generation is returned to its caller but not cached.
	gen atomic.Uint64
}

func newProfileCache(size int, ttl time.Duration) *profileCache {
	return &profileCache{lru: expirable.NewLRU[string, *Profile](size, nil, ttl)}
}

func (c *profileCache) get(userID string) (*Profile, bool) {
	p, ok := c.lru.Get(userID)
	if ok {
		metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
	}
	return p, ok
}

func (c *profileCache) generation() uint64 { return c.gen.Load() }

// add caches p unless an invalidation happened since gen was read.
func (c *profileCache) add(gen uint64, p *Profile) {
	if c.gen.Load() != gen {
		return
	}
	c.lru.Add(p.UserID, p)
}

func (c *profileCache) remove(userID string) {
	c.gen.Add(1)
	c.lru.Remove(userID)
}

func (c *profileCache) purge() {
	c.gen.Add(1)
	c.lru.Purge()
}

func (c *profileCache) size() int { return c.lru.Len() }

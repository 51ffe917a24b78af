package expectations

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/smart-intake/internal/monitoring"
)

// Cache loads the table from its source once and serves the same *Table
// until Invalidate. It is safe for concurrent use; concurrent cold-start
// loads are collapsed into a single source read.
type Cache struct {
	source Source

	mu    sync.RWMutex
	table *Table
	// gen is bumped by Invalidate; a load started under an older gen is
	// returned to its callers but never cached.
	gen   uint64
	group singleflight.Group
}

// NewCache creates a cache over src. Nothing is loaded until the first Load.
func NewCache(src Source) *Cache {
	return &Cache{source: src}
}

// Load returns the cached table, reading the source on the first call or the
// first call after Invalidate. A source failure is returned as-is and nothing
// is cached. The shared read runs detached from ctx's cancellation so one
// cancelled caller does not fail the others waiting on it.
func (c *Cache) Load(ctx context.Context) (*Table, error) {
	c.mu.RLock()
	t := c.table
	c.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	v, err, _ := c.group.Do("table", func() (any, error) {
		c.mu.RLock()
		cached, gen := c.table, c.gen
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := c.source.Load(context.WithoutCancel(ctx))
		if err != nil {
			monitoring.ExpectationsLoads.WithLabelValues("error").Inc()
			return nil, err
		}

		c.mu.Lock()
		stale := c.gen != gen
		if !stale {
			c.table = loaded
		}
		c.mu.Unlock()
		if stale {
			zap.L().Debug("expectations: invalidated during load, not caching",
				zap.String("version", loaded.Version))
			return loaded, nil
		}

		monitoring.ExpectationsLoads.WithLabelValues("ok").Inc()
		zap.L().Info("expectations: table loaded",
			zap.String("version", loaded.Version),
			zap.Int("industries", len(loaded.Industries)),
		)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Invalidate drops the cached table so the next Load rereads the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget("table")
}

// Version returns the cached table's version, or "" when nothing is loaded.
func (c *Cache) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil {
		return ""
	}
	return c.table.Version
}

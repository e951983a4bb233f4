package decision

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tailored-agentic-units/feasibility/assessment"
)

const defaultCacheSize = 256

// CachedEngine memoizes evaluations by bundle content hash. Evaluation is
// pure, so a cached record is interchangeable with a fresh one. Callers
// receive clones; the cached record itself is never exposed.
type CachedEngine struct {
	engine Evaluator
	cache  *lru.Cache[string, *Record]
}

// NewCachedEngine wraps engine with an LRU of the given size. A size of
// zero or less selects the default.
func NewCachedEngine(engine Evaluator, size int) (*CachedEngine, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *Record](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision cache: %w", err)
	}
	return &CachedEngine{engine: engine, cache: cache}, nil
}

// Evaluate returns the cached record for bundle's content, evaluating and
// caching it on a miss. Invalid bundles are never cached.
func (c *CachedEngine) Evaluate(bundle *assessment.Bundle) (*Record, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	key, err := bundle.Hash()
	if err != nil {
		return c.engine.Evaluate(bundle)
	}

	if record, ok := c.cache.Get(key); ok {
		return record.Clone(), nil
	}

	record, err := c.engine.Evaluate(bundle)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, record)
	return record.Clone(), nil
}

// Len returns the number of cached records.
func (c *CachedEngine) Len() int {
	return c.cache.Len()
}

// Purge drops every cached record.
func (c *CachedEngine) Purge() {
	c.cache.Purge()
}

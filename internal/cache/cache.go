package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sandeepkv93/habitd/internal/model"
)

const (
	// DefaultTTL keeps results just long enough to absorb re-render bursts.
	// This is an amplification guard, not a correctness cache.
	DefaultTTL = 3 * time.Second

	defaultSize = 512
)

// Key identifies one evaluation result. Two keys differ whenever anything
// that can change the verdict differs.
type Key struct {
	Section string
	Item    string
	Day     model.Day
	Live    bool
}

type EventKind string

const (
	EventItemToggled    EventKind = "item-toggled"
	EventRoutineUpdated EventKind = "routine-updated"
)

// Event describes one invalidation that happened, delivered to registered
// observers so triggers stay traceable.
type Event struct {
	Kind    EventKind
	Section string
	Item    string
}

type Stats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
}

// ResultCache memoizes evaluator output for a few seconds. It is an
// explicitly constructed instance owned by the application root; freshness
// beyond the TTL is governed solely by the invalidation methods.
type ResultCache struct {
	lru *expirable.LRU[Key, model.ItemEvaluation]

	mu        sync.Mutex
	observers []func(Event)
	stats     Stats
}

func New(ttl time.Duration, size int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if size <= 0 {
		size = defaultSize
	}
	return &ResultCache{
		lru: expirable.NewLRU[Key, model.ItemEvaluation](size, nil, ttl),
	}
}

func (c *ResultCache) Get(key Key) (model.ItemEvaluation, bool) {
	out, ok := c.lru.Get(key)
	c.mu.Lock()
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.mu.Unlock()
	return out, ok
}

func (c *ResultCache) Put(key Key, value model.ItemEvaluation) {
	c.lru.Add(key, value)
}

// Notify registers an observer for invalidation events.
func (c *ResultCache) Notify(fn func(Event)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// InvalidateItem drops every cached result for one item, across all days and
// live-flag values.
func (c *ResultCache) InvalidateItem(section, item string) {
	for _, key := range c.lru.Keys() {
		if key.Section == section && key.Item == item {
			c.lru.Remove(key)
		}
	}
	c.publish(Event{Kind: EventItemToggled, Section: section, Item: item})
}

// InvalidateAll flushes the whole cache.
func (c *ResultCache) InvalidateAll() {
	c.lru.Purge()
	c.publish(Event{Kind: EventRoutineUpdated})
}

func (c *ResultCache) Len() int {
	return c.lru.Len()
}

func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *ResultCache) publish(ev Event) {
	c.mu.Lock()
	c.stats.Invalidations++
	observers := make([]func(Event), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(ev)
	}
}

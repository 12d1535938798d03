package weather

import (
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned when the cache has never been filled or its
// snapshot is older than the freshness TTL.
var ErrUnavailable = errors.New("weather data unavailable")

// Cache holds the latest weather snapshots behind a freshness TTL. A zero
// TTL means snapshots never go stale.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	current    Conditions
	currentAt  time.Time
	forecast   Forecast
	forecastAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

func (c *Cache) SetCurrent(cond Conditions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = cond
	c.currentAt = c.now()
}

func (c *Cache) SetForecast(f Forecast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forecast = f
	c.forecastAt = c.now()
}

// Current returns the cached conditions, or ErrUnavailable when unset or
// stale.
func (c *Cache) Current() (Conditions, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fresh(c.currentAt) {
		return Conditions{}, ErrUnavailable
	}
	return c.current, nil
}

// Forecast returns the cached forecast, or ErrUnavailable when unset or
// stale.
func (c *Cache) Forecast() (Forecast, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fresh(c.forecastAt) {
		return Forecast{}, ErrUnavailable
	}
	return c.forecast, nil
}

func (c *Cache) fresh(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	if c.ttl <= 0 {
		return true
	}
	return c.now().Sub(at) <= c.ttl
}

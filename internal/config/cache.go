package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// Only GET responses of the master-data routes are cached.  Any successful
// mutation on those routes drops every key under Prefix.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
	// Routes lists the path prefixes whose GET responses may be cached.
	Routes []string
	// InvalidateRoutes lists the path prefixes whose successful writes drop
	// the cache.  Reservation writes change unit statuses, so they are
	// included by default.
	InvalidateRoutes []string
}

const defaultCacheRoutes = "/v1/towers,/v1/floors,/v1/room-types,/v1/facilities,/v1/units"

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:          envBool("CACHE_ENABLED", true),
		TTL:              envDur("CACHE_TTL", 30*time.Second),
		Prefix:           envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes:     envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		Routes:           splitList(envStr("CACHE_ROUTES", defaultCacheRoutes)),
		InvalidateRoutes: splitList(envStr("CACHE_INVALIDATE_ROUTES", defaultCacheRoutes+",/v1/reservations")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

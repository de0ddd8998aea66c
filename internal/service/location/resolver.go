package location

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wander/internal/cache"
	"wander/internal/domain/place"
)

// Sensor reads the device's positioning hardware. Reads block until a fix
// is available or the context is done.
type Sensor interface {
	// ReadPosition returns the current coordinate and the age of the fix
	ReadPosition(ctx context.Context) (place.Coordinate, time.Duration, error)
}

// Config tunes the resolver
type Config struct {
	SensorTimeout time.Duration // how long to wait for a fix
	MaxStaleness  time.Duration // oldest acceptable fix
	CacheTTL      time.Duration // how long a resolved coordinate is reused
	Default       place.Coordinate
}

// DefaultConfig returns the resolver defaults
func DefaultConfig() Config {
	return Config{
		SensorTimeout: 10 * time.Second,
		MaxStaleness:  5 * time.Minute,
		CacheTTL:      30 * time.Second,
		// Cancún hotel zone, the app's default anchor
		Default: place.Coordinate{Latitude: 21.1619, Longitude: -86.8515},
	}
}

const cacheKey = "user-location"

// CachingResolver implements place.Resolver. It reads the sensor at most
// once per CacheTTL window; rapid successive queries reuse the cached
// coordinate. Failure is never fatal: on a denied, timed-out or stale
// read the fallback (or the configured default) is returned.
type CachingResolver struct {
	sensor Sensor
	cache  *cache.TTLCache
	cfg    Config
	log    zerolog.Logger
}

// NewCachingResolver creates a resolver backed by the given sensor and cache
func NewCachingResolver(sensor Sensor, c *cache.TTLCache, cfg Config, log zerolog.Logger) *CachingResolver {
	return &CachingResolver{
		sensor: sensor,
		cache:  c,
		cfg:    cfg,
		log:    log,
	}
}

// Resolve returns the user's coordinate. Exactly one sensor read happens
// per resolution unless a fresh cached value exists.
func (r *CachingResolver) Resolve(ctx context.Context, fallback *place.Coordinate) place.Coordinate {
	if cached, ok := r.cache.Get(cacheKey); ok {
		if coord, ok := cached.(place.Coordinate); ok {
			return coord
		}
	}

	coord, err := r.readSensor(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("sensor read failed, using fallback coordinate")
		if fallback != nil {
			return *fallback
		}
		return r.cfg.Default
	}

	r.cache.Set(cacheKey, coord, r.cfg.CacheTTL)
	return coord
}

func (r *CachingResolver) readSensor(ctx context.Context) (place.Coordinate, error) {
	readCtx, cancel := context.WithTimeout(ctx, r.cfg.SensorTimeout)
	defer cancel()

	coord, age, err := r.sensor.ReadPosition(readCtx)
	if err != nil {
		return place.Coordinate{}, err
	}
	if age > r.cfg.MaxStaleness {
		return place.Coordinate{}, ErrStaleFix
	}

	return coord, nil
}

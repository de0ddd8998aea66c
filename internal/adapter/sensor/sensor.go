// internal/adapter/sensor/sensor.go

// Package sensor provides location.Sensor implementations for server
// deployments, where no device positioning hardware exists.
package sensor

import (
	"context"
	"time"

	"wander/internal/domain/place"
	"wander/internal/service/location"
)

// Fixed is a sensor pinned to one coordinate, for deployments anchored
// to a venue (a hotel kiosk, a concierge desk). The fix is always fresh.
type Fixed struct {
	coord place.Coordinate
}

// NewFixed creates a sensor that always reports the given coordinate
func NewFixed(coord place.Coordinate) *Fixed {
	return &Fixed{coord: coord}
}

// ReadPosition returns the pinned coordinate with zero age
func (f *Fixed) ReadPosition(ctx context.Context) (place.Coordinate, time.Duration, error) {
	return f.coord, 0, nil
}

// None is a sensor with no positioning source. Every read fails, so the
// resolver falls back to the caller-supplied or default coordinate.
type None struct{}

// ReadPosition always reports that positioning is unavailable
func (None) ReadPosition(ctx context.Context) (place.Coordinate, time.Duration, error) {
	return place.Coordinate{}, 0, location.ErrUnavailable
}

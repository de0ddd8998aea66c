package location

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"wander/internal/cache"
	"wander/internal/domain/place"
)

type fakeSensor struct {
	coord place.Coordinate
	age   time.Duration
	err   error
	reads int
}

func (f *fakeSensor) ReadPosition(ctx context.Context) (place.Coordinate, time.Duration, error) {
	f.reads++
	if f.err != nil {
		return place.Coordinate{}, 0, f.err
	}
	return f.coord, f.age, nil
}

func newResolver(sensor Sensor) *CachingResolver {
	return NewCachingResolver(sensor, cache.New(), DefaultConfig(), zerolog.Nop())
}

func TestResolve_ReturnsSensorCoordinate(t *testing.T) {
	sensor := &fakeSensor{coord: place.Coordinate{Latitude: 20.5, Longitude: -87.1}}
	r := newResolver(sensor)

	got := r.Resolve(context.Background(), nil)

	assert.Equal(t, sensor.coord, got)
}

func TestResolve_CachesAcrossRapidQueries(t *testing.T) {
	sensor := &fakeSensor{coord: place.Coordinate{Latitude: 20.5, Longitude: -87.1}}
	r := newResolver(sensor)

	r.Resolve(context.Background(), nil)
	r.Resolve(context.Background(), nil)
	r.Resolve(context.Background(), nil)

	assert.Equal(t, 1, sensor.reads, "only the first resolution should touch the sensor")
}

func TestResolve_DeniedFallsBackToSupplied(t *testing.T) {
	sensor := &fakeSensor{err: ErrPermissionDenied}
	r := newResolver(sensor)

	fallback := place.Coordinate{Latitude: 19.4, Longitude: -99.1}
	got := r.Resolve(context.Background(), &fallback)

	assert.Equal(t, fallback, got)
}

func TestResolve_DeniedWithoutFallbackUsesDefault(t *testing.T) {
	sensor := &fakeSensor{err: ErrUnavailable}
	r := newResolver(sensor)

	got := r.Resolve(context.Background(), nil)

	assert.Equal(t, DefaultConfig().Default, got)
}

func TestResolve_StaleFixTreatedAsFailure(t *testing.T) {
	sensor := &fakeSensor{
		coord: place.Coordinate{Latitude: 20.5, Longitude: -87.1},
		age:   10 * time.Minute,
	}
	r := newResolver(sensor)

	fallback := place.Coordinate{Latitude: 19.4, Longitude: -99.1}
	got := r.Resolve(context.Background(), &fallback)

	assert.Equal(t, fallback, got)
}

func TestResolve_FailureNeverCached(t *testing.T) {
	sensor := &fakeSensor{err: ErrUnavailable}
	r := newResolver(sensor)

	r.Resolve(context.Background(), nil)

	// Recovering sensor is read again on the next resolution
	sensor.err = nil
	sensor.coord = place.Coordinate{Latitude: 20.5, Longitude: -87.1}
	got := r.Resolve(context.Background(), nil)

	assert.Equal(t, sensor.coord, got)
	assert.Equal(t, 2, sensor.reads)
}

package usecase_test

import (
	"context"
	"sync"
	"time"

	"geozone-backend/config"
	"geozone-backend/internal/domain"
	"geozone-backend/pkg/geo"
)

func testConfig() *config.Config {
	return &config.Config{
		ZoneOverlapMode:        config.OverlapModeVertex,
		CacheZoneTTL:           time.Minute,
		VariantDefaultPageSize: 10,
		VariantMaxPageSize:     100,
		ZoneDefaultPageSize:    10,
		ZoneMaxPageSize:        100,
		ZoneMapObjectKey:       "zones/map.geojson",
	}
}

// rect builds a valid five-vertex rectangle: four corners plus the midpoint
// of the bottom edge.
func rect(lat0, lng0, lat1, lng1 float64) []geo.Point {
	return []geo.Point{
		{Lat: lat0, Lng: lng0},
		{Lat: lat0, Lng: (lng0 + lng1) / 2},
		{Lat: lat0, Lng: lng1},
		{Lat: lat1, Lng: lng1},
		{Lat: lat1, Lng: lng0},
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func polygon(pts []geo.Point) geo.Polygon { return geo.LoadPolygon(pts) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ZoneEvent
	err    error
}

func (p *recordingPublisher) PublishZoneEvent(ctx context.Context, event domain.ZoneEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingMetrics struct {
	mu          sync.Mutex
	resolutions map[string]int
	overlaps    int
	writes      map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{resolutions: map[string]int{}, writes: map[string]int{}}
}

func (m *recordingMetrics) ObserveResolution(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolutions[outcome]++
}

func (m *recordingMetrics) ObserveOverlapRejection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlaps++
}

func (m *recordingMetrics) ObserveZoneWrite(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[op]++
}

// countingZoneRepo counts ListActiveZones calls on top of a real repository.
type countingZoneRepo struct {
	domain.ZoneRepository
	mu    sync.Mutex
	lists int
}

func (r *countingZoneRepo) ListActiveZones(ctx context.Context) ([]domain.Zone, error) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()
	return r.ZoneRepository.ListActiveZones(ctx)
}

func (r *countingZoneRepo) listCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

type mockVariantRepo struct {
	ListVariantsByZonesFn func(ctx context.Context, filter domain.VariantZoneFilter) ([]domain.ProductVariant, int64, error)
}

func (m *mockVariantRepo) ListVariantsByZones(ctx context.Context, filter domain.VariantZoneFilter) ([]domain.ProductVariant, int64, error) {
	return m.ListVariantsByZonesFn(ctx, filter)
}

type mockStorage struct {
	UploadObjectFn func(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

func (m *mockStorage) UploadObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return m.UploadObjectFn(ctx, key, data, contentType)
}

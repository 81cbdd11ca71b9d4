package usecase

import (
	"context"
	"fmt"

	"geozone-backend/config"
	"geozone-backend/internal/domain"
	"geozone-backend/pkg/cache"
	"geozone-backend/pkg/geo"
	"geozone-backend/pkg/logger"
)

// SpatialResolver answers which zones cover a point. Every lookup is a full
// scan over the active zones; the list itself may come from cache and can be
// up to CACHE_ZONE_TTL stale.
type SpatialResolver struct {
	zones   domain.ZoneReader
	cache   cache.CacheService
	metrics ZoneMetrics
	version *ZoneVersion
	cfg     *config.Config
}

// NewSpatialResolver builds a resolver. version should be the one shared with
// the ZoneUsecase writing to the same cache.
func NewSpatialResolver(zones domain.ZoneReader, cache cache.CacheService, metrics ZoneMetrics, version *ZoneVersion, cfg *config.Config) *SpatialResolver {
	return &SpatialResolver{
		zones:   zones,
		cache:   cache,
		metrics: metrics,
		version: version,
		cfg:     cfg,
	}
}

// FindZonesContainingPoint returns every active zone containing pt,
// deliverable or not, in repository order.
func (r *SpatialResolver) FindZonesContainingPoint(ctx context.Context, pt geo.Point) ([]domain.Zone, error) {
	zones, err := r.activeZones(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Zone, 0)
	for i := range zones {
		if zones[i].IsDeleted || !zones[i].IsActive {
			continue
		}
		if zones[i].Polygon.Contains(pt) {
			matched = append(matched, zones[i])
		}
	}
	return matched, nil
}

// Resolve classifies pt as outside the service area, covered but not
// deliverable, or deliverable through one or more zones.
func (r *SpatialResolver) Resolve(ctx context.Context, pt geo.Point) (*domain.ZoneMatchResult, error) {
	matched, err := r.FindZonesContainingPoint(ctx, pt)
	if err != nil {
		return nil, err
	}

	result := &domain.ZoneMatchResult{ZoneIDs: []int64{}, Matched: matched}
	for _, z := range matched {
		if z.IsDeliverable {
			result.ZoneIDs = append(result.ZoneIDs, z.ID)
		}
	}
	switch {
	case len(matched) == 0:
		result.Status = domain.ResolutionOutsideServiceArea
	case len(result.ZoneIDs) == 0:
		result.Status = domain.ResolutionNotDeliverable
	default:
		result.Status = domain.ResolutionDeliverable
	}

	if r.metrics != nil {
		r.metrics.ObserveResolution(result.Status)
	}
	logger.WithContext(ctx).Debug().
		Float64("lat", pt.Lat).
		Float64("lng", pt.Lng).
		Str("status", result.Status).
		Ints64("zone_ids", result.ZoneIDs).
		Msg("Location resolved")

	return result, nil
}

func (r *SpatialResolver) activeZones(ctx context.Context) ([]domain.Zone, error) {
	if zones, ok := cache.GetAs[[]domain.Zone](r.cache, activeZonesCacheKey); ok {
		return zones, nil
	}

	seen := r.version.Load()
	zones, err := r.zones.ListActiveZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active zones: %w", err)
	}

	if r.cache != nil && r.cfg.CacheZoneTTL > 0 {
		cacheIfCurrent(r.cache, r.version, seen, activeZonesCacheKey, zones, r.cfg.CacheZoneTTL)
	}
	return zones, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"geozone-backend/config"
	"geozone-backend/internal/domain"
	"geozone-backend/pkg/cache"
	"geozone-backend/pkg/geo"
	"geozone-backend/pkg/logger"

	geojson "github.com/paulmach/go.geojson"
)

const (
	activeZonesCacheKey = "zone:active:all"
	zoneMapCacheKey     = "zone:map:geojson"

	zoneMapContentType = "application/geo+json"
)

var ErrMapPublishingDisabled = errors.New("zone map publishing is not configured")

// ObjectStorage is the slice of pkg/storage the zone map publisher needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ZoneMetrics is satisfied by *metrics.Collector.
type ZoneMetrics interface {
	ObserveResolution(outcome string)
	ObserveOverlapRejection()
	ObserveZoneWrite(op string)
}

type CreateZoneRequest struct {
	ZoneName      string
	City          string
	State         string
	Polygon       []geo.Point
	IsDeliverable *bool
	IsActive      *bool
}

// UpdateZoneRequest is a partial update. Nil fields are left untouched and a
// nil Polygon skips validation and the overlap check entirely.
type UpdateZoneRequest struct {
	ZoneName      *string
	City          *string
	State         *string
	Polygon       []geo.Point
	IsDeliverable *bool
	IsActive      *bool
}

type ZoneUsecase struct {
	repo    domain.ZoneRepository
	tm      domain.TransactionManager
	guard   *OverlapGuard
	cache   cache.CacheService
	events  domain.ZoneEventPublisher
	metrics ZoneMetrics
	storage ObjectStorage
	version *ZoneVersion
	cfg     *config.Config
	now     func() time.Time
}

// NewZoneUsecase wires the zone write path. storage may be nil, in which case
// PublishZoneMap returns ErrMapPublishingDisabled. version is bumped after
// every committed write and must be shared with the SpatialResolver.
func NewZoneUsecase(
	repo domain.ZoneRepository,
	tm domain.TransactionManager,
	cache cache.CacheService,
	events domain.ZoneEventPublisher,
	metrics ZoneMetrics,
	storage ObjectStorage,
	version *ZoneVersion,
	cfg *config.Config,
) *ZoneUsecase {
	return &ZoneUsecase{
		repo:    repo,
		tm:      tm,
		guard:   NewOverlapGuard(cfg.ZoneOverlapMode),
		cache:   cache,
		events:  events,
		metrics: metrics,
		storage: storage,
		version: version,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (uc *ZoneUsecase) CreateZone(ctx context.Context, req CreateZoneRequest) (*domain.Zone, error) {
	name := strings.TrimSpace(req.ZoneName)
	city := strings.TrimSpace(req.City)
	state := strings.TrimSpace(req.State)
	for _, f := range [][2]string{{"zone_name", name}, {"city", city}, {"state", state}} {
		if f[1] == "" {
			return nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidZone, f[0])
		}
	}

	poly, err := geo.NewPolygon(req.Polygon)
	if err != nil {
		return nil, err
	}

	zone := &domain.Zone{
		ZoneName:      name,
		City:          city,
		State:         state,
		Polygon:       poly,
		IsDeliverable: boolOr(req.IsDeliverable, false),
		IsActive:      boolOr(req.IsActive, true),
	}

	err = uc.tm.Do(ctx, func(ctx context.Context) error {
		existing, err := uc.repo.ListActiveZones(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active zones: %w", err)
		}
		if err := uc.guard.Check(poly, existing, 0); err != nil {
			return err
		}

		now := uc.now()
		zone.CreatedAt = now
		zone.UpdatedAt = now
		return uc.repo.CreateZone(ctx, zone)
	})
	if err != nil {
		uc.observeRejection(ctx, err)
		return nil, err
	}

	uc.afterWrite(ctx, domain.ZoneEventCreated, zone)
	return zone, nil
}

func (uc *ZoneUsecase) UpdateZone(ctx context.Context, id int64, req UpdateZoneRequest) (*domain.Zone, error) {
	var poly *geo.Polygon
	if req.Polygon != nil {
		p, err := geo.NewPolygon(req.Polygon)
		if err != nil {
			return nil, err
		}
		poly = &p
	}

	var updated *domain.Zone
	err := uc.tm.Do(ctx, func(ctx context.Context) error {
		zone, err := uc.repo.GetLiveZoneByID(ctx, id)
		if err != nil {
			return err
		}

		if poly != nil {
			existing, err := uc.repo.ListActiveZones(ctx)
			if err != nil {
				return fmt.Errorf("failed to load active zones: %w", err)
			}
			if err := uc.guard.Check(*poly, existing, id); err != nil {
				return err
			}
			zone.Polygon = *poly
		}

		if v := trimmed(req.ZoneName); v != "" {
			zone.ZoneName = v
		}
		if v := trimmed(req.City); v != "" {
			zone.City = v
		}
		if v := trimmed(req.State); v != "" {
			zone.State = v
		}
		if req.IsDeliverable != nil {
			zone.IsDeliverable = *req.IsDeliverable
		}
		if req.IsActive != nil {
			zone.IsActive = *req.IsActive
		}

		zone.IsUpdated = true
		zone.UpdatedAt = uc.now()
		if err := uc.repo.UpdateZone(ctx, zone); err != nil {
			return err
		}
		updated = zone
		return nil
	})
	if err != nil {
		uc.observeRejection(ctx, err)
		return nil, err
	}

	uc.afterWrite(ctx, domain.ZoneEventUpdated, updated)
	return updated, nil
}

// DeleteZone soft-deletes the zone. Its ground becomes free for new zones
// and it stops resolving, but the row stays readable through GetZone.
func (uc *ZoneUsecase) DeleteZone(ctx context.Context, id int64) (*domain.Zone, error) {
	var deleted *domain.Zone
	err := uc.tm.Do(ctx, func(ctx context.Context) error {
		zone, err := uc.repo.SoftDeleteZone(ctx, id, uc.now())
		if err != nil {
			return err
		}
		deleted = zone
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, domain.ZoneEventDeleted, deleted)
	return deleted, nil
}

// GetZone returns the zone including soft-deleted rows.
func (uc *ZoneUsecase) GetZone(ctx context.Context, id int64) (*domain.Zone, error) {
	return uc.repo.GetZoneByID(ctx, id)
}

func (uc *ZoneUsecase) ListZones(ctx context.Context, page, limit int, search string) ([]domain.Zone, domain.Pagination, error) {
	page, limit = normalizePage(page, limit, uc.cfg.ZoneDefaultPageSize, uc.cfg.ZoneMaxPageSize)

	zones, total, err := uc.repo.ListZones(ctx, domain.ZoneListFilter{
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to list zones: %w", err)
	}
	return zones, domain.NewPagination(page, limit, total), nil
}

// ListZonePolygons returns the active zones that have a polygon, for map
// drawing.
func (uc *ZoneUsecase) ListZonePolygons(ctx context.Context) ([]domain.ZonePolygon, error) {
	zones, err := uc.repo.ListActiveZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active zones: %w", err)
	}

	out := make([]domain.ZonePolygon, 0, len(zones))
	for _, z := range zones {
		if z.Polygon.IsEmpty() {
			continue
		}
		out = append(out, domain.ZonePolygon{ZoneID: z.ID, ZoneName: z.ZoneName, Polygon: z.Polygon})
	}
	return out, nil
}

// ZoneMap renders the active zones as a GeoJSON FeatureCollection.
func (uc *ZoneUsecase) ZoneMap(ctx context.Context) (*geojson.FeatureCollection, error) {
	if fc, ok := cache.GetAs[*geojson.FeatureCollection](uc.cache, zoneMapCacheKey); ok {
		return fc, nil
	}

	seen := uc.version.Load()
	zones, err := uc.repo.ListActiveZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active zones: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		if z.Polygon.IsEmpty() {
			continue
		}
		f := geojson.NewFeature(z.Polygon.GeoJSON())
		f.ID = z.ID
		f.SetProperty("zoneId", z.ID)
		f.SetProperty("zoneName", z.ZoneName)
		f.SetProperty("city", z.City)
		f.SetProperty("state", z.State)
		f.SetProperty("isDeliverable", z.IsDeliverable)
		fc.AddFeature(f)
	}

	if uc.cache != nil && uc.cfg.CacheZoneTTL > 0 {
		cacheIfCurrent(uc.cache, uc.version, seen, zoneMapCacheKey, fc, uc.cfg.CacheZoneTTL)
	}
	return fc, nil
}

// PublishZoneMap uploads the current zone map to object storage and returns
// its public URL.
func (uc *ZoneUsecase) PublishZoneMap(ctx context.Context) (string, error) {
	if uc.storage == nil {
		return "", ErrMapPublishingDisabled
	}

	fc, err := uc.ZoneMap(ctx)
	if err != nil {
		return "", err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode zone map: %w", err)
	}

	url, err := uc.storage.UploadObject(ctx, uc.cfg.ZoneMapObjectKey, data, zoneMapContentType)
	if err != nil {
		return "", err
	}

	logger.WithContext(ctx).Info().
		Str("url", url).
		Int("zones", len(fc.Features)).
		Msg("Zone map published")
	return url, nil
}

func (uc *ZoneUsecase) afterWrite(ctx context.Context, op string, zone *domain.Zone) {
	uc.version.bump()
	if uc.cache != nil {
		uc.cache.Delete(activeZonesCacheKey)
		uc.cache.Delete(zoneMapCacheKey)
	}
	if uc.metrics != nil {
		uc.metrics.ObserveZoneWrite(op)
	}

	log := logger.WithContext(ctx)
	log.Info().
		Str("op", op).
		Int64("zone_id", zone.ID).
		Str("zone_name", zone.ZoneName).
		Msg("Zone written")

	if uc.events == nil {
		return
	}
	event := domain.ZoneEvent{
		Type:          op,
		ZoneID:        zone.ID,
		ZoneName:      zone.ZoneName,
		IsDeliverable: zone.IsDeliverable,
		IsActive:      zone.IsActive,
		OccurredAt:    uc.now(),
	}
	if err := uc.events.PublishZoneEvent(ctx, event); err != nil {
		log.Warn().Err(err).Int64("zone_id", zone.ID).Msg("Failed to publish zone event")
	}
}

func (uc *ZoneUsecase) observeRejection(ctx context.Context, err error) {
	var overlap *domain.OverlapError
	if !errors.As(err, &overlap) {
		return
	}
	if uc.metrics != nil {
		uc.metrics.ObserveOverlapRejection()
	}
	logger.WithContext(ctx).Info().
		Int64("conflicting_zone_id", overlap.ZoneID).
		Float64("lat", overlap.Point.Lat).
		Float64("lng", overlap.Point.Lng).
		Msg("Zone rejected: overlap")
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

// normalizePage clamps page to >= 1 and limit to [1, max], substituting def
// for a non-positive limit.
func normalizePage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return page, limit
}

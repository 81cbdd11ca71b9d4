package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"geozone-backend/internal/domain"
)

type zoneRepository struct {
	mu     sync.RWMutex
	nextID int64
	zones  map[int64]domain.Zone
}

// NewZoneRepository returns an in-process zone store. It backs
// STORAGE_DRIVER=memory and the usecase tests.
func NewZoneRepository(seed ...domain.Zone) domain.ZoneRepository {
	r := &zoneRepository{zones: make(map[int64]domain.Zone)}
	for _, z := range seed {
		if z.ID == 0 {
			r.nextID++
			z.ID = r.nextID
		} else if z.ID > r.nextID {
			r.nextID = z.ID
		}
		r.zones[z.ID] = z
	}
	return r
}

func (r *zoneRepository) ListActiveZones(ctx context.Context) ([]domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Zone, 0, len(r.zones))
	for _, z := range r.zones {
		if z.IsActive && !z.IsDeleted {
			out = append(out, z)
		}
	}
	sortByID(out)
	return out, nil
}

func (r *zoneRepository) GetZoneByID(ctx context.Context, id int64) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	z, ok := r.zones[id]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	return &z, nil
}

func (r *zoneRepository) GetLiveZoneByID(ctx context.Context, id int64) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	z, ok := r.zones[id]
	if !ok || z.IsDeleted {
		return nil, domain.ErrZoneNotFound
	}
	return &z, nil
}

func (r *zoneRepository) ListZones(ctx context.Context, filter domain.ZoneListFilter) ([]domain.Zone, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]domain.Zone, 0, len(r.zones))
	for _, z := range r.zones {
		if z.IsDeleted {
			continue
		}
		if search != "" && !matchesSearch(z, search) {
			continue
		}
		matched = append(matched, z)
	}

	// newest first
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	return paginate(matched, filter.Offset, filter.Limit), total, nil
}

func (r *zoneRepository) CreateZone(ctx context.Context, zone *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.nextID++
	zone.ID = r.nextID
	if zone.CreatedAt.IsZero() {
		zone.CreatedAt = now
	}
	zone.UpdatedAt = zone.CreatedAt
	r.zones[zone.ID] = *zone
	return nil
}

func (r *zoneRepository) UpdateZone(ctx context.Context, zone *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.zones[zone.ID]
	if !ok || existing.IsDeleted {
		return domain.ErrZoneNotFound
	}
	zone.CreatedAt = existing.CreatedAt
	r.zones[zone.ID] = *zone
	return nil
}

func (r *zoneRepository) SoftDeleteZone(ctx context.Context, id int64, deletedAt time.Time) (*domain.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	z, ok := r.zones[id]
	if !ok || z.IsDeleted {
		return nil, domain.ErrZoneNotFound
	}
	z.IsDeleted = true
	z.IsActive = false
	z.DeletedAt = &deletedAt
	z.UpdatedAt = deletedAt
	r.zones[id] = z
	return &z, nil
}

func matchesSearch(z domain.Zone, needle string) bool {
	for _, field := range []string{z.ZoneName, z.City, z.State} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortByID(zones []domain.Zone) {
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

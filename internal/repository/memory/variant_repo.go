package memory

import (
	"context"
	"sort"
	"sync"

	"geozone-backend/internal/domain"
)

type variantRepository struct {
	mu       sync.RWMutex
	variants []domain.ProductVariant
}

// NewVariantRepository holds a fixed catalog. Variants are owned by the
// catalog service so there is no write path here.
func NewVariantRepository(variants ...domain.ProductVariant) domain.VariantRepository {
	cp := make([]domain.ProductVariant, len(variants))
	copy(cp, variants)
	return &variantRepository{variants: cp}
}

func (r *variantRepository) ListVariantsByZones(ctx context.Context, filter domain.VariantZoneFilter) ([]domain.ProductVariant, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(filter.ZoneIDs) == 0 {
		return []domain.ProductVariant{}, 0, nil
	}
	zones := make(map[int64]struct{}, len(filter.ZoneIDs))
	for _, id := range filter.ZoneIDs {
		zones[id] = struct{}{}
	}

	matched := make([]domain.ProductVariant, 0)
	for _, v := range r.variants {
		if !v.IsActive {
			continue
		}
		if _, ok := zones[v.ZoneID]; !ok {
			continue
		}
		if filter.CategoryID != nil && (v.CategoryID == nil || *v.CategoryID != *filter.CategoryID) {
			continue
		}
		matched = append(matched, v)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	return paginate(matched, filter.Offset, filter.Limit), total, nil
}

package usecase

import (
	"context"
	"fmt"

	"geozone-backend/config"
	"geozone-backend/internal/domain"
	"geozone-backend/pkg/geo"
)

type VariantQuery struct {
	Point      geo.Point
	Page       int
	PageSize   int
	CategoryID *int64
}

type VariantPage struct {
	Items      []domain.ProductVariant
	ZoneIDs    []int64
	Pagination domain.Pagination
}

// VariantUsecase gates catalog variants by delivery coverage.
type VariantUsecase struct {
	resolver *SpatialResolver
	repo     domain.VariantRepository
	cfg      *config.Config
}

func NewVariantUsecase(resolver *SpatialResolver, repo domain.VariantRepository, cfg *config.Config) *VariantUsecase {
	return &VariantUsecase{
		resolver: resolver,
		repo:     repo,
		cfg:      cfg,
	}
}

// ListDeliverableVariants returns the variants sold in the zones that deliver
// to q.Point. A location without deliverable coverage yields a
// *domain.ServiceAreaError and the variant store is not queried.
func (uc *VariantUsecase) ListDeliverableVariants(ctx context.Context, q VariantQuery) (*VariantPage, error) {
	match, err := uc.resolver.Resolve(ctx, q.Point)
	if err != nil {
		return nil, err
	}
	if !match.Deliverable() {
		return nil, domain.NewServiceAreaError(match.Status)
	}

	page, size := normalizePage(q.Page, q.PageSize, uc.cfg.VariantDefaultPageSize, uc.cfg.VariantMaxPageSize)

	items, total, err := uc.repo.ListVariantsByZones(ctx, domain.VariantZoneFilter{
		ZoneIDs:    match.ZoneIDs,
		CategoryID: q.CategoryID,
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	return &VariantPage{
		Items:      items,
		ZoneIDs:    match.ZoneIDs,
		Pagination: domain.NewPagination(page, size, total),
	}, nil
}

package domain

import (
	"context"
	"time"
)

// ProductVariant is a sellable configuration scoped to one zone. It is owned
// by the catalog and read-only here.
type ProductVariant struct {
	ID            int64     `json:"id"`
	UUID          string    `json:"uuId"`
	ProductID     int64     `json:"productId"`
	ProductName   string    `json:"productName"`
	ProductSlug   string    `json:"productSlug"`
	CategoryID    *int64    `json:"categoryId"`
	ZoneID        int64     `json:"zoneId"`
	UOMID         int64     `json:"uomId"`
	UOMName       string    `json:"uomName"`
	UOMShortName  string    `json:"uomShortName"`
	Quantity      float64   `json:"quantity"`
	ActualPrice   float64   `json:"actualPrice"`
	SellingPrice  float64   `json:"sellingPrice"`
	IsDeliverable bool      `json:"isDeliverable"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// VariantZoneFilter selects active, non-deleted variants in any of ZoneIDs,
// newest first.
type VariantZoneFilter struct {
	ZoneIDs    []int64
	CategoryID *int64
	Limit      int
	Offset     int
}

type VariantRepository interface {
	ListVariantsByZones(ctx context.Context, filter VariantZoneFilter) ([]ProductVariant, int64, error)
}

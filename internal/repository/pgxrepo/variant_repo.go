package pgxrepo

import (
	"context"
	"fmt"

	"geozone-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

type variantRepository struct {
	db *pgxpool.Pool
}

// NewVariantRepository reads the catalog's product_variants table. The
// catalog service owns the rows; this repository never writes.
func NewVariantRepository(db *pgxpool.Pool) domain.VariantRepository {
	return &variantRepository{db: db}
}

const variantFilter = `
	FROM product_variants pv
	JOIN products p ON p.id = pv.product_id
	JOIN uoms u ON u.id = pv.uom_id
	WHERE pv.zone_id = ANY($1)
	  AND pv.is_delete = FALSE
	  AND pv.is_active = TRUE
	  AND ($2::BIGINT IS NULL OR p.category_id = $2)`

// ListVariantsByZones runs the count and the page query concurrently on
// separate pool connections. They are not one snapshot, so the total may
// disagree with the page while the catalog is being written.
func (r *variantRepository) ListVariantsByZones(ctx context.Context, filter domain.VariantZoneFilter) ([]domain.ProductVariant, int64, error) {
	if len(filter.ZoneIDs) == 0 {
		return []domain.ProductVariant{}, 0, nil
	}

	var category pgtype.Int8
	if filter.CategoryID != nil {
		category = pgtype.Int8{Int64: *filter.CategoryID, Valid: true}
	}

	var (
		total    int64
		variants []domain.ProductVariant
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := r.db.QueryRow(gctx, `SELECT COUNT(*) `+variantFilter, filter.ZoneIDs, category).Scan(&total)
		if err != nil {
			return fmt.Errorf("count variants: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.db.Query(gctx, `
			SELECT pv.id, pv.uu_id, pv.product_id, p.name, p.slug, p.category_id, pv.zone_id,
			       pv.uom_id, u.name, u.short_name, pv.quantity, pv.actual_price, pv.selling_price,
			       pv.is_deliverable, pv.is_active, pv.created_at
			`+variantFilter+`
			ORDER BY pv.created_at DESC, pv.id DESC
			LIMIT $3 OFFSET $4
		`, filter.ZoneIDs, category, filter.Limit, filter.Offset)
		if err != nil {
			return fmt.Errorf("query variants: %w", err)
		}
		defer rows.Close()

		out := make([]domain.ProductVariant, 0, filter.Limit)
		for rows.Next() {
			var (
				v            domain.ProductVariant
				uuid         pgtype.Text
				slug         pgtype.Text
				categoryID   pgtype.Int8
				uomID        pgtype.Int8
				uomName      pgtype.Text
				uomShortName pgtype.Text
				quantity     pgtype.Numeric
				actualPrice  pgtype.Numeric
				sellingPrice pgtype.Numeric
				createdAt    pgtype.Timestamptz
			)
			if err := rows.Scan(&v.ID, &uuid, &v.ProductID, &v.ProductName, &slug, &categoryID, &v.ZoneID,
				&uomID, &uomName, &uomShortName, &quantity, &actualPrice, &sellingPrice,
				&v.IsDeliverable, &v.IsActive, &createdAt); err != nil {
				return fmt.Errorf("scan variant: %w", err)
			}
			v.UUID = textToString(uuid)
			v.ProductSlug = textToString(slug)
			v.CategoryID = int8ToPtr(categoryID)
			if uomID.Valid {
				v.UOMID = uomID.Int64
			}
			v.UOMName = textToString(uomName)
			v.UOMShortName = textToString(uomShortName)
			v.Quantity = numericToFloat64(quantity)
			v.ActualPrice = numericToFloat64(actualPrice)
			v.SellingPrice = numericToFloat64(sellingPrice)
			v.CreatedAt = pgtimeToTime(createdAt)
			out = append(out, v)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		variants = out
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return variants, total, nil
}

package pgxrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geozone-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const zoneColumns = `id, zone_name, city, state, polygon, is_deliverable, is_active,
	is_update, is_delete, deleted_at, created_at, updated_at`

type zoneRepository struct {
	db *pgxpool.Pool
}

func NewZoneRepository(db *pgxpool.Pool) domain.ZoneRepository {
	return &zoneRepository{db: db}
}

func (r *zoneRepository) ListActiveZones(ctx context.Context) ([]domain.Zone, error) {
	rows, err := dbFromContext(ctx, r.db).Query(ctx, `
		SELECT `+zoneColumns+`
		FROM zones
		WHERE is_active = TRUE AND is_delete = FALSE
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return collectZones(rows)
}

func (r *zoneRepository) GetZoneByID(ctx context.Context, id int64) (*domain.Zone, error) {
	row := dbFromContext(ctx, r.db).QueryRow(ctx, `
		SELECT `+zoneColumns+` FROM zones WHERE id = $1
	`, id)
	return scanZoneRow(row)
}

func (r *zoneRepository) GetLiveZoneByID(ctx context.Context, id int64) (*domain.Zone, error) {
	row := dbFromContext(ctx, r.db).QueryRow(ctx, `
		SELECT `+zoneColumns+` FROM zones WHERE id = $1 AND is_delete = FALSE
	`, id)
	return scanZoneRow(row)
}

func (r *zoneRepository) ListZones(ctx context.Context, filter domain.ZoneListFilter) ([]domain.Zone, int64, error) {
	db := dbFromContext(ctx, r.db)

	where := `WHERE is_delete = FALSE`
	args := []any{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where += ` AND (zone_name ILIKE $1 OR city ILIKE $1 OR state ILIKE $1)`
	}

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM zones `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM zones %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, zoneColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	zones, err := collectZones(rows)
	if err != nil {
		return nil, 0, err
	}
	return zones, total, nil
}

func (r *zoneRepository) CreateZone(ctx context.Context, zone *domain.Zone) error {
	polygon, err := encodePolygon(zone.Polygon)
	if err != nil {
		return err
	}

	return dbFromContext(ctx, r.db).QueryRow(ctx, `
		INSERT INTO zones (zone_name, city, state, polygon, is_deliverable, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at
	`, zone.ZoneName, zone.City, zone.State, polygon, zone.IsDeliverable, zone.IsActive, zone.CreatedAt).
		Scan(&zone.ID, &zone.CreatedAt, &zone.UpdatedAt)
}

func (r *zoneRepository) UpdateZone(ctx context.Context, zone *domain.Zone) error {
	polygon, err := encodePolygon(zone.Polygon)
	if err != nil {
		return err
	}

	tag, err := dbFromContext(ctx, r.db).Exec(ctx, `
		UPDATE zones
		SET zone_name = $2, city = $3, state = $4, polygon = $5,
		    is_deliverable = $6, is_active = $7, is_update = $8, updated_at = $9
		WHERE id = $1 AND is_delete = FALSE
	`, zone.ID, zone.ZoneName, zone.City, zone.State, polygon,
		zone.IsDeliverable, zone.IsActive, zone.IsUpdated, zone.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}

func (r *zoneRepository) SoftDeleteZone(ctx context.Context, id int64, deletedAt time.Time) (*domain.Zone, error) {
	row := dbFromContext(ctx, r.db).QueryRow(ctx, `
		UPDATE zones
		SET is_delete = TRUE, is_active = FALSE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_delete = FALSE
		RETURNING `+zoneColumns, id, deletedAt)
	return scanZoneRow(row)
}

func scanZoneRow(row pgx.Row) (*domain.Zone, error) {
	z, err := scanZone(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrZoneNotFound
		}
		return nil, err
	}
	return &z, nil
}

func collectZones(rows pgx.Rows) ([]domain.Zone, error) {
	defer rows.Close()

	zones := make([]domain.Zone, 0)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func scanZone(row pgx.Row) (domain.Zone, error) {
	var (
		z         domain.Zone
		polygon   []byte
		city      pgtype.Text
		state     pgtype.Text
		deletedAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&z.ID, &z.ZoneName, &city, &state, &polygon, &z.IsDeliverable, &z.IsActive,
		&z.IsUpdated, &z.IsDeleted, &deletedAt, &createdAt, &updatedAt); err != nil {
		return domain.Zone{}, err
	}

	poly, err := decodePolygon(polygon)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("zone %d: %w", z.ID, err)
	}
	z.Polygon = poly
	z.City = textToString(city)
	z.State = textToString(state)
	z.DeletedAt = pgtimeToTimePtr(deletedAt)
	z.CreatedAt = pgtimeToTime(createdAt)
	z.UpdatedAt = pgtimeToTime(updatedAt)
	return z, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

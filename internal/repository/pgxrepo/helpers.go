package pgxrepo

import (
	"errors"
	"fmt"
	"time"

	"geozone-backend/pkg/geo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func numericToFloat64(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	f, _ := n.Float64Value()
	return f.Float64
}

func pgtimeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func pgtimeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func int8ToPtr(n pgtype.Int8) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func textToString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// encodePolygon produces the JSONB value for the polygon column.
func encodePolygon(p geo.Polygon) ([]byte, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode polygon: %w", err)
	}
	return b, nil
}

// decodePolygon trusts the stored vertices; they were validated on write.
func decodePolygon(raw []byte) (geo.Polygon, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return geo.Polygon{}, nil
	}
	pts, err := geo.ParsePoints(raw)
	if err != nil {
		return geo.Polygon{}, fmt.Errorf("decode polygon: %w", err)
	}
	return geo.LoadPolygon(pts), nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

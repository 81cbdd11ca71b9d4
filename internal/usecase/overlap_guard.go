package usecase

import (
	"geozone-backend/config"
	"geozone-backend/internal/domain"
	"geozone-backend/pkg/geo"
)

// OverlapGuard rejects polygons that claim ground an existing zone covers.
//
// In vertex mode a conflict is a candidate vertex strictly inside an existing
// zone. Strict mode also reports existing vertices inside the candidate and
// properly crossing edges, which catches containment and criss-cross shapes
// that vertex mode lets through.
type OverlapGuard struct {
	strict bool
}

func NewOverlapGuard(mode string) *OverlapGuard {
	return &OverlapGuard{strict: mode == config.OverlapModeStrict}
}

// Check scans existing in order and returns the first conflict as an
// *domain.OverlapError. excludeID 0 excludes nothing.
func (g *OverlapGuard) Check(candidate geo.Polygon, existing []domain.Zone, excludeID int64) error {
	candidatePts := candidate.Points()

	for i := range existing {
		zone := &existing[i]
		if !zone.IsServing() || (excludeID != 0 && zone.ID == excludeID) {
			continue
		}

		for _, v := range candidatePts {
			if zone.Polygon.Contains(v) {
				return overlapAt(v, zone)
			}
		}

		if !g.strict {
			continue
		}
		for _, v := range zone.Polygon.Points() {
			if candidate.Contains(v) {
				return overlapAt(v, zone)
			}
		}
		if pt, ok := candidate.FirstCrossing(zone.Polygon); ok {
			return overlapAt(pt, zone)
		}
	}
	return nil
}

func overlapAt(pt geo.Point, zone *domain.Zone) *domain.OverlapError {
	return &domain.OverlapError{Point: pt, ZoneID: zone.ID, ZoneName: zone.ZoneName}
}

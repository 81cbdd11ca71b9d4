package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geozone-backend/pkg/geo"
)

// Zone is a named polygonal service area.
type Zone struct {
	ID            int64       `json:"id"`
	ZoneName      string      `json:"zoneName"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	Polygon       geo.Polygon `json:"polygon"`
	IsDeliverable bool        `json:"isDeliverable"`
	IsActive      bool        `json:"isActive"`
	IsUpdated     bool        `json:"isUpdated"`
	IsDeleted     bool        `json:"isDeleted"`
	DeletedAt     *time.Time  `json:"deletedAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsServing reports whether the zone takes part in overlap checks and
// spatial lookups.
func (z *Zone) IsServing() bool {
	return z.IsActive && !z.IsDeleted && !z.Polygon.IsEmpty()
}

// ZonePolygon is the lightweight projection used for map drawing.
type ZonePolygon struct {
	ZoneID   int64       `json:"zoneId"`
	ZoneName string      `json:"zoneName"`
	Polygon  geo.Polygon `json:"polygon"`
}

type ZoneListFilter struct {
	Search string
	Limit  int
	Offset int
}

// ZoneReader is the read side used by spatial resolution.
type ZoneReader interface {
	// ListActiveZones returns zones that are active and not soft-deleted.
	ListActiveZones(ctx context.Context) ([]Zone, error)
}

type ZoneRepository interface {
	ZoneReader

	// GetZoneByID returns the zone even when soft-deleted.
	GetZoneByID(ctx context.Context, id int64) (*Zone, error)
	// GetLiveZoneByID ignores soft-deleted rows.
	GetLiveZoneByID(ctx context.Context, id int64) (*Zone, error)
	ListZones(ctx context.Context, filter ZoneListFilter) ([]Zone, int64, error)

	CreateZone(ctx context.Context, zone *Zone) error
	UpdateZone(ctx context.Context, zone *Zone) error
	SoftDeleteZone(ctx context.Context, id int64, deletedAt time.Time) (*Zone, error)
}

var (
	ErrZoneNotFound = errors.New("zone not found")
	ErrInvalidZone  = errors.New("invalid zone")
)

// OverlapError rejects a polygon that claims ground an existing zone covers.
type OverlapError struct {
	Point    geo.Point
	ZoneID   int64
	ZoneName string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("Lat/Lng (%v, %v) already exists inside zone '%s'", e.Point.Lat, e.Point.Lng, e.ZoneName)
}

// Zone resolution outcomes.
const (
	ResolutionOutsideServiceArea = "outside_service_area"
	ResolutionNotDeliverable     = "not_deliverable"
	ResolutionDeliverable        = "deliverable"
)

// ZoneMatchResult is the answer to "who covers this point and can we deliver".
// ZoneIDs is only populated for ResolutionDeliverable.
type ZoneMatchResult struct {
	Status  string  `json:"status"`
	ZoneIDs []int64 `json:"zoneIds"`
	Matched []Zone  `json:"-"`
}

func (r *ZoneMatchResult) Deliverable() bool {
	return r.Status == ResolutionDeliverable
}

var serviceAreaMessages = map[string]string{
	ResolutionOutsideServiceArea: "Location is outside our service area",
	ResolutionNotDeliverable:     "Delivery is not available in this area",
}

// ServiceAreaError is returned instead of an empty listing when a location
// has no deliverable coverage.
type ServiceAreaError struct {
	Status string
}

func NewServiceAreaError(status string) *ServiceAreaError {
	return &ServiceAreaError{Status: status}
}

func (e *ServiceAreaError) Error() string {
	if msg, ok := serviceAreaMessages[e.Status]; ok {
		return msg
	}
	return "Location cannot be served"
}

// Zone lifecycle events.
const (
	ZoneEventCreated = "created"
	ZoneEventUpdated = "updated"
	ZoneEventDeleted = "deleted"
)

type ZoneEvent struct {
	Type          string    `json:"type"`
	ZoneID        int64     `json:"zoneId"`
	ZoneName      string    `json:"zoneName"`
	IsDeliverable bool      `json:"isDeliverable"`
	IsActive      bool      `json:"isActive"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type ZoneEventPublisher interface {
	PublishZoneEvent(ctx context.Context, event ZoneEvent) error
}

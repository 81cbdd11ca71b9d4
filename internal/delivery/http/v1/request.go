package v1

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/geo"
	"geozone-backend/pkg/utils"

	"github.com/goccy/go-json"
)

const maxZoneBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// zonePayload is a decoded create or update body. Polygon may be a JSON
// array or a string holding one.
type zonePayload struct {
	ZoneName      *string
	City          *string
	State         *string
	Polygon       json.RawMessage
	IsDeliverable *bool
	IsActive      *bool
}

// zoneJSONBody binds camelCase keys and the snake_case keys older admin
// clients send. Anything else is rejected.
type zoneJSONBody struct {
	ZoneName           *string         `json:"zoneName"`
	ZoneNameSnake      *string         `json:"zone_name"`
	City               *string         `json:"city"`
	State              *string         `json:"state"`
	Polygon            json.RawMessage `json:"polygon"`
	IsDeliverable      *bool           `json:"isDeliverable"`
	IsDeliverableSnake *bool           `json:"is_deliverable"`
	IsActive           *bool           `json:"isActive"`
	IsActiveSnake      *bool           `json:"is_active"`
}

func (b *zoneJSONBody) payload() (*zonePayload, error) {
	if b.ZoneName != nil && b.ZoneNameSnake != nil {
		return nil, fmt.Errorf("%w: zoneName and zone_name are both set", errBadRequest)
	}
	if b.IsDeliverable != nil && b.IsDeliverableSnake != nil {
		return nil, fmt.Errorf("%w: isDeliverable and is_deliverable are both set", errBadRequest)
	}
	if b.IsActive != nil && b.IsActiveSnake != nil {
		return nil, fmt.Errorf("%w: isActive and is_active are both set", errBadRequest)
	}
	return &zonePayload{
		ZoneName:      firstNonNil(b.ZoneName, b.ZoneNameSnake),
		City:          b.City,
		State:         b.State,
		Polygon:       b.Polygon,
		IsDeliverable: firstNonNil(b.IsDeliverable, b.IsDeliverableSnake),
		IsActive:      firstNonNil(b.IsActive, b.IsActiveSnake),
	}, nil
}

func firstNonNil[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

func decodeZonePayload(w http.ResponseWriter, r *http.Request) (*zonePayload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxZoneBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return decodeZoneForm(r)
	default:
		var body zoneJSONBody
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			if strings.Contains(err.Error(), "unknown field") {
				return nil, fmt.Errorf("%w: %s", errBadRequest, err.Error())
			}
			return nil, fmt.Errorf("%w: invalid JSON body", errBadRequest)
		}
		return body.payload()
	}
}

func decodeZoneForm(r *http.Request) (*zonePayload, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxZoneBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid form body", errBadRequest)
	}

	p := &zonePayload{
		ZoneName: formString(r, "zone_name"),
		City:     formString(r, "city"),
		State:    formString(r, "state"),
	}
	if v := formString(r, "polygon"); v != nil && strings.TrimSpace(*v) != "" {
		p.Polygon = json.RawMessage(*v)
	}
	if p.IsDeliverable, err = formBool(r, "is_deliverable"); err != nil {
		return nil, err
	}
	if p.IsActive, err = formBool(r, "is_active"); err != nil {
		return nil, err
	}
	return p, nil
}

func formString(r *http.Request, key string) *string {
	vals, ok := r.PostForm[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func formBool(r *http.Request, key string) (*bool, error) {
	v := formString(r, key)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	var b bool
	switch strings.ToLower(strings.TrimSpace(*v)) {
	case "on", "yes":
		b = true
	case "off", "no":
		b = false
	default:
		parsed, err := strconv.ParseBool(strings.TrimSpace(*v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a boolean", errBadRequest, key)
		}
		b = parsed
	}
	return &b, nil
}

// isEmpty reports whether the payload sets no field at all.
func (p *zonePayload) isEmpty() bool {
	poly := strings.TrimSpace(string(p.Polygon))
	return p.ZoneName == nil && p.City == nil && p.State == nil &&
		p.IsDeliverable == nil && p.IsActive == nil &&
		(poly == "" || poly == "null")
}

// points decodes the polygon. nil means no polygon was supplied.
func (p *zonePayload) points() ([]geo.Point, error) {
	raw := strings.TrimSpace(string(p.Polygon))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	pts, err := geo.ParsePoints([]byte(raw))
	if err != nil {
		return nil, err
	}
	if pts == nil {
		pts = []geo.Point{}
	}
	return pts, nil
}

func (p *zonePayload) createRequest() (usecase.CreateZoneRequest, error) {
	pts, err := p.points()
	if err != nil {
		return usecase.CreateZoneRequest{}, err
	}
	if pts == nil {
		pts = []geo.Point{}
	}
	return usecase.CreateZoneRequest{
		ZoneName:      deref(p.ZoneName),
		City:          deref(p.City),
		State:         deref(p.State),
		Polygon:       pts,
		IsDeliverable: p.IsDeliverable,
		IsActive:      p.IsActive,
	}, nil
}

func (p *zonePayload) updateRequest() (usecase.UpdateZoneRequest, error) {
	pts, err := p.points()
	if err != nil {
		return usecase.UpdateZoneRequest{}, err
	}
	return usecase.UpdateZoneRequest{
		ZoneName:      p.ZoneName,
		City:          p.City,
		State:         p.State,
		Polygon:       pts,
		IsDeliverable: p.IsDeliverable,
		IsActive:      p.IsActive,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid zone id", errBadRequest)
	}
	return id, nil
}

// parseLocation reads the lat and lng query parameters.
func parseLocation(r *http.Request) (geo.Point, error) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" || lngStr == "" {
		return geo.Point{}, fmt.Errorf("%w: lat and lng are required", errBadRequest)
	}
	lat, err := utils.ParseFiniteFloat(latStr)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: invalid lat", errBadRequest)
	}
	lng, err := utils.ParseFiniteFloat(lngStr)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: invalid lng", errBadRequest)
	}
	return geo.Point{Lat: lat, Lng: lng}, nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	utils.WriteError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), errBadRequest.Error()+": "))
}

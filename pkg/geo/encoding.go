package geo

import (
	"bytes"

	"github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"
)

type wirePoint struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ParsePoints decodes the polygon wire format, a JSON array of
// {"lat": .., "lng": ..} objects. A JSON string holding that array is also
// accepted since form submissions carry the polygon as text.
func ParsePoints(data []byte) ([]Point, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, &ValidationError{Err: ErrMalformedPolygon}
		}
		data = bytes.TrimSpace([]byte(text))
		if len(data) > 0 && data[0] == '"' {
			return nil, &ValidationError{Err: ErrMalformedPolygon}
		}
	}

	var raw []wirePoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Err: ErrMalformedPolygon}
	}

	points := make([]Point, len(raw))
	for i, wp := range raw {
		if wp.Lat == nil || wp.Lng == nil {
			return nil, &ValidationError{Err: ErrMissingCoordinate}
		}
		points[i] = Point{Lat: *wp.Lat, Lng: *wp.Lng}
	}
	return points, nil
}

// MarshalJSON writes the vertex ring in the same wire format ParsePoints reads.
func (p Polygon) MarshalJSON() ([]byte, error) {
	if p.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.points)
}

// GeoJSON returns the polygon as a GeoJSON geometry. Positions are
// [lng, lat] and the ring is closed as RFC 7946 requires.
func (p Polygon) GeoJSON() *geojson.Geometry {
	ring := make([][]float64, 0, len(p.points)+1)
	for _, pt := range p.points {
		ring = append(ring, []float64{pt.Lng, pt.Lat})
	}
	if len(p.points) > 0 && p.points[0] != p.points[len(p.points)-1] {
		first := p.points[0]
		ring = append(ring, []float64{first.Lng, first.Lat})
	}
	return geojson.NewPolygonGeometry([][][]float64{ring})
}

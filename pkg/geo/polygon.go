package geo

import (
	"errors"
	"fmt"
)

// MinVertices is the smallest vertex count a zone polygon may have.
const MinVertices = 5

var (
	ErrTooFewVertices    = errors.New("polygon must have at least 5 points")
	ErrDuplicateVertex   = errors.New("duplicate lat/lng points are not allowed in polygon")
	ErrMissingCoordinate = errors.New("each point must contain lat & lng")
	ErrMalformedPolygon  = errors.New("polygon must be a JSON array of {lat, lng} points")
)

// ValidationError reports why a submitted polygon was rejected.
// Point is set when the failure is tied to a specific vertex.
type ValidationError struct {
	Err   error
	Point *Point
}

func (e *ValidationError) Error() string {
	if e.Point != nil {
		return fmt.Sprintf("%s: (%v, %v)", e.Err.Error(), e.Point.Lat, e.Point.Lng)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Point is a planar coordinate. Lat is used as y and Lng as x.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is an axis-aligned box in lat/lng space.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Polygon is an immutable ordered vertex ring. The closing edge from the
// last vertex back to the first is implicit.
type Polygon struct {
	points []Point
	bounds Bounds
}

// NewPolygon validates points and builds a Polygon from them.
// Duplicate detection uses exact float equality on both coordinates.
func NewPolygon(points []Point) (Polygon, error) {
	if len(points) < MinVertices {
		return Polygon{}, &ValidationError{Err: ErrTooFewVertices}
	}

	seen := make(map[Point]struct{}, len(points))
	for i := range points {
		if _, dup := seen[points[i]]; dup {
			p := points[i]
			return Polygon{}, &ValidationError{Err: ErrDuplicateVertex, Point: &p}
		}
		seen[points[i]] = struct{}{}
	}

	return LoadPolygon(points), nil
}

// LoadPolygon builds a Polygon without validation. It is meant for rows that
// were validated when they were written.
func LoadPolygon(points []Point) Polygon {
	cp := make([]Point, len(points))
	copy(cp, points)
	return Polygon{points: cp, bounds: boundsOf(cp)}
}

// Points returns a copy of the vertex ring in its original order.
func (p Polygon) Points() []Point {
	cp := make([]Point, len(p.points))
	copy(cp, p.points)
	return cp
}

func (p Polygon) Len() int {
	return len(p.points)
}

func (p Polygon) IsEmpty() bool {
	return len(p.points) == 0
}

func (p Polygon) Bounds() Bounds {
	return p.bounds
}

// Contains reports whether pt lies inside the polygon using even-odd ray
// casting along the point's latitude. Points exactly on an edge have no
// guaranteed outcome.
func (p Polygon) Contains(pt Point) bool {
	n := len(p.points)
	if n < 3 {
		return false
	}
	if !p.bounds.mayContain(pt) {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		yi, xi := p.points[i].Lat, p.points[i].Lng
		yj, xj := p.points[j].Lat, p.points[j].Lng

		if (yi < pt.Lat) != (yj < pt.Lat) {
			xCross := (xj-xi)*(pt.Lat-yi)/(yj-yi) + xi
			if pt.Lng < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// mayContain is the bounding-box pre-filter. The comparisons are strict so a
// point rejected here could never produce an odd crossing count.
func (b Bounds) mayContain(pt Point) bool {
	return !(pt.Lat < b.MinLat || pt.Lat > b.MaxLat || pt.Lng < b.MinLng || pt.Lng > b.MaxLng)
}

// Intersects reports whether two boxes share any area or edge.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinLat <= o.MaxLat && o.MinLat <= b.MaxLat &&
		b.MinLng <= o.MaxLng && o.MinLng <= b.MaxLng
}

func boundsOf(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLng: points[0].Lng, MaxLng: points[0].Lng,
	}
	for _, pt := range points[1:] {
		if pt.Lat < b.MinLat {
			b.MinLat = pt.Lat
		}
		if pt.Lat > b.MaxLat {
			b.MaxLat = pt.Lat
		}
		if pt.Lng < b.MinLng {
			b.MinLng = pt.Lng
		}
		if pt.Lng > b.MaxLng {
			b.MaxLng = pt.Lng
		}
	}
	return b
}

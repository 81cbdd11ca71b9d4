package geo

// orientation returns the sign of the cross product (b-a)x(c-a):
// 1 for counter-clockwise, -1 for clockwise, 0 for collinear.
func orientation(a, b, c Point) int {
	v := (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// SegmentsCross reports a proper crossing between segments a1-a2 and b1-b2.
// Touching endpoints and collinear overlap are not counted.
func SegmentsCross(a1, a2, b1, b2 Point) bool {
	o1 := orientation(a1, a2, b1)
	o2 := orientation(a1, a2, b2)
	o3 := orientation(b1, b2, a1)
	o4 := orientation(b1, b2, a2)
	if o1 == 0 || o2 == 0 || o3 == 0 || o4 == 0 {
		return false
	}
	return o1 != o2 && o3 != o4
}

// FirstCrossing returns the intersection point of the first pair of properly
// crossing edges, scanning p's edges in vertex order.
func (p Polygon) FirstCrossing(q Polygon) (Point, bool) {
	if p.Len() < 2 || q.Len() < 2 || !p.bounds.Intersects(q.bounds) {
		return Point{}, false
	}
	for i := range p.points {
		a1 := p.points[i]
		a2 := p.points[(i+1)%len(p.points)]
		for j := range q.points {
			b1 := q.points[j]
			b2 := q.points[(j+1)%len(q.points)]
			if SegmentsCross(a1, a2, b1, b2) {
				return crossingPoint(a1, a2, b1, b2), true
			}
		}
	}
	return Point{}, false
}

// crossingPoint assumes the segments properly cross, so the denominator is
// never zero.
func crossingPoint(a1, a2, b1, b2 Point) Point {
	rLat, rLng := a2.Lat-a1.Lat, a2.Lng-a1.Lng
	sLat, sLng := b2.Lat-b1.Lat, b2.Lng-b1.Lng
	denom := rLng*sLat - rLat*sLng
	t := ((b1.Lng-a1.Lng)*sLat - (b1.Lat-a1.Lat)*sLng) / denom
	return Point{Lat: a1.Lat + t*rLat, Lng: a1.Lng + t*rLng}
}

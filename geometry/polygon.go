// Package geometry provides the polygon containment test used to associate
// detected dice with annotated ones.
package geometry

import "image"

// Polygon is a closed contour. The last vertex connects back to the first.
type Polygon []image.Point

// Contains reports whether pt lies inside p or on its boundary.
// Polygons with fewer than three vertices contain nothing.
func (p Polygon) Contains(pt image.Point) bool {
	n := len(p)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p[i], p[j]
		if onSegment(a, b, pt) {
			return true
		}
		if (a.Y > pt.Y) == (b.Y > pt.Y) {
			continue
		}

		// Does the horizontal ray from pt towards +X cross edge ab?
		lhs := int64(pt.X-a.X) * int64(b.Y-a.Y)
		rhs := int64(pt.Y-a.Y) * int64(b.X-a.X)
		if b.Y > a.Y {
			if lhs < rhs {
				inside = !inside
			}
		} else if lhs > rhs {
			inside = !inside
		}
	}

	return inside
}

// Contains is shorthand for Polygon(contour).Contains(pt).
func Contains(contour []image.Point, pt image.Point) bool {
	return Polygon(contour).Contains(pt)
}

// Centroid returns the area centroid of p, falling back to the vertex mean
// for degenerate (zero-area) polygons.
func (p Polygon) Centroid() image.Point {
	if len(p) == 0 {
		return image.Point{}
	}

	var area2, cx, cy int64
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[j], p[i]
		cross := int64(a.X)*int64(b.Y) - int64(b.X)*int64(a.Y)
		area2 += cross
		cx += int64(a.X+b.X) * cross
		cy += int64(a.Y+b.Y) * cross
	}

	if area2 == 0 {
		var sx, sy int64
		for _, v := range p {
			sx += int64(v.X)
			sy += int64(v.Y)
		}
		return image.Pt(int(sx/int64(len(p))), int(sy/int64(len(p))))
	}

	return image.Pt(int(cx/(3*area2)), int(cy/(3*area2)))
}

func onSegment(a, b, pt image.Point) bool {
	cross := int64(b.X-a.X)*int64(pt.Y-a.Y) - int64(b.Y-a.Y)*int64(pt.X-a.X)
	if cross != 0 {
		return false
	}
	return pt.X >= min(a.X, b.X) && pt.X <= max(a.X, b.X) &&
		pt.Y >= min(a.Y, b.Y) && pt.Y <= max(a.Y, b.Y)
}

package bounce

import (
	"math"

	"github.com/playmatatu/aimguide/internal/geometry"
)

// NextIntersection casts a ray from `from` along dir and returns the nearest
// point where it crosses a side of the boundary. Crossings at distance
// <= Epsilon are ignored so a ray leaving a rail does not hit that rail again.
func NextIntersection(from geometry.Point, dir Direction, boundary geometry.Rect) (geometry.Point, bool) {
	best := math.Inf(1)
	consider := func(t float64) {
		if t > Epsilon && t < best {
			best = t
		}
	}

	if dir.DX != 0 {
		consider((boundary.Left - from.X) / dir.DX)
		consider((boundary.Right - from.X) / dir.DX)
	}
	if dir.DY != 0 {
		consider((boundary.Top - from.Y) / dir.DY)
		consider((boundary.Bottom - from.Y) / dir.DY)
	}

	if math.IsInf(best, 1) {
		return geometry.Point{}, false
	}

	return geometry.Point{X: from.X + dir.DX*best, Y: from.Y + dir.DY*best}, true
}

// Reflect applies the law of reflection for a hit at the given point. Vertical
// rails negate DX and horizontal rails negate DY. If the point is on no rail
// the direction is returned unchanged.
func Reflect(dir Direction, hit geometry.Point, boundary geometry.Rect) Direction {
	side := ClassifyEdge(hit, boundary, Epsilon)
	switch {
	case side.Vertical():
		return Direction{DX: -dir.DX, DY: dir.DY}
	case side.Horizontal():
		return Direction{DX: dir.DX, DY: -dir.DY}
	default:
		return dir
	}
}

package bounce

import "github.com/playmatatu/aimguide/internal/geometry"

// Direction is a unit travel vector. The zero value means "no motion".
type Direction struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (d Direction) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// DeriveBoundary insets the table by the ball radius, giving the rectangle the
// ball's centre can reach. A negative radius is treated as zero. The result is
// degenerate when the radius exceeds half the table's width or height.
func DeriveBoundary(table geometry.Rect, radius float64) geometry.Rect {
	if radius < 0 {
		radius = 0
	}
	return table.Normalize().Inset(radius)
}

// ResolveDirection computes the launch direction from the object ball through
// the ghost ball. It reports false when the two balls coincide, when the ghost
// ball is not resting on any rail of the boundary, or when the boundary is
// degenerate.
//
// For every rail the ghost ball touches, the matching component is flipped if
// it points into that rail, so the first leg heads back across the table.
func ResolveDirection(object, ghost geometry.Point, boundary geometry.Rect) (Direction, bool) {
	if boundary.Degenerate() {
		return Direction{}, false
	}

	raw := ghost.Minus(object)
	if raw.IsZero() {
		return Direction{}, false
	}

	touched := TouchedEdges(ghost, boundary, Tolerance)
	if touched == EdgeNone {
		return Direction{}, false
	}

	u := raw.Normalize()
	dir := Direction{DX: u.X, DY: u.Y}

	for _, side := range edgeOrder {
		if touched&side == 0 {
			continue
		}
		switch side {
		case EdgeLeft:
			if dir.DX < 0 {
				dir.DX = -dir.DX
			}
		case EdgeRight:
			if dir.DX > 0 {
				dir.DX = -dir.DX
			}
		case EdgeTop:
			if dir.DY < 0 {
				dir.DY = -dir.DY
			}
		case EdgeBottom:
			if dir.DY > 0 {
				dir.DY = -dir.DY
			}
		}
	}

	return dir, true
}

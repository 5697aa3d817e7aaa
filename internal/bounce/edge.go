package bounce

import (
	"math"
	"strings"

	"github.com/playmatatu/aimguide/internal/geometry"
)

// Edge identifies one side of the physics boundary. Values are bit flags so a
// point resting in a corner can report every side it touches.
type Edge uint8

const (
	EdgeLeft Edge = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom

	EdgeNone Edge = 0
)

// edgeOrder is the fixed check order: vertical sides before horizontal ones.
var edgeOrder = [...]Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom}

// Vertical reports whether e includes the left or right side.
func (e Edge) Vertical() bool {
	return e&(EdgeLeft|EdgeRight) != 0
}

// Horizontal reports whether e includes the top or bottom side.
func (e Edge) Horizontal() bool {
	return e&(EdgeTop|EdgeBottom) != 0
}

func (e Edge) String() string {
	if e == EdgeNone {
		return "none"
	}
	names := make([]string, 0, 2)
	for _, side := range edgeOrder {
		if e&side == 0 {
			continue
		}
		switch side {
		case EdgeLeft:
			names = append(names, "left")
		case EdgeRight:
			names = append(names, "right")
		case EdgeTop:
			names = append(names, "top")
		case EdgeBottom:
			names = append(names, "bottom")
		}
	}
	return strings.Join(names, "|")
}

// distanceToEdge is the gap between p and the line carrying one side.
func distanceToEdge(p geometry.Point, b geometry.Rect, side Edge) float64 {
	switch side {
	case EdgeLeft:
		return math.Abs(p.X - b.Left)
	case EdgeRight:
		return math.Abs(p.X - b.Right)
	case EdgeTop:
		return math.Abs(p.Y - b.Top)
	case EdgeBottom:
		return math.Abs(p.Y - b.Bottom)
	}
	return math.Inf(1)
}

// TouchedEdges returns every side whose coordinate lies within tol of p
// (inclusive). Used to decide whether the ghost ball rests on a rail.
func TouchedEdges(p geometry.Point, b geometry.Rect, tol float64) Edge {
	touched := EdgeNone
	for _, side := range edgeOrder {
		if distanceToEdge(p, b, side) <= tol {
			touched |= side
		}
	}
	return touched
}

// ClassifyEdge returns the single side struck at p, comparing strictly within
// eps. Left and right win over top and bottom, so an exact corner hit is
// treated as a vertical-rail contact.
func ClassifyEdge(p geometry.Point, b geometry.Rect, eps float64) Edge {
	for _, side := range edgeOrder {
		if distanceToEdge(p, b, side) < eps {
			return side
		}
	}
	return EdgeNone
}

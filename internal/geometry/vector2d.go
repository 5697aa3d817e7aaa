package geometry

import "math"

// Point is a 2D screen position. Screen coordinates grow right and down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Plus(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Minus(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) Times(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Dot(o Point) float64 {
	return p.X*o.X + p.Y*o.Y
}

func (p Point) Magnitude() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize returns the unit vector pointing the same way, or the zero vector.
func (p Point) Normalize() Point {
	m := p.Magnitude()
	if m == 0 {
		return Point{}
	}
	return Point{X: p.X / m, Y: p.Y / m}
}

// ManhattanDistance matches the corner-grab test of the overlay editor.
func (p Point) ManhattanDistance(o Point) float64 {
	return math.Abs(p.X-o.X) + math.Abs(p.Y-o.Y)
}

func (p Point) DistanceSquared(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Point) IsEqualTo(o Point) bool {
	return p.X == o.X && p.Y == o.Y
}

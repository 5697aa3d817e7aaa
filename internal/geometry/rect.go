package geometry

import "math"

// Rect is an axis-aligned rectangle given by its edge coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect builds a normalized rectangle spanning two opposite corners.
func NewRect(a, b Point) Rect {
	return Rect{Left: a.X, Top: a.Y, Right: b.X, Bottom: b.Y}.Normalize()
}

// RectFromXYWH builds a rectangle from its origin and size.
func RectFromXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}.Normalize()
}

// Normalize swaps coordinates so that Left <= Right and Top <= Bottom.
func (r Rect) Normalize() Rect {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// Inset shrinks every side by d. The result is not re-normalized, so an
// inset larger than half the width or height yields a degenerate rectangle.
func (r Rect) Inset(d float64) Rect {
	return Rect{Left: r.Left + d, Top: r.Top + d, Right: r.Right - d, Bottom: r.Bottom - d}
}

// Degenerate reports whether the rectangle has no interior.
func (r Rect) Degenerate() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) TopLeft() Point     { return Point{X: r.Left, Y: r.Top} }
func (r Rect) TopRight() Point    { return Point{X: r.Right, Y: r.Top} }
func (r Rect) BottomLeft() Point  { return Point{X: r.Left, Y: r.Bottom} }
func (r Rect) BottomRight() Point { return Point{X: r.Right, Y: r.Bottom} }

func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Clamp moves p to the closest point inside the rectangle.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: math.Max(r.Left, math.Min(r.Right, p.X)),
		Y: math.Max(r.Top, math.Min(r.Bottom, p.Y)),
	}
}

// XYWH returns the rectangle as origin and size.
func (r Rect) XYWH() (x, y, w, h float64) {
	return r.Left, r.Top, r.Width(), r.Height()
}

package overlay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playmatatu/aimguide/internal/geometry"
)

// Editor constants, in screen pixels.
const (
	InnerMargin  = 17.0
	CornerMargin = 15.0
	StepNormal   = 1.0
	StepShift    = 5.0
)

var (
	ErrUnknownBall   = errors.New("unknown ball index")
	ErrUnknownKey    = errors.New("unknown arrow key")
	ErrUnknownCorner = errors.New("unknown corner")
)

// Key is an arrow key used for keyboard nudges.
type Key int

const (
	KeyUp Key = iota + 1
	KeyDown
	KeyLeft
	KeyRight
)

// ParseKey accepts "up", "down", "left" and "right" (case-insensitive).
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return KeyUp, nil
	case "down":
		return KeyDown, nil
	case "left":
		return KeyLeft, nil
	case "right":
		return KeyRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// offset moves p one step in the key's direction.
func (k Key) offset(p geometry.Point, step float64) (geometry.Point, error) {
	switch k {
	case KeyUp:
		p.Y -= step
	case KeyDown:
		p.Y += step
	case KeyLeft:
		p.X -= step
	case KeyRight:
		p.X += step
	default:
		return p, ErrUnknownKey
	}
	return p, nil
}

// StepFor returns the nudge distance, which is larger while shift is held.
func StepFor(shift bool) float64 {
	if shift {
		return StepShift
	}
	return StepNormal
}

// Corner is a draggable table corner.
type Corner int

const (
	CornerTopLeft Corner = iota + 1
	CornerBottomRight
)

// ParseCorner accepts "top_left" and "bottom_right".
func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top_left":
		return CornerTopLeft, nil
	case "bottom_right":
		return CornerBottomRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCorner, s)
}

func (c Corner) String() string {
	switch c {
	case CornerTopLeft:
		return "top_left"
	case CornerBottomRight:
		return "bottom_right"
	}
	return "unknown"
}

// Pockets returns the six pocket positions: four corners, then the top and
// bottom middle pockets.
func (s Settings) Pockets() [6]geometry.Point {
	t := s.Table()
	c := t.Center()
	return [6]geometry.Point{
		t.TopLeft(), t.TopRight(),
		t.BottomLeft(), t.BottomRight(),
		geometry.NewPoint(c.X, t.Top),
		geometry.NewPoint(c.X, t.Bottom),
	}
}

// GuideRect is the dashed guide drawn a fixed margin inside the table.
func (s Settings) GuideRect() geometry.Rect {
	return s.Table().Inset(InnerMargin)
}

// DragBall moves a ball to the pointer, clamped to the physics boundary.
func (s Settings) DragBall(idx int, to geometry.Point) (Settings, error) {
	if idx != ObjectBallIndex && idx != GhostBallIndex {
		return s, fmt.Errorf("%w: %d", ErrUnknownBall, idx)
	}
	p := s.PhysicsBoundary().Clamp(to)
	s.ControlPoints[idx] = [2]float64{p.X, p.Y}
	return s, nil
}

// NudgeBall moves a ball by one keyboard step, clamped to the physics boundary.
func (s Settings) NudgeBall(idx int, key Key, step float64) (Settings, error) {
	if idx != ObjectBallIndex && idx != GhostBallIndex {
		return s, fmt.Errorf("%w: %d", ErrUnknownBall, idx)
	}
	to, err := key.offset(s.Ball(idx), step)
	if err != nil {
		return s, err
	}
	return s.DragBall(idx, to)
}

// DragCorner moves one table corner, keeping the opposite corner fixed.
func (s Settings) DragCorner(corner Corner, to geometry.Point) (Settings, error) {
	t := s.Table()
	switch corner {
	case CornerTopLeft:
		return s.WithTable(geometry.NewRect(to, t.BottomRight())), nil
	case CornerBottomRight:
		return s.WithTable(geometry.NewRect(t.TopLeft(), to)), nil
	}
	return s, fmt.Errorf("%w: %d", ErrUnknownCorner, corner)
}

// NudgeCorner moves one table corner by one keyboard step.
func (s Settings) NudgeCorner(corner Corner, key Key, step float64) (Settings, error) {
	t := s.Table()
	var from geometry.Point
	switch corner {
	case CornerTopLeft:
		from = t.TopLeft()
	case CornerBottomRight:
		from = t.BottomRight()
	default:
		return s, fmt.Errorf("%w: %d", ErrUnknownCorner, corner)
	}
	to, err := key.offset(from, step)
	if err != nil {
		return s, err
	}
	return s.DragCorner(corner, to)
}

// CornerNear reports which resize handle, if any, is under p.
func (s Settings) CornerNear(p geometry.Point) (Corner, bool) {
	t := s.Table()
	if t.TopLeft().ManhattanDistance(p) < CornerMargin {
		return CornerTopLeft, true
	}
	if t.BottomRight().ManhattanDistance(p) < CornerMargin {
		return CornerBottomRight, true
	}
	return 0, false
}

// BallAt reports which ball, if any, is under p.
func (s Settings) BallAt(p geometry.Point) (int, bool) {
	r := s.BallRadius()
	for idx := range s.ControlPoints {
		if s.Ball(idx).DistanceSquared(p) < r*r {
			return idx, true
		}
	}
	return 0, false
}

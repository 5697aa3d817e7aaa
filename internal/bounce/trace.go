package bounce

import (
	"iter"

	"github.com/playmatatu/aimguide/internal/geometry"
)

// Segment is one straight leg of travel between two rail contacts.
type Segment struct {
	Start geometry.Point `json:"start"`
	End   geometry.Point `json:"end"`
}

// Path is an ordered list of legs. It is rebuilt from scratch on every call.
type Path []Segment

// BouncePoints returns the rail contact at the end of each leg.
func (p Path) BouncePoints() []geometry.Point {
	points := make([]geometry.Point, len(p))
	for i, s := range p {
		points[i] = s.End
	}
	return points
}

func clampBounces(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Segments lazily yields up to maxBounces legs starting at start. The sequence
// stops early when no further crossing exists. Ranging over it again restarts
// the trace from the beginning.
func Segments(start geometry.Point, dir Direction, boundary geometry.Rect, maxBounces int) iter.Seq[Segment] {
	n := clampBounces(maxBounces)
	return func(yield func(Segment) bool) {
		if boundary.Degenerate() || dir.IsZero() {
			return
		}
		cur, d := start, dir
		for i := 0; i < n; i++ {
			hit, ok := NextIntersection(cur, d, boundary)
			if !ok {
				return
			}
			if !yield(Segment{Start: cur, End: hit}) {
				return
			}
			d = Reflect(d, hit, boundary)
			cur = hit
		}
	}
}

// Trace collects Segments into a Path. The result is never nil.
func Trace(start geometry.Point, dir Direction, boundary geometry.Rect, maxBounces int) Path {
	path := make(Path, 0, min(clampBounces(maxBounces), 8))
	for seg := range Segments(start, dir, boundary, maxBounces) {
		path = append(path, seg)
	}
	return path
}

package overlay

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/playmatatu/aimguide/internal/geometry"
)

func TestMergeKeepsDefaultsForMissingKeys(t *testing.T) {
	s, err := Merge([]byte(`{"bounce_count": 4, "table_rect": [0, 0, 800, 400]}`))
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if s.BounceCount != 4 {
		t.Errorf("bounce_count = %d, want 4", s.BounceCount)
	}
	if s.TableRect != [4]float64{0, 0, 800, 400} {
		t.Errorf("table_rect = %v", s.TableRect)
	}
	if s.CenterGhost != DefaultSettings().CenterGhost {
		t.Errorf("center_ghost lost its default: %+v", s.CenterGhost)
	}
}

func TestMergeInvalidJSONFallsBackToDefaults(t *testing.T) {
	s, err := Merge([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if s != DefaultSettings() {
		t.Errorf("expected defaults on decode error")
	}
}

func TestMergeEmptyIsDefaults(t *testing.T) {
	s, err := Merge(nil)
	if err != nil || s != DefaultSettings() {
		t.Errorf("Merge(nil) = %+v, %v", s, err)
	}
}

func TestMergeClampsBounceCount(t *testing.T) {
	s, _ := Merge([]byte(`{"bounce_count": 12}`))
	if s.BounceCount != MaxBounceCount {
		t.Errorf("bounce_count = %d, want %d", s.BounceCount, MaxBounceCount)
	}
	s, _ = Merge([]byte(`{"bounce_count": 0}`))
	if s.BounceCount != MinBounceCount {
		t.Errorf("bounce_count = %d, want %d", s.BounceCount, MinBounceCount)
	}
}

func TestColorsEncodeAsArrays(t *testing.T) {
	raw, err := json.Marshal(DefaultSettings().PocketLines)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"visible":true,"size":2,"color":[255,0,0,255]}`
	if string(raw) != want {
		t.Errorf("style JSON = %s, want %s", raw, want)
	}
}

func TestSnapshotUsesGhostRadiusAndControlPoints(t *testing.T) {
	in := DefaultSettings().Snapshot()
	if in.BallRadius != 17 {
		t.Errorf("radius = %v, want 17", in.BallRadius)
	}
	if in.ObjectBall != geometry.NewPoint(927, 620) || in.GhostBall != geometry.NewPoint(1456, 755) {
		t.Errorf("balls = %v / %v", in.ObjectBall, in.GhostBall)
	}
	if in.TableRect != (geometry.Rect{Left: 384, Top: 347, Right: 1474, Bottom: 892}) {
		t.Errorf("table = %+v", in.TableRect)
	}
	if in.MaxBounces != 2 {
		t.Errorf("max bounces = %d, want 2", in.MaxBounces)
	}
}

func TestDefaultGhostBallRestsOnRightRail(t *testing.T) {
	// Physics boundary right edge is 1474-17 = 1457; the default ghost ball
	// sits at x=1456, within tolerance.
	path := DefaultSettings().Prediction()
	if len(path) != 2 {
		t.Fatalf("expected 2 predicted segments, got %d", len(path))
	}
	if path[0].Start != geometry.NewPoint(1456, 755) {
		t.Errorf("path starts at %v", path[0].Start)
	}
}

func TestWithStyle(t *testing.T) {
	s := DefaultSettings()
	s2, err := s.WithStyle(StyleBounceLines, Style{Visible: false, Size: -3, Color: RGBA{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("WithStyle failed: %v", err)
	}
	got, _ := s2.Style(StyleBounceLines)
	if got.Visible || got.Size != 0 || got.Color != (RGBA{1, 2, 3, 4}) {
		t.Errorf("style = %+v", got)
	}
	if orig, _ := s.Style(StyleBounceLines); !orig.Visible {
		t.Errorf("WithStyle mutated the receiver")
	}
	if _, err := s.WithStyle("nope", Style{}); err == nil {
		t.Errorf("expected error for unknown style")
	}
}

func TestWithBounceCountClamps(t *testing.T) {
	s := DefaultSettings()
	if got := s.WithBounceCount(9).BounceCount; got != 5 {
		t.Errorf("bounce count = %d, want 5", got)
	}
	if got := s.WithBounceCount(-1).BounceCount; got != 1 {
		t.Errorf("bounce count = %d, want 1", got)
	}
}

func TestPockets(t *testing.T) {
	s := DefaultSettings().WithTable(geometry.RectFromXYWH(0, 0, 200, 100))
	p := s.Pockets()
	want := [6]geometry.Point{
		{X: 0, Y: 0}, {X: 200, Y: 0},
		{X: 0, Y: 100}, {X: 200, Y: 100},
		{X: 100, Y: 0}, {X: 100, Y: 100},
	}
	if p != want {
		t.Errorf("pockets = %v, want %v", p, want)
	}
}

func TestDragBallClampsToPhysicsBoundary(t *testing.T) {
	s := DefaultSettings().WithTable(geometry.RectFromXYWH(0, 0, 200, 100))
	s, err := s.DragBall(GhostBallIndex, geometry.NewPoint(500, -40))
	if err != nil {
		t.Fatalf("DragBall failed: %v", err)
	}
	if got := s.GhostBall(); got != geometry.NewPoint(183, 17) {
		t.Errorf("ghost ball = %v, want (183,17)", got)
	}
	if _, err := s.DragBall(2, geometry.Point{}); !errors.Is(err, ErrUnknownBall) {
		t.Errorf("expected ErrUnknownBall, got %v", err)
	}
}

func TestNudgeBall(t *testing.T) {
	s := DefaultSettings()
	s, err := s.NudgeBall(ObjectBallIndex, KeyLeft, StepFor(true))
	if err != nil {
		t.Fatalf("NudgeBall failed: %v", err)
	}
	if got := s.ObjectBall(); got != geometry.NewPoint(922, 620) {
		t.Errorf("object ball = %v, want (922,620)", got)
	}
	// Ghost ball sits one pixel from the right rail; a shift-nudge right stops on the rail.
	s, _ = s.NudgeBall(GhostBallIndex, KeyRight, StepFor(true))
	if got := s.GhostBall(); got != geometry.NewPoint(1457, 755) {
		t.Errorf("ghost ball = %v, want (1457,755)", got)
	}
	if _, err := s.NudgeBall(ObjectBallIndex, Key(99), 1); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}

func TestCornerEditing(t *testing.T) {
	s := DefaultSettings().WithTable(geometry.RectFromXYWH(100, 100, 200, 100))

	s, err := s.NudgeCorner(CornerTopLeft, KeyUp, StepNormal)
	if err != nil {
		t.Fatalf("NudgeCorner failed: %v", err)
	}
	if s.TableRect != [4]float64{100, 99, 200, 101} {
		t.Errorf("table = %v", s.TableRect)
	}

	s, _ = s.DragCorner(CornerBottomRight, geometry.NewPoint(400, 250))
	if s.TableRect != [4]float64{100, 99, 300, 151} {
		t.Errorf("table = %v", s.TableRect)
	}

	// Dragging past the opposite corner normalizes the rectangle.
	s, _ = s.DragCorner(CornerTopLeft, geometry.NewPoint(500, 300))
	if s.TableRect != [4]float64{400, 250, 100, 50} {
		t.Errorf("table = %v", s.TableRect)
	}
}

func TestCornerNearAndBallAt(t *testing.T) {
	s := DefaultSettings().WithTable(geometry.RectFromXYWH(100, 100, 200, 100))
	if c, ok := s.CornerNear(geometry.NewPoint(105, 108)); !ok || c != CornerTopLeft {
		t.Errorf("CornerNear = %v, %v", c, ok)
	}
	if c, ok := s.CornerNear(geometry.NewPoint(295, 195)); !ok || c != CornerBottomRight {
		t.Errorf("CornerNear = %v, %v", c, ok)
	}
	if _, ok := s.CornerNear(geometry.NewPoint(200, 150)); ok {
		t.Errorf("CornerNear matched the middle of the table")
	}

	d := DefaultSettings()
	if idx, ok := d.BallAt(geometry.NewPoint(930, 625)); !ok || idx != ObjectBallIndex {
		t.Errorf("BallAt = %d, %v", idx, ok)
	}
	if _, ok := d.BallAt(geometry.NewPoint(0, 0)); ok {
		t.Errorf("BallAt matched empty space")
	}
}

func TestParseKeyAndCorner(t *testing.T) {
	if k, err := ParseKey(" Up "); err != nil || k != KeyUp {
		t.Errorf("ParseKey = %v, %v", k, err)
	}
	if _, err := ParseKey("pgup"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if c, err := ParseCorner("bottom_right"); err != nil || c != CornerBottomRight {
		t.Errorf("ParseCorner = %v, %v", c, err)
	}
	if _, err := ParseCorner("top_right"); !errors.Is(err, ErrUnknownCorner) {
		t.Errorf("expected ErrUnknownCorner, got %v", err)
	}
}

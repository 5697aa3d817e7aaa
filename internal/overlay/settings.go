// Package overlay holds the editable state of the aiming overlay: table
// placement, ball positions, visual styles, and the bounce count. Every edit
// returns a new Settings value, and Snapshot turns the current state into the
// immutable input consumed by the bounce predictor.
package overlay

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/playmatatu/aimguide/internal/bounce"
	"github.com/playmatatu/aimguide/internal/geometry"
)

// Style keys, as stored in settings JSON.
const (
	StyleOuterRect      = "outer_rect"
	StyleInnerRect      = "inner_rect"
	StylePocketLines    = "pocket_lines"
	StyleCenterGhost    = "center_ghost"
	StyleConnectingLine = "connecting_line"
	StyleBounceGhost    = "bounce_ghost"
	StyleBounceVisuals  = "bounce_visuals"
	StyleBounceLines    = "bounce_lines"
	StyleGUITheme       = "gui_theme"
	StyleFontColor      = "font_color"
)

// StyleKeys lists every style in display order.
var StyleKeys = []string{
	StyleOuterRect, StyleInnerRect, StylePocketLines, StyleCenterGhost,
	StyleConnectingLine, StyleBounceGhost, StyleBounceVisuals, StyleBounceLines,
	StyleGUITheme, StyleFontColor,
}

const (
	ObjectBallIndex = 0
	GhostBallIndex  = 1

	MinBounceCount = 1
	MaxBounceCount = 5
)

// RGBA is a non-premultiplied colour stored as [r, g, b, a].
type RGBA [4]uint8

func (c RGBA) Color() color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// Style controls how one overlay element is drawn. Size is a pen width for
// lines and a radius for balls.
type Style struct {
	Visible bool `json:"visible"`
	Size    int  `json:"size"`
	Color   RGBA `json:"color"`
}

// Settings is the full overlay state. Table is stored as [x, y, w, h] and
// control points as [object ball, ghost ball].
type Settings struct {
	TableRect     [4]float64    `json:"table_rect"`
	ControlPoints [2][2]float64 `json:"control_points"`

	OuterRect      Style `json:"outer_rect"`
	InnerRect      Style `json:"inner_rect"`
	PocketLines    Style `json:"pocket_lines"`
	CenterGhost    Style `json:"center_ghost"`
	ConnectingLine Style `json:"connecting_line"`
	BounceGhost    Style `json:"bounce_ghost"`
	BounceVisuals  Style `json:"bounce_visuals"`
	BounceLines    Style `json:"bounce_lines"`
	GUITheme       Style `json:"gui_theme"`
	FontColor      Style `json:"font_color"`

	BounceCount int `json:"bounce_count"`
}

// DefaultSettings returns the factory layout for a 1920x1080 screen.
func DefaultSettings() Settings {
	return Settings{
		TableRect:      [4]float64{384, 347, 1090, 545},
		ControlPoints:  [2][2]float64{{927, 620}, {1456, 755}},
		OuterRect:      Style{Visible: true, Size: 2, Color: RGBA{255, 255, 255, 128}},
		InnerRect:      Style{Visible: true, Size: 1, Color: RGBA{255, 255, 255, 100}},
		PocketLines:    Style{Visible: true, Size: 2, Color: RGBA{255, 0, 0, 255}},
		CenterGhost:    Style{Visible: true, Size: 17, Color: RGBA{0, 255, 0, 128}},
		ConnectingLine: Style{Visible: true, Size: 3, Color: RGBA{255, 0, 0, 255}},
		BounceGhost:    Style{Visible: true, Size: 17, Color: RGBA{0, 255, 0, 100}},
		BounceVisuals:  Style{Visible: true, Size: 17, Color: RGBA{255, 255, 255, 60}},
		BounceLines:    Style{Visible: true, Size: 2, Color: RGBA{255, 255, 0, 255}},
		GUITheme:       Style{Visible: true, Size: 1, Color: RGBA{0, 179, 255, 113}},
		FontColor:      Style{Visible: true, Size: 1, Color: RGBA{0, 0, 0, 255}},
		BounceCount:    2,
	}
}

// Merge decodes raw settings JSON on top of the defaults so that keys missing
// from older saves keep their default values. Empty input yields the
// defaults. On a decode error the defaults are returned with the error.
func Merge(raw []byte) (Settings, error) {
	s := DefaultSettings()
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	return s.Validate(), nil
}

// Validate clamps out-of-range values.
func (s Settings) Validate() Settings {
	s.BounceCount = clampBounceCount(s.BounceCount)
	for _, key := range StyleKeys {
		st := s.styleRef(key)
		if st.Size < 0 {
			st.Size = 0
		}
	}
	return s
}

func clampBounceCount(n int) int {
	if n < MinBounceCount {
		return MinBounceCount
	}
	if n > MaxBounceCount {
		return MaxBounceCount
	}
	return n
}

// Table returns the table rectangle.
func (s Settings) Table() geometry.Rect {
	r := s.TableRect
	return geometry.RectFromXYWH(r[0], r[1], r[2], r[3])
}

// WithTable stores r as the table rectangle.
func (s Settings) WithTable(r geometry.Rect) Settings {
	x, y, w, h := r.Normalize().XYWH()
	s.TableRect = [4]float64{x, y, w, h}
	return s
}

// Ball returns the object ball (index 0) or the ghost ball (index 1).
func (s Settings) Ball(idx int) geometry.Point {
	p := s.ControlPoints[idx]
	return geometry.NewPoint(p[0], p[1])
}

func (s Settings) ObjectBall() geometry.Point { return s.Ball(ObjectBallIndex) }
func (s Settings) GhostBall() geometry.Point  { return s.Ball(GhostBallIndex) }

// BallRadius is the radius of the drawn ghost balls, which is also the inset
// used for the physics boundary.
func (s Settings) BallRadius() float64 {
	return float64(s.CenterGhost.Size)
}

// PhysicsBoundary is the table shrunk by the ball radius.
func (s Settings) PhysicsBoundary() geometry.Rect {
	return bounce.DeriveBoundary(s.Table(), s.BallRadius())
}

// Snapshot copies the numeric inputs the predictor needs.
func (s Settings) Snapshot() bounce.Input {
	return bounce.Input{
		TableRect:  s.Table(),
		BallRadius: s.BallRadius(),
		ObjectBall: s.ObjectBall(),
		GhostBall:  s.GhostBall(),
		MaxBounces: s.BounceCount,
	}
}

// Prediction runs the bounce predictor on the current state.
func (s Settings) Prediction() bounce.Path {
	return bounce.Predict(s.Snapshot())
}

// Style returns the style stored under key.
func (s Settings) Style(key string) (Style, bool) {
	st := s.styleRef(key)
	if st == nil {
		return Style{}, false
	}
	return *st, true
}

// WithStyle replaces the style stored under key.
func (s Settings) WithStyle(key string, st Style) (Settings, error) {
	ref := s.styleRef(key)
	if ref == nil {
		return s, fmt.Errorf("unknown style %q", key)
	}
	if st.Size < 0 {
		st.Size = 0
	}
	*ref = st
	return s, nil
}

// WithBounceCount sets the number of predicted bounces, clamped to [1, 5].
func (s Settings) WithBounceCount(n int) Settings {
	s.BounceCount = clampBounceCount(n)
	return s
}

func (s *Settings) styleRef(key string) *Style {
	switch key {
	case StyleOuterRect:
		return &s.OuterRect
	case StyleInnerRect:
		return &s.InnerRect
	case StylePocketLines:
		return &s.PocketLines
	case StyleCenterGhost:
		return &s.CenterGhost
	case StyleConnectingLine:
		return &s.ConnectingLine
	case StyleBounceGhost:
		return &s.BounceGhost
	case StyleBounceVisuals:
		return &s.BounceVisuals
	case StyleBounceLines:
		return &s.BounceLines
	case StyleGUITheme:
		return &s.GUITheme
	case StyleFontColor:
		return &s.FontColor
	}
	return nil
}

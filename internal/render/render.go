// Package render draws the overlay guides and the predicted bounce path onto
// a transparent canvas using the gg software rasterizer.
package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/gogpu/gg"
	"github.com/playmatatu/aimguide/internal/bounce"
	"github.com/playmatatu/aimguide/internal/geometry"
	"github.com/playmatatu/aimguide/internal/overlay"
)

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	MaxDimension  = 4096

	handleSize = 16.0
)

var (
	dashLong  = []float64{12, 6}
	dashShort = []float64{6, 4}
)

// ClampSize falls back to the default screen size for missing dimensions and
// caps oversized requests.
func ClampSize(width, height int) (int, int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if width > MaxDimension {
		width = MaxDimension
	}
	if height > MaxDimension {
		height = MaxDimension
	}
	return width, height
}

// Draw renders s in screen coordinates. The caller owns the returned context
// and must Close it.
func Draw(s overlay.Settings, width, height int) (*gg.Context, error) {
	width, height = ClampSize(width, height)
	dc := gg.NewContext(width, height)
	dc.Clear()

	d := drawer{dc: dc}
	table := s.Table()
	object, ghost := s.ObjectBall(), s.GhostBall()

	d.rect(s.OuterRect, table, nil)
	d.rect(s.InnerRect, s.GuideRect(), dashShort)
	d.handles(table)

	if s.PocketLines.Visible {
		for _, pocket := range s.Pockets() {
			d.line(s.PocketLines, object, pocket, nil)
		}
	}
	d.line(s.ConnectingLine, object, ghost, nil)
	d.ball(s.CenterGhost, object)
	d.ball(s.BounceGhost, ghost)

	d.path(s, s.Prediction())

	if d.err != nil {
		dc.Close()
		return nil, fmt.Errorf("failed to draw overlay: %w", d.err)
	}
	return dc, nil
}

// EncodePNG renders s and writes it to w as PNG.
func EncodePNG(w io.Writer, s overlay.Settings, width, height int) error {
	dc, err := Draw(s, width, height)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

// drawer keeps the first rendering error so the drawing code stays linear.
type drawer struct {
	dc  *gg.Context
	err error
}

func (d *drawer) keep(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *drawer) pen(st overlay.Style, dash []float64) {
	d.dc.SetColor(st.Color.Color())
	d.dc.SetLineWidth(float64(st.Size))
	if dash != nil {
		d.dc.SetDash(dash...)
	} else {
		d.dc.ClearDash()
	}
}

func (d *drawer) rect(st overlay.Style, r geometry.Rect, dash []float64) {
	if !st.Visible || st.Size == 0 || r.Degenerate() {
		return
	}
	d.pen(st, dash)
	x, y, w, h := r.XYWH()
	d.dc.DrawRectangle(x, y, w, h)
	d.keep(d.dc.Stroke())
}

func (d *drawer) line(st overlay.Style, a, b geometry.Point, dash []float64) {
	if !st.Visible || st.Size == 0 {
		return
	}
	d.pen(st, dash)
	d.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	d.keep(d.dc.Stroke())
}

func (d *drawer) ball(st overlay.Style, at geometry.Point) {
	if !st.Visible || st.Size == 0 {
		return
	}
	d.dc.SetColor(st.Color.Color())
	d.dc.DrawCircle(at.X, at.Y, float64(st.Size))
	d.keep(d.dc.Fill())
}

// handles draws the two resize grips on the top-left and bottom-right corners.
func (d *drawer) handles(table geometry.Rect) {
	for _, c := range []geometry.Point{table.TopLeft(), table.BottomRight()} {
		d.dc.ClearDash()
		d.dc.SetColor(color.NRGBA{R: 255, G: 255, A: 255})
		d.dc.DrawRectangle(c.X-handleSize/2, c.Y-handleSize/2, handleSize, handleSize)
		d.keep(d.dc.Fill())
		d.dc.SetColor(color.Black)
		d.dc.SetLineWidth(1)
		d.dc.DrawRectangle(c.X-handleSize/2, c.Y-handleSize/2, handleSize, handleSize)
		d.keep(d.dc.Stroke())
	}
}

// path draws a marker at every rail contact and a dashed line for every leg.
func (d *drawer) path(s overlay.Settings, p bounce.Path) {
	for _, seg := range p {
		d.ball(s.BounceVisuals, seg.End)
		d.line(s.BounceLines, seg.Start, seg.End, dashLong)
	}
}

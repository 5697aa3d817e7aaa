package ws

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/playmatatu/aimguide/internal/geometry"
	"github.com/playmatatu/aimguide/internal/overlay"
)

func msg(t *testing.T, msgType string, data interface{}) WSMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return WSMessage{Type: msgType, Data: raw}
}

func TestApplyEditNudgeBall(t *testing.T) {
	s := overlay.DefaultSettings()
	next, err := ApplyEdit(s, msg(t, MsgNudgeBall, NudgeBallData{Ball: 0, Key: "down", Shift: true}))
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	if got := next.ObjectBall(); got != geometry.NewPoint(927, 625) {
		t.Errorf("object ball = %v, want (927,625)", got)
	}
	if s.ObjectBall() != geometry.NewPoint(927, 620) {
		t.Errorf("ApplyEdit mutated its input")
	}
}

func TestApplyEditDragCorner(t *testing.T) {
	next, err := ApplyEdit(overlay.DefaultSettings(), msg(t, MsgDragCorner, DragCornerData{Corner: "top_left", X: 400, Y: 350}))
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	if next.TableRect != [4]float64{400, 350, 1074, 542} {
		t.Errorf("table = %v", next.TableRect)
	}
}

func TestApplyEditPointerDrag(t *testing.T) {
	s := overlay.DefaultSettings()

	// Grab the ghost ball and drop it on the top rail.
	next, err := ApplyEdit(s, msg(t, MsgPointerDrag, PointerDragData{
		From: geometry.NewPoint(1450, 750),
		To:   geometry.NewPoint(1200, 100),
	}))
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	if got := next.GhostBall(); got != geometry.NewPoint(1200, 364) {
		t.Errorf("ghost ball = %v, want (1200,364)", got)
	}

	// Grab the bottom-right handle.
	next, err = ApplyEdit(s, msg(t, MsgPointerDrag, PointerDragData{
		From: geometry.NewPoint(1470, 890),
		To:   geometry.NewPoint(1500, 900),
	}))
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	if next.TableRect != [4]float64{384, 347, 1116, 553} {
		t.Errorf("table = %v", next.TableRect)
	}

	_, err = ApplyEdit(s, msg(t, MsgPointerDrag, PointerDragData{From: geometry.NewPoint(5, 5)}))
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
}

func TestApplyEditBounceCountAndStyle(t *testing.T) {
	s := overlay.DefaultSettings()
	next, err := ApplyEdit(s, msg(t, MsgSetBounceCount, BounceCountData{Count: 7}))
	if err != nil || next.BounceCount != 5 {
		t.Errorf("bounce count = %d, %v", next.BounceCount, err)
	}

	st := overlay.Style{Visible: false, Size: 4, Color: overlay.RGBA{1, 2, 3, 4}}
	next, err = ApplyEdit(s, msg(t, MsgSetStyle, StyleData{Key: overlay.StyleBounceLines, Style: st}))
	if err != nil || next.BounceLines != st {
		t.Errorf("bounce lines = %+v, %v", next.BounceLines, err)
	}
}

func TestApplyEditRejectsBadInput(t *testing.T) {
	s := overlay.DefaultSettings()
	cases := []WSMessage{
		{Type: "launch_rocket", Data: json.RawMessage(`{}`)},
		{Type: MsgNudgeBall, Data: json.RawMessage(`{"ball":0,"key":"sideways"}`)},
		{Type: MsgDragBall, Data: json.RawMessage(`{"ball":3,"x":1,"y":1}`)},
		{Type: MsgDragCorner, Data: json.RawMessage(`not json`)},
		{Type: MsgNudgeCorner, Data: json.RawMessage(`{"corner":"middle","key":"up"}`)},
	}
	for _, m := range cases {
		if _, err := ApplyEdit(s, m); err == nil {
			t.Errorf("ApplyEdit(%s, %s) succeeded, want error", m.Type, m.Data)
		}
	}
}

func TestNewPredictionData(t *testing.T) {
	d := NewPredictionData("default", overlay.DefaultSettings())
	if len(d.Segments) != 2 || len(d.Bounces) != 2 {
		t.Fatalf("segments=%d bounces=%d, want 2 each", len(d.Segments), len(d.Bounces))
	}
	if d.Boundary != (geometry.Rect{Left: 401, Top: 364, Right: 1457, Bottom: 875}) {
		t.Errorf("boundary = %+v", d.Boundary)
	}
	if d.Bounces[0] != d.Segments[0].End {
		t.Errorf("first bounce %v != first segment end %v", d.Bounces[0], d.Segments[0].End)
	}
}

func TestEncodeRejectsNonFiniteValues(t *testing.T) {
	if got := encode(MsgPrediction, map[string]float64{"x": math.Inf(1)}); got != nil {
		t.Errorf("encode = %s, want nil", got)
	}
	if got := encode(MsgPong, nil); got == nil {
		t.Error("encode of an empty pong should succeed")
	}

	c := &Client{send: make(chan []byte, 1)}
	c.trySend(nil)
	if len(c.send) != 0 {
		t.Error("nil payload was queued")
	}
}

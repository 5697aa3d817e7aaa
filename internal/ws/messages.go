package ws

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/playmatatu/aimguide/internal/bounce"
	"github.com/playmatatu/aimguide/internal/geometry"
	"github.com/playmatatu/aimguide/internal/overlay"
)

// Client message types
const (
	MsgDragBall       = "drag_ball"
	MsgNudgeBall      = "nudge_ball"
	MsgDragCorner     = "drag_corner"
	MsgNudgeCorner    = "nudge_corner"
	MsgPointerDrag    = "pointer_drag"
	MsgSetBounceCount = "set_bounce_count"
	MsgSetStyle       = "set_style"
	MsgSave           = "save"
	MsgPing           = "ping"
)

// Server message types
const (
	MsgPrediction = "prediction"
	MsgSaved      = "saved"
	MsgDeleted    = "profile_deleted"
	MsgError      = "error"
	MsgPong       = "pong"
)

// WSMessage is the envelope for every client message.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type DragBallData struct {
	Ball int     `json:"ball"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type NudgeBallData struct {
	Ball  int    `json:"ball"`
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
}

type DragCornerData struct {
	Corner string  `json:"corner"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type NudgeCornerData struct {
	Corner string `json:"corner"`
	Key    string `json:"key"`
	Shift  bool   `json:"shift"`
}

// PointerDragData moves whatever handle or ball lies under From to To.
type PointerDragData struct {
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

type BounceCountData struct {
	Count int `json:"count"`
}

type StyleData struct {
	Key   string        `json:"key"`
	Style overlay.Style `json:"style"`
}

// PredictionData is everything a renderer needs to redraw the overlay.
type PredictionData struct {
	Profile  string            `json:"profile"`
	Settings overlay.Settings  `json:"settings"`
	Pockets  [6]geometry.Point `json:"pockets"`
	Boundary geometry.Rect     `json:"boundary"`
	Segments bounce.Path       `json:"segments"`
	Bounces  []geometry.Point  `json:"bounces"`
}

// NewPredictionData runs the predictor for s.
func NewPredictionData(profile string, s overlay.Settings) PredictionData {
	path := s.Prediction()
	return PredictionData{
		Profile:  profile,
		Settings: s,
		Pockets:  s.Pockets(),
		Boundary: s.PhysicsBoundary(),
		Segments: path,
		Bounces:  path.BouncePoints(),
	}
}

// ErrNoTarget is returned when a pointer drag starts on empty space.
var ErrNoTarget = fmt.Errorf("nothing to drag at pointer")

// ApplyEdit applies one editing message to s and returns the new settings.
// It does not handle save or ping.
func ApplyEdit(s overlay.Settings, msg WSMessage) (overlay.Settings, error) {
	switch msg.Type {
	case MsgDragBall:
		var d DragBallData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		return s.DragBall(d.Ball, geometry.NewPoint(d.X, d.Y))

	case MsgNudgeBall:
		var d NudgeBallData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		key, err := overlay.ParseKey(d.Key)
		if err != nil {
			return s, err
		}
		return s.NudgeBall(d.Ball, key, overlay.StepFor(d.Shift))

	case MsgDragCorner:
		var d DragCornerData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		corner, err := overlay.ParseCorner(d.Corner)
		if err != nil {
			return s, err
		}
		return s.DragCorner(corner, geometry.NewPoint(d.X, d.Y))

	case MsgNudgeCorner:
		var d NudgeCornerData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		corner, err := overlay.ParseCorner(d.Corner)
		if err != nil {
			return s, err
		}
		key, err := overlay.ParseKey(d.Key)
		if err != nil {
			return s, err
		}
		return s.NudgeCorner(corner, key, overlay.StepFor(d.Shift))

	case MsgPointerDrag:
		var d PointerDragData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		// Corner handles take priority over balls, as in the editor.
		if corner, ok := s.CornerNear(d.From); ok {
			return s.DragCorner(corner, d.To)
		}
		if idx, ok := s.BallAt(d.From); ok {
			return s.DragBall(idx, d.To)
		}
		return s, ErrNoTarget

	case MsgSetBounceCount:
		var d BounceCountData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		return s.WithBounceCount(d.Count), nil

	case MsgSetStyle:
		var d StyleData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
		return s.WithStyle(d.Key, d.Style)
	}

	return s, fmt.Errorf("unknown message type %q", msg.Type)
}

// encode builds a server message. It returns nil when data cannot be
// marshalled, e.g. a table so large its coordinates overflow to infinity.
func encode(msgType string, data interface{}) []byte {
	payload, err := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": data,
	})
	if err != nil {
		log.Printf("[WS] failed to encode %s message: %v", msgType, err)
		return nil
	}
	return payload
}

package game

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FrameFormat selects the wire encoding of a frame
type FrameFormat string

const (
	FormatJSON    FrameFormat = "json"
	FormatMsgpack FrameFormat = "msgpack"
)

// ParseFrameFormat maps a query value to a format. Empty means JSON.
func ParseFrameFormat(s string) (FrameFormat, error) {
	switch FrameFormat(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unknown frame format %q", s)
}

// BallState is the observable state of one ball
type BallState struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	VX     float64 `json:"vx" msgpack:"vx"`
	VY     float64 `json:"vy" msgpack:"vy"`
	Radius float64 `json:"radius" msgpack:"radius"`
	Mass   float64 `json:"mass" msgpack:"mass"`
}

// Frame is a read-only snapshot of a stage after some tick
type Frame struct {
	Token     string      `json:"token" msgpack:"token"`
	Tick      int64       `json:"tick" msgpack:"tick"`
	Width     float64     `json:"width" msgpack:"width"`
	Height    float64     `json:"height" msgpack:"height"`
	Color     string      `json:"color" msgpack:"color"`
	Pairwise  bool        `json:"pairwise" msgpack:"pairwise"`
	Balls     []BallState `json:"balls" msgpack:"balls"`
	Timestamp int64       `json:"ts" msgpack:"ts"`
}

// Encode serializes the frame in the requested format.
func (f Frame) Encode(format FrameFormat) ([]byte, error) {
	switch format {
	case FormatMsgpack:
		return msgpack.Marshal(f)
	case FormatJSON, "":
		return json.Marshal(f)
	}
	return nil, fmt.Errorf("unknown frame format %q", format)
}

// DecodeFrame is the inverse of Encode.
func DecodeFrame(data []byte, format FrameFormat) (Frame, error) {
	var f Frame
	var err error
	switch format {
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &f)
	case FormatJSON, "":
		err = json.Unmarshal(data, &f)
	default:
		err = fmt.Errorf("unknown frame format %q", format)
	}
	return f, err
}

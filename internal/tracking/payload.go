// Package tracking normalises provider datasets into the flat, serialisable
// frame payloads the rendering pipeline and the API consume.
package tracking

import (
	"fmt"
	"math"
)

// FramePayload is the uniform per-frame representation. It is built once per
// loaded match and never mutated; callers slice it by array index.
type FramePayload struct {
	// FrameID is the provider-native frame identifier. It is not necessarily
	// contiguous with the payload's array index.
	FrameID        int64           `json:"frame"`
	Timestamp      *float64        `json:"timestamp"`
	Period         *int            `json:"period"`
	HomePlayers    []PlayerPayload `json:"home_players"`
	AwayPlayers    []PlayerPayload `json:"away_players"`
	Ball           *BallPayload    `json:"ball"`
	PossessionTeam *string         `json:"possession_team"`
	Label          string          `json:"label"`
}

// PlayerPayload is one rendered player. Players whose coordinates were null
// in the raw frame are filtered out upstream, so X and Y are always real.
type PlayerPayload struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Name     string   `json:"name,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Detected bool     `json:"detected"`
	Speed    *float64 `json:"speed,omitempty"`
}

// BallPayload is the ball's position. X and Y stay nil when the provider did
// not place the ball; Z defaults to ground level.
type BallPayload struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z float64  `json:"z"`
}

// FrameLabel formats the scrubber label for a frame: match clock to tenths
// plus the provider frame id.
func FrameLabel(timestamp *float64, frameID int64) string {
	var ts float64
	if timestamp != nil {
		ts = *timestamp
	}
	mins := int(ts) / 60
	secs := int(ts) % 60
	tenths := int((ts - math.Floor(ts)) * 10)
	return fmt.Sprintf("%02d:%02d.%d / Frame %d", mins, secs, tenths, frameID)
}

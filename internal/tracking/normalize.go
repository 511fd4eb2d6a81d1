package tracking

import (
	"strconv"

	"github.com/trackside-data/pitchclip/internal/skillcorner"
)

// Normalize converts every raw frame into a FramePayload, preserving order.
// It is total over the schema variants the chains understand: a frame with
// all-missing optional fields still yields a payload, never an error.
func Normalize(ds *skillcorner.Dataset) []FramePayload {
	if ds == nil {
		return nil
	}

	payloads := make([]FramePayload, 0, len(ds.Frames))
	for i := range ds.Frames {
		payloads = append(payloads, normalizeFrame(&ds.Frames[i]))
	}
	return payloads
}

func normalizeFrame(frame *skillcorner.Frame) FramePayload {
	payload := FramePayload{
		FrameID:        frame.FrameID,
		Timestamp:      TimestampSeconds(frame),
		Period:         PeriodNumber(frame),
		HomePlayers:    []PlayerPayload{},
		AwayPlayers:    []PlayerPayload{},
		PossessionTeam: PossessionTeam(frame),
	}
	payload.Label = FrameLabel(payload.Timestamp, frame.FrameID)

	for i := range frame.Players {
		sample := &frame.Players[i]
		// Players the provider lost this frame carry null coordinates and
		// are left out entirely rather than rendered at a fake position.
		if sample.X == nil || sample.Y == nil {
			continue
		}

		player := PlayerPayload{
			ID:       sample.Player.ID,
			Label:    playerLabel(sample),
			Name:     sample.Player.Name,
			X:        *sample.X,
			Y:        *sample.Y,
			Detected: Detected(sample),
			Speed:    sample.Speed,
		}

		if TeamSide(sample.Team) == SideHome {
			payload.HomePlayers = append(payload.HomePlayers, player)
		} else {
			payload.AwayPlayers = append(payload.AwayPlayers, player)
		}
	}

	if frame.Ball != nil {
		ball := &BallPayload{X: frame.Ball.X, Y: frame.Ball.Y}
		if frame.Ball.Z != nil {
			ball.Z = *frame.Ball.Z
		}
		payload.Ball = ball
	}

	return payload
}

// playerLabel picks the on-screen marker text: jersey number when known,
// otherwise the player's name.
func playerLabel(sample *skillcorner.PlayerSample) string {
	if sample.Player.JerseyNumber != nil {
		return strconv.Itoa(*sample.Player.JerseyNumber)
	}
	return sample.Player.Name
}

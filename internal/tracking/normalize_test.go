package tracking

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/trackside-data/pitchclip/internal/skillcorner"
	"github.com/trackside-data/pitchclip/internal/testutil"
)

func homeTeam() *skillcorner.Team { return &skillcorner.Team{Name: "Lakeside FC", Ground: "HOME_TEAM"} }
func awayTeam() *skillcorner.Team { return &skillcorner.Team{Name: "Harbour City", Ground: "AWAY_TEAM"} }

func TestNormalizeSplitsSides(t *testing.T) {
	ds := &skillcorner.Dataset{
		Frames: []skillcorner.Frame{{
			FrameID:          1000,
			TimestampSeconds: testutil.FloatPtr(83.25),
			Period:           testutil.IntPtr(1),
			Possession:       &skillcorner.Possession{Group: "home team"},
			Players: []skillcorner.PlayerSample{
				{
					Player: skillcorner.Player{ID: "p1", Name: "Ana Costa", JerseyNumber: testutil.IntPtr(9)},
					Team:   homeTeam(),
					X:      testutil.FloatPtr(-10.5), Y: testutil.FloatPtr(3.25),
					Speed: testutil.FloatPtr(4.1),
				},
				{
					Player: skillcorner.Player{ID: "p2", Name: "Mia Holm"},
					Team:   awayTeam(),
					X:      testutil.FloatPtr(20), Y: testutil.FloatPtr(-7),
				},
			},
			Ball: &skillcorner.BallSample{X: testutil.FloatPtr(-9), Y: testutil.FloatPtr(2)},
		}},
	}

	payloads := Normalize(ds)
	if len(payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(payloads))
	}

	want := FramePayload{
		FrameID:     1000,
		Timestamp:   testutil.FloatPtr(83.25),
		Period:      testutil.IntPtr(1),
		Label:       "01:23.2 / Frame 1000",
		HomePlayers: []PlayerPayload{{ID: "p1", Label: "9", Name: "Ana Costa", X: -10.5, Y: 3.25, Detected: true, Speed: testutil.FloatPtr(4.1)}},
		AwayPlayers: []PlayerPayload{{ID: "p2", Label: "Mia Holm", Name: "Mia Holm", X: 20, Y: -7, Detected: true}},
		Ball:        &BallPayload{X: testutil.FloatPtr(-9), Y: testutil.FloatPtr(2), Z: 0},
		PossessionTeam: func() *string {
			s := "home team"
			return &s
		}(),
	}

	if diff := cmp.Diff(want, payloads[0]); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeSkipsNullCoordinates(t *testing.T) {
	ds := &skillcorner.Dataset{
		Frames: []skillcorner.Frame{{
			FrameID: 1,
			Players: []skillcorner.PlayerSample{
				{Player: skillcorner.Player{ID: "lost"}, Team: homeTeam()},
				{Player: skillcorner.Player{ID: "half"}, Team: homeTeam(), X: testutil.FloatPtr(1)},
				{Player: skillcorner.Player{ID: "ok"}, Team: homeTeam(), X: testutil.FloatPtr(1), Y: testutil.FloatPtr(2)},
			},
		}},
	}

	payload := Normalize(ds)[0]
	if len(payload.HomePlayers) != 1 || payload.HomePlayers[0].ID != "ok" {
		t.Errorf("home players = %+v, want only the fully-located player", payload.HomePlayers)
	}
	if len(payload.AwayPlayers) != 0 {
		t.Errorf("away players = %+v, want none", payload.AwayPlayers)
	}
}

func TestNormalizeUnlabeledTeamGoesAway(t *testing.T) {
	ds := &skillcorner.Dataset{
		Frames: []skillcorner.Frame{{
			FrameID: 1,
			Players: []skillcorner.PlayerSample{
				{Player: skillcorner.Player{ID: "x"}, X: testutil.FloatPtr(0), Y: testutil.FloatPtr(0)},
			},
		}},
	}

	payload := Normalize(ds)[0]
	if len(payload.AwayPlayers) != 1 {
		t.Fatalf("away players = %d, want 1 (documented default side)", len(payload.AwayPlayers))
	}
}

func TestNormalizeMissingBall(t *testing.T) {
	ds := &skillcorner.Dataset{Frames: []skillcorner.Frame{{FrameID: 7}}}
	payload := Normalize(ds)[0]
	if payload.Ball != nil {
		t.Errorf("ball = %+v, want nil when the frame has no ball object", payload.Ball)
	}
}

func TestNormalizeBallZDefaultsToGround(t *testing.T) {
	ds := &skillcorner.Dataset{Frames: []skillcorner.Frame{{
		FrameID: 7,
		Ball:    &skillcorner.BallSample{X: testutil.FloatPtr(1), Y: testutil.FloatPtr(2)},
	}}}
	payload := Normalize(ds)[0]
	if payload.Ball == nil || payload.Ball.Z != 0 {
		t.Errorf("ball = %+v, want z=0 default", payload.Ball)
	}
}

// A frame with every optional field missing still normalises cleanly.
func TestNormalizeTotallyBareFrame(t *testing.T) {
	ds := &skillcorner.Dataset{Frames: []skillcorner.Frame{{FrameID: 3}}}
	payload := Normalize(ds)[0]

	if payload.Timestamp != nil || payload.Period != nil || payload.PossessionTeam != nil || payload.Ball != nil {
		t.Errorf("bare frame payload carries data: %+v", payload)
	}
	if payload.Label != "00:00.0 / Frame 3" {
		t.Errorf("label = %q", payload.Label)
	}
}

// The payloads must serialise to plain JSON maps for the UI boundary.
func TestPayloadJSONShape(t *testing.T) {
	ds := &skillcorner.Dataset{Frames: []skillcorner.Frame{{FrameID: 5}}}
	data, err := json.Marshal(Normalize(ds))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	frame := decoded[0]
	for _, key := range []string{"frame", "timestamp", "period", "home_players", "away_players", "ball", "possession_team", "label"} {
		if _, ok := frame[key]; !ok {
			t.Errorf("payload JSON missing key %q", key)
		}
	}
	if frame["home_players"] == nil {
		t.Error("home_players must encode as an empty list, not null")
	}
}

func TestFrameLabel(t *testing.T) {
	tests := []struct {
		name      string
		timestamp *float64
		frameID   int64
		want      string
	}{
		{"nil timestamp", nil, 12, "00:00.0 / Frame 12"},
		{"zero", testutil.FloatPtr(0), 0, "00:00.0 / Frame 0"},
		{"minute boundary", testutil.FloatPtr(60), 600, "01:00.0 / Frame 600"},
		{"tenths", testutil.FloatPtr(83.27), 832, "01:23.2 / Frame 832"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameLabel(tt.timestamp, tt.frameID); got != tt.want {
				t.Errorf("FrameLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

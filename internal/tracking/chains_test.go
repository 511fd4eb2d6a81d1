package tracking

import (
	"testing"
	"time"

	"github.com/trackside-data/pitchclip/internal/skillcorner"
	"github.com/trackside-data/pitchclip/internal/testutil"
)

func TestTeamSide(t *testing.T) {
	tests := []struct {
		name string
		team *skillcorner.Team
		want string
	}{
		{"nil team defaults to away", nil, SideAway},
		{"ground HOME_TEAM", &skillcorner.Team{Ground: "HOME_TEAM"}, SideHome},
		{"ground AWAY_TEAM mixed case", &skillcorner.Team{Ground: "AWAY_TEAM"}, SideAway},
		{"ground lowercase home team", &skillcorner.Team{Ground: "home team"}, SideHome},
		{"free-text side Away", &skillcorner.Team{Side: "Away"}, SideAway},
		{"free-text side home", &skillcorner.Team{Side: "home"}, SideHome},
		{"is_home true", &skillcorner.Team{IsHome: testutil.BoolPtr(true)}, SideHome},
		{"is_home false", &skillcorner.Team{IsHome: testutil.BoolPtr(false)}, SideAway},
		{"no side fields defaults to away", &skillcorner.Team{Name: "Mystery FC"}, SideAway},
		{"unrecognised encoding defaults to away", &skillcorner.Team{Ground: "NEUTRAL", Side: "bench"}, SideAway},
		{"ground wins over flag", &skillcorner.Team{Ground: "AWAY_TEAM", IsHome: testutil.BoolPtr(true)}, SideAway},
		{"side wins over flag", &skillcorner.Team{Side: "home side", IsHome: testutil.BoolPtr(false)}, SideHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TeamSide(tt.team); got != tt.want {
				t.Errorf("TeamSide(%+v) = %q, want %q", tt.team, got, tt.want)
			}
		})
	}
}

// TeamSide must stay idempotent: resolving a team twice gives the same side.
func TestTeamSideIdempotent(t *testing.T) {
	team := &skillcorner.Team{Ground: "HOME_TEAM", Side: "away"}
	first := TeamSide(team)
	second := TeamSide(team)
	if first != second {
		t.Errorf("TeamSide not idempotent: %q then %q", first, second)
	}
}

func TestDetected(t *testing.T) {
	tests := []struct {
		name   string
		sample skillcorner.PlayerSample
		want   bool
	}{
		{"no signals defaults to detected", skillcorner.PlayerSample{}, true},
		{"visible flag false", skillcorner.PlayerSample{IsVisible: testutil.BoolPtr(false)}, false},
		{"visible flag wins over detected", skillcorner.PlayerSample{IsVisible: testutil.BoolPtr(true), IsDetected: testutil.BoolPtr(false)}, true},
		{"detected flag false", skillcorner.PlayerSample{IsDetected: testutil.BoolPtr(false)}, false},
		{"extra is_detected bool", skillcorner.PlayerSample{Extra: map[string]interface{}{"is_detected": false}}, false},
		{"extra is_visible string", skillcorner.PlayerSample{Extra: map[string]interface{}{"is_visible": "no"}}, false},
		{"extra string yes", skillcorner.PlayerSample{Extra: map[string]interface{}{"is_detected": "yes"}}, true},
		{"extra unrecognised value ignored", skillcorner.PlayerSample{Extra: map[string]interface{}{"is_detected": 3.5}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detected(&tt.sample); got != tt.want {
				t.Errorf("Detected = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPossessionTeam(t *testing.T) {
	tests := []struct {
		name  string
		frame skillcorner.Frame
		want  string // "" means nil expected
	}{
		{"no signals", skillcorner.Frame{}, ""},
		{"possession group", skillcorner.Frame{Possession: &skillcorner.Possession{Group: "home team"}}, "home team"},
		{"possession player id when group empty", skillcorner.Frame{Possession: &skillcorner.Possession{PlayerID: "77"}}, "77"},
		{"nested team name", skillcorner.Frame{Possession: &skillcorner.Possession{Team: &skillcorner.TeamRef{Name: "Lakeside FC"}}}, "Lakeside FC"},
		{"owning team name", skillcorner.Frame{BallOwningTeam: &skillcorner.TeamRef{ID: "11", Name: "Harbour City"}}, "Harbour City"},
		{"owning team id string form", skillcorner.Frame{BallOwningTeam: &skillcorner.TeamRef{ID: "11"}}, "11"},
		{"group wins over owning team", skillcorner.Frame{
			Possession:     &skillcorner.Possession{Group: "away team"},
			BallOwningTeam: &skillcorner.TeamRef{Name: "Lakeside FC"},
		}, "away team"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PossessionTeam(&tt.frame)
			if tt.want == "" {
				if got != nil {
					t.Errorf("PossessionTeam = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("PossessionTeam = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestPeriodNumber(t *testing.T) {
	tests := []struct {
		name  string
		frame skillcorner.Frame
		want  *int
	}{
		{"absent", skillcorner.Frame{}, nil},
		{"plain int", skillcorner.Frame{Period: testutil.IntPtr(2)}, testutil.IntPtr(2)},
		{"object id", skillcorner.Frame{PeriodRef: &skillcorner.PeriodRef{ID: testutil.IntPtr(1)}}, testutil.IntPtr(1)},
		{"object number when id missing", skillcorner.Frame{PeriodRef: &skillcorner.PeriodRef{Number: testutil.IntPtr(3)}}, testutil.IntPtr(3)},
		{"plain int wins over object", skillcorner.Frame{Period: testutil.IntPtr(1), PeriodRef: &skillcorner.PeriodRef{ID: testutil.IntPtr(2)}}, testutil.IntPtr(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodNumber(&tt.frame)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("PeriodNumber = %d, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("PeriodNumber = %v, want %d", got, *tt.want)
			}
		})
	}
}

func TestTimestampSeconds(t *testing.T) {
	elapsed := 90 * time.Second
	tests := []struct {
		name  string
		frame skillcorner.Frame
		want  *float64
	}{
		{"absent", skillcorner.Frame{}, nil},
		{"numeric", skillcorner.Frame{TimestampSeconds: testutil.FloatPtr(12.5)}, testutil.FloatPtr(12.5)},
		{"duration", skillcorner.Frame{Elapsed: &elapsed}, testutil.FloatPtr(90)},
		{"clock string", skillcorner.Frame{Clock: "00:01:30.00"}, testutil.FloatPtr(90)},
		{"unparseable clock", skillcorner.Frame{Clock: "n/a"}, nil},
		{"numeric wins over duration", skillcorner.Frame{TimestampSeconds: testutil.FloatPtr(1), Elapsed: &elapsed}, testutil.FloatPtr(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimestampSeconds(&tt.frame)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("TimestampSeconds = %f, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("TimestampSeconds = %v, want %f", got, *tt.want)
			}
		})
	}
}

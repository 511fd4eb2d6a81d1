package tracking

import (
	"strings"

	"github.com/trackside-data/pitchclip/internal/skillcorner"
)

// Team side values produced by TeamSide.
const (
	SideHome = "home"
	SideAway = "away"
)

// Each field that varies across provider schema versions is resolved by an
// ordered list of extractor functions: the first non-empty result wins, and
// a hard-coded default terminates the chain. The chains never fail; an
// unrecognised encoding falls through to the default.

// sideExtractors resolve a team's side, in priority order: the enumerated
// ground/team-type field, the free-text side annotation, the is-home flag.
var sideExtractors = []func(*skillcorner.Team) string{
	func(t *skillcorner.Team) string { return matchSide(t.Ground) },
	func(t *skillcorner.Team) string { return matchSide(t.Side) },
	func(t *skillcorner.Team) string {
		if t.IsHome == nil {
			return ""
		}
		if *t.IsHome {
			return SideHome
		}
		return SideAway
	},
}

// TeamSide resolves which side a team plays for. It is total: every input,
// including nil and unrecognised encodings, maps to exactly "home" or
// "away". The away default is a known lossy choice for unlabeled teams.
func TeamSide(team *skillcorner.Team) string {
	if team == nil {
		return SideAway
	}
	for _, extract := range sideExtractors {
		if side := extract(team); side != "" {
			return side
		}
	}
	return SideAway
}

// matchSide matches a side encoding case-insensitively by substring, so
// "HOME_TEAM", "home team" and "Home" all resolve the same way.
func matchSide(value string) string {
	lowered := strings.ToLower(value)
	if strings.Contains(lowered, "home") {
		return SideHome
	}
	if strings.Contains(lowered, "away") {
		return SideAway
	}
	return ""
}

// detectedExtractors resolve a player's visibility, in priority order: the
// explicit visibility flag, the explicit detection flag, then the auxiliary
// data map under either key.
var detectedExtractors = []func(*skillcorner.PlayerSample) *bool{
	func(s *skillcorner.PlayerSample) *bool { return s.IsVisible },
	func(s *skillcorner.PlayerSample) *bool { return s.IsDetected },
	func(s *skillcorner.PlayerSample) *bool {
		if v, ok := coerceBool(s.Extra["is_detected"]); ok {
			return &v
		}
		if v, ok := coerceBool(s.Extra["is_visible"]); ok {
			return &v
		}
		return nil
	},
}

// Detected resolves whether a player was actually detected in the frame.
// Absent any explicit signal the player counts as detected, since most
// frames carry no sparse-detection metadata at all.
func Detected(sample *skillcorner.PlayerSample) bool {
	for _, extract := range detectedExtractors {
		if v := extract(sample); v != nil {
			return *v
		}
	}
	return true
}

// coerceBool interprets the loosely-typed flag values seen in auxiliary
// provider data: real booleans and the usual string spellings.
func coerceBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

// possessionExtractors resolve the possession annotation, in priority order:
// the possession object's group, its player id, its nested team name, then
// the frame-level owning-team reference (name, else its id string).
var possessionExtractors = []func(*skillcorner.Frame) string{
	func(f *skillcorner.Frame) string {
		if f.Possession == nil {
			return ""
		}
		if f.Possession.Group != "" {
			return f.Possession.Group
		}
		return f.Possession.PlayerID
	},
	func(f *skillcorner.Frame) string {
		if f.Possession == nil || f.Possession.Team == nil {
			return ""
		}
		return f.Possession.Team.Name
	},
	func(f *skillcorner.Frame) string {
		if f.BallOwningTeam == nil {
			return ""
		}
		if f.BallOwningTeam.Name != "" {
			return f.BallOwningTeam.Name
		}
		return f.BallOwningTeam.ID
	},
}

// PossessionTeam resolves which team or group holds the ball, or nil when
// the frame carries no possession signal at all.
func PossessionTeam(frame *skillcorner.Frame) *string {
	for _, extract := range possessionExtractors {
		if v := extract(frame); v != "" {
			value := v
			return &value
		}
	}
	return nil
}

// periodExtractors resolve the period number: the plain integer field, then
// the period object's id, then its number.
var periodExtractors = []func(*skillcorner.Frame) *int{
	func(f *skillcorner.Frame) *int { return f.Period },
	func(f *skillcorner.Frame) *int {
		if f.PeriodRef == nil {
			return nil
		}
		return f.PeriodRef.ID
	},
	func(f *skillcorner.Frame) *int {
		if f.PeriodRef == nil {
			return nil
		}
		return f.PeriodRef.Number
	},
}

// PeriodNumber resolves the period/half number, or nil when absent.
func PeriodNumber(frame *skillcorner.Frame) *int {
	for _, extract := range periodExtractors {
		if v := extract(frame); v != nil {
			value := *v
			return &value
		}
	}
	return nil
}

// timestampExtractors resolve the frame timestamp in seconds: the numeric
// field, the duration field, then the raw clock string.
var timestampExtractors = []func(*skillcorner.Frame) *float64{
	func(f *skillcorner.Frame) *float64 { return f.TimestampSeconds },
	func(f *skillcorner.Frame) *float64 {
		if f.Elapsed == nil {
			return nil
		}
		seconds := f.Elapsed.Seconds()
		return &seconds
	},
	func(f *skillcorner.Frame) *float64 {
		if f.Clock == "" {
			return nil
		}
		d, ok := skillcorner.ParseClock(f.Clock)
		if !ok {
			return nil
		}
		seconds := d.Seconds()
		return &seconds
	},
}

// TimestampSeconds resolves the frame timestamp in seconds, or nil when the
// frame carries no usable time signal.
func TimestampSeconds(frame *skillcorner.Frame) *float64 {
	for _, extract := range timestampExtractors {
		if v := extract(frame); v != nil {
			value := *v
			return &value
		}
	}
	return nil
}

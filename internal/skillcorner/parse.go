package skillcorner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxTrackingLineBytes bounds one tracking jsonl line. Extrapolated frames
// carry every trackable object, but stay well under this.
const maxTrackingLineBytes = 4 << 20

// Load parses the raw provider files for one match into a Dataset.
// matchData is the <id>_match.json payload; trackingData is the
// <id>_tracking_extrapolated.jsonl payload (one frame per line).
func Load(matchID string, matchData, trackingData []byte, opts LoadOptions) (*Dataset, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	meta, index, err := parseMatchFile(matchData)
	if err != nil {
		return nil, fmt.Errorf("parse match file: %w", err)
	}

	frames, err := parseTrackingFile(trackingData, index, opts)
	if err != nil {
		return nil, fmt.Errorf("parse tracking file: %w", err)
	}

	return &Dataset{
		MatchID:  matchID,
		Metadata: *meta,
		Frames:   frames,
	}, nil
}

func validateOptions(opts LoadOptions) error {
	if opts.Coordinates != "" && opts.Coordinates != "skillcorner" {
		return fmt.Errorf("unsupported coordinate system %q (only \"skillcorner\" is available)", opts.Coordinates)
	}
	if opts.SampleRate < 0 || opts.SampleRate > 1 {
		return fmt.Errorf("sample rate %v out of range [0, 1] (0 and 1 both keep every frame)", opts.SampleRate)
	}
	return nil
}

// matchIndex resolves trackable-object ids from the tracking stream to the
// players and teams declared in the match file.
type matchIndex struct {
	players map[int64]Player
	teams   map[string]*Team
	ballID  int64
	hasBall bool
}

type matchFileJSON struct {
	HomeTeam    *teamJSON    `json:"home_team"`
	AwayTeam    *teamJSON    `json:"away_team"`
	PitchLength float64      `json:"pitch_length"`
	PitchWidth  float64      `json:"pitch_width"`
	FrameRate   float64      `json:"frame_rate"`
	Ball        *ballRefJSON `json:"ball"`
	Players     []playerJSON `json:"players"`

	// Extent-style pitch description on some file versions.
	XDim *axisJSON `json:"x_dim"`
	YDim *axisJSON `json:"y_dim"`
}

type teamJSON struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	ShortName string      `json:"short_name"`
	Ground    string      `json:"ground"`
	Side      string      `json:"side"`
	IsHome    *bool       `json:"is_home"`
}

type ballRefJSON struct {
	TrackableObject int64 `json:"trackable_object"`
}

type axisJSON struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type playerJSON struct {
	ID              json.Number `json:"id"`
	TrackableObject int64       `json:"trackable_object"`
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	Number          *int        `json:"number"`
	TeamID          json.Number `json:"team_id"`
}

func parseMatchFile(data []byte) (*Metadata, *matchIndex, error) {
	var mf matchFileJSON
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, nil, err
	}

	index := &matchIndex{
		players: make(map[int64]Player),
		teams:   make(map[string]*Team),
	}

	meta := &Metadata{FrameRate: mf.FrameRate}

	// The match file lists the home team first; the positional convention is
	// what downstream metadata resolution relies on.
	if mf.HomeTeam != nil {
		t := convertTeam(mf.HomeTeam, "HOME_TEAM")
		meta.Teams = append(meta.Teams, t)
	}
	if mf.AwayTeam != nil {
		t := convertTeam(mf.AwayTeam, "AWAY_TEAM")
		meta.Teams = append(meta.Teams, t)
	}
	for i := range meta.Teams {
		index.teams[meta.Teams[i].ID] = &meta.Teams[i]
	}

	if mf.PitchLength > 0 || mf.PitchWidth > 0 || mf.XDim != nil || mf.YDim != nil {
		pitch := &PitchDimensions{Length: mf.PitchLength, Width: mf.PitchWidth}
		if mf.XDim != nil {
			pitch.XDim = &AxisRange{Min: mf.XDim.Min, Max: mf.XDim.Max}
		}
		if mf.YDim != nil {
			pitch.YDim = &AxisRange{Min: mf.YDim.Min, Max: mf.YDim.Max}
		}
		meta.Pitch = pitch
	}

	if mf.Ball != nil {
		index.ballID = mf.Ball.TrackableObject
		index.hasBall = true
	}

	for _, p := range mf.Players {
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		index.players[p.TrackableObject] = Player{
			ID:           p.ID.String(),
			Name:         name,
			JerseyNumber: p.Number,
			TeamID:       p.TeamID.String(),
		}
	}

	return meta, index, nil
}

func convertTeam(t *teamJSON, positionalGround string) Team {
	ground := t.Ground
	if ground == "" && t.Side == "" && t.IsHome == nil {
		// No explicit side encoding in the file; the object's position
		// (home_team vs away_team key) is the only signal.
		ground = positionalGround
	}
	return Team{
		ID:     t.ID.String(),
		Name:   t.Name,
		Ground: ground,
		Side:   t.Side,
		IsHome: t.IsHome,
	}
}

type trackedFrameJSON struct {
	Frame          int64           `json:"frame"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Period         json.RawMessage `json:"period"`
	Possession     *possessionJSON `json:"possession"`
	BallOwningTeam json.RawMessage `json:"ball_owning_team"`
	Data           []sampleJSON    `json:"data"`
}

type possessionJSON struct {
	Group           string       `json:"group"`
	TrackableObject json.Number  `json:"trackable_object"`
	Team            *teamRefJSON `json:"team"`
}

type teamRefJSON struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type sampleJSON struct {
	TrackableObject int64                  `json:"trackable_object"`
	GroupName       string                 `json:"group_name"`
	X               *float64               `json:"x"`
	Y               *float64               `json:"y"`
	Z               *float64               `json:"z"`
	Speed           *float64               `json:"speed"`
	IsVisible       *bool                  `json:"is_visible"`
	IsDetected      *bool                  `json:"is_detected"`
	Extra           map[string]interface{} `json:"extra_data"`
}

func parseTrackingFile(data []byte, index *matchIndex, opts LoadOptions) ([]Frame, error) {
	step := 1
	if opts.SampleRate > 0 && opts.SampleRate < 1 {
		step = int(math.Round(1 / opts.SampleRate))
	}

	var frames []Frame
	ordinal := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxTrackingLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw trackedFrameJSON
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		frame := convertFrame(&raw, index)

		if !opts.IncludeEmptyFrames && len(frame.Players) == 0 && frame.Ball == nil {
			continue
		}
		if opts.OnlyAlive && (frame.Possession == nil || frame.Possession.Group == "") {
			continue
		}

		if ordinal%step == 0 {
			frames = append(frames, frame)
		}
		ordinal++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo, err)
	}

	return frames, nil
}

func convertFrame(raw *trackedFrameJSON, index *matchIndex) Frame {
	frame := Frame{FrameID: raw.Frame}

	parseTimestamp(&frame, raw.Timestamp)
	parsePeriod(&frame, raw.Period)
	parseOwningTeam(&frame, raw.BallOwningTeam)

	if raw.Possession != nil {
		p := &Possession{Group: raw.Possession.Group}
		if raw.Possession.TrackableObject.String() != "" {
			p.PlayerID = raw.Possession.TrackableObject.String()
		}
		if raw.Possession.Team != nil {
			p.Team = &TeamRef{ID: raw.Possession.Team.ID.String(), Name: raw.Possession.Team.Name}
		}
		frame.Possession = p
	}

	for i := range raw.Data {
		s := &raw.Data[i]
		if isBallSample(s, index) {
			frame.Ball = &BallSample{X: s.X, Y: s.Y, Z: s.Z}
			continue
		}
		frame.Players = append(frame.Players, convertPlayerSample(s, index))
	}

	return frame
}

func isBallSample(s *sampleJSON, index *matchIndex) bool {
	if index.hasBall && s.TrackableObject == index.ballID {
		return true
	}
	group := strings.ToLower(s.GroupName)
	return group == "ball" || group == "balls"
}

func convertPlayerSample(s *sampleJSON, index *matchIndex) PlayerSample {
	player, known := index.players[s.TrackableObject]
	if !known {
		// Unregistered trackable (referee, or a roster gap in the match
		// file). Keep it with a synthetic id so nothing is silently lost.
		player = Player{ID: strconv.FormatInt(s.TrackableObject, 10)}
	}

	sample := PlayerSample{
		Player:     player,
		X:          s.X,
		Y:          s.Y,
		IsVisible:  s.IsVisible,
		IsDetected: s.IsDetected,
		Speed:      s.Speed,
		Extra:      s.Extra,
	}

	if team, ok := index.teams[player.TeamID]; ok {
		sample.Team = team
	} else if side := strings.ToLower(s.GroupName); side != "" {
		// No roster link; fall back to the sample's free-text group name.
		sample.Team = &Team{Side: side}
	}
	return sample
}

func parseTimestamp(frame *Frame, raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		frame.TimestampSeconds = &seconds
		return
	}
	var clock string
	if err := json.Unmarshal(raw, &clock); err == nil {
		frame.Clock = clock
		if d, ok := ParseClock(clock); ok {
			frame.Elapsed = &d
		}
	}
}

func parsePeriod(frame *Frame, raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		frame.Period = &n
		return
	}
	var obj struct {
		ID     *int `json:"id"`
		Number *int `json:"number"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.ID != nil || obj.Number != nil) {
		frame.PeriodRef = &PeriodRef{ID: obj.ID, Number: obj.Number}
	}
}

func parseOwningTeam(frame *Frame, raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name != "" {
			frame.BallOwningTeam = &TeamRef{ID: name}
		}
		return
	}
	var obj teamRefJSON
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.ID.String() != "" || obj.Name != "") {
		frame.BallOwningTeam = &TeamRef{ID: obj.ID.String(), Name: obj.Name}
	}
}

// ParseClock converts a provider clock string ("HH:MM:SS.cc" or "MM:SS.cc")
// to an elapsed duration. The second return value is false when the string
// does not look like a clock.
func ParseClock(clock string) (time.Duration, bool) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)), true
}

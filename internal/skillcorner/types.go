// Package skillcorner models the SkillCorner open-data tracking schema and
// parses the raw provider files into an in-memory Dataset.
//
// The schema has drifted across releases (team side encoding, possession
// encoding, detection flags, timestamp formats), so the Dataset types keep
// variant-prone values as optional fields and leave reconciliation to the
// tracking package.
package skillcorner

import "time"

// LoadOptions control how a raw dataset is materialised.
type LoadOptions struct {
	// SampleRate keeps a fraction of frames: 1 (or 0) keeps every frame,
	// 0.5 keeps every other frame. Matches the provider tooling convention.
	SampleRate float64

	// IncludeEmptyFrames keeps frames with no tracked players and no ball.
	IncludeEmptyFrames bool

	// Coordinates names the coordinate system. Only "skillcorner" (metric,
	// centered origin) is supported; empty means the same.
	Coordinates string

	// OnlyAlive drops frames without an active possession group, the closest
	// signal the provider gives for dead-ball periods.
	OnlyAlive bool
}

// Dataset is a parsed tracking dataset: ordered frames plus match metadata.
// FrameRate and Pitch may appear at the dataset level, the metadata level,
// both, or neither, depending on the provider file version.
type Dataset struct {
	MatchID   string
	Metadata  Metadata
	Frames    []Frame
	FrameRate float64
	Pitch     *PitchDimensions
}

// Metadata carries the match-level fields needed to interpret frames.
// Any of these may be missing in older files; consumers must apply defaults.
type Metadata struct {
	Teams     []Team
	FrameRate float64 // frames per second; 0 when the match file omits it
	Pitch     *PitchDimensions
}

// Team describes one side of the fixture. The side encoding varies by schema
// version: newer files carry an enumerated Ground value, legacy files a
// free-text Side annotation or an IsHome flag. Any or all may be absent.
type Team struct {
	ID     string
	Name   string
	Ground string // enumerated team-type field, e.g. "HOME_TEAM"
	Side   string // free-text side annotation on legacy files
	IsHome *bool  // boolean flag on some schema versions
}

// PitchDimensions is either a direct length/width pair or min/max extents
// along each axis, depending on the file version.
type PitchDimensions struct {
	Length float64
	Width  float64
	XDim   *AxisRange
	YDim   *AxisRange
}

// AxisRange is a min/max extent along one pitch axis in meters.
type AxisRange struct {
	Min float64
	Max float64
}

// Player identifies a tracked player.
type Player struct {
	ID           string
	Name         string
	JerseyNumber *int
	TeamID       string
}

// Frame is one timestamped sample of all tracked actors.
type Frame struct {
	FrameID int64

	// Timestamp variants: a numeric seconds value, a pre-parsed elapsed
	// duration, or a raw clock string ("HH:MM:SS.cc"). At most one of the
	// first two is set by the parser; all may be absent.
	TimestampSeconds *float64
	Elapsed          *time.Duration
	Clock            string

	// Period variants: a plain period number or a period object.
	Period    *int
	PeriodRef *PeriodRef

	Players []PlayerSample
	Ball    *BallSample

	// Possession variants: a possession annotation object, or a frame-level
	// owning-team reference on older files.
	Possession     *Possession
	BallOwningTeam *TeamRef
}

// PeriodRef is the object form of a period annotation.
type PeriodRef struct {
	ID     *int
	Number *int
}

// TeamRef is a lightweight team reference used by possession annotations.
type TeamRef struct {
	ID   string
	Name string
}

// Possession describes which group or player holds the ball.
type Possession struct {
	Group    string
	PlayerID string
	Team     *TeamRef
}

// PlayerSample is one player's tracked state within a frame. Coordinates are
// nil when the provider lost the player for that frame.
type PlayerSample struct {
	Player     Player
	Team       *Team
	X          *float64
	Y          *float64
	IsVisible  *bool
	IsDetected *bool
	Speed      *float64

	// Extra holds auxiliary per-sample provider data; some files bury the
	// detection flag in here instead of a top-level field.
	Extra map[string]interface{}
}

// BallSample is the ball's tracked state within a frame.
type BallSample struct {
	X *float64
	Y *float64
	Z *float64
}

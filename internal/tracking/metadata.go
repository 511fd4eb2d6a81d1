package tracking

import "github.com/trackside-data/pitchclip/internal/skillcorner"

// Defaults applied when a dataset omits metadata fields. Legacy provider
// files drop any of these, and the visual pipeline must keep working.
const (
	DefaultFrameRate   = 10.0
	DefaultPitchLength = 105.0
	DefaultPitchWidth  = 68.0
)

// TrackingMetadata is the canonical match-level record derived from a raw
// dataset. Created once per loaded match and immutable thereafter.
type TrackingMetadata struct {
	MatchID     string  `json:"match_id"`
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	FrameRate   float64 `json:"frame_rate"`
	TotalFrames int     `json:"total_frames"`
	PitchLength float64 `json:"pitch_length"`
	PitchWidth  float64 `json:"pitch_width"`
}

// ResolveMetadata derives TrackingMetadata from a dataset, applying fallback
// rules across schema variants. It never fails: every field resolves to a
// default rather than an error so partial or legacy datasets stay renderable.
func ResolveMetadata(ds *skillcorner.Dataset, matchID string) TrackingMetadata {
	meta := TrackingMetadata{
		MatchID:     matchID,
		HomeTeam:    "Home",
		AwayTeam:    "Away",
		FrameRate:   DefaultFrameRate,
		PitchLength: DefaultPitchLength,
		PitchWidth:  DefaultPitchWidth,
	}
	if ds == nil {
		return meta
	}

	meta.TotalFrames = len(ds.Frames)

	// First listed team is home, second is away, by provider convention.
	teams := ds.Metadata.Teams
	if len(teams) > 0 && teams[0].Name != "" {
		meta.HomeTeam = teams[0].Name
	}
	if len(teams) > 1 && teams[1].Name != "" {
		meta.AwayTeam = teams[1].Name
	}

	// Frame rate: dataset-level field, then metadata-level, then default.
	switch {
	case ds.FrameRate > 0:
		meta.FrameRate = ds.FrameRate
	case ds.Metadata.FrameRate > 0:
		meta.FrameRate = ds.Metadata.FrameRate
	}

	pitch := ds.Pitch
	if pitch == nil {
		pitch = ds.Metadata.Pitch
	}
	if length, ok := resolvePitchExtent(pitch, true); ok {
		meta.PitchLength = length
	}
	if width, ok := resolvePitchExtent(pitch, false); ok {
		meta.PitchWidth = width
	}

	return meta
}

// resolvePitchExtent reads one pitch dimension from a direct length/width
// field or, failing that, from the min/max extents along the axis.
func resolvePitchExtent(pitch *skillcorner.PitchDimensions, lengthAxis bool) (float64, bool) {
	if pitch == nil {
		return 0, false
	}

	direct := pitch.Width
	axis := pitch.YDim
	if lengthAxis {
		direct = pitch.Length
		axis = pitch.XDim
	}

	if direct > 0 {
		return direct, true
	}
	if axis != nil && axis.Max > axis.Min {
		return axis.Max - axis.Min, true
	}
	return 0, false
}

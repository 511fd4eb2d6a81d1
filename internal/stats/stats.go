// Package stats summarises a loaded match's tracking payloads: per-team
// speed distributions and possession share.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/trackside-data/pitchclip/internal/tracking"
	"github.com/trackside-data/pitchclip/internal/units"
)

// SpeedSummary describes one team's speed distribution across every player
// sample that carried a speed reading.
type SpeedSummary struct {
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	P95     float64 `json:"p95"`
	Max     float64 `json:"max"`
	Units   string  `json:"units"`
}

// MatchStats is the full stats response for a loaded match.
type MatchStats struct {
	MatchID         string             `json:"match_id"`
	FrameCount      int                `json:"frame_count"`
	HomeSpeed       SpeedSummary       `json:"home_speed"`
	AwaySpeed       SpeedSummary       `json:"away_speed"`
	PossessionShare map[string]float64 `json:"possession_share"`
	BallTracked     float64            `json:"ball_tracked"`
}

// Compute builds match stats over the full payload sequence, converting
// speeds from the provider's m/s into the requested units.
func Compute(matchID string, payloads []tracking.FramePayload, targetUnits string) MatchStats {
	s := MatchStats{
		MatchID:         matchID,
		FrameCount:      len(payloads),
		PossessionShare: map[string]float64{},
	}

	var homeSpeeds, awaySpeeds []float64
	possessionFrames := 0
	ballFrames := 0

	for i := range payloads {
		p := &payloads[i]
		homeSpeeds = appendSpeeds(homeSpeeds, p.HomePlayers)
		awaySpeeds = appendSpeeds(awaySpeeds, p.AwayPlayers)

		if p.PossessionTeam != nil {
			s.PossessionShare[*p.PossessionTeam]++
			possessionFrames++
		}
		if p.Ball != nil && p.Ball.X != nil && p.Ball.Y != nil {
			ballFrames++
		}
	}

	s.HomeSpeed = summarise(homeSpeeds, targetUnits)
	s.AwaySpeed = summarise(awaySpeeds, targetUnits)

	if possessionFrames > 0 {
		for team, count := range s.PossessionShare {
			s.PossessionShare[team] = count / float64(possessionFrames)
		}
	}
	if len(payloads) > 0 {
		s.BallTracked = float64(ballFrames) / float64(len(payloads))
	}

	return s
}

func appendSpeeds(dst []float64, players []tracking.PlayerPayload) []float64 {
	for i := range players {
		if players[i].Speed != nil {
			dst = append(dst, *players[i].Speed)
		}
	}
	return dst
}

// summarise reduces a speed sample set. Quantiles need sorted input, so the
// samples are sorted in place here.
func summarise(speeds []float64, targetUnits string) SpeedSummary {
	summary := SpeedSummary{Samples: len(speeds), Units: targetUnits}
	if len(speeds) == 0 {
		return summary
	}

	sort.Float64s(speeds)

	summary.Mean = units.ConvertSpeed(stat.Mean(speeds, nil), targetUnits)
	summary.Median = units.ConvertSpeed(stat.Quantile(0.5, stat.Empirical, speeds, nil), targetUnits)
	summary.P95 = units.ConvertSpeed(stat.Quantile(0.95, stat.Empirical, speeds, nil), targetUnits)
	summary.Max = units.ConvertSpeed(speeds[len(speeds)-1], targetUnits)
	return summary
}

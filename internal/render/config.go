// Package render turns normalised frame payloads into raster frames and
// encodes short clips of them as GIF or MP4.
package render

import (
	"fmt"
	"image/color"

	"github.com/trackside-data/pitchclip/internal/pitch"
)

// MaxClipSeconds is the hard upper bound on clip duration. Enforced at the
// request boundary so rendering never starts on an oversize window.
const MaxClipSeconds = 10.0

// Config holds the raster style for composited frames.
type Config struct {
	Canvas pitch.Canvas

	PitchColor color.RGBA
	LineColor  color.RGBA
	HomeColor  color.RGBA
	AwayColor  color.RGBA
	BallColor  color.RGBA
	TextColor  color.RGBA

	// Marker radii in pixels.
	PlayerRadius float64
	BallRadius   float64
}

// DefaultConfig returns the standard schematic-pitch style: a 960x600
// canvas, grass green field, blue home and red away markers, yellow ball.
func DefaultConfig() Config {
	return Config{
		Canvas:       pitch.Canvas{Width: 960, Height: 600},
		PitchColor:   color.RGBA{R: 0x0B, G: 0x64, B: 0x1D, A: 0xFF},
		LineColor:    color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		HomeColor:    color.RGBA{R: 0x34, G: 0x98, B: 0xDB, A: 0xFF},
		AwayColor:    color.RGBA{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF},
		BallColor:    color.RGBA{R: 0xF1, G: 0xC4, B: 0x0F, A: 0xFF},
		TextColor:    color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		PlayerRadius: 10,
		BallRadius:   6,
	}
}

// Validate checks the configuration is drawable.
func (c Config) Validate() error {
	if c.Canvas.Width <= 2*pitch.Margin || c.Canvas.Height <= 2*pitch.Margin {
		return fmt.Errorf("canvas %dx%d leaves no drawable area inside the %dpx margin",
			c.Canvas.Width, c.Canvas.Height, pitch.Margin)
	}
	if c.PlayerRadius <= 0 {
		return fmt.Errorf("player radius %v must be positive", c.PlayerRadius)
	}
	if c.BallRadius <= 0 {
		return fmt.Errorf("ball radius %v must be positive", c.BallRadius)
	}
	return nil
}

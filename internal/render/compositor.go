package render

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/trackside-data/pitchclip/internal/pitch"
	"github.com/trackside-data/pitchclip/internal/tracking"
)

const centreCircleRadiusMeters = 9.15

// Compositor draws one frame payload onto a schematic pitch raster.
// A compositor is stateless between frames and safe to reuse across a clip.
type Compositor struct {
	cfg         Config
	labelFace   font.Face
	overlayFace font.Face
}

// NewCompositor builds a compositor for the given style.
func NewCompositor(cfg Config) (*Compositor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	fonts := font.NewCache(liberation.Collection())
	sans := font.Font{Typeface: "Liberation", Variant: "Sans"}
	return &Compositor{
		cfg:         cfg,
		labelFace:   fonts.Lookup(sans, 9),
		overlayFace: fonts.Lookup(sans, 12),
	}, nil
}

// Render composites a single frame: pitch markings, both teams' players,
// the ball, and the timestamp overlay. It always succeeds; frames with no
// players or no ball simply render an empty pitch.
func (c *Compositor) Render(frame *tracking.FramePayload, meta *tracking.TrackingMetadata) *image.RGBA {
	// At 72 DPI one point equals one pixel, so the vector canvas maps
	// directly onto the raster dimensions.
	canvas := vgimg.NewWith(
		vgimg.UseDPI(72),
		vgimg.UseWH(vg.Length(c.cfg.Canvas.Width), vg.Length(c.cfg.Canvas.Height)),
	)

	c.drawPitch(canvas, meta)

	for i := range frame.HomePlayers {
		c.drawPlayer(canvas, &frame.HomePlayers[i], c.cfg.HomeColor, meta)
	}
	for i := range frame.AwayPlayers {
		c.drawPlayer(canvas, &frame.AwayPlayers[i], c.cfg.AwayColor, meta)
	}

	// Ball drawn last so it sits on top of player markers.
	if frame.Ball != nil && frame.Ball.X != nil && frame.Ball.Y != nil {
		px, py := pitch.Project(*frame.Ball.X, *frame.Ball.Y, meta.PitchLength, meta.PitchWidth, c.cfg.Canvas)
		canvas.SetColor(c.cfg.BallColor)
		canvas.Fill(circlePath(c.toVG(px, py), vg.Length(c.cfg.BallRadius)))
	}

	c.drawOverlay(canvas, frame)

	src := canvas.Image()
	out := image.NewRGBA(src.Bounds())
	stddraw.Draw(out, out.Bounds(), src, src.Bounds().Min, stddraw.Src)
	return out
}

func (c *Compositor) drawPitch(canvas *vgimg.Canvas, meta *tracking.TrackingMetadata) {
	w := vg.Length(c.cfg.Canvas.Width)
	h := vg.Length(c.cfg.Canvas.Height)
	m := vg.Length(pitch.Margin)

	canvas.SetColor(c.cfg.PitchColor)
	canvas.Fill(rectPath(0, 0, w, h))

	canvas.SetColor(c.cfg.LineColor)
	canvas.SetLineWidth(2)
	canvas.Stroke(rectPath(m, m, w-m, h-m))

	// Halfway line.
	var half vg.Path
	half.Move(vg.Point{X: w / 2, Y: m})
	half.Line(vg.Point{X: w / 2, Y: h - m})
	canvas.Stroke(half)

	// Centre circle, scaled with the pitch length so it stays proportional
	// to player spacing.
	radius := vg.Length(pitch.ScaleX(centreCircleRadiusMeters, meta.PitchLength, c.cfg.Canvas))
	canvas.Stroke(circlePath(vg.Point{X: w / 2, Y: h / 2}, radius))
}

func (c *Compositor) drawPlayer(canvas *vgimg.Canvas, player *tracking.PlayerPayload, fill color.RGBA, meta *tracking.TrackingMetadata) {
	px, py := pitch.Project(player.X, player.Y, meta.PitchLength, meta.PitchWidth, c.cfg.Canvas)
	center := c.toVG(px, py)
	radius := vg.Length(c.cfg.PlayerRadius)

	if player.Detected {
		canvas.SetColor(fill)
	} else {
		// Extrapolated positions render faded so they read as estimates.
		canvas.SetColor(color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: 0x80})
	}
	canvas.Fill(circlePath(center, radius))

	canvas.SetColor(c.cfg.LineColor)
	canvas.SetLineWidth(1)
	canvas.Stroke(circlePath(center, radius))

	if player.Label != "" {
		canvas.SetColor(c.cfg.TextColor)
		width := c.labelFace.Width(player.Label)
		at := vg.Point{X: center.X - width/2, Y: center.Y - radius - 11}
		canvas.FillString(c.labelFace, at, player.Label)
	}
}

func (c *Compositor) drawOverlay(canvas *vgimg.Canvas, frame *tracking.FramePayload) {
	var ts float64
	if frame.Timestamp != nil {
		ts = *frame.Timestamp
	}
	text := fmt.Sprintf("t=%.1fs | frame=%d", ts, frame.FrameID)

	canvas.SetColor(c.cfg.TextColor)
	at := c.toVG(6, 16)
	canvas.FillString(c.overlayFace, at, text)
}

// toVG converts top-left-origin pixel coordinates to the vector canvas's
// bottom-left-origin point space.
func (c *Compositor) toVG(px, py float64) vg.Point {
	return vg.Point{X: vg.Length(px), Y: vg.Length(float64(c.cfg.Canvas.Height) - py)}
}

func rectPath(x0, y0, x1, y1 vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: x0, Y: y0})
	p.Line(vg.Point{X: x1, Y: y0})
	p.Line(vg.Point{X: x1, Y: y1})
	p.Line(vg.Point{X: x0, Y: y1})
	p.Close()
	return p
}

func circlePath(center vg.Point, radius vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: center.X + radius, Y: center.Y})
	p.Arc(center, radius, 0, 2*math.Pi)
	p.Close()
	return p
}

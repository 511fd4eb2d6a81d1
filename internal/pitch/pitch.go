// Package pitch projects metric pitch coordinates onto a raster canvas.
//
// Provider coordinates are pitch-centric metres: the origin sits at the
// centre spot, x grows toward the right goal and y grows toward the top
// touchline. Raster coordinates are pixels with the origin at the top-left
// corner, so projection flips the y axis.
package pitch

// Margin is the pixel border kept clear around the drawn pitch.
const Margin = 20

// Canvas describes the raster target in pixels.
type Canvas struct {
	Width  int
	Height int
}

// Usable returns the pixel extent of the drawable pitch area, the canvas
// minus the margin on every side.
func (c Canvas) Usable() (w, h float64) {
	return float64(c.Width - 2*Margin), float64(c.Height - 2*Margin)
}

// Project maps a pitch position in metres to pixel coordinates on the
// canvas. Positions beyond the pitch extents are clamped to the drawn
// boundary rather than escaping into the margin.
func Project(x, y, pitchLength, pitchWidth float64, canvas Canvas) (px, py float64) {
	usableW, usableH := canvas.Usable()

	nx := clamp(x/pitchLength+0.5, 0, 1)
	ny := clamp(y/pitchWidth+0.5, 0, 1)

	px = Margin + nx*usableW
	py = Margin + (1-ny)*usableH
	return px, py
}

// ScaleX converts a distance in metres along the pitch length to pixels,
// using the same horizontal scale Project uses. Pitch markings drawn with
// it stay proportioned to the player positions.
func ScaleX(distance, pitchLength float64, canvas Canvas) float64 {
	usableW, _ := canvas.Usable()
	return distance / pitchLength * usableW
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

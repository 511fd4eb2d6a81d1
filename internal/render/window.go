package render

import "fmt"

// ClipWindow is an in/out frame selection over a loaded match's payload
// sequence, addressed by payload array index. Endpoints may be set in
// either order; Normalized puts them the right way round. Both endpoints
// are inclusive.
type ClipWindow struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

// MarkIn sets the window's in-point to the given payload index.
func (w *ClipWindow) MarkIn(index int) {
	v := index
	w.Start = &v
}

// MarkOut sets the window's out-point to the given payload index.
func (w *ClipWindow) MarkOut(index int) {
	v := index
	w.End = &v
}

// Clear drops both endpoints.
func (w *ClipWindow) Clear() {
	w.Start = nil
	w.End = nil
}

// Complete reports whether both endpoints are set.
func (w ClipWindow) Complete() bool {
	return w.Start != nil && w.End != nil
}

// Normalized returns the window as an ordered (start, end) pair, swapping
// endpoints marked in reverse. ok is false when either endpoint is unset.
func (w ClipWindow) Normalized() (start, end int, ok bool) {
	if !w.Complete() {
		return 0, 0, false
	}
	start, end = *w.Start, *w.End
	if start > end {
		start, end = end, start
	}
	return start, end, true
}

// FrameCount returns the number of frames the window selects, zero when
// the window is incomplete.
func (w ClipWindow) FrameCount() int {
	start, end, ok := w.Normalized()
	if !ok {
		return 0
	}
	return end - start + 1
}

// Bounds validates the window against a payload sequence of the given
// length and returns the ordered inclusive index range.
func (w ClipWindow) Bounds(totalFrames int) (start, end int, err error) {
	start, end, ok := w.Normalized()
	if !ok {
		return 0, 0, clipErrorf("clip window is incomplete, mark both endpoints first")
	}
	if start < 0 || end >= totalFrames {
		return 0, 0, clipErrorf("clip window [%d, %d] is outside the loaded range of %d frames",
			start, end, totalFrames)
	}
	return start, end, nil
}

// ClipDuration returns the clip's playback length in seconds for the given
// frame count and rate.
func ClipDuration(frameCount int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frameCount) / fps
}

// CheckDuration rejects selections longer than MaxClipSeconds. Called
// before any rendering work starts.
func CheckDuration(frameCount int, fps float64) error {
	if fps <= 0 {
		return clipErrorf("frame rate %v must be positive", fps)
	}
	if d := ClipDuration(frameCount, fps); d > MaxClipSeconds {
		return clipErrorf("selection of %d frames runs %.1fs, longer than the %.0fs limit",
			frameCount, d, MaxClipSeconds)
	}
	return nil
}

// String renders the window for logs.
func (w ClipWindow) String() string {
	start, end, ok := w.Normalized()
	if !ok {
		return "window(unset)"
	}
	return fmt.Sprintf("window(%d..%d)", start, end)
}

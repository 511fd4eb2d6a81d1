package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color/palette"
	stddraw "image/draw"
	"image/gif"
	"image/png"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/trackside-data/pitchclip/internal/monitoring"
	"github.com/trackside-data/pitchclip/internal/tracking"
)

// Clip output formats.
const (
	FormatGIF = "gif"
	FormatMP4 = "mp4"
)

// RenderResult is a finished clip ready to hand to the caller: the encoded
// bytes plus everything needed to serve or save them.
type RenderResult struct {
	Payload       []byte `json:"-"`
	MimeType      string `json:"mime_type"`
	FileExtension string `json:"file_extension"`
	FileName      string `json:"file_name"`

	// PreviewKind tells the UI whether to embed the payload as an inline
	// image or a video element.
	PreviewKind string `json:"preview_kind"`

	// PreviewImage is a PNG of the clip's first frame.
	PreviewImage []byte `json:"-"`
}

// Encoder renders frame sequences and encodes them into clips.
type Encoder struct {
	comp *Compositor
}

// NewEncoder builds an encoder with the given raster style.
func NewEncoder(cfg Config) (*Encoder, error) {
	comp, err := NewCompositor(cfg)
	if err != nil {
		return nil, err
	}
	return &Encoder{comp: comp}, nil
}

// Encode renders the given frames and encodes them as a clip in the
// requested format. The frame slice is the already-windowed selection;
// duration limits are checked by the caller before slicing. All argument
// problems surface as *ClipRenderError before any rendering starts.
func (e *Encoder) Encode(ctx context.Context, matchID string, frames []tracking.FramePayload, meta *tracking.TrackingMetadata, fps float64, format string) (*RenderResult, error) {
	if len(frames) == 0 {
		return nil, clipErrorf("no frames selected")
	}
	if fps <= 0 {
		return nil, clipErrorf("frame rate %v must be positive", fps)
	}
	if format != FormatGIF && format != FormatMP4 {
		return nil, clipErrorf("unsupported format %q, want %q or %q", format, FormatGIF, FormatMP4)
	}

	monitoring.Logf("render: encoding %d frames at %.1f fps as %s for match %s",
		len(frames), fps, format, matchID)

	rendered := make([]*image.RGBA, len(frames))
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, &ClipRenderError{Reason: "cancelled while compositing", Err: err}
		}
		rendered[i] = e.comp.Render(&frames[i], meta)
	}

	preview, err := encodePNG(rendered[0])
	if err != nil {
		return nil, &ClipRenderError{Reason: "preview frame", Err: err}
	}

	result := &RenderResult{
		FileName:     ClipFileName(matchID, frames, format),
		PreviewImage: preview,
	}

	switch format {
	case FormatGIF:
		payload, err := encodeGIF(rendered, fps)
		if err != nil {
			return nil, err
		}
		result.Payload = payload
		result.MimeType = "image/gif"
		result.FileExtension = "gif"
		result.PreviewKind = "image"
	case FormatMP4:
		payload, err := encodeMP4(ctx, rendered, fps)
		if err != nil {
			return nil, err
		}
		result.Payload = payload
		result.MimeType = "video/mp4"
		result.FileExtension = "mp4"
		result.PreviewKind = "video"
	}

	return result, nil
}

// RenderPreview composites a single frame and returns it PNG-encoded.
func (e *Encoder) RenderPreview(frame *tracking.FramePayload, meta *tracking.TrackingMetadata) ([]byte, error) {
	return encodePNG(e.comp.Render(frame, meta))
}

// ClipFileName builds the download name from the provider frame ids at the
// clip's endpoints, e.g. clip_2221637_1200-1299.gif.
func ClipFileName(matchID string, frames []tracking.FramePayload, format string) string {
	if len(frames) == 0 {
		return fmt.Sprintf("clip_%s.%s", matchID, format)
	}
	first := frames[0].FrameID
	last := frames[len(frames)-1].FrameID
	return fmt.Sprintf("clip_%s_%d-%d.%s", matchID, first, last, format)
}

func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeGIF builds an animated GIF. Per-frame delay is in hundredths of a
// second, so the effective rate is the closest representable one.
func encodeGIF(frames []*image.RGBA, fps float64) ([]byte, error) {
	delay := int(math.Round(100 / fps))
	if delay < 1 {
		delay = 1
	}

	anim := &gif.GIF{
		Image:    make([]*image.Paletted, 0, len(frames)),
		Delay:    make([]int, 0, len(frames)),
		Disposal: make([]byte, 0, len(frames)),
	}
	for _, frame := range frames {
		paletted := image.NewPaletted(frame.Bounds(), palette.Plan9)
		stddraw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, image.Point{})
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, &ClipRenderError{Reason: "gif encoding", Err: err}
	}
	return buf.Bytes(), nil
}

// encodeMP4 streams PNG frames into ffmpeg and reads the result back from a
// scoped temporary file, which is removed on every path out.
func encodeMP4(ctx context.Context, frames []*image.RGBA, fps float64) ([]byte, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &ClipRenderError{Reason: "ffmpeg not found in PATH", Err: err}
	}

	tmp, err := os.CreateTemp("", "pitchclip-*.mp4")
	if err != nil {
		return nil, &ClipRenderError{Reason: "temp file", Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	fpsArg := strconv.FormatFloat(fps, 'f', -1, 64)
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-y",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-r", fpsArg,
		"-i", "-",
		"-vcodec", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		tmpPath,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &ClipRenderError{Reason: "ffmpeg stdin", Err: err}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &ClipRenderError{Reason: "starting ffmpeg", Err: err}
	}

	writeErr := func() error {
		defer stdin.Close()
		for _, frame := range frames {
			if err := png.Encode(stdin, frame); err != nil {
				return err
			}
		}
		return nil
	}()

	if err := cmd.Wait(); err != nil {
		return nil, &ClipRenderError{
			Reason: fmt.Sprintf("ffmpeg exited: %s", lastLine(stderr.String())),
			Err:    err,
		}
	}
	if writeErr != nil {
		return nil, &ClipRenderError{Reason: "piping frames to ffmpeg", Err: writeErr}
	}

	payload, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, &ClipRenderError{Reason: "reading encoded clip", Err: err}
	}
	return payload, nil
}

// lastLine pulls the final non-empty line out of ffmpeg's stderr, which is
// where it reports the actual failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

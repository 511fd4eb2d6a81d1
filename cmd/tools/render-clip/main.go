// Command render-clip renders a clip for one match from the command line,
// without running the HTTP server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trackside-data/pitchclip/internal/fetch"
	"github.com/trackside-data/pitchclip/internal/render"
	"github.com/trackside-data/pitchclip/internal/skillcorner"
	"github.com/trackside-data/pitchclip/internal/tracking"
)

var (
	matchID      = flag.String("match", "2221637", "Match id to load")
	cacheDir     = flag.String("cache-dir", "data/cache", "Directory for downloaded tracking data")
	start        = flag.Int("start", 0, "First frame index of the clip")
	end          = flag.Int("end", 99, "Last frame index of the clip (inclusive)")
	format       = flag.String("format", render.FormatGIF, "Clip format (gif or mp4)")
	output       = flag.String("out", "", "Output path (defaults to the generated clip name)")
	includeEmpty = flag.Bool("include-empty-frames", false, "Keep frames with no tracked objects")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := fetch.NewLoader(nil, nil, *cacheDir)
	opts := skillcorner.LoadOptions{SampleRate: 1, IncludeEmptyFrames: *includeEmpty}
	ds, err := loader.Load(ctx, *matchID, opts)
	if err != nil {
		log.Fatalf("Failed to load match %s: %v", *matchID, err)
	}

	payloads := tracking.Normalize(ds)
	meta := tracking.ResolveMetadata(ds, *matchID)
	log.Printf("loaded %d frames at %.1f fps (%s vs %s)",
		len(payloads), meta.FrameRate, meta.HomeTeam, meta.AwayTeam)

	window := render.ClipWindow{Start: start, End: end}
	first, last, err := window.Bounds(len(payloads))
	if err != nil {
		log.Fatalf("Invalid clip window: %v", err)
	}
	frameCount := last - first + 1
	if err := render.CheckDuration(frameCount, meta.FrameRate); err != nil {
		log.Fatalf("Clip too long: %v", err)
	}

	encoder, err := render.NewEncoder(render.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create encoder: %v", err)
	}

	result, err := encoder.Encode(ctx, *matchID, payloads[first:last+1], &meta, meta.FrameRate, *format)
	if err != nil {
		log.Fatalf("Failed to encode clip: %v", err)
	}

	path := *output
	if path == "" {
		path = result.FileName
	}
	if err := os.WriteFile(path, result.Payload, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	log.Printf("wrote %s (%d bytes, %.1fs at %.1f fps)",
		path, len(result.Payload), render.ClipDuration(frameCount, meta.FrameRate), meta.FrameRate)
}

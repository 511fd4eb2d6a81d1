package fetch

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/trackside-data/pitchclip/internal/fsutil"
	"github.com/trackside-data/pitchclip/internal/httputil"
	"github.com/trackside-data/pitchclip/internal/skillcorner"
)

const matchFixture = `{
	"home_team": {"id": 1, "name": "Home FC"},
	"away_team": {"id": 2, "name": "Away FC"},
	"pitch_length": 105, "pitch_width": 68,
	"ball": {"trackable_object": 55},
	"players": [{"id": 10, "trackable_object": 100, "first_name": "A", "last_name": "B", "number": 7, "team_id": 1}]
}`

const trackingFixture = `{"frame": 1, "period": 1, "data": [{"trackable_object": 100, "x": 0, "y": 0}]}
`

func rawURL(matchID, filename string) string {
	return "https://raw.githubusercontent.com/SkillCorner/opendata/master/data/matches/" + matchID + "/" + filename
}

func mediaURL(matchID, filename string) string {
	return "https://media.githubusercontent.com/media/SkillCorner/opendata/master/data/matches/" + matchID + "/" + filename
}

func TestLoadDownloadsAndCaches(t *testing.T) {
	client := httputil.NewMockClient().
		Respond(rawURL("42", "42_match.json"), http.StatusOK, []byte(matchFixture)).
		Respond(rawURL("42", "42_tracking_extrapolated.jsonl"), http.StatusOK, []byte(trackingFixture))
	fs := fsutil.NewMemoryFileSystem()
	loader := NewLoader(client, fs, "cache")

	ds, err := loader.Load(context.Background(), "42", skillcorner.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Frames) != 1 {
		t.Errorf("frames = %d, want 1", len(ds.Frames))
	}
	if got := client.RequestCount(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}

	// Second load hits the cache, no further HTTP traffic.
	if _, err := loader.Load(context.Background(), "42", skillcorner.LoadOptions{}); err != nil {
		t.Fatalf("cached Load: %v", err)
	}
	if got := client.RequestCount(); got != 2 {
		t.Errorf("requests after cached load = %d, want 2", got)
	}

	if !fs.Exists(filepath.Join("cache", "matches", "42", "42_match.json")) {
		t.Error("match file missing from cache")
	}
}

func TestLoadFollowsLFSPointer(t *testing.T) {
	pointer := []byte("version https://git-lfs.github.com/spec/v1\noid sha256:abc\nsize 12345\n")
	client := httputil.NewMockClient().
		Respond(rawURL("42", "42_match.json"), http.StatusOK, []byte(matchFixture)).
		Respond(rawURL("42", "42_tracking_extrapolated.jsonl"), http.StatusOK, pointer).
		Respond(mediaURL("42", "42_tracking_extrapolated.jsonl"), http.StatusOK, []byte(trackingFixture))
	fs := fsutil.NewMemoryFileSystem()
	loader := NewLoader(client, fs, "cache")

	ds, err := loader.Load(context.Background(), "42", skillcorner.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Frames) != 1 {
		t.Errorf("frames = %d, want 1", len(ds.Frames))
	}
	if got := client.RequestCount(); got != 3 {
		t.Errorf("requests = %d, want 3 (raw, pointer, media)", got)
	}
}

func TestLoadRefreshesStaleLFSPointerInCache(t *testing.T) {
	pointer := []byte("version https://git-lfs.github.com/spec/v1\noid sha256:abc\n")
	fs := fsutil.NewMemoryFileSystem()
	// Simulate a cache dir populated by a plain git checkout.
	if err := fs.WriteFile(filepath.Join("cache", "matches", "42", "42_match.json"), []byte(matchFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(filepath.Join("cache", "matches", "42", "42_tracking_extrapolated.jsonl"), pointer, 0o644); err != nil {
		t.Fatal(err)
	}

	client := httputil.NewMockClient().
		Respond(rawURL("42", "42_tracking_extrapolated.jsonl"), http.StatusOK, []byte(trackingFixture))
	loader := NewLoader(client, fs, "cache")

	if _, err := loader.Load(context.Background(), "42", skillcorner.LoadOptions{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Only the stale tracking file is re-fetched.
	if got := client.RequestCount(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestLoadNotFound(t *testing.T) {
	client := httputil.NewMockClient() // empty: every URL answers 404
	loader := NewLoader(client, fsutil.NewMemoryFileSystem(), "cache")

	_, err := loader.Load(context.Background(), "999", skillcorner.LoadOptions{})
	if !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("err = %v, want ErrMatchNotFound", err)
	}
}

func TestLoadRequiresMatchID(t *testing.T) {
	loader := NewLoader(httputil.NewMockClient(), fsutil.NewMemoryFileSystem(), "cache")
	if _, err := loader.Load(context.Background(), "", skillcorner.LoadOptions{}); err == nil {
		t.Fatal("expected error for empty match id")
	}
}

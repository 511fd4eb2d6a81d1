// Package fetch retrieves and caches raw SkillCorner open-data files and
// hands them to the skillcorner parser. It is the ingestion boundary: the
// rest of the service only ever sees a parsed Dataset or an error.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/trackside-data/pitchclip/internal/fsutil"
	"github.com/trackside-data/pitchclip/internal/httputil"
	"github.com/trackside-data/pitchclip/internal/monitoring"
	"github.com/trackside-data/pitchclip/internal/skillcorner"
)

const (
	githubRepo   = "SkillCorner/opendata"
	githubBranch = "master"

	// maxDownloadBytes caps a single file download. Tracking files for a
	// full match run ~100 MB; anything past this is a server-side problem.
	maxDownloadBytes = 512 << 20
)

// lfsPointerPrefix marks a Git-LFS pointer file served in place of the real
// payload. The binary content then lives behind media.githubusercontent.com.
var lfsPointerPrefix = []byte("version https://git-lfs.github.com/spec/v1")

// ErrMatchNotFound reports that the provider repository has no files for the
// requested match id.
var ErrMatchNotFound = errors.New("match not found in provider repository")

// Loader downloads provider files on demand and caches them on disk.
// It is safe for concurrent use only for distinct match ids.
type Loader struct {
	client   httputil.Client
	fs       fsutil.FileSystem
	cacheDir string
}

// NewLoader creates a Loader caching under cacheDir. A nil client falls back
// to the default HTTP client; a nil filesystem falls back to the OS.
func NewLoader(client httputil.Client, fs fsutil.FileSystem, cacheDir string) *Loader {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Loader{client: client, fs: fs, cacheDir: cacheDir}
}

// Load returns the parsed tracking dataset for a match, downloading the raw
// files if the cache misses. It does not retry: a failed download surfaces
// directly so the caller can report it.
func (l *Loader) Load(ctx context.Context, matchID string, opts skillcorner.LoadOptions) (*skillcorner.Dataset, error) {
	if matchID == "" {
		return nil, fmt.Errorf("a match id is required to load tracking data")
	}

	metaPath, trackingPath, err := l.ensureCached(ctx, matchID)
	if err != nil {
		return nil, err
	}

	matchData, err := l.fs.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("read cached match file: %w", err)
	}
	trackingData, err := l.fs.ReadFile(trackingPath)
	if err != nil {
		return nil, fmt.Errorf("read cached tracking file: %w", err)
	}

	return skillcorner.Load(matchID, matchData, trackingData, opts)
}

// ensureCached makes sure both provider files for the match are present on
// disk and are real payloads rather than LFS pointers.
func (l *Loader) ensureCached(ctx context.Context, matchID string) (metaPath, trackingPath string, err error) {
	matchDir := filepath.Join(l.cacheDir, "matches", matchID)
	metaPath = filepath.Join(matchDir, matchID+"_match.json")
	trackingPath = filepath.Join(matchDir, matchID+"_tracking_extrapolated.jsonl")

	if l.isUsable(metaPath) && l.isUsable(trackingPath) {
		return metaPath, trackingPath, nil
	}

	if err := l.fs.MkdirAll(matchDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create cache dir: %w", err)
	}

	files := []struct {
		target   string
		filename string
	}{
		{metaPath, matchID + "_match.json"},
		{trackingPath, matchID + "_tracking_extrapolated.jsonl"},
	}
	for _, f := range files {
		if l.isUsable(f.target) {
			continue
		}
		remotePath := fmt.Sprintf("data/matches/%s/%s", matchID, f.filename)
		monitoring.Logf("fetching %s", remotePath)
		if err := l.download(ctx, remotePath, f.target); err != nil {
			return "", "", err
		}
	}

	return metaPath, trackingPath, nil
}

// isUsable reports whether a cached file exists and is not an LFS pointer
// left behind by a plain git checkout of the provider repository.
func (l *Loader) isUsable(path string) bool {
	if !l.fs.Exists(path) {
		return false
	}
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return false
	}
	return !bytes.HasPrefix(data, lfsPointerPrefix)
}

func (l *Loader) download(ctx context.Context, remotePath, dest string) error {
	rawURL := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", githubRepo, githubBranch, remotePath)
	content, err := l.get(ctx, rawURL)
	if err != nil {
		return err
	}

	if bytes.HasPrefix(content, lfsPointerPrefix) {
		// The raw endpoint served a pointer; the actual payload lives on
		// the LFS media host.
		mediaURL := fmt.Sprintf("https://media.githubusercontent.com/media/%s/%s/%s", githubRepo, githubBranch, remotePath)
		content, err = l.get(ctx, mediaURL)
		if err != nil {
			return err
		}
	}

	if err := l.fs.WriteFile(dest, content, 0o644); err != nil {
		return fmt.Errorf("write cache file %s: %w", dest, err)
	}
	return nil
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("download %s: %w", url, ErrMatchNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	return content, nil
}

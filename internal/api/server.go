// Package api exposes the match loading, frame browsing, and clip rendering
// pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/trackside-data/pitchclip/internal/fetch"
	"github.com/trackside-data/pitchclip/internal/render"
	"github.com/trackside-data/pitchclip/internal/skillcorner"
	"github.com/trackside-data/pitchclip/internal/store"
	"github.com/trackside-data/pitchclip/internal/tracking"
	"github.com/trackside-data/pitchclip/internal/units"
)

// ANSI escape codes for request log coloring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// MatchLoader fetches and parses a match's tracking data. *fetch.Loader is
// the production implementation.
type MatchLoader interface {
	Load(ctx context.Context, matchID string, opts skillcorner.LoadOptions) (*skillcorner.Dataset, error)
}

// session is one loaded match held in memory: the normalised payloads, the
// resolved metadata, and the user's current clip window. Sessions are only
// replaced by an explicit load action, never mutated by failed requests.
type session struct {
	includeEmptyFrames bool
	payloads           []tracking.FramePayload
	meta               tracking.TrackingMetadata
	window             render.ClipWindow
}

type Server struct {
	loader  MatchLoader
	db      *store.DB
	encoder *render.Encoder
	units   string

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer wires the API over a loader, a store, and a render style.
// displayUnits is the unit for speed stats; invalid values fall back to m/s.
func NewServer(loader MatchLoader, db *store.DB, cfg render.Config, displayUnits string) (*Server, error) {
	enc, err := render.NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	if !units.IsValid(displayUnits) {
		displayUnits = units.MPS
	}
	return &Server{
		loader:   loader,
		db:       db,
		encoder:  enc,
		units:    displayUnits,
		sessions: make(map[string]*session),
	}, nil
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/matches/{id}/load", s.loadMatch)
	mux.HandleFunc("GET /api/matches/{id}/metadata", s.showMetadata)
	mux.HandleFunc("GET /api/matches/{id}/frames", s.listFrames)
	mux.HandleFunc("GET /api/matches/{id}/frames/{index}/preview.png", s.framePreview)
	mux.HandleFunc("GET /api/matches/{id}/frames/{index}/chart", s.frameChart)
	mux.HandleFunc("GET /api/matches/{id}/window", s.showWindow)
	mux.HandleFunc("POST /api/matches/{id}/window", s.updateWindow)
	mux.HandleFunc("POST /api/matches/{id}/clip", s.renderClip)
	mux.HandleFunc("GET /api/matches/{id}/stats", s.showStats)
	mux.HandleFunc("GET /api/renders", s.listRenders)
	return mux
}

// sessionFor returns the loaded session for a match, or nil when nothing is
// loaded yet.
func (s *Server) sessionFor(matchID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[matchID]
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// errorStatus maps pipeline failures onto HTTP statuses: unknown matches are
// 404, unrenderable clip requests are 400, everything else is a 500.
func errorStatus(err error) int {
	var clipErr *render.ClipRenderError
	switch {
	case errors.Is(err, fetch.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.As(err, &clipErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

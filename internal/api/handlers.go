package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/trackside-data/pitchclip/internal/httputil"
	"github.com/trackside-data/pitchclip/internal/monitoring"
	"github.com/trackside-data/pitchclip/internal/render"
	"github.com/trackside-data/pitchclip/internal/skillcorner"
	"github.com/trackside-data/pitchclip/internal/stats"
	"github.com/trackside-data/pitchclip/internal/store"
	"github.com/trackside-data/pitchclip/internal/tracking"
	"github.com/trackside-data/pitchclip/internal/units"
)

// loadSummary is the response to a successful load action.
type loadSummary struct {
	Metadata           tracking.TrackingMetadata `json:"metadata"`
	FrameCount         int                       `json:"frame_count"`
	DurationSeconds    float64                   `json:"duration_seconds"`
	IncludeEmptyFrames bool                      `json:"include_empty_frames"`
}

func (s *Server) loadMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")

	opts := skillcorner.LoadOptions{SampleRate: 1}
	if v := r.URL.Query().Get("include_empty_frames"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.BadRequest(w, "invalid include_empty_frames parameter")
			return
		}
		opts.IncludeEmptyFrames = parsed
	}
	if v := r.URL.Query().Get("sample_rate"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			httputil.BadRequest(w, "invalid sample_rate parameter, want a rate in (0, 1]")
			return
		}
		opts.SampleRate = parsed
	}

	ds, err := s.loader.Load(r.Context(), matchID, opts)
	if err != nil {
		httputil.WriteJSONError(w, errorStatus(err), fmt.Sprintf("load match %s: %v", matchID, err))
		return
	}

	payloads := tracking.Normalize(ds)
	meta := tracking.ResolveMetadata(ds, matchID)

	sess := &session{
		includeEmptyFrames: opts.IncludeEmptyFrames,
		payloads:           payloads,
		meta:               meta,
	}
	s.mu.Lock()
	s.sessions[matchID] = sess
	s.mu.Unlock()

	// The registry row is advisory; a store failure does not undo the load.
	if err := s.db.UpsertMatch(&store.Match{
		ID:          matchID,
		HomeTeam:    meta.HomeTeam,
		AwayTeam:    meta.AwayTeam,
		FrameCount:  len(payloads),
		FrameRate:   meta.FrameRate,
		PitchLength: meta.PitchLength,
		PitchWidth:  meta.PitchWidth,
	}); err != nil {
		monitoring.Logf("api: failed to register match %s: %v", matchID, err)
	}

	// The summary reports the session as stored, so the settings a later
	// request sees are exactly the settings acknowledged here.
	httputil.WriteJSONOK(w, loadSummary{
		Metadata:           sess.meta,
		FrameCount:         len(sess.payloads),
		DurationSeconds:    render.ClipDuration(len(sess.payloads), sess.meta.FrameRate),
		IncludeEmptyFrames: sess.includeEmptyFrames,
	})
}

// requireSession fetches the session for the request's match id, writing a
// 404 when no load has happened yet.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (string, *session) {
	matchID := r.PathValue("id")
	sess := s.sessionFor(matchID)
	if sess == nil {
		httputil.NotFound(w, fmt.Sprintf("match %s is not loaded; POST /api/matches/%s/load first", matchID, matchID))
		return matchID, nil
	}
	return matchID, sess
}

func (s *Server) showMetadata(w http.ResponseWriter, r *http.Request) {
	_, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	httputil.WriteJSONOK(w, sess.meta)
}

func (s *Server) listFrames(w http.ResponseWriter, r *http.Request) {
	_, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}

	start, end := 0, len(sess.payloads)-1
	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = strconv.Atoi(v); err != nil {
			httputil.BadRequest(w, "invalid start parameter")
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = strconv.Atoi(v); err != nil {
			httputil.BadRequest(w, "invalid end parameter")
			return
		}
	}
	if start < 0 || end >= len(sess.payloads) || start > end {
		httputil.BadRequest(w, fmt.Sprintf("frame range [%d, %d] is outside the loaded range of %d frames",
			start, end, len(sess.payloads)))
		return
	}

	httputil.WriteJSONOK(w, sess.payloads[start:end+1])
}

// frameIndex parses and bounds-checks the {index} path segment.
func frameIndex(w http.ResponseWriter, r *http.Request, sess *session) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		httputil.BadRequest(w, "invalid frame index")
		return 0, false
	}
	if index < 0 || index >= len(sess.payloads) {
		httputil.BadRequest(w, fmt.Sprintf("frame index %d is outside the loaded range of %d frames",
			index, len(sess.payloads)))
		return 0, false
	}
	return index, true
}

func (s *Server) framePreview(w http.ResponseWriter, r *http.Request) {
	_, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	index, ok := frameIndex(w, r, sess)
	if !ok {
		return
	}

	png, err := s.encoder.RenderPreview(&sess.payloads[index], &sess.meta)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render preview: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// windowState is the window representation returned by the window endpoints.
type windowState struct {
	Start           *int    `json:"start"`
	End             *int    `json:"end"`
	Complete        bool    `json:"complete"`
	FrameCount      int     `json:"frame_count"`
	DurationSeconds float64 `json:"duration_seconds"`
	Label           string  `json:"label"`
}

func (sess *session) windowState() windowState {
	count := sess.window.FrameCount()
	return windowState{
		Start:           sess.window.Start,
		End:             sess.window.End,
		Complete:        sess.window.Complete(),
		FrameCount:      count,
		DurationSeconds: render.ClipDuration(count, sess.meta.FrameRate),
		Label:           sess.window.String(),
	}
}

func (s *Server) showWindow(w http.ResponseWriter, r *http.Request) {
	_, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	s.mu.Lock()
	state := sess.windowState()
	s.mu.Unlock()
	httputil.WriteJSONOK(w, state)
}

type windowAction struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

func (s *Server) updateWindow(w http.ResponseWriter, r *http.Request) {
	_, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}

	var action windowAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid window action body: %v", err))
		return
	}

	if action.Action != "clear" {
		if action.Index < 0 || action.Index >= len(sess.payloads) {
			httputil.BadRequest(w, fmt.Sprintf("frame index %d is outside the loaded range of %d frames",
				action.Index, len(sess.payloads)))
			return
		}
	}

	s.mu.Lock()
	switch action.Action {
	case "mark_in":
		sess.window.MarkIn(action.Index)
		// An in-point past the current out-point invalidates it.
		if sess.window.End != nil && *sess.window.End < action.Index {
			sess.window.End = nil
		}
	case "mark_out":
		sess.window.MarkOut(action.Index)
		// An out-point before the current in-point pulls it back.
		if sess.window.Start != nil && *sess.window.Start > action.Index {
			sess.window.MarkIn(action.Index)
		}
	case "clear":
		sess.window.Clear()
	default:
		s.mu.Unlock()
		httputil.BadRequest(w, fmt.Sprintf("unknown window action %q, want mark_in, mark_out, or clear", action.Action))
		return
	}
	state := sess.windowState()
	s.mu.Unlock()

	httputil.WriteJSONOK(w, state)
}

type clipRequest struct {
	Start  *int   `json:"start"`
	End    *int   `json:"end"`
	Format string `json:"format"`
}

func (s *Server) renderClip(w http.ResponseWriter, r *http.Request) {
	matchID, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}

	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid clip request body: %v", err))
		return
	}
	if req.Format == "" {
		req.Format = render.FormatGIF
	}

	window := render.ClipWindow{Start: req.Start, End: req.End}
	if !window.Complete() {
		s.mu.Lock()
		window = sess.window
		s.mu.Unlock()
	}

	start, end, err := window.Bounds(len(sess.payloads))
	if err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}
	frameCount := end - start + 1
	if err := render.CheckDuration(frameCount, sess.meta.FrameRate); err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}

	frames := sess.payloads[start : end+1]
	result, err := s.encoder.Encode(r.Context(), matchID, frames, &sess.meta, sess.meta.FrameRate, req.Format)
	if err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}

	if err := s.db.RecordRender(&store.RenderRecord{
		MatchID:         matchID,
		Format:          req.Format,
		FileName:        result.FileName,
		FirstFrame:      frames[0].FrameID,
		LastFrame:       frames[len(frames)-1].FrameID,
		FrameCount:      frameCount,
		FPS:             sess.meta.FrameRate,
		DurationSeconds: render.ClipDuration(frameCount, sess.meta.FrameRate),
		SizeBytes:       int64(len(result.Payload)),
	}); err != nil {
		monitoring.Logf("api: failed to record render for match %s: %v", matchID, err)
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.FileName))
	w.Write(result.Payload)
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	matchID, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}

	targetUnits := s.units
	if v := r.URL.Query().Get("units"); v != "" {
		if !units.IsValid(v) {
			httputil.BadRequest(w, fmt.Sprintf("invalid units %q, want one of: %s", v, units.ValidUnitsString()))
			return
		}
		targetUnits = v
	}

	httputil.WriteJSONOK(w, stats.Compute(matchID, sess.payloads, targetUnits))
}

func (s *Server) listRenders(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	records, err := s.db.Renders(r.URL.Query().Get("match"), limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list renders: %v", err))
		return
	}
	if records == nil {
		records = []store.RenderRecord{}
	}
	httputil.WriteJSONOK(w, records)
}

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/runplan/internal/audit"
	"github.com/JonMunkholm/runplan/internal/core"
	"github.com/JonMunkholm/runplan/internal/export"
	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/web/views"
)

// maxEditSize bounds the JSON body of a week edit.
const maxEditSize = 64 * 1024

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// weekView is a projected week as returned by the API.
type weekView struct {
	Index int `json:"index"`
	grid.TrainingWeek
	TargetTotal float64 `json:"targetTotal"`
	Done        bool    `json:"done"`
}

func newWeekView(index int, w grid.TrainingWeek) weekView {
	return weekView{
		Index:        index,
		TrainingWeek: w,
		TargetTotal:  w.TargetTotal(),
		Done:         w.Done(),
	}
}

// weeksResponse is the body of GET /api/weeks.
type weeksResponse struct {
	Weeks       []weekView  `json:"weeks"`
	Layout      grid.Layout `json:"layout"`
	CurrentWeek int         `json:"currentWeek"`
	Version     uint64      `json:"version"`
	Dirty       bool        `json:"dirty"`
}

// handlePlanPage renders the week list.
func (s *Server) handlePlanPage(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()

	rows := make([]views.WeekRow, len(snap.Weeks))
	for i, week := range snap.Weeks {
		rows[i] = views.WeekRow{
			Index:   i,
			Week:    week,
			Current: i == snap.CurrentWeek,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := views.PlanPage(views.PlanData{
		Weeks:  rows,
		Layout: snap.Layout.String(),
		Source: s.service.Store().Name(),
		Dirty:  snap.Dirty,
	})
	if err := page.Render(r.Context(), w); err != nil {
		s.respondError(w, r, fmt.Errorf("render plan page: %w", err))
	}
}

// handleListWeeks returns every projected week.
func (s *Server) handleListWeeks(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()

	weeks := make([]weekView, len(snap.Weeks))
	for i, week := range snap.Weeks {
		weeks[i] = newWeekView(i, week)
	}

	writeJSON(w, http.StatusOK, weeksResponse{
		Weeks:       weeks,
		Layout:      snap.Layout,
		CurrentWeek: snap.CurrentWeek,
		Version:     snap.Version,
		Dirty:       snap.Dirty,
	})
}

// handleGetWeek returns one week.
func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	index, err := weekIndex(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	week, err := s.service.Week(index)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeekView(index, week))
}

// handleUpdateWeek applies a partial edit to one week.
func (s *Server) handleUpdateWeek(w http.ResponseWriter, r *http.Request) {
	index, err := weekIndex(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var edit core.WeekEdit
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEditSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&edit); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidEdit, err))
		return
	}

	week, err := s.service.UpdateWeek(r.Context(), index, edit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeekView(index, week))
}

// handlePlanCSV returns the plan as CSV text.
func (s *Server) handlePlanCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	io.WriteString(w, s.service.CSV())
}

// handleSave replaces the plan with the posted CSV and writes it to the
// store right away.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Plan.MaxBodySize))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read plan: %w", err))
		return
	}

	ctx := r.Context()
	if err := s.service.ReplaceCSV(ctx, string(body)); err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.autosaver != nil {
		err = s.autosaver.Flush(ctx)
	} else {
		err = s.service.Save(ctx)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	snap := s.service.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   true,
		"weeks":   len(snap.Weeks),
		"version": snap.Version,
	})
}

// handleReload re-reads the plan from its store. With discard=true unsaved
// edits are dropped, which is the way out of a save conflict.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	discard, _ := strconv.ParseBool(r.URL.Query().Get("discard"))

	var (
		changed bool
		err     error
	)
	if discard {
		changed, err = s.service.Discard(r.Context())
	} else {
		changed, err = s.service.Reload(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	snap := s.service.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"changed": changed,
		"weeks":   len(snap.Weeks),
		"version": snap.Version,
	})
}

// handlePlanXLSX returns the plan as an Excel workbook.
func (s *Server) handlePlanXLSX(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap.Grid); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="plan.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handleDistance evaluates a workout description.
func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]any{
		"description": q,
		"distance":    grid.ExtractDistance(q),
	})
}

// handleHistory lists recent plan changes.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := audit.Filter{
		Action: audit.Action(query.Get("action")),
		Limit:  parseIntParam(r, "limit", audit.DefaultListLimit),
	}
	if since := query.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondErrorJSON(w, core.UserMessage{
				Message: "The since parameter must be an RFC 3339 timestamp.",
				Code:    "REQ003",
			}, http.StatusBadRequest)
			return
		}
		filter.Since = t
	}

	entries, err := s.service.ListHistory(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status  string                  `json:"status"`
	Source  string                  `json:"source"`
	Loaded  bool                    `json:"loaded"`
	Dirty   bool                    `json:"dirty"`
	Version uint64                  `json:"version"`
	Saves   *core.SaveLimiterStatus `json:"saves,omitempty"`
}

// handleHealth reports whether a plan is loaded and the save slot state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	resp := healthResponse{
		Status:  "ok",
		Source:  s.service.Store().Name(),
		Loaded:  s.service.Loaded(),
		Dirty:   snap.Dirty,
		Version: snap.Version,
	}
	if s.autosaver != nil {
		status := s.autosaver.Limiter().Status()
		resp.Saves = &status
	}

	code := http.StatusOK
	if !resp.Loaded {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// weekIndex parses the {index} URL parameter. Anything that is not a
// number is reported as out of range.
func weekIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", grid.ErrOutOfRange, raw)
	}
	return index, nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

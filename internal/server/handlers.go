package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/pocket/internal/analytics"
	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/tracker"
)

// maxWindowDays caps the days query parameter.
const maxWindowDays = 366

type createHabitRequest struct {
	Name     string `json:"name"`
	Cue      string `json:"cue"`
	Identity string `json:"identity"`
}

type updateHabitRequest struct {
	Name     *string `json:"name"`
	Cue      *string `json:"cue"`
	Identity *string `json:"identity"`
}

type toggleRequest struct {
	Date string `json:"date"`
}

type coachRequest struct {
	Message string `json:"message"`
}

type coachResponse struct {
	Reply string `json:"reply"`
}

type statsResponse struct {
	Today   string               `json:"today"`
	Summary analytics.Summary    `json:"summary"`
	Score   int                  `json:"score"`
	Ratios  []analytics.DayRatio `json:"ratios"`
}

type trendResponse struct {
	Path analytics.Path `json:"path"`
	D    string         `json:"d"`
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// days reads a positive window from the query, falling back to def.
func days(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxWindowDays {
		return 0, false
	}
	return n, true
}

func (s *Server) habits(r *http.Request) ([]models.Habit, error) {
	return s.feed.ListHabits(r.Context(), s.tracker.UserID())
}

// owned loads habit id and hides habits of other users.
func (s *Server) owned(r *http.Request, id string) (models.Habit, error) {
	h, err := s.feed.GetHabit(r.Context(), id)
	if err != nil {
		return models.Habit{}, err
	}
	if h.UserID != s.tracker.UserID() {
		return models.Habit{}, pocketerrors.NotFound("get habit", id)
	}
	return h, nil
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.habits(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	h, err := s.owned(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	h, err := s.tracker.Create(r.Context(), tracker.Draft{Name: req.Name, Cue: req.Cue, Identity: req.Identity})
	s.metrics.Mutation("create", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateHabitRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if _, err := s.owned(r, id); err != nil {
		writeError(w, err)
		return
	}
	err := s.tracker.Update(r.Context(), id, req.Name, req.Cue, req.Identity)
	s.metrics.Mutation("update", err)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req toggleRequest
	// The body is optional; an empty one toggles today.
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = analytics.DayKey(s.cfg.Now())
	}
	if _, err := s.owned(r, id); err != nil {
		writeError(w, err)
		return
	}
	h, err := s.tracker.Toggle(r.Context(), id, req.Date)
	s.metrics.Mutation("toggle", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if _, err := s.owned(r, id); err != nil {
		writeError(w, err)
		return
	}
	err := s.tracker.Delete(r.Context(), id, confirmed)
	s.metrics.Mutation("delete", err)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	n, ok := days(r, "days", s.cfg.RatioDays)
	if !ok {
		badRequest(w, "days must be between 1 and 366")
		return
	}
	habits, err := s.habits(r)
	if err != nil {
		writeError(w, err)
		return
	}
	today := s.cfg.Now()
	writeJSON(w, http.StatusOK, statsResponse{
		Today:   analytics.DayKey(today),
		Summary: analytics.Summarize(habits, today),
		Score:   analytics.ConsistencyScore(habits, today, n),
		Ratios:  analytics.DailyRatios(habits, today, n),
	})
}

func (s *Server) heatmap(w http.ResponseWriter, r *http.Request) {
	n, ok := days(r, "days", s.cfg.HeatmapDays)
	if !ok {
		badRequest(w, "days must be between 1 and 366")
		return
	}
	habits, err := s.habits(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Heatmap(habits, s.cfg.Now(), n))
}

// trend returns the smoothed completion curve. format=svg answers with a
// standalone SVG document instead of JSON.
func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	n, ok := days(r, "days", s.cfg.RatioDays)
	if !ok {
		badRequest(w, "days must be between 1 and 366")
		return
	}
	habits, err := s.habits(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ratios := analytics.Ratios(analytics.DailyRatios(habits, s.cfg.Now(), n))
	path := analytics.TrendPath(ratios, analytics.TrendWidth, analytics.TrendHeight)

	if r.URL.Query().Get("format") == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(svgDocument(path)))
		return
	}
	writeJSON(w, http.StatusOK, trendResponse{Path: path, D: path.SVG()})
}

func svgDocument(p analytics.Path) string {
	w := strconv.FormatFloat(p.Width, 'f', -1, 64)
	h := strconv.FormatFloat(p.Height, 'f', -1, 64)
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 ` + w + ` ` + h + `">` +
		`<path d="` + p.SVG() + `" fill="none" stroke="#40c463" stroke-width="2"/></svg>`
}

func (s *Server) coachReply(w http.ResponseWriter, r *http.Request) {
	var req coachRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, pocketerrors.Validation("message", "must not be empty"))
		return
	}
	writeJSON(w, http.StatusOK, coachResponse{Reply: s.coach.Reply(req.Message)})
}

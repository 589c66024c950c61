package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/coach"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
	"github.com/julianstephens/pocket/internal/storage/sqlite"
	"github.com/julianstephens/pocket/internal/tracker"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }

type testEnv struct {
	srv     *Server
	tracker *tracker.Tracker
	feed    *storage.Feed
}

func newTestServer(t *testing.T) testEnv {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	feed := storage.NewFeed(store)
	tr := tracker.New(feed, "local", tracker.WithClock(fixedNow))
	srv := New(Config{RatioDays: 7, HeatmapDays: 28, Now: fixedNow}, tr, feed, coach.Default())
	return testEnv{srv: srv, tracker: tr, feed: feed}
}

func (e testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func (e testEnv) create(t *testing.T, name string) models.Habit {
	t.Helper()
	h, err := e.tracker.Create(context.Background(), tracker.Draft{Name: name})
	require.NoError(t, err)
	return h
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestServer(t)
	rr := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHabitsEndpoints(t *testing.T) {
	t.Run("list empty", func(t *testing.T) {
		env := newTestServer(t)
		rr := env.do(t, http.MethodGet, "/api/habits", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("create then list", func(t *testing.T) {
		env := newTestServer(t)
		rr := env.do(t, http.MethodPost, "/api/habits", `{"name":"  Read  ","cue":"after coffee"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		created := decodeBody[models.Habit](t, rr)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Read", created.Name)
		assert.Equal(t, "after coffee", created.Cue)
		assert.Zero(t, created.Streak)

		rr = env.do(t, http.MethodGet, "/api/habits", "")
		require.Equal(t, http.StatusOK, rr.Code)
		list := decodeBody[[]models.Habit](t, rr)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("create rejects empty name", func(t *testing.T) {
		env := newTestServer(t)
		rr := env.do(t, http.MethodPost, "/api/habits", `{"name":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody[ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Message, "name")
	})

	t.Run("create rejects malformed body", func(t *testing.T) {
		env := newTestServer(t)
		rr := env.do(t, http.MethodPost, "/api/habits", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("get unknown habit", func(t *testing.T) {
		env := newTestServer(t)
		rr := env.do(t, http.MethodGet, "/api/habits/missing", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("patch updates fields", func(t *testing.T) {
		env := newTestServer(t)
		h := env.create(t, "Read")
		rr := env.do(t, http.MethodPatch, "/api/habits/"+h.ID, `{"identity":"a reader"}`)
		require.Equal(t, http.StatusNoContent, rr.Code)

		got, err := env.feed.GetHabit(context.Background(), h.ID)
		require.NoError(t, err)
		assert.Equal(t, "Read", got.Name)
		assert.Equal(t, "a reader", got.Identity)
	})
}

func TestToggleEndpoint(t *testing.T) {
	t.Run("empty body toggles today", func(t *testing.T) {
		env := newTestServer(t)
		h := env.create(t, "Read")

		rr := env.do(t, http.MethodPost, "/api/habits/"+h.ID+"/toggle", "")
		require.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[models.Habit](t, rr)
		assert.True(t, got.Completions.Has("2024-01-10"))
		assert.Equal(t, 1, got.Streak)

		rr = env.do(t, http.MethodPost, "/api/habits/"+h.ID+"/toggle", "")
		require.Equal(t, http.StatusOK, rr.Code)
		got = decodeBody[models.Habit](t, rr)
		assert.False(t, got.Completions.Has("2024-01-10"))
		assert.Zero(t, got.Streak)
	})

	t.Run("explicit date", func(t *testing.T) {
		env := newTestServer(t)
		h := env.create(t, "Read")
		rr := env.do(t, http.MethodPost, "/api/habits/"+h.ID+"/toggle", `{"date":"2024-01-08"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[models.Habit](t, rr)
		assert.True(t, got.Completions.Has("2024-01-08"))
	})

	t.Run("bad date", func(t *testing.T) {
		env := newTestServer(t)
		h := env.create(t, "Read")
		rr := env.do(t, http.MethodPost, "/api/habits/"+h.ID+"/toggle", `{"date":"01/08/2024"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown habit", func(t *testing.T) {
		env := newTestServer(t)
		rr := env.do(t, http.MethodPost, "/api/habits/nope/toggle", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteEndpoint(t *testing.T) {
	env := newTestServer(t)
	h := env.create(t, "Read")

	rr := env.do(t, http.MethodDelete, "/api/habits/"+h.ID, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "confirmation_required", decodeBody[ErrorResponse](t, rr).Error)

	_, err := env.feed.GetHabit(context.Background(), h.ID)
	require.NoError(t, err, "unconfirmed delete must keep the habit")

	rr = env.do(t, http.MethodDelete, "/api/habits/"+h.ID+"?confirm=true", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/habits/"+h.ID+"?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()
	read := env.create(t, "Read")
	env.create(t, "Run")
	_, err := env.tracker.Toggle(ctx, read.ID, "2024-01-10")
	require.NoError(t, err)
	_, err = env.tracker.Toggle(ctx, read.ID, "2024-01-09")
	require.NoError(t, err)

	t.Run("stats", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/stats?days=2", "")
		require.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[statsResponse](t, rr)
		assert.Equal(t, "2024-01-10", got.Today)
		assert.Equal(t, 2, got.Summary.TotalHabits)
		assert.Equal(t, 1, got.Summary.CompletedToday)
		assert.Equal(t, 50, got.Score)
		assert.Len(t, got.Ratios, 2)
	})

	t.Run("stats rejects bad window", func(t *testing.T) {
		for _, q := range []string{"0", "-3", "abc", "367"} {
			rr := env.do(t, http.MethodGet, "/api/stats?days="+q, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		}
	})

	t.Run("heatmap", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/heatmap?days=3", "")
		require.Equal(t, http.StatusOK, rr.Code)
		cells := decodeBody[[]analytics.HeatCell](t, rr)
		require.Len(t, cells, 3)
	})

	t.Run("trend json", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/trend?days=4", "")
		require.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[trendResponse](t, rr)
		assert.Len(t, got.Path.Segments, 3)
		assert.True(t, strings.HasPrefix(got.D, "M 0.00 "))
	})

	t.Run("trend svg", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/trend?format=svg", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), `<path d="M `)
	})
}

func TestCoachEndpoint(t *testing.T) {
	env := newTestServer(t)

	rr := env.do(t, http.MethodPost, "/api/coach", `{"message":"this is too hard"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, coach.Classify("this is too hard"), decodeBody[coachResponse](t, rr).Reply)

	rr = env.do(t, http.MethodPost, "/api/coach", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetrics(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	cancel, err := env.srv.Watch(ctx)
	require.NoError(t, err)
	defer cancel()

	h := env.create(t, "Read")
	rr := env.do(t, http.MethodPost, "/api/habits/"+h.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "pocket_habits 1")
	assert.Contains(t, body, "pocket_habits_completed_today 1")
	assert.Contains(t, body, "pocket_active_streaks 1")
	assert.Contains(t, body, `pocket_habit_mutations_total{op="toggle",result="ok"} 1`)
	assert.Contains(t, body, `pocket_http_requests_total{code="200",method="POST",route="/api/habits/{id}/toggle"} 1`)
}

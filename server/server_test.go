package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-widgets/client"
	"github.com/theoremus-urban-solutions/transit-widgets/poller"
)

type fakeWidget struct {
	name    string
	err     error
	refresh int
}

func (f *fakeWidget) Name() string { return f.name }

func (f *fakeWidget) Refresh(context.Context) error {
	f.refresh++
	return f.err
}

func (f *fakeWidget) View() any { return map[string]any{"name": f.name, "refreshes": f.refresh} }

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestViewAndNotFound(t *testing.T) {
	s := New(zerolog.Nop())
	s.Register(KindDashboard, &fakeWidget{name: "bigway-line"}, nil)
	h := s.Handler()

	rec, body := do(t, h, http.MethodGet, "/api/dashboards/bigway-line")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bigway-line", body["data"].(map[string]any)["name"])

	rec, body = do(t, h, http.MethodGet, "/api/dashboards/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["error"], "missing")

	rec, _ = do(t, h, http.MethodGet, "/api/boards/bigway-line")
	assert.Equal(t, http.StatusNotFound, rec.Code, "names are scoped by kind")

	rec, _ = do(t, h, http.MethodGet, "/api/unknown/x")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnmatchedPathsAndPreflight(t *testing.T) {
	s := New(zerolog.Nop())
	s.Register(KindDashboard, &fakeWidget{name: "a"}, nil)
	h := s.Handler()

	for _, path := range []string{"/api/unknown/x", "/favicon.ico", "/api/dashboards/a/b/c"} {
		t.Run(path, func(t *testing.T) {
			rec, body := do(t, h, http.MethodGet, path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "not found", body["error"])
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	rec, _ := do(t, h, http.MethodOptions, "/api/dashboards/a/reload")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestList(t *testing.T) {
	s := New(zerolog.Nop())
	s.Register(KindBoard, &fakeWidget{name: "translink"}, nil)
	s.Register(KindBoard, &fakeWidget{name: "bus"}, nil)

	rec, body := do(t, s.Handler(), http.MethodGet, "/api/boards")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"bus", "translink"}, body["data"])
}

func TestReloadWithoutPoller(t *testing.T) {
	w := &fakeWidget{name: "custom"}
	s := New(zerolog.Nop())
	s.Register(KindLabelMap, w, nil)
	h := s.Handler()

	rec, body := do(t, h, http.MethodPost, "/api/labelmaps/custom/reload")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["refreshes"])

	rec, _ = do(t, h, http.MethodGet, "/api/labelmaps/custom/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	w.err = &client.TransportError{URL: "http://x", StatusCode: 503}
	rec, body = do(t, h, http.MethodPost, "/api/labelmaps/custom/reload")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "HTTP 503 while fetching http://x", body["error"])

	w.err = errors.New("bad file")
	rec, _ = do(t, h, http.MethodPost, "/api/labelmaps/custom/reload")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReloadThrottled(t *testing.T) {
	w := &fakeWidget{name: "bigway-line"}
	p := poller.New(w.Name(), time.Hour, w.Refresh, poller.Options{PerMinute: 1, Burst: 1}, zerolog.Nop())
	s := New(zerolog.Nop())
	s.Register(KindDashboard, w, p)
	h := s.Handler()

	rec, _ := do(t, h, http.MethodPost, "/api/dashboards/bigway-line/reload")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, body := do(t, h, http.MethodPost, "/api/dashboards/bigway-line/reload")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, poller.ErrThrottled.Error(), body["error"])
	assert.Equal(t, 1, w.refresh)
}

func TestHealth(t *testing.T) {
	w := &fakeWidget{name: "bigway-line"}
	p := poller.New(w.Name(), time.Hour, w.Refresh, poller.Options{}, zerolog.Nop())
	s := New(zerolog.Nop())
	s.Register(KindDashboard, w, p)
	s.Register(KindMap, &fakeWidget{name: "map"}, nil)

	rec, body := do(t, s.Handler(), http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, []any{"map"}, data["widgets"].(map[string]any)["maps"])
	assert.Contains(t, data["pollers"], "dashboards/bigway-line")
}

func TestStartAndShutdown(t *testing.T) {
	s := New(zerolog.Nop())
	s.Register(KindMap, &fakeWidget{name: "map"}, nil)
	require.NoError(t, s.Start("127.0.0.1:0"))

	resp, err := http.Get("http://" + s.Addr() + "/api/maps/map")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

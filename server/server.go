// Package server exposes the widgets' rendered state over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-widgets/client"
	"github.com/theoremus-urban-solutions/transit-widgets/poller"
)

// Kind groups widgets under one URL prefix.
type Kind string

const (
	KindDashboard Kind = "dashboards"
	KindBoard     Kind = "boards"
	KindMap       Kind = "maps"
	KindLabelMap  Kind = "labelmaps"
)

// Widget is anything that can be refreshed and rendered.
type Widget interface {
	Name() string
	Refresh(ctx context.Context) error
	View() any
}

type entry struct {
	widget Widget
	poller *poller.Poller
}

// Server routes API requests to registered widgets.
type Server struct {
	log       zerolog.Logger
	startedAt time.Time

	mu      sync.RWMutex
	widgets map[Kind]map[string]entry

	httpServer *http.Server
	listener   net.Listener
}

// New creates a server logging to log.
func New(log zerolog.Logger) *Server {
	return &Server{
		log:       log,
		startedAt: time.Now(),
		widgets:   map[Kind]map[string]entry{},
	}
}

// Register adds a widget. p may be nil, in which case reloads call Refresh directly.
func (s *Server) Register(kind Kind, w Widget, p *poller.Poller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.widgets[kind] == nil {
		s.widgets[kind] = map[string]entry{}
	}
	s.widgets[kind][w.Name()] = entry{widget: w, poller: p}
}

func (s *Server) lookup(kind Kind, name string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.widgets[kind][name]
	return e, ok
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/{kind:dashboards|boards|maps|labelmaps}", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/{kind:dashboards|boards|maps|labelmaps}/{name}", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/api/{kind:dashboards|boards|maps|labelmaps}/{name}/reload", s.handleReload).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	// outside the router so preflights and 404s carry the same headers
	return s.headers(r)
}

func (s *Server) headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Cache-Control", "no-store")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status    string                  `json:"status"`
	StartedAt time.Time               `json:"startedAt"`
	Widgets   map[Kind][]string       `json:"widgets"`
	Pollers   map[string]poller.Stats `json:"pollers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		StartedAt: s.startedAt,
		Widgets:   map[Kind][]string{},
		Pollers:   map[string]poller.Stats{},
	}
	s.mu.RLock()
	for kind, byName := range s.widgets {
		for name, e := range byName {
			resp.Widgets[kind] = append(resp.Widgets[kind], name)
			if e.poller != nil {
				resp.Pollers[string(kind)+"/"+name] = e.poller.Stats()
			}
		}
		sort.Strings(resp.Widgets[kind])
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind := Kind(mux.Vars(r)["kind"])
	s.mu.RLock()
	names := make([]string, 0, len(s.widgets[kind]))
	for name := range s.widgets[kind] {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, ok := s.lookup(Kind(vars["kind"]), vars["name"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q not found", vars["kind"], vars["name"]))
		return
	}
	writeJSON(w, http.StatusOK, e.widget.View())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, ok := s.lookup(Kind(vars["kind"]), vars["name"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q not found", vars["kind"], vars["name"]))
		return
	}
	var err error
	if e.poller != nil {
		err = e.poller.Trigger(r.Context())
	} else {
		err = e.widget.Refresh(r.Context())
	}
	switch {
	case errors.Is(err, poller.ErrThrottled):
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	case client.IsTransport(err):
		s.log.Warn().Err(err).Str("widget", vars["name"]).Msg("reload failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		s.log.Warn().Err(err).Str("widget", vars["name"]).Msg("reload failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e.widget.View())
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("server error")
		}
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("server shutdown error")
		return err
	}
	s.log.Info().Msg("server shut down successfully")
	return nil
}

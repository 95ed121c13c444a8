// Package dashboard implements the queue-length dashboard widget: it polls a
// JSON feed of queue readings, keeps the readings of the last 24 hours and
// exposes KPI tiles and two chart series.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-widgets/config"
	"github.com/theoremus-urban-solutions/transit-widgets/feed"
)

// WindowMode selects when the window bounds are computed.
type WindowMode string

const (
	// WindowRolling computes [now-span, now] when the records are filtered.
	WindowRolling WindowMode = "rolling"
	// WindowFixed computes the bounds once, before the fetch, and reuses them
	// for filtering and for the chart axis of that tick.
	WindowFixed WindowMode = "fixed"
)

// Fetcher retrieves a decoded JSON payload.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) (any, error)
}

// Dashboard is one queue-length dashboard. It owns its rendered State; every
// refresh replaces the series rather than appending to them.
type Dashboard struct {
	name    string
	dataURL string
	refresh time.Duration
	span    time.Duration
	mode    WindowMode
	opts    feed.Options
	loc     *time.Location
	fetcher Fetcher
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state State
}

// New builds a dashboard from its config.
func New(cfg config.DashboardConfig, f Fetcher, log zerolog.Logger) (*Dashboard, error) {
	refresh, err := cfg.RefreshInterval()
	if err != nil {
		return nil, err
	}
	span, err := cfg.WindowSpan()
	if err != nil {
		return nil, err
	}
	loc, err := config.Location(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	mode := WindowMode(cfg.Window)
	if mode == "" {
		mode = WindowRolling
	}
	d := &Dashboard{
		name:    cfg.Name,
		dataURL: strings.TrimSpace(cfg.DataURL),
		refresh: refresh,
		span:    span,
		mode:    mode,
		opts:    feed.Options{FlattenBatches: cfg.FlattenBatches},
		loc:     loc,
		fetcher: f,
		log:     log.With().Str("dashboard", cfg.Name).Logger(),
		now:     time.Now,
	}
	d.state = State{
		Name:    d.name,
		Status:  StatusPending,
		Message: "Fetching data…",
		DataURL: d.displayURL(),
		Refresh: fmt.Sprintf("%ds", int(refresh.Round(time.Second)/time.Second)),
		KPIs:    emptyKPIs(),
	}
	return d, nil
}

// SetClock replaces the wall clock; intended for tests and replays. It is
// safe to call while the dashboard is being polled.
func (d *Dashboard) SetClock(now func() time.Time) {
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
}

func (d *Dashboard) clock() time.Time {
	d.mu.RLock()
	now := d.now
	d.mu.RUnlock()
	return now()
}

func (d *Dashboard) Name() string { return d.name }

func (d *Dashboard) RefreshInterval() time.Duration { return d.refresh }

// Snapshot returns a copy of the current rendered state.
func (d *Dashboard) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.clone()
}

// View returns Snapshot as an untyped value for generic renderers.
func (d *Dashboard) View() any { return d.Snapshot() }

func (d *Dashboard) displayURL() string {
	if d.dataURL == "" {
		return "(no data URL set)"
	}
	return d.dataURL
}

// Refresh fetches the feed once and updates the rendered state. Transport
// failures are returned and leave the previous series in place; an empty
// window is a valid state and returns nil.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if d.dataURL == "" {
		d.upsert(func(s *State) {
			s.Status = StatusNoSource
			s.Message = "No data URL set. Add dataURL to the dashboard config."
			s.KPIs = emptyKPIs()
			s.Latest = nil
		})
		d.log.Warn().Msg("no data URL set")
		return nil
	}

	var w feed.Window
	if d.mode == WindowFixed {
		w = feed.LastWindow(d.clock(), d.span)
	}

	payload, err := d.fetcher.FetchJSON(ctx, d.dataURL)
	if err != nil {
		d.upsert(func(s *State) {
			s.Status = StatusTransportError
			s.Message = err.Error()
		})
		d.log.Error().Err(err).Msg("fetch failed")
		return fmt.Errorf("dashboard %s: %w", d.name, err)
	}

	if d.mode != WindowFixed {
		w = feed.LastWindow(d.clock(), d.span)
	}
	res := feed.RunIn(payload, w, d.opts, d.loc)
	res.Drops.LogAll(d.log, d.name)
	d.apply(res)
	return nil
}

// apply upserts a pipeline result into the rendered state.
func (d *Dashboard) apply(res feed.Result) {
	if res.Empty() {
		msg := fmt.Sprintf("No usable records in the last %s (check payload + timeAdded).", formatSpan(d.span))
		if d.mode == WindowFixed {
			msg = fmt.Sprintf("No usable records in the last %s.\n%s", formatSpan(d.span), windowLine(res.Window))
		}
		d.upsert(func(s *State) {
			s.Status = StatusEmptyWindow
			s.Message = msg
			s.Window = res.Window
			s.KPIs = emptyKPIs()
			s.Latest = nil
			s.LineSeries = nil
			s.PartySeries = nil
			s.Dropped = res.Drops.Counts()
		})
		d.log.Info().
			Str("kind", res.Kind.String()).
			Int("candidates", res.Candidates).
			Int("valid", res.Valid).
			Msg("no usable records in window")
		return
	}

	latest := *res.Latest
	line, party := series(res.Records)
	lines := []string{fmt.Sprintf("OK: %d points in last %s", len(res.Records), shortSpan(d.span))}
	if d.mode == WindowFixed {
		lines = append(lines, windowLine(res.Window))
	}
	lines = append(lines, fmt.Sprintf("Latest: lineSize=%s, partySize=%s, timeAdded=%s",
		formatNumber(latest.LineSize), formatNumber(latest.PartySize), formatISO(latest.TimeAdded)))

	d.upsert(func(s *State) {
		s.Status = StatusOK
		s.Message = strings.Join(lines, "\n")
		s.Window = res.Window
		s.KPIs = kpisFor(latest, d.mode, d.loc)
		s.Latest = &latest
		s.LineSeries = line
		s.PartySeries = party
		s.Dropped = res.Drops.Counts()
	})
	d.log.Debug().
		Int("points", len(res.Records)).
		Float64("lineSize", latest.LineSize).
		Float64("partySize", latest.PartySize).
		Msg("refreshed")
}

func (d *Dashboard) upsert(mutate func(*State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	mutate(&d.state)
	d.state.UpdatedAt = d.now()
	d.state.Revision++
}

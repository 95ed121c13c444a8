// Package vehiclemap keeps the bus-position map of one stop and route up to
// date from a GTFS-Realtime vehicle-positions feed.
package vehiclemap

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-widgets/config"
	"github.com/theoremus-urban-solutions/transit-widgets/gtfs"
	"github.com/theoremus-urban-solutions/transit-widgets/gtfsrt"
)

// DefaultCenter is used when neither a stop nor a configured center is available.
var DefaultCenter = gtfsrt.Point{Lat: 49.2827, Lon: -123.1207}

// Deps are the collaborators a map needs.
type Deps struct {
	Index   *gtfs.Index
	Fetcher gtfsrt.ByteFetcher
	FeedURL string
	Logger  zerolog.Logger
}

// Map is one vehicle map.
type Map struct {
	name    string
	refresh time.Duration
	feedURL string
	index   *gtfs.Index
	fetcher gtfsrt.ByteFetcher
	log     zerolog.Logger
	now     func() time.Time
	stop    *gtfs.Stop
	center  gtfsrt.Point
	filter  gtfsrt.VehicleFilter

	mu        sync.RWMutex
	markers   *MarkerSet
	lastDiff  Diff
	lastErr   string
	updatedAt time.Time
	revision  uint64
}

// View is the rendered map state.
type View struct {
	Name      string       `json:"name"`
	Center    gtfsrt.Point `json:"center"`
	Stop      *gtfs.Stop   `json:"stop,omitempty"`
	RadiusKM  float64      `json:"radiusKM,omitempty"`
	RouteID   string       `json:"routeId,omitempty"`
	Markers   []Marker     `json:"markers"`
	LastDiff  Diff         `json:"lastDiff"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Revision  uint64       `json:"revision"`
}

// New resolves the configured stop and route and builds the map.
func New(cfg config.VehicleMapConfig, deps Deps) (*Map, error) {
	refresh, err := cfg.RefreshInterval()
	if err != nil {
		return nil, err
	}
	if deps.Index == nil {
		deps.Index = gtfs.NewIndex()
	}
	m := &Map{
		name:    cfg.Name,
		refresh: refresh,
		feedURL: deps.FeedURL,
		index:   deps.Index,
		fetcher: deps.Fetcher,
		log:     deps.Logger.With().Str("vehicleMap", cfg.Name).Logger(),
		now:     time.Now,
		center:  DefaultCenter,
		markers: NewMarkerSet(),
	}
	if cfg.CenterLat != 0 || cfg.CenterLon != 0 {
		m.center = gtfsrt.Point{Lat: cfg.CenterLat, Lon: cfg.CenterLon}
	}
	if code := strings.TrimSpace(cfg.StopCode); code != "" {
		if id, ok := m.index.StopIDForCode(code); ok {
			if s, ok := m.index.Stop(id); ok && s.HasCoord {
				m.stop = &s
				m.center = gtfsrt.Point{Lat: s.Lat, Lon: s.Lon}
				m.filter.Near = &gtfsrt.Point{Lat: s.Lat, Lon: s.Lon}
				m.filter.RadiusKM = cfg.RadiusKM
			}
		} else {
			m.log.Warn().Str("stop", code).Msg("stop code not found; showing all stops")
		}
	}
	if short := strings.TrimSpace(cfg.RouteShortName); short != "" {
		if id, ok := m.index.RouteIDForShortName(short); ok {
			m.filter.RouteID = id
		} else {
			m.log.Warn().Str("route", short).Msg("route not found; showing all routes")
		}
	}
	return m, nil
}

// SetClock replaces the wall clock; intended for tests. It is safe to call
// while the map is being polled.
func (m *Map) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Map) Name() string { return m.name }

func (m *Map) RefreshInterval() time.Duration { return m.refresh }

// Refresh fetches vehicle positions and upserts the marker layer. On failure
// the previous markers are kept.
func (m *Map) Refresh(ctx context.Context) error {
	fm, err := gtfsrt.Fetch(ctx, m.fetcher, m.feedURL)
	if err != nil {
		m.mu.Lock()
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.log.Error().Err(err).Msg("vehicle positions fetch failed")
		return fmt.Errorf("vehicle map %s: %w", m.name, err)
	}
	vehicles := gtfsrt.Vehicles(fm, m.filter)
	next := make([]Marker, 0, len(vehicles))
	for _, v := range vehicles {
		next = append(next, m.marker(v))
	}

	m.mu.Lock()
	diff := m.markers.Apply(next)
	m.lastDiff = diff
	m.lastErr = ""
	m.updatedAt = m.now()
	m.revision++
	m.mu.Unlock()

	m.log.Debug().
		Int("markers", len(next)).
		Int("added", len(diff.Added)).
		Int("moved", len(diff.Moved)).
		Int("removed", len(diff.Removed)).
		Msg("refreshed")
	return nil
}

func (m *Map) marker(v gtfsrt.Vehicle) Marker {
	route := "Unknown"
	if short, ok := m.index.RouteShortName(v.RouteID); ok {
		route = short
	} else if v.RouteID != "" {
		route = v.RouteID
	}
	return Marker{
		ID:        v.ID,
		Lat:       v.Lat,
		Lon:       v.Lon,
		RouteID:   v.RouteID,
		Direction: v.Direction,
		Popup:     fmt.Sprintf("Bus %s\nRoute: %s", v.ID, route),
	}
}

// Snapshot returns the current map state.
func (m *Map) Snapshot() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := View{
		Name:      m.name,
		Center:    m.center,
		RouteID:   m.filter.RouteID,
		Markers:   m.markers.Markers(),
		LastDiff:  m.lastDiff,
		Error:     m.lastErr,
		UpdatedAt: m.updatedAt,
		Revision:  m.revision,
	}
	if m.stop != nil {
		s := *m.stop
		v.Stop = &s
		v.RadiusKM = m.filter.RadiusKM
		if v.RadiusKM <= 0 {
			v.RadiusKM = gtfsrt.DefaultRadiusKM
		}
	}
	return v
}

func (m *Map) View() any { return m.Snapshot() }

// Package app builds the configured widgets and their shared dependencies.
package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/transit-widgets/board"
	"github.com/theoremus-urban-solutions/transit-widgets/client"
	"github.com/theoremus-urban-solutions/transit-widgets/config"
	"github.com/theoremus-urban-solutions/transit-widgets/dashboard"
	"github.com/theoremus-urban-solutions/transit-widgets/gtfs"
	"github.com/theoremus-urban-solutions/transit-widgets/labelmap"
	"github.com/theoremus-urban-solutions/transit-widgets/server"
	"github.com/theoremus-urban-solutions/transit-widgets/vehiclemap"
)

// Entry is one built widget.
type Entry struct {
	Kind     server.Kind
	Widget   server.Widget
	Interval time.Duration // zero for widgets that are not polled
	LabelMap *labelmap.LabelMap
}

// App holds every widget built from one configuration.
type App struct {
	Config  config.AppConfig
	Client  *client.Client
	Index   *gtfs.Index
	Entries []Entry
}

// Build constructs the shared client, the static GTFS index and all widgets.
// A missing GTFS table is logged and leaves the index empty, so boards and maps
// fall back to their "all stops / all routes" behavior.
func Build(cfg config.AppConfig, log zerolog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Client: client.NewClient(time.Duration(cfg.GTFSRT.TimeoutMS) * time.Millisecond),
	}

	idx, err := loadIndex(cfg.GTFS)
	if err != nil {
		log.Warn().Err(err).Msg("GTFS static data not loaded; stop and route lookups disabled")
		idx = gtfs.NewIndex()
	} else {
		log.Info().Int("stops", idx.StopCount()).Int("routes", idx.RouteCount()).Msg("GTFS static data loaded")
	}
	a.Index = idx

	loc, err := config.Location(cfg.GTFS.Timezone)
	if err != nil {
		return nil, err
	}

	for _, dc := range cfg.Dashboards {
		d, err := dashboard.New(dc, a.Client, log)
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", dc.Name, err)
		}
		a.Entries = append(a.Entries, Entry{Kind: server.KindDashboard, Widget: d, Interval: d.RefreshInterval()})
	}
	for _, bc := range cfg.Boards {
		b, err := board.New(bc, board.Deps{
			Index:    idx,
			Fetcher:  a.Client,
			FeedURL:  bc.FeedURL(cfg.GTFSRT),
			Location: loc,
			Logger:   log,
		})
		if err != nil {
			return nil, fmt.Errorf("board %s: %w", bc.Name, err)
		}
		a.Entries = append(a.Entries, Entry{Kind: server.KindBoard, Widget: b, Interval: b.RefreshInterval()})
	}
	for _, mc := range cfg.VehicleMaps {
		m, err := vehiclemap.New(mc, vehiclemap.Deps{
			Index:   idx,
			Fetcher: a.Client,
			FeedURL: mc.FeedURL(cfg.GTFSRT),
			Logger:  log,
		})
		if err != nil {
			return nil, fmt.Errorf("vehicle map %s: %w", mc.Name, err)
		}
		a.Entries = append(a.Entries, Entry{Kind: server.KindMap, Widget: m, Interval: m.RefreshInterval()})
	}
	for _, lc := range cfg.LabelMaps {
		lm := labelmap.New(lc, log)
		a.Entries = append(a.Entries, Entry{Kind: server.KindLabelMap, Widget: lm, LabelMap: lm})
	}
	return a, nil
}

func loadIndex(cfg config.GTFSConfig) (*gtfs.Index, error) {
	if cfg.ZipPath != "" {
		return gtfs.LoadZip(cfg.ZipPath)
	}
	return gtfs.LoadFiles(cfg.StopsPath, cfg.RoutesPath)
}

// Find returns the widget with the given name; an empty name selects the
// first configured widget.
func (a *App) Find(name string) (Entry, bool) {
	for _, e := range a.Entries {
		if name == "" || e.Widget.Name() == name {
			return e, true
		}
	}
	return Entry{}, false
}

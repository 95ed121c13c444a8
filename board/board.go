// Package board implements the arrival board widgets: a list of upcoming
// trip predictions for one stop and route, refreshed from a GTFS-Realtime
// trip-updates feed and re-rendered against the wall clock.
package board

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

// Sentinels used when a stop code or route short name does not resolve.
const (
	NoStop    = "NONE"
	AllRoutes = "ALL"
)

// Style selects the board layout.
type Style string

const (
	StyleFull    Style = "full"
	StyleCompact Style = "compact"
)

// Deps are the collaborators a board needs.
type Deps struct {
	Index    *gtfs.Index
	Fetcher  gtfsrt.ByteFetcher
	FeedURL  string
	Location *time.Location
	Logger   zerolog.Logger
}

// Board is one arrival board.
type Board struct {
	name      string
	style     Style
	stopCode  string
	routeName string
	stopID    string
	routeID   string
	title     string
	refresh   time.Duration
	feedURL   string
	index     *gtfs.Index
	fetcher   gtfsrt.ByteFetcher
	loc       *time.Location
	log       zerolog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	entries   []gtfsrt.Arrival
	lastErr   string
	updatedAt time.Time
	feedTime  time.Time
}

// View is the rendered board.
type View struct {
	Name      string           `json:"name"`
	Title     string           `json:"title"`
	Style     Style            `json:"style"`
	StopID    string           `json:"stopId"`
	RouteID   string           `json:"routeId"`
	Lines     []string         `json:"lines"`
	Text      string           `json:"text"`
	Entries   []gtfsrt.Arrival `json:"entries"`
	Error     string           `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
	FeedTime  time.Time        `json:"feedTime"`
}

// New resolves the configured stop and route and builds the board.
func New(cfg config.BoardConfig, deps Deps) (*Board, error) {
	refresh, err := cfg.RefreshInterval()
	if err != nil {
		return nil, err
	}
	if deps.Index == nil {
		deps.Index = gtfs.NewIndex()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	style := Style(cfg.Style)
	if style == "" {
		style = StyleFull
	}
	b := &Board{
		name:      cfg.Name,
		style:     style,
		stopCode:  strings.TrimSpace(cfg.StopCode),
		routeName: strings.TrimSpace(cfg.RouteShortName),
		refresh:   refresh,
		feedURL:   deps.FeedURL,
		index:     deps.Index,
		fetcher:   deps.Fetcher,
		loc:       deps.Location,
		log:       deps.Logger.With().Str("board", cfg.Name).Logger(),
		now:       time.Now,
	}
	b.stopID = NoStop
	if id, ok := b.index.StopIDForCode(b.stopCode); ok {
		b.stopID = id
	}
	b.routeID = AllRoutes
	if id, ok := b.index.RouteIDForShortName(b.routeName); ok {
		b.routeID = id
	}
	b.title = b.buildTitle()
	b.log.Info().Str("stopId", b.stopID).Str("routeId", b.routeID).Msg("board resolved")
	return b, nil
}

// SetClock replaces the wall clock; intended for tests. It is safe to call
// while the board is being polled.
func (b *Board) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

func (b *Board) clock() time.Time {
	b.mu.RLock()
	now := b.now
	b.mu.RUnlock()
	return now()
}

func (b *Board) Name() string { return b.name }

func (b *Board) Title() string { return b.title }

func (b *Board) RefreshInterval() time.Duration { return b.refresh }

func (b *Board) stopName() string {
	if b.stopID == NoStop {
		return NoStop
	}
	if name, ok := b.index.StopName(b.stopID); ok {
		return name
	}
	return "NOT FOUND " + b.stopID
}

func (b *Board) buildTitle() string {
	if b.style == StyleCompact {
		route := b.routeName
		if route == "" {
			route = AllRoutes
		}
		return fmt.Sprintf("%s (%s)", b.stopName(), route)
	}
	stopLabel := "ALL STOPS"
	if b.stopID != NoStop {
		stopLabel = fmt.Sprintf("%s (%s)", b.stopCode, b.stopName())
	}
	routeLabel := "ALL ROUTES"
	if b.routeID != AllRoutes {
		routeLabel = b.routeName
	}
	return fmt.Sprintf("Next Buses for Stop %s — Route %s", stopLabel, routeLabel)
}

func (b *Board) filter() gtfsrt.ArrivalFilter {
	var f gtfsrt.ArrivalFilter
	if b.stopID != NoStop {
		f.StopID = b.stopID
	}
	if b.routeID != AllRoutes {
		f.RouteID = b.routeID
	}
	return f
}

// Refresh fetches the trip-updates feed and replaces the cached entries. On
// failure the previous entries are kept.
func (b *Board) Refresh(ctx context.Context) error {
	fm, err := gtfsrt.Fetch(ctx, b.fetcher, b.feedURL)
	if err != nil {
		b.mu.Lock()
		b.lastErr = err.Error()
		b.mu.Unlock()
		b.log.Error().Err(err).Msg("trip updates fetch failed")
		return fmt.Errorf("board %s: %w", b.name, err)
	}
	entries := gtfsrt.Arrivals(fm, b.filter())
	feedTime, _ := gtfsrt.HeaderTime(fm)

	b.mu.Lock()
	b.entries = entries
	b.lastErr = ""
	b.updatedAt = b.now()
	b.feedTime = feedTime
	b.mu.Unlock()

	b.log.Debug().Int("entries", len(entries)).Msg("refreshed")
	return nil
}

// Render produces the board text for the given instant from the cached entries.
func (b *Board) Render(now time.Time) View {
	b.mu.RLock()
	entries := append([]gtfsrt.Arrival(nil), b.entries...)
	v := View{
		Name:      b.name,
		Title:     b.title,
		Style:     b.style,
		StopID:    b.stopID,
		RouteID:   b.routeID,
		Entries:   entries,
		Error:     b.lastErr,
		UpdatedAt: b.updatedAt,
		FeedTime:  b.feedTime,
	}
	b.mu.RUnlock()

	sep := "\n"
	if b.style == StyleCompact {
		for _, e := range entries {
			v.Lines = append(v.Lines, b.compactLine(e, now))
		}
	} else {
		sep = "\n\n"
		for _, e := range entries {
			v.Lines = append(v.Lines, b.fullBlock(e, now))
		}
	}
	if len(v.Lines) == 0 {
		v.Text = b.emptyText()
		return v
	}
	v.Text = strings.Join(v.Lines, sep)
	return v
}

// View renders against the current time.
func (b *Board) View() any { return b.Render(b.clock()) }

func (b *Board) routeLabel(routeID string) string {
	if short, ok := b.index.RouteShortName(routeID); ok {
		return short
	}
	return routeID
}

func (b *Board) fullBlock(e gtfsrt.Arrival, now time.Time) string {
	return fmt.Sprintf("Trip ID: %s\nArrival: %s (%s)  Delay: %s\nDeparture: %s (%s)  Delay: %s\nRoute: %s",
		e.TripID,
		formatUnixTime(e.ArrivalTime, b.loc, timeFull), timeUntil(e.ArrivalTime, now), formatDelay(e.ArrivalDelay),
		formatUnixTime(e.DepartureTime, b.loc, timeFull), timeUntil(e.DepartureTime, now), formatDelay(e.DepartureDelay),
		b.routeLabel(e.RouteID))
}

func (b *Board) compactLine(e gtfsrt.Arrival, now time.Time) string {
	return fmt.Sprintf("%s: %s (%s)", b.routeLabel(e.RouteID),
		formatUnixTime(e.ArrivalTime, b.loc, timeCompact), timeUntil(e.ArrivalTime, now))
}

func (b *Board) emptyText() string {
	if b.style == StyleCompact {
		stop, route := b.stopCode, b.routeName
		if stop == "" {
			stop = "ALL"
		}
		if route == "" {
			route = AllRoutes
		}
		return fmt.Sprintf("No buses for stop %s and route %s", stop, route)
	}
	return fmt.Sprintf("No upcoming buses for stop %s on route %s", b.stopID, b.routeID)
}

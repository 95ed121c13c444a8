package config

import (
	"fmt"
	"strings"
	"time"
)

// Default intervals used when a widget leaves them unset.
const (
	DefaultDashboardRefresh  = 60 * time.Second
	DefaultBoardRefresh      = 60 * time.Second
	DefaultVehicleMapRefresh = 30 * time.Second
	DefaultSpan              = 24 * time.Hour
	DefaultShutdownTimeout   = 10 * time.Second
)

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// RefreshInterval returns the poll interval of the dashboard.
func (d DashboardConfig) RefreshInterval() (time.Duration, error) {
	return ParseDurationOrDefault("dashboards."+d.Name+".refresh", d.Refresh, DefaultDashboardRefresh)
}

// WindowSpan returns the look-back of the dashboard window.
func (d DashboardConfig) WindowSpan() (time.Duration, error) {
	return ParseDurationOrDefault("dashboards."+d.Name+".span", d.Span, DefaultSpan)
}

// RefreshInterval returns the poll interval of the board.
func (b BoardConfig) RefreshInterval() (time.Duration, error) {
	return ParseDurationOrDefault("boards."+b.Name+".refresh", b.Refresh, DefaultBoardRefresh)
}

// RefreshInterval returns the poll interval of the map.
func (m VehicleMapConfig) RefreshInterval() (time.Duration, error) {
	return ParseDurationOrDefault("vehicleMaps."+m.Name+".refresh", m.Refresh, DefaultVehicleMapRefresh)
}

// ShutdownGrace returns how long the server waits for in-flight requests.
func (s ServerConfig) ShutdownGrace() (time.Duration, error) {
	return ParseDurationOrDefault("server.shutdownTimeout", s.ShutdownTimeout, DefaultShutdownTimeout)
}

// Location loads the IANA zone name; empty means time.Local.
func Location(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}

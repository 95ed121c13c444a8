package config

import "github.com/theoremus-urban-solutions/transit-widgets/logging"

// ServerConfig contains server configuration
type ServerConfig struct {
	Port            int    `yaml:"port" validate:"gte=0,lte=65535"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

// ReloadConfig throttles manual widget refreshes
type ReloadConfig struct {
	PerMinute int `yaml:"perMinute" validate:"gte=0"`
	Burst     int `yaml:"burst" validate:"gte=0"`
}

// GTFSConfig points at the static GTFS data: either a feed zip or the
// individual stops.txt / routes.txt files. ZipPath wins when both are set.
type GTFSConfig struct {
	ZipPath    string `yaml:"zipPath"`
	StopsPath  string `yaml:"stopsPath"`
	RoutesPath string `yaml:"routesPath"`
	Timezone   string `yaml:"timezone"`
}

// GTFSRTConfig contains GTFS-Realtime feed configuration
type GTFSRTConfig struct {
	TripUpdatesURL      string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

// DashboardConfig describes one queue-length dashboard
type DashboardConfig struct {
	Name           string `yaml:"name" validate:"required"`
	DataURL        string `yaml:"dataURL" validate:"omitempty,url"`
	Refresh        string `yaml:"refresh"`
	Window         string `yaml:"window" validate:"omitempty,oneof=rolling fixed"`
	Span           string `yaml:"span"`
	FlattenBatches bool   `yaml:"flattenBatches"`
	Timezone       string `yaml:"timezone"`
}

// BoardConfig describes one arrival board
type BoardConfig struct {
	Name           string `yaml:"name" validate:"required"`
	StopCode       string `yaml:"stop"`
	RouteShortName string `yaml:"route"`
	Style          string `yaml:"style" validate:"omitempty,oneof=full compact"`
	Refresh        string `yaml:"refresh"`
	TripUpdatesURL string `yaml:"tripUpdatesURL" validate:"omitempty,url"` // overrides gtfsrt.tripUpdatesURL
}

// VehicleMapConfig describes one bus-position map
type VehicleMapConfig struct {
	Name                string  `yaml:"name" validate:"required"`
	StopCode            string  `yaml:"stop"`
	RouteShortName      string  `yaml:"route"`
	RadiusKM            float64 `yaml:"radiusKM" validate:"gte=0"`
	Refresh             string  `yaml:"refresh"`
	VehiclePositionsURL string  `yaml:"vehiclePositionsURL" validate:"omitempty,url"` // overrides gtfsrt.vehiclePositionsURL
	CenterLat           float64 `yaml:"centerLat" validate:"gte=-90,lte=90"`
	CenterLon           float64 `yaml:"centerLon" validate:"gte=-180,lte=180"`
}

// LabelMapConfig describes one labeled map backed by a data.json file
type LabelMapConfig struct {
	Name  string `yaml:"name" validate:"required"`
	Path  string `yaml:"path" validate:"required"`
	Watch bool   `yaml:"watch"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server      ServerConfig       `yaml:"server"`
	Logging     logging.Config     `yaml:"logging"`
	Reload      ReloadConfig       `yaml:"reload"`
	GTFS        GTFSConfig         `yaml:"gtfs"`
	GTFSRT      GTFSRTConfig       `yaml:"gtfsrt"`
	Dashboards  []DashboardConfig  `yaml:"dashboards" validate:"dive"`
	Boards      []BoardConfig      `yaml:"boards" validate:"dive"`
	VehicleMaps []VehicleMapConfig `yaml:"vehicleMaps" validate:"dive"`
	LabelMaps   []LabelMapConfig   `yaml:"labelMaps" validate:"dive"`
}

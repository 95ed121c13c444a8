package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPort is used when server.port is unset
const DefaultPort = 16181

// Config is the global application configuration
var Config AppConfig

// defaultPaths are searched when no explicit path is given
var defaultPaths = []string{"config.yml", "./golang/config.yml"}

// LoadAppConfig loads and validates the configuration from path, or from
// config.yml in the working directory when path is empty, and installs it as Config.
func LoadAppConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// Load reads, decodes and validates a configuration file without touching Config.
func Load(path string) (AppConfig, error) {
	paths := defaultPaths
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration bytes.
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	return cfg, nil
}

// Validate checks struct tags, widget name uniqueness and duration fields.
func Validate(cfg AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	if err := uniqueNames("dashboards", len(cfg.Dashboards), func(i int) string { return cfg.Dashboards[i].Name }); err != nil {
		return err
	}
	if err := uniqueNames("boards", len(cfg.Boards), func(i int) string { return cfg.Boards[i].Name }); err != nil {
		return err
	}
	if err := uniqueNames("vehicleMaps", len(cfg.VehicleMaps), func(i int) string { return cfg.VehicleMaps[i].Name }); err != nil {
		return err
	}
	if err := uniqueNames("labelMaps", len(cfg.LabelMaps), func(i int) string { return cfg.LabelMaps[i].Name }); err != nil {
		return err
	}

	var errs []error
	if _, err := cfg.Server.ShutdownGrace(); err != nil {
		errs = append(errs, err)
	}
	for _, d := range cfg.Dashboards {
		if _, err := d.RefreshInterval(); err != nil {
			errs = append(errs, err)
		}
		if _, err := d.WindowSpan(); err != nil {
			errs = append(errs, err)
		}
		if _, err := Location(d.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("dashboards.%s: %w", d.Name, err))
		}
	}
	for _, b := range cfg.Boards {
		if _, err := b.RefreshInterval(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range cfg.VehicleMaps {
		if _, err := m.RefreshInterval(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := Location(cfg.GTFS.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("gtfs: %w", err))
	}
	return errors.Join(errs...)
}

func uniqueNames(section string, n int, name func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		if _, dup := seen[name(i)]; dup {
			return fmt.Errorf("%s: duplicate name %q", section, name(i))
		}
		seen[name(i)] = struct{}{}
	}
	return nil
}

// SelectLabelMap chooses a labeled map by name; an empty name selects the first.
func SelectLabelMap(name string) (LabelMapConfig, bool) {
	for _, m := range Config.LabelMaps {
		if name == "" || m.Name == name {
			return m, true
		}
	}
	return LabelMapConfig{}, false
}

// FeedURL returns the board's feed, falling back to the shared one.
func (b BoardConfig) FeedURL(shared GTFSRTConfig) string {
	if b.TripUpdatesURL != "" {
		return b.TripUpdatesURL
	}
	return shared.TripUpdatesURL
}

// FeedURL returns the map's feed, falling back to the shared one.
func (m VehicleMapConfig) FeedURL(shared GTFSRTConfig) string {
	if m.VehiclePositionsURL != "" {
		return m.VehiclePositionsURL
	}
	return shared.VehiclePositionsURL
}

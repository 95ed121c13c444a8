// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Every widget is declared by name in its own list (dashboards, boards,
// vehicleMaps, labelMaps) and can be selected by that name.
package config

// Package gtfsrt decodes GTFS-Realtime protobuf feeds and extracts the views
// the widgets render:
//   - Trip Updates: per-stop arrival and departure predictions (Arrivals)
//   - Vehicle Positions: current vehicle locations (Vehicles)
//
// Identifiers passed to the filters are feed ids; resolving stop codes and
// route short names is the job of package gtfs.
package gtfsrt

/*
Package gtfs loads the static stops.txt and routes.txt tables that the
widgets need to turn human-facing codes into feed identifiers.

Files are read either from plain paths or from a GTFS zip. Columns are
resolved by header name; files without a usable header fall back to the
TransLink column layout:

	stops.txt:  stop_lat, _, stop_code, stop_lon, stop_id, _, _, _, stop_name
	routes.txt: route_long_name, _, _, _, _, route_id, _, _, route_short_name

# Basic Usage

	index, err := gtfs.LoadFiles("data/stops.txt", "data/routes.txt")
	if err != nil {
	    log.Fatal(err)
	}
	stopID, ok := index.StopIDForCode("50001")
	routeID, ok := index.RouteIDForShortName("99")

An Index is read-only once loaded and safe for concurrent use.
*/
package gtfs

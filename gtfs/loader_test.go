package gtfs

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stopsWithHeader = "\ufeffstop_id,stop_code,stop_name,stop_lat,stop_lon\n" +
	"1,50001,Granville Stn,49.2830,-123.1160\n" +
	"2,,No Code Stop,49.1,-123.0\n" +
	"3,50003,,bad,-123.0\n"

const routesWithHeader = "route_id,route_short_name,route_long_name\n" +
	"6636,99,UBC/Commercial-Broadway\n" +
	"6637,,Missing Short Name\n"

// TransLink exports without a header line.
const stopsFixed = "49.2830,0,50001,-123.1160,1,,,,Granville Stn\n" +
	"49.2700,0,50002,-123.1000,2,,,,Main St\n"

const routesFixed = "UBC/Commercial-Broadway,,,,,6636,,,99\n" +
	"Downtown,,,,,6640,,,N10\n"

func TestReadStopsByHeader(t *testing.T) {
	g := NewIndex()
	require.NoError(t, g.ReadStops(strings.NewReader(stopsWithHeader)))
	assert.Equal(t, 3, g.StopCount())

	id, ok := g.StopIDForCode("50001")
	require.True(t, ok)
	assert.Equal(t, "1", id)

	name, ok := g.StopName("1")
	require.True(t, ok)
	assert.Equal(t, "Granville Stn", name)

	lat, lon, ok := g.StopCoord("1")
	require.True(t, ok)
	assert.InDelta(t, 49.2830, lat, 1e-9)
	assert.InDelta(t, -123.1160, lon, 1e-9)

	_, _, ok = g.StopCoord("3")
	assert.False(t, ok, "unparseable latitude")
	name, _ = g.StopName("3")
	assert.Equal(t, "3", name, "missing names fall back to the id")
}

func TestReadRoutesByHeader(t *testing.T) {
	g := NewIndex()
	require.NoError(t, g.ReadRoutes(strings.NewReader(routesWithHeader)))
	assert.Equal(t, 1, g.RouteCount())

	id, ok := g.RouteIDForShortName("99")
	require.True(t, ok)
	assert.Equal(t, "6636", id)
	short, _ := g.RouteShortName("6636")
	assert.Equal(t, "99", short)
	long, ok := g.RouteLongName("6636")
	require.True(t, ok)
	assert.Equal(t, "UBC/Commercial-Broadway", long)

	_, ok = g.RouteShortName("6637")
	assert.False(t, ok)
}

func TestReadFixedColumnLayout(t *testing.T) {
	g := NewIndex()
	require.NoError(t, g.ReadStops(strings.NewReader(stopsFixed)))
	require.NoError(t, g.ReadRoutes(strings.NewReader(routesFixed)))

	id, ok := g.StopIDForCode("50002")
	require.True(t, ok)
	assert.Equal(t, "2", id)
	name, _ := g.StopName("2")
	assert.Equal(t, "Main St", name)

	rid, ok := g.RouteIDForShortName("N10")
	require.True(t, ok)
	assert.Equal(t, "6640", rid)
	long, _ := g.RouteLongName("6640")
	assert.Equal(t, "Downtown", long)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	stops := filepath.Join(dir, "stops.txt")
	routes := filepath.Join(dir, "routes.txt")
	require.NoError(t, os.WriteFile(stops, []byte(stopsWithHeader), 0o644))
	require.NoError(t, os.WriteFile(routes, []byte(routesFixed), 0o644))

	g, err := LoadFiles(stops, routes)
	require.NoError(t, err)
	assert.Equal(t, 3, g.StopCount())
	assert.Equal(t, 2, g.RouteCount())

	g, err = LoadFiles("", "")
	require.NoError(t, err)
	assert.Zero(t, g.StopCount())

	_, err = LoadFiles(filepath.Join(dir, "missing.txt"), "")
	assert.Error(t, err)
}

func TestLoadZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtfs.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"stops.txt":  stopsWithHeader,
		"routes.txt": routesWithHeader,
		"trips.txt":  "trip_id\n1\n",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	g, err := LoadZip(path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.StopCount())
	assert.Equal(t, 1, g.RouteCount())
}

func TestHaversineKM(t *testing.T) {
	assert.InDelta(t, 0, HaversineKM(49.28, -123.12, 49.28, -123.12), 1e-12)
	// One degree of latitude is about 111.19 km on a 6371 km sphere.
	assert.InDelta(t, 111.19, HaversineKM(49, -123, 50, -123), 0.01)
	assert.InDelta(t, HaversineKM(49.2827, -123.1207, 49.2606, -123.2460), HaversineKM(49.2606, -123.2460, 49.2827, -123.1207), 1e-9)
}

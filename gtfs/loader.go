package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Fixed column positions of the TransLink stops.txt / routes.txt exports,
// used when a file carries no recognizable header.
const (
	fixedStopLat   = 0
	fixedStopCode  = 2
	fixedStopLon   = 3
	fixedStopID    = 4
	fixedStopName  = 8
	fixedRouteLong = 0
	fixedRouteID   = 5
	fixedRouteSN   = 8
)

// LoadFiles builds an index from stops.txt and routes.txt paths. An empty
// path skips that table.
func LoadFiles(stopsPath, routesPath string) (*Index, error) {
	g := NewIndex()
	if stopsPath != "" {
		if err := g.loadFile(stopsPath, g.ReadStops); err != nil {
			return nil, err
		}
	}
	if routesPath != "" {
		if err := g.loadFile(routesPath, g.ReadRoutes); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Index) loadFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadZip opens a local GTFS zip and consumes stops.txt and routes.txt.
func LoadZip(path string) (*Index, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	g := NewIndex()
	for _, f := range zr.File {
		var read func(io.Reader) error
		switch strings.ToLower(f.Name) {
		case "stops.txt":
			read = g.ReadStops
		case "routes.txt":
			read = g.ReadRoutes
		default:
			continue
		}
		if err := consumeZipFile(f, read); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return g, nil
}

func consumeZipFile(f *zip.File, read func(io.Reader) error) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return read(r)
}

// ReadStops adds every stop row in r to the index.
func (g *Index) ReadStops(r io.Reader) error {
	rec, err := readCSV(r)
	if err != nil || len(rec) == 0 {
		return err
	}
	head := rec[0]
	sID, sCode, sName, sLat, sLon := idx(head, "stop_id"), idx(head, "stop_code"), idx(head, "stop_name"), idx(head, "stop_lat"), idx(head, "stop_lon")
	rows := rec[1:]
	if sID < 0 {
		sID, sCode, sName, sLat, sLon = fixedStopID, fixedStopCode, fixedStopName, fixedStopLat, fixedStopLon
		rows = rec
	}
	for _, row := range rows {
		id := field(row, sID)
		if id == "" || id == "stop_id" {
			continue
		}
		s := Stop{ID: id, Code: field(row, sCode), Name: field(row, sName)}
		lat, errLat := strconv.ParseFloat(field(row, sLat), 64)
		lon, errLon := strconv.ParseFloat(field(row, sLon), 64)
		if errLat == nil && errLon == nil {
			s.Lat, s.Lon, s.HasCoord = lat, lon, true
		}
		g.AddStop(s)
	}
	return nil
}

// ReadRoutes adds every route row in r to the index.
func (g *Index) ReadRoutes(r io.Reader) error {
	rec, err := readCSV(r)
	if err != nil || len(rec) == 0 {
		return err
	}
	head := rec[0]
	rID, rSN, rLN := idx(head, "route_id"), idx(head, "route_short_name"), idx(head, "route_long_name")
	rows := rec[1:]
	if rID < 0 {
		rID, rSN, rLN = fixedRouteID, fixedRouteSN, fixedRouteLong
		rows = rec
	}
	for _, row := range rows {
		id := field(row, rID)
		if id == "" || id == "route_id" {
			continue
		}
		g.AddRoute(Route{ID: id, ShortName: field(row, rSN), LongName: field(row, rLN)})
	}
	return nil
}

func readCSV(r io.Reader) ([][]string, error) {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true
	rec, err := csvr.ReadAll()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(rec) > 0 && len(rec[0]) > 0 {
		rec[0][0] = strings.TrimPrefix(rec[0][0], "\ufeff")
	}
	return rec, nil
}

func idx(head []string, col string) int {
	for i, h := range head {
		if strings.EqualFold(strings.TrimSpace(h), col) {
			return i
		}
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

package vehiclemap

import (
	"sort"

	"github.com/theoremus-urban-solutions/transit-widgets/gtfsrt"
)

// Marker is one vehicle on the map.
type Marker struct {
	ID        string           `json:"id"`
	Lat       float64          `json:"lat"`
	Lon       float64          `json:"lon"`
	RouteID   string           `json:"routeId,omitempty"`
	Direction gtfsrt.Direction `json:"direction"`
	Popup     string           `json:"popup"`
}

// Diff lists the marker ids touched by one Apply.
type Diff struct {
	Added   []string `json:"added"`
	Moved   []string `json:"moved"`
	Removed []string `json:"removed"`
}

// Empty reports whether the apply changed nothing.
func (d Diff) Empty() bool { return len(d.Added)+len(d.Moved)+len(d.Removed) == 0 }

// MarkerSet is the rendered marker layer keyed by marker id. Apply replaces
// the layer with the given markers: new ids are added, known ids are moved in
// place, and ids not present any more are removed. Applying the same markers
// twice leaves the set unchanged.
type MarkerSet struct {
	markers map[string]Marker
}

func NewMarkerSet() *MarkerSet {
	return &MarkerSet{markers: map[string]Marker{}}
}

func (s *MarkerSet) Apply(next []Marker) Diff {
	var d Diff
	seen := make(map[string]Marker, len(next))
	for _, m := range next {
		seen[m.ID] = m
	}
	for id, m := range seen {
		prev, ok := s.markers[id]
		switch {
		case !ok:
			d.Added = append(d.Added, id)
		case prev != m:
			d.Moved = append(d.Moved, id)
		}
	}
	for id := range s.markers {
		if _, ok := seen[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	s.markers = seen
	sort.Strings(d.Added)
	sort.Strings(d.Moved)
	sort.Strings(d.Removed)
	return d
}

// Markers returns the markers sorted by id.
func (s *MarkerSet) Markers() []Marker {
	out := make([]Marker, 0, len(s.markers))
	for _, m := range s.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package labelmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultLabelSize is the label font size, in pixels, that Scale maps to 1.
const DefaultLabelSize = 14.0

// Point is a labeled marker or a vertex of a path.
type Point struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color,omitempty"`
	Icon  string  `json:"icon,omitempty"`
}

// Size is a label size given either as a number or a numeric string.
type Size float64

func (s *Size) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSuffix(strings.TrimSpace(str), "px")
		if str == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("label size %q: %w", str, err)
		}
		*s = Size(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Size(f)
	return nil
}

// Path is a labeled polyline.
type Path struct {
	Label  string  `json:"label,omitempty"`
	Color  string  `json:"color,omitempty"`
	Size   Size    `json:"size,omitempty"`
	Points []Point `json:"points"`
}

// Data is the contents of a label map file.
type Data struct {
	Points []Point `json:"points"`
	Paths  []Path  `json:"paths"`
}

// Load reads and decodes a label map file.
func Load(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Decode parses label map JSON.
func Decode(b []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode label map: %w", err)
	}
	return &d, nil
}

// Save writes d as indented JSON.
func Save(path string, d *Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func coordKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// Enhance gives every unlabeled path vertex the label of the point at the same
// coordinate (compared at six decimals), when that label is not empty. Later
// points win on duplicate coordinates. It returns the number of labels added.
func Enhance(d *Data) int {
	labels := make(map[string]string, len(d.Points))
	for _, p := range d.Points {
		labels[coordKey(p.Lat, p.Lng)] = p.Label
	}
	added := 0
	for i := range d.Paths {
		pts := d.Paths[i].Points
		for j := range pts {
			if pts[j].Label != "" {
				continue
			}
			if label := labels[coordKey(pts[j].Lat, pts[j].Lng)]; label != "" {
				pts[j].Label = label
				added++
			}
		}
	}
	return added
}

// Center averages every point and path vertex.
func Center(d *Data) (Point, bool) {
	var sumLat, sumLng float64
	n := 0
	for _, p := range d.Points {
		sumLat += p.Lat
		sumLng += p.Lng
		n++
	}
	for _, path := range d.Paths {
		for _, p := range path.Points {
			sumLat += p.Lat
			sumLng += p.Lng
			n++
		}
	}
	if n == 0 {
		return Point{}, false
	}
	return Point{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}, true
}

// LabelAnchor is where a path's label is drawn: the middle vertex, or the
// midpoint of the two middle vertices for an even count.
func LabelAnchor(p Path) (Point, bool) {
	n := len(p.Points)
	if p.Label == "" || n == 0 {
		return Point{}, false
	}
	mid := n / 2
	if n%2 == 1 {
		return Point{Lat: p.Points[mid].Lat, Lng: p.Points[mid].Lng}, true
	}
	a, b := p.Points[mid-1], p.Points[mid]
	return Point{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}, true
}

// LabelSize returns the path's label size, DefaultLabelSize when unset.
func (p Path) LabelSize() float64 {
	if p.Size <= 0 {
		return DefaultLabelSize
	}
	return float64(p.Size)
}

// Scale converts a label size into a multiplier of the default size.
func Scale(size float64) float64 {
	return size / DefaultLabelSize
}

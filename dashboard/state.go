package dashboard

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-widgets/feed"
)

// Status classifies the outcome of the last refresh.
type Status string

const (
	StatusPending        Status = "pending"
	StatusNoSource       Status = "no_source"
	StatusTransportError Status = "transport_error"
	StatusEmptyWindow    Status = "empty_window"
	StatusOK             Status = "ok"
)

// placeholder is shown for a KPI with no value.
const placeholder = "—"

// Point is one chart sample.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// KPIs are the summary tiles derived from the most recent reading.
type KPIs struct {
	Line   string `json:"line"`
	People string `json:"people"`
	Avg    string `json:"avg"`
	Time   string `json:"time"`
}

func emptyKPIs() KPIs {
	return KPIs{Line: placeholder, People: placeholder, Avg: placeholder, Time: placeholder}
}

// State is the rendered view of a dashboard. A State returned by Snapshot is a
// copy and never changes afterwards.
type State struct {
	Name        string                  `json:"name"`
	Status      Status                  `json:"status"`
	Message     string                  `json:"message"`
	DataURL     string                  `json:"dataURL"`
	Refresh     string                  `json:"refresh"`
	Window      feed.Window             `json:"window"`
	KPIs        KPIs                    `json:"kpis"`
	Latest      *feed.Record            `json:"latest,omitempty"`
	LineSeries  []Point                 `json:"lineSeries"`
	PartySeries []Point                 `json:"partySeries"`
	Dropped     map[feed.DropReason]int `json:"dropped,omitempty"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	Revision    uint64                  `json:"revision"`
}

func (s State) clone() State {
	out := s
	out.LineSeries = append([]Point(nil), s.LineSeries...)
	out.PartySeries = append([]Point(nil), s.PartySeries...)
	if s.Latest != nil {
		latest := *s.Latest
		out.Latest = &latest
	}
	if s.Dropped != nil {
		out.Dropped = make(map[feed.DropReason]int, len(s.Dropped))
		for k, v := range s.Dropped {
			out.Dropped[k] = v
		}
	}
	return out
}

// series converts records into the two chart datasets.
func series(records []feed.Record) (line, party []Point) {
	line = make([]Point, 0, len(records))
	party = make([]Point, 0, len(records))
	for _, r := range records {
		line = append(line, Point{X: r.TimeAdded, Y: r.LineSize})
		party = append(party, Point{X: r.TimeAdded, Y: r.PartySize})
	}
	return line, party
}

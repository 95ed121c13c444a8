package gtfsrt

import (
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// Arrival is one stop-time prediction of a trip.
type Arrival struct {
	TripID         string `json:"tripId"`
	RouteID        string `json:"routeId"`
	StopID         string `json:"stopId"`
	ArrivalTime    int64  `json:"arrivalTime,omitempty"`   // unix seconds, 0 when absent
	DepartureTime  int64  `json:"departureTime,omitempty"` // unix seconds, 0 when absent
	ArrivalDelay   *int32 `json:"arrivalDelay,omitempty"`
	DepartureDelay *int32 `json:"departureDelay,omitempty"`
}

// ArrivalFilter restricts Arrivals; empty fields match everything.
type ArrivalFilter struct {
	StopID  string
	RouteID string
}

// Arrivals lists the stop-time updates of every trip update matching f, in
// feed order.
func Arrivals(fm *gtfsrtpb.FeedMessage, f ArrivalFilter) []Arrival {
	var out []Arrival
	for _, e := range fm.GetEntity() {
		tu := e.GetTripUpdate()
		if tu == nil {
			continue
		}
		trip := tu.GetTrip()
		if f.RouteID != "" && trip.GetRouteId() != f.RouteID {
			continue
		}
		for _, stu := range tu.GetStopTimeUpdate() {
			if f.StopID != "" && stu.GetStopId() != f.StopID {
				continue
			}
			a := Arrival{
				TripID:        trip.GetTripId(),
				RouteID:       trip.GetRouteId(),
				StopID:        stu.GetStopId(),
				ArrivalTime:   stu.GetArrival().GetTime(),
				DepartureTime: stu.GetDeparture().GetTime(),
			}
			if ev := stu.GetArrival(); ev != nil && ev.Delay != nil {
				d := ev.GetDelay()
				a.ArrivalDelay = &d
			}
			if ev := stu.GetDeparture(); ev != nil && ev.Delay != nil {
				d := ev.GetDelay()
				a.DepartureDelay = &d
			}
			out = append(out, a)
		}
	}
	return out
}

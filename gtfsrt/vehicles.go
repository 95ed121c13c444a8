package gtfsrt

import (
	"strings"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/theoremus-urban-solutions/transit-widgets/gtfs"
)

// DefaultRadiusKM is the proximity radius used when a filter sets a stop but no radius.
const DefaultRadiusKM = 0.5

// Direction is the GTFS direction_id of a vehicle's trip.
type Direction int8

const (
	DirectionUnknown Direction = iota - 1
	DirectionOutbound
	DirectionInbound
)

func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "0"
	case DirectionInbound:
		return "1"
	default:
		return "unknown"
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Vehicle is one positioned vehicle.
type Vehicle struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId,omitempty"`
	RouteID   string    `json:"routeId,omitempty"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Bearing   float64   `json:"bearing,omitempty"`
	Direction Direction `json:"direction"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// Point is a coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// VehicleFilter restricts Vehicles. RouteID empty matches every route; Near
// nil disables the proximity check.
type VehicleFilter struct {
	RouteID  string
	Near     *Point
	RadiusKM float64
}

func (f VehicleFilter) radius() float64 {
	if f.RadiusKM > 0 {
		return f.RadiusKM
	}
	return DefaultRadiusKM
}

// Vehicles lists vehicle positions matching f. Entities without a position,
// or with a zero latitude or longitude, are skipped, as are those with
// neither a vehicle id nor a trip id.
func Vehicles(fm *gtfsrtpb.FeedMessage, f VehicleFilter) []Vehicle {
	var out []Vehicle
	for _, e := range fm.GetEntity() {
		vp := e.GetVehicle()
		if vp == nil {
			continue
		}
		pos := vp.GetPosition()
		lat, lon := float64(pos.GetLatitude()), float64(pos.GetLongitude())
		if lat == 0 || lon == 0 {
			continue
		}
		trip := vp.GetTrip()
		routeID := strings.TrimSpace(trip.GetRouteId())
		if f.RouteID != "" && routeID != f.RouteID {
			continue
		}
		// strictly inside the radius
		if f.Near != nil && gtfs.HaversineKM(lat, lon, f.Near.Lat, f.Near.Lon) >= f.radius() {
			continue
		}
		id := strings.TrimSpace(vp.GetVehicle().GetId())
		if id == "" {
			id = strings.TrimSpace(trip.GetTripId())
		}
		if id == "" {
			continue
		}
		v := Vehicle{
			ID:        id,
			TripID:    strings.TrimSpace(trip.GetTripId()),
			RouteID:   routeID,
			Lat:       lat,
			Lon:       lon,
			Bearing:   float64(pos.GetBearing()),
			Direction: DirectionUnknown,
			Timestamp: int64(vp.GetTimestamp()),
		}
		if trip != nil && trip.DirectionId != nil {
			switch trip.GetDirectionId() {
			case 0:
				v.Direction = DirectionOutbound
			case 1:
				v.Direction = DirectionInbound
			}
		}
		out = append(out, v)
	}
	return out
}

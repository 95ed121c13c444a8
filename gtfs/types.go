package gtfs

// Stop is one row of stops.txt.
type Stop struct {
	ID       string  `json:"id"`
	Code     string  `json:"code,omitempty"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	HasCoord bool    `json:"-"`
}

// Route is one row of routes.txt.
type Route struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName,omitempty"`
}

package gtfs

// Index stores the static stops and routes in memory for fast lookups
type Index struct {
	stops        map[string]Stop   // stop_id -> stop
	stopByCode   map[string]string // stop_code -> stop_id
	routes       map[string]Route  // route_id -> route
	routeByShort map[string]string // route_short_name -> route_id
}

// NewIndex creates a new empty index
func NewIndex() *Index {
	return &Index{
		stops:        map[string]Stop{},
		stopByCode:   map[string]string{},
		routes:       map[string]Route{},
		routeByShort: map[string]string{},
	}
}

// AddStop inserts or replaces a stop. Later rows win on duplicate codes.
func (g *Index) AddStop(s Stop) {
	if s.ID == "" {
		return
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	g.stops[s.ID] = s
	if s.Code != "" {
		g.stopByCode[s.Code] = s.ID
	}
}

// AddRoute inserts or replaces a route.
func (g *Index) AddRoute(r Route) {
	if r.ID == "" || r.ShortName == "" {
		return
	}
	g.routes[r.ID] = r
	g.routeByShort[r.ShortName] = r.ID
}

func (g *Index) StopCount() int  { return len(g.stops) }
func (g *Index) RouteCount() int { return len(g.routes) }

// Accessor methods

func (g *Index) Stop(stopID string) (Stop, bool) {
	s, ok := g.stops[stopID]
	return s, ok
}

func (g *Index) StopIDForCode(code string) (string, bool) {
	id, ok := g.stopByCode[code]
	return id, ok
}

func (g *Index) StopName(stopID string) (string, bool) {
	s, ok := g.stops[stopID]
	return s.Name, ok
}

// StopCoord returns the stop's latitude and longitude.
func (g *Index) StopCoord(stopID string) (lat, lon float64, ok bool) {
	s, found := g.stops[stopID]
	if !found || !s.HasCoord {
		return 0, 0, false
	}
	return s.Lat, s.Lon, true
}

func (g *Index) RouteIDForShortName(short string) (string, bool) {
	id, ok := g.routeByShort[short]
	return id, ok
}

func (g *Index) RouteShortName(routeID string) (string, bool) {
	r, ok := g.routes[routeID]
	return r.ShortName, ok
}

func (g *Index) RouteLongName(routeID string) (string, bool) {
	r, ok := g.routes[routeID]
	if !ok || r.LongName == "" {
		return "", false
	}
	return r.LongName, true
}

package engine

import "github.com/popupsim/popupsim/sim"

// RouteService is a lookup table from (from, to) track pairs to a fixed
// transport duration (spec §4.7, §3). An undefined pair is a fatal
// configuration error at the point of use (spec §7 no-route error).
type RouteService struct {
	routes map[[2]string]sim.RouteSpec
}

// NewRouteService indexes every scenario route by its endpoints.
func NewRouteService(routes []sim.RouteSpec) *RouteService {
	s := &RouteService{routes: make(map[[2]string]sim.RouteSpec, len(routes))}
	for _, r := range routes {
		if from, to, ok := r.Endpoints(); ok {
			s.routes[[2]string{from, to}] = r
		}
	}
	return s
}

// Duration returns the fixed transport time from one track to another, or a
// *RouteError if no route is declared for that pair.
func (s *RouteService) Duration(from, to string) (float64, error) {
	r, ok := s.routes[[2]string{from, to}]
	if !ok {
		return 0, &RouteError{From: from, To: to}
	}
	return r.Duration, nil
}

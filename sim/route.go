// Defines the Route value object: a directed, fixed-duration hop between two
// tracks (spec §3, §4.7). Lookup lives in sim/engine.RouteService; this is
// the scenario shape.

package sim

import "fmt"

// RouteSpec is one directed route between two tracks with a fixed duration
// in minutes.
type RouteSpec struct {
	ID       string
	Path     []string // [from_track, ..., to_track]; only the endpoints matter to lookup
	Duration float64  // minutes
}

// Endpoints returns the from/to track IDs for this route.
func (r RouteSpec) Endpoints() (from, to string, ok bool) {
	if len(r.Path) < 2 {
		return "", "", false
	}
	return r.Path[0], r.Path[len(r.Path)-1], true
}

// Validate checks the structural invariants from spec §3/§7.
func (r RouteSpec) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("route: id must not be empty")
	}
	if _, _, ok := r.Endpoints(); !ok {
		return fmt.Errorf("route %s: path must name at least two tracks", r.ID)
	}
	if r.Duration < 0 {
		return fmt.Errorf("route %s: duration must be >= 0, got %v", r.ID, r.Duration)
	}
	return nil
}

package engine

import "fmt"

// CapacityError reports that a track's occupancy would go negative by more
// than trackTolerance on release — a caller is freeing more length than the
// track ever had reserved (spec §7 capacity-overflow error). It is fatal:
// the engine has no fallback track.
type CapacityError struct {
	Track     string
	Requested float64
	Available float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity: track %s cannot release %.2fm, only %.2fm occupied", e.Track, e.Requested, e.Available)
}

// CouplingError reports that a rake failed its coupler-compatibility check
// (spec §7 coupling-failure error).
type CouplingError struct {
	Rake   string
	Detail string
}

func (e *CouplingError) Error() string {
	return fmt.Sprintf("coupling: rake %s: %s", e.Rake, e.Detail)
}

// RouteError reports that no route is defined between two tracks (spec §7
// no-route error). Always fatal: the scenario is structurally incomplete.
type RouteError struct {
	From, To string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("route: no route defined from %s to %s", e.From, e.To)
}

// Defines the Locomotive entity and its status-history bookkeeping, which the
// metrics aggregator replays to derive per-locomotive utilization (spec §3,
// §4.3, §4.13).

package sim

// LocomotiveStatus is the locomotive's current activity. A locomotive is
// always in exactly one of these states while allocated, and Parking while
// idle in the pool.
type LocomotiveStatus string

const (
	LocoParking    LocomotiveStatus = "parking"
	LocoMoving     LocomotiveStatus = "moving"
	LocoCoupling   LocomotiveStatus = "coupling"
	LocoDecoupling LocomotiveStatus = "decoupling"
)

// StatusInterval is one contiguous span the locomotive spent in a given
// status, used by the metrics aggregator to integrate non-parking time.
type StatusInterval struct {
	Status LocomotiveStatus
	Start  float64
	End    float64
	Open   bool // true until closed by the next Transition or CloseHistory
}

// Locomotive hauls rakes between tracks. FrontCoupler/RearCoupler are fixed
// by scenario configuration; Status and the history slice are mutated as the
// locomotive is allocated, moved, coupled and released.
type Locomotive struct {
	ID          string
	HomeTrack   string
	FrontCoupler CouplerType
	RearCoupler  CouplerType

	Status  LocomotiveStatus
	History []StatusInterval
}

// NewLocomotive constructs a locomotive starting in the pool (parking).
func NewLocomotive(id, homeTrack string, front, rear CouplerType) *Locomotive {
	return &Locomotive{
		ID:           id,
		HomeTrack:    homeTrack,
		FrontCoupler: front,
		RearCoupler:  rear,
		Status:       LocoParking,
	}
}

// Transition closes the current open history interval (if any) at `at` and
// opens a new one in the given status. Call with the simulation clock value.
func (l *Locomotive) Transition(status LocomotiveStatus, at float64) {
	if n := len(l.History); n > 0 && l.History[n-1].Open {
		l.History[n-1].End = at
		l.History[n-1].Open = false
	}
	l.Status = status
	l.History = append(l.History, StatusInterval{Status: status, Start: at, Open: true})
}

// CloseHistory closes any still-open interval at simulation end, so
// utilization integration has a well-defined upper bound.
func (l *Locomotive) CloseHistory(simEnd float64) {
	if n := len(l.History); n > 0 && l.History[n-1].Open {
		l.History[n-1].End = simEnd
		l.History[n-1].Open = false
	}
}

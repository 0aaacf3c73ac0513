package engine

import "github.com/popupsim/popupsim/sim"

// CoordinationService arbitrates between the workshop and parking
// coordinators so that a backlog on one side cannot starve the other (spec
// §4.8 priority protocol, invariant P7: "a wagon that finishes retrofit is
// eventually moved to parking, even under sustained new-batch pressure").
//
// Three pieces of shared state drive the protocol:
//   - parkingInProgress gates every new workshop admission decision while a
//     parking move is in flight, so the parking coordinator's move is never
//     preempted by a competing claim on freed retrofitted-track space.
//   - retrofittedAccumulator holds wagons that finished retrofit and are
//     waiting for the parking coordinator's next wake, so they can be moved
//     as a single batch instead of one at a time.
//   - workshopTurnIndex round-robins admission priority across workshops
//     sharing a retrofit-selection dimension, so one busy workshop cannot
//     monopolize the track selector.
type CoordinationService struct {
	parkingInProgress      bool
	retrofittedAccumulator []*sim.Wagon
	workshopTurnIndex      int
}

// NewCoordinationService returns an idle coordination service.
func NewCoordinationService() *CoordinationService {
	return &CoordinationService{}
}

// BeginParking marks a parking move as in flight.
func (c *CoordinationService) BeginParking() { c.parkingInProgress = true }

// EndParking clears the in-flight flag once a parking move completes.
func (c *CoordinationService) EndParking() { c.parkingInProgress = false }

// ParkingInProgress reports whether a parking move currently holds priority.
func (c *CoordinationService) ParkingInProgress() bool { return c.parkingInProgress }

// AccumulateRetrofitted queues a freshly retrofitted wagon for the next
// parking cycle.
func (c *CoordinationService) AccumulateRetrofitted(w *sim.Wagon) {
	c.retrofittedAccumulator = append(c.retrofittedAccumulator, w)
}

// DrainAccumulator returns and clears the accumulated retrofitted wagons, in
// the order they finished retrofit (FIFO, preserving P7's eventual-delivery
// guarantee).
func (c *CoordinationService) DrainAccumulator() []*sim.Wagon {
	out := c.retrofittedAccumulator
	c.retrofittedAccumulator = nil
	return out
}

// PendingRetrofitted reports how many wagons are waiting for their next
// parking cycle.
func (c *CoordinationService) PendingRetrofitted() int {
	return len(c.retrofittedAccumulator)
}

// PendingWagons returns the accumulated retrofitted wagons without draining
// them, so a caller can inspect the backlog (e.g. to compute the
// accumulator-to-capacity ratio for the §4.12 threshold triggers) without
// disturbing FIFO order.
func (c *CoordinationService) PendingWagons() []*sim.Wagon {
	return c.retrofittedAccumulator
}

// NextWorkshopTurn returns the next workshop index to prioritize for
// admission, round-robin over n workshops.
func (c *CoordinationService) NextWorkshopTurn(n int) int {
	if n <= 0 {
		return 0
	}
	turn := c.workshopTurnIndex % n
	c.workshopTurnIndex++
	return turn
}

// Package engine is the cooperative, single-threaded discrete-event
// scheduler that drives the retrofit workflow: one priority-ordered event
// heap, one virtual clock, and a fixed menu of suspension points (delay,
// track/bay/locomotive acquisition). It is a generalization of the
// request-routing scheduler it is grounded on, retargeted from LLM request
// lifecycles to wagon retrofit lifecycles (spec §4.1, §5, §9).
package engine

import (
	"fmt"
	"sort"

	"github.com/popupsim/popupsim/sim"
	"github.com/popupsim/popupsim/sim/eventlog"
	"github.com/popupsim/popupsim/sim/rng"
	"github.com/popupsim/popupsim/sim/scenario"
)

// Simulation holds every piece of mutable run state behind one struct (spec
// §9: a single SimulationState replaces ambient global mutable state).
// Nothing here is read or written from more than one goroutine; the event
// loop in Run is the only driver (spec §5).
type Simulation struct {
	Clock      float64
	Horizon    float64
	Queue      *EventHeap
	nextEventID uint64

	Tracks      map[string]*Track
	Workshops   map[string]*WorkshopResource
	Locomotives *LocomotivePool
	Routes      *RouteService

	ProcessTimes sim.ProcessTimes
	RNG          *rng.PartitionedRNG
	EventLog     *eventlog.Collector
	Coordination *CoordinationService

	CollectionSelector *TrackSelector
	RetrofitSelector   *TrackSelector
	ParkingSelector    *TrackSelector

	LocoDeliveryStrategy scenario.LocoDeliveryStrategy

	ParkingNormalThreshold   float64
	ParkingCriticalThreshold float64
	ParkingIdleCheckInterval float64

	Wagons map[string]*sim.Wagon
	Trains []scenario.TrainSpec

	// collectionQueues holds wagons waiting on each collection track in
	// arrival order, keyed by track ID (spec §4.10).
	collectionQueues map[string][]*sim.Wagon

	// retrofitQueues holds wagons waiting on each retrofit track for
	// workshop admission, keyed by track ID (spec §4.11).
	retrofitQueues map[string][]*sim.Wagon

	RejectedWagons int

	// queueBusyTime/queueLastLen/queueLastChange integrate the shared
	// retrofit-admission queue's time-weighted length (spec §4.13
	// bottleneck criterion: queue length's time-integrated average versus
	// bay count). All retrofit queues feed the same round-robin admission
	// pool (§4.11), so one integrator covers the whole pool rather than one
	// per workshop.
	queueBusyTime   float64
	queueLastLen    int
	queueLastChange float64

	// fatalErr is set by a coordinator that hits an unrecoverable error (a
	// missing route or an out-of-tolerance track release, spec §7): Run
	// stops draining the heap as soon as it's set and returns it, so the
	// run terminates cleanly instead of silently treating the gap as a
	// zero-duration hop.
	fatalErr error
}

// fail records a fatal error, keeping the first one if called more than
// once in the same event.
func (s *Simulation) fail(err error) {
	if s.fatalErr == nil {
		s.fatalErr = err
	}
}

// acquireTrack wraps Track.Acquire with the resource_state_change logging
// spec §4.13 expects: a "capacity_reserved_blocked" record the instant a
// request can't be granted, followed by "capacity_reserved" once it
// actually is (immediately, if it already fits).
func (s *Simulation) acquireTrack(t *Track, amount float64, wagons int, onReady func()) {
	if !t.fits(amount, wagons) {
		s.EventLog.ResourceStateChange(s.Clock, "track", t.Spec.ID, "capacity_reserved_blocked", t.Occupied, t.Spec.Capacity())
	}
	t.noteOccupancy(s.Clock)
	t.Acquire(amount, wagons, func() {
		s.EventLog.ResourceStateChange(s.Clock, "track", t.Spec.ID, "capacity_reserved", t.Occupied, t.Spec.Capacity())
		onReady()
	})
}

// releaseTrack wraps Track.Release with resource_state_change logging,
// propagating a capacity-overflow error through fail instead of the caller
// having to repeat that boilerplate at every call site.
func (s *Simulation) releaseTrack(t *Track, amount float64, wagons int) bool {
	t.noteOccupancy(s.Clock)
	if err := t.Release(amount, wagons); err != nil {
		s.fail(err)
		return false
	}
	s.EventLog.ResourceStateChange(s.Clock, "track", t.Spec.ID, "capacity_released", t.Occupied, t.Spec.Capacity())
	return true
}

// acquireBay wraps WorkshopResource.AcquireBay with bay-occupancy logging.
func (s *Simulation) acquireBay(ws *WorkshopResource, onReady func()) {
	ws.AcquireBay(s.Clock, func() {
		s.EventLog.ResourceStateChange(s.Clock, "workshop_bay", ws.Spec.ID, "bay_occupied", float64(ws.BusyBays), float64(ws.Spec.Bays))
		onReady()
	})
}

// releaseBay wraps WorkshopResource.ReleaseBay with bay-occupancy logging.
func (s *Simulation) releaseBay(ws *WorkshopResource) {
	ws.ReleaseBay(s.Clock)
	s.EventLog.ResourceStateChange(s.Clock, "workshop_bay", ws.Spec.ID, "bay_released", float64(ws.BusyBays), float64(ws.Spec.Bays))
}

// noteQueue integrates the retrofit-admission queue's time-weighted total
// length up to the current clock, then resyncs to its current size. Callers
// invoke it immediately after any append/slice on retrofitQueues.
func (s *Simulation) noteQueue() {
	s.queueBusyTime += float64(s.queueLastLen) * (s.Clock - s.queueLastChange)
	s.queueLastChange = s.Clock
	total := 0
	for _, q := range s.retrofitQueues {
		total += len(q)
	}
	s.queueLastLen = total
}

// AverageQueueLength returns the time-integrated average size of the
// retrofit-admission queue over [0, simEnd], projecting the final interval
// without mutating the running integrator.
func (s *Simulation) AverageQueueLength(simEnd float64) float64 {
	if simEnd <= 0 {
		return 0
	}
	busy := s.queueBusyTime + float64(s.queueLastLen)*(simEnd-s.queueLastChange)
	return busy / simEnd
}

// TotalWorkshopBays sums every workshop's bay count, the comparison point
// for the queue-length bottleneck criterion.
func (s *Simulation) TotalWorkshopBays() int {
	total := 0
	for _, ws := range s.Workshops {
		total += ws.Spec.Bays
	}
	return total
}

// NewSimulation builds a Simulation from a loaded scenario. Track, workshop
// and locomotive runtime resources are constructed from the scenario's
// declared specs; wagons are materialized lazily as their trains arrive.
func NewSimulation(sc *scenario.Scenario) (*Simulation, error) {
	s := &Simulation{
		Queue:                    NewEventHeap(),
		Tracks:                   make(map[string]*Track),
		Workshops:                make(map[string]*WorkshopResource),
		ProcessTimes:             sc.ProcessTimesDomain(),
		EventLog:                 eventlog.NewCollector(),
		Coordination:             NewCoordinationService(),
		LocoDeliveryStrategy:     sc.LocoDeliveryStrategy,
		ParkingNormalThreshold:   sc.ParkingNormalThreshold,
		ParkingCriticalThreshold: sc.ParkingCriticalThreshold,
		ParkingIdleCheckInterval: sc.ParkingIdleCheckInterval,
		Wagons:                   make(map[string]*sim.Wagon),
		Trains:                   sc.Trains,
		collectionQueues:         make(map[string][]*sim.Wagon),
		retrofitQueues:           make(map[string][]*sim.Wagon),
	}

	for _, ts := range sc.Tracks {
		s.Tracks[ts.ID] = NewTrack(sim.TrackSpec{
			ID: ts.ID, Type: ts.Type, Length: ts.Length, FillFactor: ts.FillFactor, MaxWagons: ts.MaxWagons,
		})
	}
	for _, ws := range sc.Workshops {
		s.Workshops[ws.ID] = NewWorkshopResource(sim.WorkshopSpec{ID: ws.ID, Track: ws.Track, Bays: ws.RetrofitStations})
	}

	var routes []sim.RouteSpec
	for _, r := range sc.Routes {
		routes = append(routes, sim.RouteSpec{ID: r.ID, Path: r.Path, Duration: r.Duration})
	}
	s.Routes = NewRouteService(routes)

	var locos []*sim.Locomotive
	for _, ls := range sc.Locomotives {
		locos = append(locos, sim.NewLocomotive(ls.ID, ls.HomeTrack, ls.CouplerFront, ls.CouplerBack))
	}
	s.Locomotives = NewLocomotivePool(locos)

	s.RNG = rng.NewPartitionedRNG(sc.Seed)
	s.CollectionSelector = NewTrackSelector(sc.TrackSelectionStrategy, s.RNG.ForDimension(rng.DimensionCollection))
	s.RetrofitSelector = NewTrackSelector(sc.RetrofitSelectionStrategy, s.RNG.ForDimension(rng.DimensionRetrofit))
	s.ParkingSelector = NewTrackSelector(sc.ParkingSelectionStrategy, s.RNG.ForDimension(rng.DimensionParking))

	// The parking coordinator's idle check reschedules itself unconditionally
	// (spec §4.12), so the run must always have a bounded horizon even with
	// no trains scheduled, or the loop in Run never terminates.
	s.Horizon = 24 * 60
	if len(sc.Trains) > 0 {
		lastArrival := sc.Trains[len(sc.Trains)-1].ArrivalTime
		if horizon := lastArrival + 24*60; horizon > s.Horizon {
			s.Horizon = horizon
		}
	}

	for i, tr := range sc.Trains {
		s.Schedule(&TrainArrivalEvent{BaseEvent: s.newBaseEvent(tr.ArrivalTime, EventTypeTrainArrival), TrainIndex: i})
	}
	s.Schedule(&WorkshopWakeEvent{BaseEvent: s.newBaseEvent(0, EventTypeWorkshopWake)})
	s.Schedule(&ParkingWakeEvent{BaseEvent: s.newBaseEvent(0, EventTypeParkingWake)})

	return s, nil
}

func (s *Simulation) newBaseEvent(at float64, t EventType) BaseEvent {
	s.nextEventID++
	return newBaseEvent(at, t, s.nextEventID)
}

// Schedule queues an event for execution at its timestamp.
func (s *Simulation) Schedule(e Event) {
	s.Queue.Schedule(e)
}

// Delay schedules a zero-argument continuation to run after d minutes of
// simulated time (spec §4.1: delay is one of the fixed suspension points).
// The caller-provided fire function wraps the resumption logic in a
// one-shot Event implementation.
func (s *Simulation) Delay(d float64, fire func(*Simulation)) {
	s.Schedule(&delayEvent{BaseEvent: s.newBaseEvent(s.Clock+d, EventTypeGenericDelay), fire: fire})
}

// Run drains the event heap in timestamp/event-ID order until it empties or
// the horizon is crossed, advancing the virtual clock monotonically (spec
// §4.1, §5: the clock only ever moves forward, and never during an event's
// own execution).
func (s *Simulation) Run() error {
	for s.Queue.Len() > 0 {
		e := s.Queue.PopNext()
		if s.Horizon > 0 && e.Timestamp() > s.Horizon {
			break
		}
		if e.Timestamp() < s.Clock {
			return fmt.Errorf("engine: clock moved backwards: event at %.4f, clock at %.4f", e.Timestamp(), s.Clock)
		}
		s.Clock = e.Timestamp()
		e.Execute(s)
		if s.fatalErr != nil {
			s.closeOut()
			return s.fatalErr
		}
	}
	s.closeOut()
	return nil
}

// closeOut finalizes locomotive history so utilization integration has a
// well-defined upper bound at whichever clock value the run actually ended.
func (s *Simulation) closeOut() {
	for _, l := range s.Locomotives.All() {
		l.CloseHistory(s.Clock)
	}
}

// WagonsSorted returns every known wagon ordered by ID, for deterministic
// reporting.
func (s *Simulation) WagonsSorted() []*sim.Wagon {
	out := make([]*sim.Wagon, 0, len(s.Wagons))
	for _, w := range s.Wagons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

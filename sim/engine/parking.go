package engine

import (
	"sort"

	"github.com/popupsim/popupsim/sim"
	"github.com/popupsim/popupsim/sim/scenario"
)

// accumulatorRatio reports the retrofitted-wagon accumulator's fill relative
// to the declared capacity of every retrofitted-holding track, which is what
// §4.12's normal/critical thresholds are measured against.
func (s *Simulation) accumulatorRatio() float64 {
	var capacity float64
	for _, t := range s.Tracks {
		if t.Spec.Type == sim.TrackRetrofitted {
			capacity += t.Spec.Capacity()
		}
	}
	if capacity <= 0 {
		return 0
	}
	return sim.TotalLength(s.Coordination.PendingWagons()) / capacity
}

// maybeWakeParking raises an immediate, non-idle parking wake once the
// accumulator crosses the normal threshold, so a wagon that just finished
// retrofit doesn't sit until the next idle check before parking starts
// draining the backlog (spec §4.12 threshold trigger).
func (s *Simulation) maybeWakeParking() {
	if s.accumulatorRatio() > s.ParkingNormalThreshold {
		s.Schedule(&ParkingWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeParkingWake)})
	}
}

// handleParkingWake drains the retrofitted-wagon accumulator, groups it by
// the retrofitted-holding track each wagon actually sits on, and attempts a
// batch move to a parking track per group. Anything that can't move yet
// (no parking track declared, or no room left on the chosen one) goes back
// in the accumulator for the next wake, preserving FIFO order (spec §4.12,
// §4.8 invariant P7). A batch that has claimed parking space but finds no
// locomotive free waits in the locomotive pool's queue instead.
//
// A reactive wake (IdleTriggered == false) only proceeds once the
// accumulator has crossed the normal threshold; the idle timer always
// proceeds regardless of fill, so a thin backlog still drains eventually
// (spec §4.12's three triggers: threshold, critical, idle).
func (s *Simulation) handleParkingWake(e *ParkingWakeEvent) {
	if !e.IdleTriggered && s.accumulatorRatio() <= s.ParkingNormalThreshold {
		s.scheduleParkingIdleCheck()
		return
	}

	pending := s.Coordination.DrainAccumulator()
	groups := make(map[string][]*sim.Wagon)
	var originIDs []string
	for _, w := range pending {
		if _, ok := groups[w.CurrentTrack]; !ok {
			originIDs = append(originIDs, w.CurrentTrack)
		}
		groups[w.CurrentTrack] = append(groups[w.CurrentTrack], w)
	}
	sort.Strings(originIDs)

	candidates := FilterByType(s.Tracks, sim.TrackParking, 0)
	for _, originID := range originIDs {
		wagons := groups[originID]
		origin := s.Tracks[originID]

		if len(candidates) == 0 {
			for _, w := range wagons {
				s.Coordination.AccumulateRetrofitted(w)
			}
			continue
		}

		total := sim.TotalLength(wagons)
		dest := s.ParkingSelector.Select(candidates, total)
		batch := TrimToValidPrefix(wagons, dest.Free(), dest.Spec.MaxWagons)
		leftover := wagons[len(batch):]
		for _, w := range leftover {
			s.Coordination.AccumulateRetrofitted(w)
		}
		if len(batch) == 0 {
			continue
		}

		amount, count := sim.TotalLength(batch), len(batch)
		s.acquireTrack(dest, amount, count, func() {
			s.Locomotives.Acquire(func(loco *sim.Locomotive) {
				s.Coordination.BeginParking()
				s.startParkingMove(origin, dest, batch, loco)
			})
		})
	}

	s.scheduleParkingIdleCheck()
}

func (s *Simulation) startParkingMove(origin, dest *Track, batch []*sim.Wagon, loco *sim.Locomotive) {
	rakeID := "rake-" + s.RNG.NewUUID()
	rake := sim.Rake{ID: rakeID, LocomotiveID: loco.ID, WagonIDs: wagonIDs(batch)}
	amount, count := sim.TotalLength(batch), len(batch)

	if err := rake.ValidateCoupling(loco, batch); err != nil {
		if !s.releaseTrack(dest, amount, count) {
			return
		}
		s.Locomotives.Release(loco)
		s.Coordination.EndParking()
		for _, w := range batch {
			s.Coordination.AccumulateRetrofitted(w)
		}
		return
	}
	for _, w := range batch {
		w.RakeID = rake.ID
	}

	loco.Transition(sim.LocoCoupling, s.Clock)
	couplingTime := s.ProcessTimes.CouplingTime(loco.RearCoupler)
	routeDuration, err := s.Routes.Duration(origin.Spec.ID, dest.Spec.ID)
	if err != nil {
		// No route is a scenario gap, not a recoverable condition (spec §7):
		// propagate it to Run instead of treating the hop as instantaneous.
		s.fail(err)
		return
	}

	s.EventLog.Batch(s.Clock, rake.ID, rake.WagonIDs)
	s.EventLog.LocomotiveMovement(s.Clock, loco.ID, origin.Spec.ID, dest.Spec.ID, "parking_move")
	move := &parkingMove{Loco: loco, Wagons: batch, FromTrack: origin.Spec.ID, ToTrack: dest.Spec.ID, Amount: amount, WagonCount: count}
	s.Schedule(&ParkingMoveDoneEvent{BaseEvent: s.newBaseEvent(s.Clock+couplingTime+routeDuration, EventTypeParkingMoveDone), Move: move})
	loco.Transition(sim.LocoMoving, s.Clock)
}

// handleParkingMoveDone frees the holding track, marks every wagon parked,
// and releases the locomotive per the scenario's delivery strategy: direct
// delivery skips the return-to-home leg and frees the locomotive right
// after decoupling, while return_to_parking adds the fixed parking delay
// before it re-enters the pool (spec §6, §9 Open Questions).
func (s *Simulation) handleParkingMoveDone(e *ParkingMoveDoneEvent) {
	m := e.Move
	if !s.releaseTrack(s.Tracks[m.FromTrack], m.Amount, m.WagonCount) {
		return
	}

	for _, w := range m.Wagons {
		s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonRetrofitted), string(sim.WagonParked), m.ToTrack)
		w.Status = sim.WagonParked
		w.CurrentTrack = m.ToTrack
	}

	m.Loco.Transition(sim.LocoDecoupling, s.Clock)
	decouplingTime := s.ProcessTimes.DecouplingTime(m.Loco.RearCoupler)
	extra := 0.0
	if s.LocoDeliveryStrategy == scenario.LocoReturnToParking {
		extra = s.ProcessTimes.LocoParkingDelay
	}
	s.releaseLocoAfter(decouplingTime+extra, m.Loco)
	s.Coordination.EndParking()

	// Workshop admission was gated on parkingInProgress/the accumulator
	// (spec §4.8); now that this move has cleared, recheck whether it can
	// proceed instead of waiting for an unrelated workshop-side completion.
	s.Schedule(&WorkshopWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeWorkshopWake)})
}

// scheduleParkingIdleCheck re-arms the periodic idle check that wakes the
// parking coordinator even when nothing triggers it directly, so a
// retrofitted wagon never waits past ParkingIdleCheckInterval minutes for a
// retry (spec §4.12).
func (s *Simulation) scheduleParkingIdleCheck() {
	s.Delay(s.ParkingIdleCheckInterval, func(s *Simulation) {
		s.Schedule(&ParkingWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeParkingWake), IdleTriggered: true})
	})
}

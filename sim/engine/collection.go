package engine

import (
	"github.com/popupsim/popupsim/sim"
)

// handleCollectionWake tries to form and move one batch off a collection
// track: pick a retrofit-track destination, trim the FIFO head to whatever
// both fits and couples cleanly, and claim destination space plus a
// locomotive before committing the move (spec §4.10).
func (s *Simulation) handleCollectionWake(e *CollectionWakeEvent) {
	queue := s.collectionQueues[e.Track]
	if len(queue) == 0 {
		return
	}

	candidates := FilterByType(s.Tracks, sim.TrackRetrofit, 0)
	if len(candidates) == 0 {
		return
	}
	total := sim.TotalLength(queue)
	dest := s.RetrofitSelector.Select(candidates, total)
	if dest == nil {
		return
	}

	batch := TrimToValidPrefix(queue, dest.Free(), dest.Spec.MaxWagons)
	if len(batch) == 0 {
		return
	}

	origin := s.Tracks[e.Track]
	amount, count := sim.TotalLength(batch), len(batch)
	s.acquireTrack(dest, amount, count, func() {
		s.Locomotives.Acquire(func(loco *sim.Locomotive) {
			s.startCollectionMove(origin, dest, batch, loco)
		})
	})
}

func (s *Simulation) startCollectionMove(origin, dest *Track, batch []*sim.Wagon, loco *sim.Locomotive) {
	rakeID := "rake-" + s.RNG.NewUUID()
	ids := wagonIDs(batch)
	rake := sim.Rake{ID: rakeID, LocomotiveID: loco.ID, WagonIDs: ids}
	amount, count := sim.TotalLength(batch), len(batch)

	if err := rake.ValidateCoupling(loco, batch); err != nil {
		// Only the locomotive-to-first-wagon join can fail here; the wagon
		// chain itself was already trimmed to a compatible prefix. Release
		// the claims and let the next wake retry with a different locomotive.
		if !s.releaseTrack(dest, amount, count) {
			return
		}
		s.Locomotives.Release(loco)
		return
	}

	s.collectionQueues[origin.Spec.ID] = s.collectionQueues[origin.Spec.ID][count:]
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

	s.EventLog.Batch(s.Clock, rake.ID, ids)
	s.EventLog.LocomotiveMovement(s.Clock, loco.ID, origin.Spec.ID, dest.Spec.ID, "collection_move")
	move := &collectionMove{Loco: loco, Wagons: batch, FromTrack: origin.Spec.ID, ToTrack: dest.Spec.ID, Amount: amount, WagonCount: count}
	s.Schedule(&CollectionMoveDoneEvent{BaseEvent: s.newBaseEvent(s.Clock+couplingTime+routeDuration, EventTypeCollectionMoveDone), Move: move})
	loco.Transition(sim.LocoMoving, s.Clock)
}

// handleCollectionMoveDone frees the origin track, places the batch on the
// retrofit track's waiting queue, and releases the locomotive after
// decoupling.
func (s *Simulation) handleCollectionMoveDone(e *CollectionMoveDoneEvent) {
	m := e.Move
	origin := s.Tracks[m.FromTrack]
	if !s.releaseTrack(origin, m.Amount, m.WagonCount) {
		return
	}

	for _, w := range m.Wagons {
		s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonCollection), string(sim.WagonWaitingRetrofit), m.ToTrack)
		w.Status = sim.WagonWaitingRetrofit
		w.CurrentTrack = m.ToTrack
	}
	s.retrofitQueues[m.ToTrack] = append(s.retrofitQueues[m.ToTrack], m.Wagons...)
	s.noteQueue()

	m.Loco.Transition(sim.LocoDecoupling, s.Clock)
	s.releaseLocoAfter(s.ProcessTimes.DecouplingTime(m.Loco.RearCoupler), m.Loco)

	s.Schedule(&CollectionWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeCollectionWake), Track: m.FromTrack})
	s.Schedule(&WorkshopWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeWorkshopWake)})
}

func wagonIDs(wagons []*sim.Wagon) []string {
	ids := make([]string, len(wagons))
	for i, w := range wagons {
		ids[i] = w.ID
	}
	return ids
}

// releaseLocoAfter schedules a locomotive's return to the pool after d
// minutes, transitioning it to parking first.
func (s *Simulation) releaseLocoAfter(d float64, loco *sim.Locomotive) {
	s.Delay(d, func(s *Simulation) {
		loco.Transition(sim.LocoParking, s.Clock)
		s.Locomotives.Release(loco)
	})
}

package engine

import (
	"sort"

	"github.com/popupsim/popupsim/sim"
)

// handleWorkshopWake admits one batch into one workshop per wake, cycling
// priority across workshops via the coordination service's turn index so a
// single busy workshop never starves the others (spec §4.8, §4.11).
func (s *Simulation) handleWorkshopWake(e *WorkshopWakeEvent) {
	// §4.8 priority protocol: workshop admission may proceed only while no
	// parking move is in flight and the retrofitted accumulator is empty, so
	// a sustained stream of new batches can never starve a wagon that
	// already finished retrofit and is waiting to be parked (invariant P7).
	if s.Coordination.ParkingInProgress() || s.Coordination.PendingRetrofitted() > 0 {
		return
	}

	ids := s.workshopIDsSorted()
	if len(ids) == 0 {
		return
	}

	track, queue := s.firstNonEmptyRetrofitQueue()
	if queue == nil {
		return
	}

	turn := s.Coordination.NextWorkshopTurn(len(ids))
	for offset := 0; offset < len(ids); offset++ {
		ws := s.Workshops[ids[(turn+offset)%len(ids)]]
		wsTrack := s.Tracks[ws.Spec.Track]

		batch := TrimToValidPrefix(queue, wsTrack.Free(), wsTrack.Spec.MaxWagons)
		if len(batch) == 0 {
			continue
		}

		amount, count := sim.TotalLength(batch), len(batch)
		origin := s.Tracks[track]
		s.acquireTrack(wsTrack, amount, count, func() {
			s.Locomotives.Acquire(func(loco *sim.Locomotive) {
				s.startWorkshopMoveIn(origin, wsTrack, ws.Spec.ID, batch, loco)
			})
		})
		return
	}
}

func (s *Simulation) workshopIDsSorted() []string {
	ids := make([]string, 0, len(s.Workshops))
	for id := range s.Workshops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// firstNonEmptyRetrofitQueue returns the lowest-ID retrofit track with
// waiting wagons, for deterministic scan order.
func (s *Simulation) firstNonEmptyRetrofitQueue() (string, []*sim.Wagon) {
	ids := make([]string, 0, len(s.retrofitQueues))
	for id := range s.retrofitQueues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if len(s.retrofitQueues[id]) > 0 {
			return id, s.retrofitQueues[id]
		}
	}
	return "", nil
}

func (s *Simulation) startWorkshopMoveIn(origin, wsTrack *Track, workshopID string, batch []*sim.Wagon, loco *sim.Locomotive) {
	rakeID := "rake-" + s.RNG.NewUUID()
	rake := sim.Rake{ID: rakeID, LocomotiveID: loco.ID, WagonIDs: wagonIDs(batch)}
	amount, count := sim.TotalLength(batch), len(batch)

	if err := rake.ValidateCoupling(loco, batch); err != nil {
		if !s.releaseTrack(wsTrack, amount, count) {
			return
		}
		s.Locomotives.Release(loco)
		return
	}

	s.retrofitQueues[origin.Spec.ID] = s.retrofitQueues[origin.Spec.ID][count:]
	s.noteQueue()
	for _, w := range batch {
		w.RakeID = rake.ID
	}

	loco.Transition(sim.LocoCoupling, s.Clock)
	couplingTime := s.ProcessTimes.CouplingTime(loco.RearCoupler)
	routeDuration, err := s.Routes.Duration(origin.Spec.ID, wsTrack.Spec.ID)
	if err != nil {
		// No route is a scenario gap, not a recoverable condition (spec §7):
		// propagate it to Run instead of treating the hop as instantaneous.
		s.fail(err)
		return
	}

	s.EventLog.Batch(s.Clock, rake.ID, rake.WagonIDs)
	s.EventLog.LocomotiveMovement(s.Clock, loco.ID, origin.Spec.ID, wsTrack.Spec.ID, "workshop_move_in")
	move := &workshopMoveIn{Loco: loco, Wagons: batch, FromTrack: origin.Spec.ID, Workshop: workshopID, Amount: amount, WagonCount: count}
	s.Schedule(&WorkshopMoveInDoneEvent{BaseEvent: s.newBaseEvent(s.Clock+couplingTime+routeDuration, EventTypeWorkshopMoveInDone), Move: move})
	loco.Transition(sim.LocoMoving, s.Clock)
}

// handleWorkshopMoveInDone frees the retrofit track, releases the
// locomotive, and admits each wagon into a bay as one becomes free.
func (s *Simulation) handleWorkshopMoveInDone(e *WorkshopMoveInDoneEvent) {
	m := e.Move
	origin := s.Tracks[m.FromTrack]
	if !s.releaseTrack(origin, m.Amount, m.WagonCount) {
		return
	}

	m.Loco.Transition(sim.LocoDecoupling, s.Clock)
	s.releaseLocoAfter(s.ProcessTimes.DecouplingTime(m.Loco.RearCoupler), m.Loco)

	ws := s.Workshops[m.Workshop]
	for _, w := range m.Wagons {
		w := w
		w.CurrentTrack = ws.Spec.Track
		s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonWaitingRetrofit), string(sim.WagonRetrofitting), ws.Spec.Track)
		s.acquireBay(ws, func() {
			w.Status = sim.WagonRetrofitting
			w.RetrofitStart = s.Clock
			w.RetrofitStartSet = true
			s.Schedule(&WorkshopRetrofitDoneEvent{
				BaseEvent: s.newBaseEvent(s.Clock+s.ProcessTimes.WagonRetrofitTime, EventTypeWorkshopRetrofitDone),
				Workshop:  m.Workshop,
				WagonID:   w.ID,
			})
		})
	}

	s.Schedule(&WorkshopWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeWorkshopWake)})
}

// handleWorkshopRetrofitDone marks the wagon retrofitted, frees its bay, and
// starts the move out to a retrofitted-holding track (spec §4.11 step 6).
func (s *Simulation) handleWorkshopRetrofitDone(e *WorkshopRetrofitDoneEvent) {
	ws := s.Workshops[e.Workshop]
	w := s.Wagons[e.WagonID]
	w.MarkRetrofitted(s.Clock)
	s.releaseBay(ws)
	s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonRetrofitting), string(sim.WagonRetrofitted), ws.Spec.Track)

	candidates := FilterByType(s.Tracks, sim.TrackRetrofitted, w.Length)
	dest := s.RetrofitSelector.Select(candidates, w.Length)
	if dest == nil {
		// No retrofitted-holding track declared, or none with room for this
		// wagon; wagon waits where it sits
		// until a parking wake retries with fresh track state.
		s.Coordination.AccumulateRetrofitted(w)
		s.maybeWakeParking()
		return
	}

	origin := s.Tracks[ws.Spec.Track]
	s.acquireTrack(dest, w.Length, 1, func() {
		s.Locomotives.Acquire(func(loco *sim.Locomotive) {
			s.startWorkshopMoveOut(origin, dest, w, loco)
		})
	})

	s.Schedule(&WorkshopWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeWorkshopWake)})
}

func (s *Simulation) startWorkshopMoveOut(origin, dest *Track, w *sim.Wagon, loco *sim.Locomotive) {
	loco.Transition(sim.LocoCoupling, s.Clock)
	couplingTime := s.ProcessTimes.CouplingTime(loco.RearCoupler)
	routeDuration, err := s.Routes.Duration(origin.Spec.ID, dest.Spec.ID)
	if err != nil {
		// No route is a scenario gap, not a recoverable condition (spec §7):
		// propagate it to Run instead of treating the hop as instantaneous.
		s.fail(err)
		return
	}

	s.EventLog.LocomotiveMovement(s.Clock, loco.ID, origin.Spec.ID, dest.Spec.ID, "workshop_move_out")
	move := &workshopMoveOut{Loco: loco, Wagon: w, FromTrack: origin.Spec.ID, ToTrack: dest.Spec.ID}
	s.Schedule(&WorkshopMoveOutDoneEvent{BaseEvent: s.newBaseEvent(s.Clock+couplingTime+routeDuration, EventTypeWorkshopMoveOutDone), Move: move})
	loco.Transition(sim.LocoMoving, s.Clock)
}

// handleWorkshopMoveOutDone places the wagon on the retrofitted-holding
// track and queues it for the parking coordinator.
func (s *Simulation) handleWorkshopMoveOutDone(e *WorkshopMoveOutDoneEvent) {
	m := e.Move
	if !s.releaseTrack(s.Tracks[m.FromTrack], m.Wagon.Length, 1) {
		return
	}

	m.Wagon.CurrentTrack = m.ToTrack
	s.Coordination.AccumulateRetrofitted(m.Wagon)

	m.Loco.Transition(sim.LocoDecoupling, s.Clock)
	s.releaseLocoAfter(s.ProcessTimes.DecouplingTime(m.Loco.RearCoupler), m.Loco)

	s.maybeWakeParking()
}

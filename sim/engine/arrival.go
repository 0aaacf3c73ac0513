package engine

import "github.com/popupsim/popupsim/sim"

// handleTrainArrival classifies every wagon on the arriving train, rejecting
// loaded wagons and wagons that don't need retrofit, then admits each
// accepted wagon to a collection track individually (spec §4.9 step 3: "for
// each accepted wagon, pick a collection track by the configured strategy").
// Selecting per wagon, rather than once for the whole train, is what makes
// round-robin alternate across tracks within a single train and lets a
// wagon that doesn't currently fit queue on its own without blocking wagons
// behind it that do fit.
func (s *Simulation) handleTrainArrival(e *TrainArrivalEvent) {
	train := s.Trains[e.TrainIndex]

	for _, ws := range train.Wagons {
		w := sim.NewWagon(ws.ID, ws.Length, ws.IsLoaded, ws.NeedsRetrofit, ws.CouplerA, ws.CouplerB)
		w.ArrivalTime = s.Clock
		s.Wagons[w.ID] = w

		switch {
		case ws.IsLoaded:
			w.Reject(sim.RejectionLoaded)
			s.RejectedWagons++
			s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonUnknown), string(sim.WagonRejected), "")
		case !ws.NeedsRetrofit:
			w.Reject(sim.RejectionNoRetrofitNeeded)
			s.RejectedWagons++
			s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonUnknown), string(sim.WagonRejected), "")
		default:
			s.admitToCollection(w)
		}
	}
}

// admitToCollection picks one collection track for w via the configured
// selection strategy and claims space for it alone, queuing it on that
// track's waiter list if it doesn't fit yet.
func (s *Simulation) admitToCollection(w *sim.Wagon) {
	candidates := FilterByType(s.Tracks, sim.TrackCollection, w.Length)
	if len(candidates) == 0 {
		candidates = FilterByType(s.Tracks, sim.TrackCollection, 0)
	}
	track := s.CollectionSelector.Select(candidates, w.Length)
	if track == nil {
		return
	}

	s.acquireTrack(track, w.Length, 1, func() {
		w.Status = sim.WagonCollection
		w.CurrentTrack = track.Spec.ID
		s.collectionQueues[track.Spec.ID] = append(s.collectionQueues[track.Spec.ID], w)
		s.EventLog.WagonJourney(s.Clock, w.ID, string(sim.WagonUnknown), string(sim.WagonCollection), track.Spec.ID)
		s.Schedule(&CollectionWakeEvent{BaseEvent: s.newBaseEvent(s.Clock, EventTypeCollectionWake), Track: track.Spec.ID})
	})
}

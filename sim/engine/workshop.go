package engine

import "github.com/popupsim/popupsim/sim"

// bayWaiter is one blocked request for a free retrofit bay.
type bayWaiter struct {
	resume func()
}

// WorkshopResource is the runtime bay-occupancy resource for one pop-up
// workshop: a fixed station count and a FIFO waiting queue (spec §4.4).
type WorkshopResource struct {
	Spec       sim.WorkshopSpec
	BusyBays   int
	waiters    []*bayWaiter
	busyTime   float64 // minutes integrated across all bays, for utilization
	lastChange float64 // clock value of the last BusyBays change
}

// NewWorkshopResource wraps a scenario workshop spec.
func NewWorkshopResource(spec sim.WorkshopSpec) *WorkshopResource {
	return &WorkshopResource{Spec: spec}
}

// AcquireBay grants a free bay to onReady immediately, or queues the
// request otherwise.
func (w *WorkshopResource) AcquireBay(at float64, onReady func()) {
	if w.BusyBays < w.Spec.Bays {
		w.setBusy(at, w.BusyBays+1)
		onReady()
		return
	}
	w.waiters = append(w.waiters, &bayWaiter{resume: onReady})
}

// ReleaseBay frees one bay and, if a request is waiting, immediately hands
// it the freed bay (spec §4.4 FIFO).
func (w *WorkshopResource) ReleaseBay(at float64) {
	w.setBusy(at, w.BusyBays-1)
	if len(w.waiters) > 0 {
		head := w.waiters[0]
		w.waiters = w.waiters[1:]
		w.setBusy(at, w.BusyBays+1)
		head.resume()
	}
}

func (w *WorkshopResource) setBusy(at float64, n int) {
	w.busyTime += float64(w.BusyBays) * (at - w.lastChange)
	w.lastChange = at
	w.BusyBays = n
}

// Utilization returns the fraction of bay-minutes occupied over [0, simEnd].
func (w *WorkshopResource) Utilization(simEnd float64) float64 {
	if simEnd <= 0 || w.Spec.Bays == 0 {
		return 0
	}
	w.setBusy(simEnd, w.BusyBays) // flush the final interval
	return w.busyTime / (float64(w.Spec.Bays) * simEnd)
}

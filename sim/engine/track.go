package engine

import "github.com/popupsim/popupsim/sim"

// trackTolerance absorbs floating-point drift in repeated Add/Remove calls
// on track occupancy (spec §4.2).
const trackTolerance = 0.1

// trackHighFillThreshold is the occupancy fraction the bottleneck aggregator
// watches for (spec §4.13: "track whose fill exceeds 0.85").
const trackHighFillThreshold = 0.85

// trackWaiter is one blocked request for space on a track, resumed in place
// when capacity frees (spec §9: explicit continuation instead of a
// generator/coroutine).
type trackWaiter struct {
	amount float64
	wagons int
	resume func()
}

// Track is the runtime capacity resource wrapping a scenario TrackSpec: a
// bounded length plus an optional wagon-count ceiling, with a FIFO queue of
// blocked requests (spec §4.2 Track Capacity Manager).
type Track struct {
	Spec       sim.TrackSpec
	Occupied   float64
	WagonCount int
	waiters    []*trackWaiter

	highFillTime   float64 // minutes integrated while occupancy exceeded trackHighFillThreshold
	lastFillChange float64
}

// NewTrack wraps a scenario track spec as a runtime resource.
func NewTrack(spec sim.TrackSpec) *Track {
	return &Track{Spec: spec}
}

// Free returns the track's currently unoccupied length.
func (t *Track) Free() float64 {
	return t.Spec.Capacity() - t.Occupied
}

// fits reports whether amount can be granted given free length and, if set,
// the wagon-count ceiling.
func (t *Track) fits(amount float64, wagons int) bool {
	if amount > t.Free()+trackTolerance {
		return false
	}
	if t.Spec.MaxWagons > 0 && t.WagonCount+wagons > t.Spec.MaxWagons {
		return false
	}
	return true
}

// TryAcquire grants amount/wagons immediately if it fits, without joining
// the waiter queue. Acquire uses it for its immediate-grant path.
func (t *Track) TryAcquire(amount float64, wagons int) bool {
	if !t.fits(amount, wagons) {
		return false
	}
	t.Occupied += amount
	t.WagonCount += wagons
	return true
}

// Acquire requests amount/wagons of capacity, calling onReady synchronously
// if it already fits, or queuing the request at the back of the FIFO
// otherwise. onReady runs with the capacity already reserved.
func (t *Track) Acquire(amount float64, wagons int, onReady func()) {
	if t.TryAcquire(amount, wagons) {
		onReady()
		return
	}
	t.waiters = append(t.waiters, &trackWaiter{amount: amount, wagons: wagons, resume: onReady})
}

// Release frees amount/wagons of capacity and then services the FIFO: only
// the head waiter is ever considered per call, granted repeatedly while it
// fits (freed space keeps shrinking as each grant consumes it), and the loop
// stops as soon as the head does not fit — a later, smaller request is never
// served ahead of a blocked head request (spec §4.2 fairness rule).
//
// An excess of up to trackTolerance is clamped; a larger excess means a caller
// is releasing more than this track ever had reserved, which spec §4.2
// treats as a fatal capacity error rather than something to silently absorb.
func (t *Track) Release(amount float64, wagons int) error {
	if amount > t.Occupied+trackTolerance {
		return &CapacityError{Track: t.Spec.ID, Requested: amount, Available: t.Occupied}
	}
	t.Occupied -= amount
	if t.Occupied < 0 {
		t.Occupied = 0
	}
	t.WagonCount -= wagons
	if t.WagonCount < 0 {
		t.WagonCount = 0
	}
	for len(t.waiters) > 0 {
		head := t.waiters[0]
		if !t.fits(head.amount, head.wagons) {
			break
		}
		t.Occupied += head.amount
		t.WagonCount += head.wagons
		t.waiters = t.waiters[1:]
		head.resume()
	}
	return nil
}

// Occupancy returns the fraction of usable capacity currently occupied.
func (t *Track) Occupancy() float64 {
	cap := t.Spec.Capacity()
	if cap <= 0 {
		return 0
	}
	return t.Occupied / cap
}

// noteOccupancy integrates high-fill time across [lastFillChange, at] using
// the occupancy fraction that held over that interval, then advances the
// baseline to at. Called by the engine wrapper around every Acquire/Release
// so the track itself stays clock-agnostic (spec §4.13 bottleneck
// criterion: track fill above trackHighFillThreshold for too large a share
// of the run).
func (t *Track) noteOccupancy(at float64) {
	if t.Occupancy() > trackHighFillThreshold {
		t.highFillTime += at - t.lastFillChange
	}
	t.lastFillChange = at
}

// HighFillFraction returns the fraction of [0, simEnd] during which
// occupancy exceeded trackHighFillThreshold.
func (t *Track) HighFillFraction(simEnd float64) float64 {
	if simEnd <= 0 {
		return 0
	}
	t.noteOccupancy(simEnd)
	return t.highFillTime / simEnd
}

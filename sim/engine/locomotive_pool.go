package engine

import "github.com/popupsim/popupsim/sim"

// locoWaiter is one blocked request for a free locomotive.
type locoWaiter struct {
	resume func(*sim.Locomotive)
}

// LocomotivePool is the runtime resource wrapping the scenario's
// locomotives: a FIFO allocation queue and the parked/allocated set (spec
// §4.3).
type LocomotivePool struct {
	all       []*sim.Locomotive
	available []*sim.Locomotive
	waiters   []*locoWaiter
}

// NewLocomotivePool seeds the pool with every scenario locomotive, initially
// parked and available.
func NewLocomotivePool(locos []*sim.Locomotive) *LocomotivePool {
	p := &LocomotivePool{all: locos}
	p.available = append(p.available, locos...)
	return p
}

// All returns every locomotive known to the pool, in scenario order.
func (p *LocomotivePool) All() []*sim.Locomotive {
	return p.all
}

// Acquire hands the oldest-available locomotive (FIFO) to onReady
// immediately, or queues the request if none is free.
func (p *LocomotivePool) Acquire(onReady func(*sim.Locomotive)) {
	if len(p.available) > 0 {
		loco := p.available[0]
		p.available = p.available[1:]
		onReady(loco)
		return
	}
	p.waiters = append(p.waiters, &locoWaiter{resume: onReady})
}

// Release returns a locomotive to the pool. If a request is waiting, it is
// handed the locomotive directly without re-entering the available list
// (spec §4.3 FIFO allocation).
func (p *LocomotivePool) Release(loco *sim.Locomotive) {
	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		w.resume(loco)
		return
	}
	p.available = append(p.available, loco)
}

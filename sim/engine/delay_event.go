package engine

// delayEvent is the generic continuation scheduled by Simulation.Delay: a
// closure to run once d minutes have elapsed, for internal timers (idle
// checks, post-release locomotive delay) that don't need their own tagged
// event type in the log (spec §9 explicit-continuation suspension model).
type delayEvent struct {
	BaseEvent
	fire func(*Simulation)
}

func (e *delayEvent) Execute(s *Simulation) { e.fire(s) }

// Defines the Workshop entity: identity, location track and fixed bay count
// (spec §3). The live bay-occupancy resource and FIFO waiting queue are
// runtime state owned by sim/engine.WorkshopResource; this is the scenario
// shape plus validation.

package sim

import "fmt"

// WorkshopSpec is the scenario-declared shape of a pop-up retrofit workshop.
type WorkshopSpec struct {
	ID    string
	Track string // track ID the workshop is located on
	Bays  int    // number of parallel retrofit stations, > 0
}

// Validate checks the structural invariants from spec §3/§7.
func (w WorkshopSpec) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("workshop: id must not be empty")
	}
	if w.Track == "" {
		return fmt.Errorf("workshop %s: track must not be empty", w.ID)
	}
	if w.Bays <= 0 {
		return fmt.Errorf("workshop %s: retrofit_stations must be > 0, got %d", w.ID, w.Bays)
	}
	return nil
}

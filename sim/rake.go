// Defines the Rake value object: an ordered run of wagons under one
// locomotive, valid only transiently during a movement between two tracks
// (spec §3). Rake formation and coupling validation proper live in
// sim/engine; this is the data shape plus the pure coupling check.

package sim

import "fmt"

// Rake is an ordered sequence of wagon IDs moving behind one locomotive.
type Rake struct {
	ID         string
	LocomotiveID string
	WagonIDs   []string
}

// ValidateCoupling checks rake-wide coupler compatibility (spec §4.6):
// the locomotive's rake-facing coupler against the first wagon's
// locomotive-facing coupler, then each adjacent wagon pair. wagons must be
// given in the same order as r.WagonIDs. Returns nil when every join is
// compatible, otherwise an error naming the first incompatible join (the
// locomotive-to-first-wagon join is checked first). FirstIncompatibleIndex
// gives the position of a wagon-to-wagon break.
func (r Rake) ValidateCoupling(loco *Locomotive, wagons []*Wagon) error {
	if len(wagons) != len(r.WagonIDs) {
		return fmt.Errorf("rake %s: wagon slice length %d does not match rake length %d", r.ID, len(wagons), len(r.WagonIDs))
	}
	if len(wagons) == 0 {
		return nil
	}
	if !Compatible(loco.RearCoupler, wagons[0].FrontCoupler) {
		return fmt.Errorf("rake %s: locomotive %s rear coupler %s incompatible with wagon %s front coupler %s",
			r.ID, loco.ID, loco.RearCoupler, wagons[0].ID, wagons[0].FrontCoupler)
	}
	for i := 0; i+1 < len(wagons); i++ {
		if !Compatible(wagons[i].BackCoupler, wagons[i+1].FrontCoupler) {
			return fmt.Errorf("rake %s: wagon %s back coupler %s incompatible with wagon %s front coupler %s",
				r.ID, wagons[i].ID, wagons[i].BackCoupler, wagons[i+1].ID, wagons[i+1].FrontCoupler)
		}
	}
	return nil
}

// FirstIncompatibleIndex returns the position of the first wagon (by index
// into wagons) whose back coupler is incompatible with the next wagon's
// front coupler, or -1 if the whole chain (excluding the locomotive check)
// is compatible. Used by the workshop coordinator to split a batch at the
// first incompatibility (spec §4.11).
func FirstIncompatibleIndex(wagons []*Wagon) int {
	for i := 0; i+1 < len(wagons); i++ {
		if !Compatible(wagons[i].BackCoupler, wagons[i+1].FrontCoupler) {
			return i
		}
	}
	return -1
}

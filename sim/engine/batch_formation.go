package engine

import "github.com/popupsim/popupsim/sim"

// TrimToValidPrefix returns the longest prefix of wagons (in the given
// order) that both fits within capacity/maxWagons and has no coupling
// incompatibility, truncating at whichever limit comes first (spec §4.7
// batch formation, §4.11 mid-batch splitting: "a batch must be convertible
// into a valid rake; if capacity or coupling rules out the tail, the batch
// is formed from the valid prefix and the remainder waits for the next
// cycle"). maxWagons <= 0 means no count ceiling.
func TrimToValidPrefix(wagons []*sim.Wagon, capacity float64, maxWagons int) []*sim.Wagon {
	limit := len(wagons)
	if first := sim.FirstIncompatibleIndex(wagons); first >= 0 {
		limit = first + 1
	}

	var length float64
	n := 0
	for n < limit {
		next := length + wagons[n].Length
		if next > capacity {
			break
		}
		if maxWagons > 0 && n+1 > maxWagons {
			break
		}
		length = next
		n++
	}
	return wagons[:n]
}

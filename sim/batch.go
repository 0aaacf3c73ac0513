// Defines the Batch value object: a set of wagons selected for one transport
// hop plus a destination (spec §3). Formation rules live in
// sim/engine/batch_formation.go; this is the data shape.

package sim

// Batch is a candidate set of wagons selected for one transport hop.
// A batch must be convertible into a valid Rake at formation time
// (spec §3); formed batches are discarded, never partially executed, if
// that check fails.
type Batch struct {
	ID            string
	WagonIDs      []string
	FromTrack     string
	ToTrack       string
	DestWorkshop  string // set only for retrofit -> workshop batches
}

// TotalLength sums the lengths of the given wagons, in the batch's order.
func TotalLength(wagons []*Wagon) float64 {
	var total float64
	for _, w := range wagons {
		total += w.Length
	}
	return total
}

// Package eventlog is the append-only event collector named in spec §4.13
// and §6: every wagon-journey, locomotive-movement, resource-state-change
// and batch-formation record the engine produces during a run, plus CSV and
// JSON writers with a stable column order per record kind.
package eventlog

import "sort"

// Kind discriminates the record variants in the log (spec §6 event log
// schema).
type Kind string

const (
	KindWagonJourney    Kind = "wagon_journey"
	KindLocoMovement    Kind = "locomotive_movement"
	KindResourceChange  Kind = "resource_state_change"
	KindBatch           Kind = "batch"
)

// Record is one entry in the event log. Only the fields relevant to Kind are
// populated; the rest are zero-valued. This mirrors the original
// implementation's single flat event table (time_series.py) rather than one
// Go struct per kind, since all four kinds share the same sink and the same
// CSV/JSON writer.
type Record struct {
	Kind      Kind
	Timestamp float64

	// wagon_journey
	WagonID    string
	FromStatus string
	ToStatus   string
	Track      string

	// locomotive_movement
	LocomotiveID string
	FromTrack    string
	ToTrack      string
	Activity     string

	// resource_state_change
	Resource    string
	ResourceKey string
	Detail      string
	Occupied    float64
	Capacity    float64

	// batch
	BatchID  string
	WagonIDs []string
}

// Collector accumulates records in emission order. It is not safe for
// concurrent use; the single-threaded scheduler is the only writer (spec §5).
type Collector struct {
	records []Record
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// WagonJourney records a wagon's status transition.
func (c *Collector) WagonJourney(at float64, wagonID string, from, to string, track string) {
	c.records = append(c.records, Record{
		Kind: KindWagonJourney, Timestamp: at,
		WagonID: wagonID, FromStatus: from, ToStatus: to, Track: track,
	})
}

// LocomotiveMovement records a locomotive changing track or activity.
func (c *Collector) LocomotiveMovement(at float64, locoID, fromTrack, toTrack, activity string) {
	c.records = append(c.records, Record{
		Kind: KindLocoMovement, Timestamp: at,
		LocomotiveID: locoID, FromTrack: fromTrack, ToTrack: toTrack, Activity: activity,
	})
}

// ResourceStateChange records an occupancy change on a capacity-bound
// resource (track fill, workshop bays, locomotive pool). detail names the
// specific transition (e.g. "capacity_reserved", "capacity_reserved_blocked",
// "bay_occupied", "bay_released") so a consumer of the log can reconstruct
// the utilization curves spec §4.13 defines without re-deriving them from
// wagon/locomotive records.
func (c *Collector) ResourceStateChange(at float64, resource, key, detail string, occupied, capacity float64) {
	c.records = append(c.records, Record{
		Kind: KindResourceChange, Timestamp: at,
		Resource: resource, ResourceKey: key, Detail: detail, Occupied: occupied, Capacity: capacity,
	})
}

// Batch records a batch's formation with its member wagons.
func (c *Collector) Batch(at float64, batchID string, wagonIDs []string) {
	ids := make([]string, len(wagonIDs))
	copy(ids, wagonIDs)
	c.records = append(c.records, Record{
		Kind: KindBatch, Timestamp: at,
		BatchID: batchID, WagonIDs: ids,
	})
}

// Records returns the accumulated records in emission order. The returned
// slice must not be mutated by the caller.
func (c *Collector) Records() []Record {
	return c.records
}

// SortStable reorders records by timestamp, preserving emission order among
// equal timestamps (spec §6: "event log order is timestamp, then emission
// order"). The collector already appends in emission order, so this is a
// defensive no-op unless a caller merged logs from multiple runs.
func (c *Collector) SortStable() {
	sort.SliceStable(c.records, func(i, j int) bool {
		return c.records[i].Timestamp < c.records[j].Timestamp
	})
}

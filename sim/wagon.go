// Defines the Wagon entity: immutable identity and length, mutable status,
// current track and rake membership, and the timestamps that flow-time and
// waiting-time metrics are derived from (spec §3).

package sim

// WagonStatus is one step in the wagon lifecycle DAG, terminating at Parked
// or Rejected.
type WagonStatus string

const (
	WagonUnknown        WagonStatus = "unknown"
	WagonCollection     WagonStatus = "collection"
	WagonWaitingRetrofit WagonStatus = "waiting-retrofit"
	WagonRetrofitting   WagonStatus = "retrofitting"
	WagonRetrofitted    WagonStatus = "retrofitted"
	WagonParked         WagonStatus = "parked"
	WagonRejected       WagonStatus = "rejected"
)

// RejectionReason names why an arriving wagon was not accepted into
// collection (spec §4.9).
type RejectionReason string

const (
	RejectionLoaded            RejectionReason = "loaded"
	RejectionNoRetrofitNeeded  RejectionReason = "no_retrofit_needed"
)

// Wagon is a single freight-rail wagon moving through the retrofit workflow.
// Length and the two end couplers are set at creation; FrontCoupler/
// BackCoupler flip to DAC on both ends once retrofitting completes.
type Wagon struct {
	ID     string
	Length float64 // metres, invariant: > 0

	IsLoaded      bool
	NeedsRetrofit bool

	FrontCoupler CouplerType // "end A"
	BackCoupler  CouplerType // "end B"

	Status       WagonStatus
	CurrentTrack string // track ID, empty when not on any track
	RakeID       string // non-empty only while part of a transient rake

	RejectionReason RejectionReason

	ArrivalTime      float64
	RetrofitStart    float64
	RetrofitStartSet bool
	RetrofitEnd      float64
	RetrofitEndSet   bool
}

// NewWagon constructs a wagon in its initial unknown status, not yet placed
// on any track.
func NewWagon(id string, length float64, isLoaded, needsRetrofit bool, front, back CouplerType) *Wagon {
	return &Wagon{
		ID:            id,
		Length:        length,
		IsLoaded:      isLoaded,
		NeedsRetrofit: needsRetrofit,
		FrontCoupler:  front,
		BackCoupler:   back,
		Status:        WagonUnknown,
	}
}

// Reject marks the wagon rejected with the given reason (spec §4.9); rejected
// wagons are never placed on a track.
func (w *Wagon) Reject(reason RejectionReason) {
	w.Status = WagonRejected
	w.RejectionReason = reason
}

// MarkRetrofitted flips both end couplers to DAC and records the retrofit end
// timestamp (spec §4.11 step 6).
func (w *Wagon) MarkRetrofitted(endTime float64) {
	w.FrontCoupler = CouplerDAC
	w.BackCoupler = CouplerDAC
	w.Status = WagonRetrofitted
	w.RetrofitEnd = endTime
	w.RetrofitEndSet = true
}

// FlowTime returns retrofit_end - arrival, and whether both timestamps are
// set (spec §4.13, §8 boundary: undefined if the horizon was hit mid-retrofit).
func (w *Wagon) FlowTime() (float64, bool) {
	if !w.RetrofitEndSet {
		return 0, false
	}
	return w.RetrofitEnd - w.ArrivalTime, true
}

// WaitingTime returns retrofit_start - arrival, and whether the start
// timestamp is set.
func (w *Wagon) WaitingTime() (float64, bool) {
	if !w.RetrofitStartSet {
		return 0, false
	}
	return w.RetrofitStart - w.ArrivalTime, true
}

// Package metrics aggregates the KPIs named in spec §4.13 from a finished
// run's wagons, locomotives and the occupancy figures the engine's resources
// accumulated (it does not read the event log): throughput, per-resource
// utilization, flow/waiting time distributions, and a ranked list of
// bottlenecks. It replaces the inference-cluster fitness/fairness scoring
// this package is grounded on with the rail-yard equivalents, keeping the
// same collect-then-derive shape.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/popupsim/popupsim/sim"
)

// Distribution summarizes a set of durations (spec §4.13: "flow time and
// waiting time are reported as distributions, not just means"). Percentiles
// use gonum's empirical quantile estimator over the sorted sample.
type Distribution struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P90   float64
	P95   float64
	P99   float64
}

// NewDistribution computes a Distribution over values. Returns the zero
// Distribution for an empty input.
func NewDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Mean:  sum / float64(n),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
}

// Severity ranks a detected bottleneck, ordered low to high (spec §9
// Design Notes: an ordered Severity type replaces an ad hoc string/int mix).
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "none"
	}
}

// Bottleneck names one resource whose utilization or queuing crossed a
// severity threshold during the run (spec §4.13).
type Bottleneck struct {
	Resource string
	Severity Severity
	Detail   string
}

// KPIs is the full set of metrics derived from one run (spec §4.13, §6 KPI
// CSV output).
type KPIs struct {
	SimDuration float64 // minutes

	WagonsProcessed  int
	WagonsRejected   int
	ThroughputPerHour float64

	WorkshopUtilization   map[string]float64
	LocomotiveUtilization map[string]float64
	BayUtilization        map[string]float64
	TrackHighFillFraction map[string]float64

	// AverageQueueLength is the time-integrated average size of the shared
	// retrofit-admission queue (the pool every workshop draws batches from,
	// spec §4.11), and TotalWorkshopBays is the bay count it's compared
	// against for the "queue length exceeds bay count" bottleneck (spec
	// §4.13).
	AverageQueueLength float64
	TotalWorkshopBays  int

	FlowTime    Distribution
	WaitingTime Distribution

	Bottlenecks []Bottleneck
}

// bottleneckThresholds are the utilization bands a resource must cross to be
// reported (spec §4.13: "near-saturated resources are flagged even if never
// fully blocking").
const (
	thresholdMedium = 0.70
	thresholdHigh   = 0.90

	// trackHighFillTimeShare is the fraction of simulation time a track may
	// spend above its own high-fill threshold before it's flagged (spec
	// §4.13: "track whose fill exceeds 0.85 for > 10% of simulation time").
	trackHighFillTimeShare = 0.10
)

// Collect derives KPIs from the finished wagon and locomotive populations,
// the simulation's end time, a rejection count collected separately by the
// arrival coordinator (spec §4.9), and the workshop/bay/track occupancy
// ratios the engine's resources tracked over the run.
func Collect(wagons []*sim.Wagon, locomotives []*sim.Locomotive, simEnd float64, rejected int, workshopUtil, bayUtil, trackHighFill map[string]float64, avgQueueLength float64, totalBays int) *KPIs {
	k := &KPIs{
		SimDuration:           simEnd,
		WagonsRejected:        rejected,
		WorkshopUtilization:   workshopUtil,
		LocomotiveUtilization: make(map[string]float64),
		BayUtilization:        bayUtil,
		TrackHighFillFraction: trackHighFill,
		AverageQueueLength:    avgQueueLength,
		TotalWorkshopBays:     totalBays,
	}
	if k.WorkshopUtilization == nil {
		k.WorkshopUtilization = make(map[string]float64)
	}
	if k.BayUtilization == nil {
		k.BayUtilization = make(map[string]float64)
	}
	if k.TrackHighFillFraction == nil {
		k.TrackHighFillFraction = make(map[string]float64)
	}

	var flowTimes, waitTimes []float64
	for _, w := range wagons {
		if w.Status == sim.WagonParked {
			k.WagonsProcessed++
		}
		if ft, ok := w.FlowTime(); ok {
			flowTimes = append(flowTimes, ft)
		}
		if wt, ok := w.WaitingTime(); ok {
			waitTimes = append(waitTimes, wt)
		}
	}
	k.FlowTime = NewDistribution(flowTimes)
	k.WaitingTime = NewDistribution(waitTimes)

	if simEnd > 0 {
		k.ThroughputPerHour = float64(k.WagonsProcessed) / (simEnd / 60.0)
	}

	for _, l := range locomotives {
		k.LocomotiveUtilization[l.ID] = locomotiveUtilization(l, simEnd)
	}

	k.Bottlenecks = detectBottlenecks(k)
	return k
}

// locomotiveUtilization sums every non-parking interval in a locomotive's
// history and divides by the run length (spec §4.13).
func locomotiveUtilization(l *sim.Locomotive, simEnd float64) float64 {
	if simEnd <= 0 {
		return 0
	}
	var busy float64
	for _, iv := range l.History {
		if iv.Status == sim.LocoParking {
			continue
		}
		end := iv.End
		if iv.Open {
			end = simEnd
		}
		busy += end - iv.Start
	}
	return busy / simEnd
}

// detectBottlenecks flags any resource whose utilization crosses
// thresholdMedium/thresholdHigh, any track that spent more than
// trackHighFillTimeShare of the run above its high-fill threshold, the
// shared retrofit queue once its time-integrated average outgrows the bay
// count it feeds, plus an explicit flag when rejections occurred at all
// (spec §4.13).
func detectBottlenecks(k *KPIs) []Bottleneck {
	var out []Bottleneck

	check := func(resource string, util float64) {
		switch {
		case util >= thresholdHigh:
			out = append(out, Bottleneck{Resource: resource, Severity: SeverityHigh, Detail: "utilization at or above 90%"})
		case util >= thresholdMedium:
			out = append(out, Bottleneck{Resource: resource, Severity: SeverityMedium, Detail: "utilization at or above 70%"})
		}
	}

	for id, u := range k.LocomotiveUtilization {
		check("locomotive:"+id, u)
	}
	for id, u := range k.WorkshopUtilization {
		check("workshop:"+id, u)
	}
	for id, u := range k.BayUtilization {
		check("bay:"+id, u)
	}

	for id, share := range k.TrackHighFillFraction {
		if share <= trackHighFillTimeShare {
			continue
		}
		sev := SeverityMedium
		if share > 2*trackHighFillTimeShare {
			sev = SeverityHigh
		}
		out = append(out, Bottleneck{Resource: "track:" + id, Severity: sev, Detail: "fill exceeded 85% for more than 10% of simulation time"})
	}

	if k.TotalWorkshopBays > 0 && k.AverageQueueLength > float64(k.TotalWorkshopBays) {
		out = append(out, Bottleneck{Resource: "workshop_queue", Severity: SeverityMedium, Detail: "time-integrated average queue length exceeds total bay count"})
	}

	if k.WagonsRejected > 0 {
		sev := SeverityLow
		if k.WagonsProcessed > 0 && float64(k.WagonsRejected)/float64(k.WagonsProcessed) > 0.05 {
			sev = SeverityMedium
		}
		out = append(out, Bottleneck{Resource: "arrival", Severity: sev, Detail: "wagons rejected at arrival"})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

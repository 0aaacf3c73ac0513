package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// WriteCSV writes the KPI report as the flat key/value CSV named in spec §6
// ("one row per metric, two columns: metric, value"). Per-resource
// utilization rows are sorted by resource ID so the output is stable across
// runs with the same scenario.
func WriteCSV(w io.Writer, k *KPIs) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return fmt.Errorf("metrics: writing csv header: %w", err)
	}

	rows := [][2]string{
		{"sim_duration_minutes", f(k.SimDuration)},
		{"wagons_processed", i(k.WagonsProcessed)},
		{"wagons_rejected", i(k.WagonsRejected)},
		{"throughput_per_hour", f(k.ThroughputPerHour)},
		{"flow_time_mean", f(k.FlowTime.Mean)},
		{"flow_time_p50", f(k.FlowTime.P50)},
		{"flow_time_p90", f(k.FlowTime.P90)},
		{"flow_time_p95", f(k.FlowTime.P95)},
		{"flow_time_p99", f(k.FlowTime.P99)},
		{"waiting_time_mean", f(k.WaitingTime.Mean)},
		{"waiting_time_p50", f(k.WaitingTime.P50)},
		{"waiting_time_p90", f(k.WaitingTime.P90)},
		{"waiting_time_p95", f(k.WaitingTime.P95)},
		{"waiting_time_p99", f(k.WaitingTime.P99)},
		{"average_queue_length", f(k.AverageQueueLength)},
		{"total_workshop_bays", i(k.TotalWorkshopBays)},
	}
	for _, r := range rows {
		if err := cw.Write(r[:]); err != nil {
			return fmt.Errorf("metrics: writing csv row: %w", err)
		}
	}

	for _, prefix := range []struct {
		name string
		m    map[string]float64
	}{
		{"locomotive_utilization", k.LocomotiveUtilization},
		{"workshop_utilization", k.WorkshopUtilization},
		{"bay_utilization", k.BayUtilization},
		{"track_high_fill_fraction", k.TrackHighFillFraction},
	} {
		ids := make([]string, 0, len(prefix.m))
		for id := range prefix.m {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := cw.Write([]string{prefix.name + ":" + id, f(prefix.m[id])}); err != nil {
				return fmt.Errorf("metrics: writing csv row: %w", err)
			}
		}
	}

	for _, b := range k.Bottlenecks {
		if err := cw.Write([]string{"bottleneck:" + b.Resource, b.Severity.String() + ":" + b.Detail}); err != nil {
			return fmt.Errorf("metrics: writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
func i(v int) string     { return strconv.Itoa(v) }

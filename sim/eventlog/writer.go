package eventlog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvHeader is the stable column order for the flattened CSV variant (spec
// §6): one wide table covering every kind, empty cells where a column does
// not apply to that record's kind.
var csvHeader = []string{
	"kind", "timestamp",
	"wagon_id", "from_status", "to_status", "track",
	"locomotive_id", "from_track", "to_track", "activity",
	"resource", "resource_key", "detail", "occupied", "capacity",
	"batch_id", "wagon_ids",
}

// WriteCSV writes the collector's records as CSV with the header in
// csvHeader, one row per record, in the collector's current order.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("eventlog: writing csv header: %w", err)
	}
	for _, r := range records {
		occupied, capacity := formatFloat(r.Occupied), formatFloat(r.Capacity)
		if r.Kind == KindResourceChange {
			occupied = strconv.FormatFloat(r.Occupied, 'f', -1, 64)
			capacity = strconv.FormatFloat(r.Capacity, 'f', -1, 64)
		}
		row := []string{
			string(r.Kind), strconv.FormatFloat(r.Timestamp, 'f', -1, 64),
			r.WagonID, r.FromStatus, r.ToStatus, r.Track,
			r.LocomotiveID, r.FromTrack, r.ToTrack, r.Activity,
			r.Resource, r.ResourceKey, r.Detail, occupied, capacity,
			r.BatchID, strings.Join(r.WagonIDs, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("eventlog: writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteJSON writes the collector's records as a JSON array, one object per
// record, with zero-valued fields omitted (spec §6 JSON variant).
func WriteJSON(w io.Writer, records []Record) error {
	type jsonRecord struct {
		Kind      Kind    `json:"kind"`
		Timestamp float64 `json:"timestamp"`

		WagonID    string `json:"wagon_id,omitempty"`
		FromStatus string `json:"from_status,omitempty"`
		ToStatus   string `json:"to_status,omitempty"`
		Track      string `json:"track,omitempty"`

		LocomotiveID string `json:"locomotive_id,omitempty"`
		FromTrack    string `json:"from_track,omitempty"`
		ToTrack      string `json:"to_track,omitempty"`
		Activity     string `json:"activity,omitempty"`

		Resource    string  `json:"resource,omitempty"`
		ResourceKey string  `json:"resource_key,omitempty"`
		Detail      string  `json:"detail,omitempty"`
		Occupied    float64 `json:"occupied,omitempty"`
		Capacity    float64 `json:"capacity,omitempty"`

		BatchID  string   `json:"batch_id,omitempty"`
		WagonIDs []string `json:"wagon_ids,omitempty"`
	}

	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = jsonRecord{
			Kind: r.Kind, Timestamp: r.Timestamp,
			WagonID: r.WagonID, FromStatus: r.FromStatus, ToStatus: r.ToStatus, Track: r.Track,
			LocomotiveID: r.LocomotiveID, FromTrack: r.FromTrack, ToTrack: r.ToTrack, Activity: r.Activity,
			Resource: r.Resource, ResourceKey: r.ResourceKey, Detail: r.Detail, Occupied: r.Occupied, Capacity: r.Capacity,
			BatchID: r.BatchID, WagonIDs: r.WagonIDs,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("eventlog: encoding json: %w", err)
	}
	return nil
}

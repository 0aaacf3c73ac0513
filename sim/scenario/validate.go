package scenario

import (
	"fmt"
	"time"
)

// ValidationError names the offending field path and message (spec §7
// configuration error: "reported to the caller with the offending field
// path").
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the scenario's structural invariants (spec §7) and
// returns the first error found, wrapped as a *ValidationError. A
// non-fatal duration warning (> 365 days) is available separately via
// DurationWarning and does not fail validation.
func (s *Scenario) Validate() error {
	if s.ScenarioID == "" {
		return fieldErr("scenario_id", "must not be empty")
	}
	if !s.EndDate.After(s.StartDate) {
		return fieldErr("end_date", "must be after start_date (%s)", s.StartDate)
	}
	if s.EndDate.Sub(s.StartDate) < 24*time.Hour {
		return fieldErr("end_date", "scenario duration must be at least 1 day")
	}

	if err := validateStrategy("track_selection_strategy", s.TrackSelectionStrategy); err != nil {
		return err
	}
	if err := validateStrategy("retrofit_selection_strategy", s.RetrofitSelectionStrategy); err != nil {
		return err
	}
	if err := validateStrategy("parking_selection_strategy", s.ParkingSelectionStrategy); err != nil {
		return err
	}
	if s.LocoDeliveryStrategy != "" && s.LocoDeliveryStrategy != LocoReturnToParking && s.LocoDeliveryStrategy != LocoDirectDelivery {
		return fieldErr("loco_delivery_strategy", "unrecognized value %q", s.LocoDeliveryStrategy)
	}
	if s.ParkingNormalThreshold < 0 || s.ParkingNormalThreshold > 1 {
		return fieldErr("parking_normal_threshold", "must be in [0, 1], got %v", s.ParkingNormalThreshold)
	}
	if s.ParkingCriticalThreshold < 0 || s.ParkingCriticalThreshold > 1 {
		return fieldErr("parking_critical_threshold", "must be in [0, 1], got %v", s.ParkingCriticalThreshold)
	}
	if s.ParkingCriticalThreshold < s.ParkingNormalThreshold {
		return fieldErr("parking_critical_threshold", "must be >= parking_normal_threshold")
	}

	trackIDs := make(map[string]TrackSpec, len(s.Tracks))
	for i, t := range s.Tracks {
		field := fmt.Sprintf("tracks[%d]", i)
		if t.ID == "" {
			return fieldErr(field+".id", "must not be empty")
		}
		if _, dup := trackIDs[t.ID]; dup {
			return fieldErr(field+".id", "duplicate track id %q", t.ID)
		}
		if t.Length <= 0 {
			return fieldErr(field+".length", "must be > 0, got %v", t.Length)
		}
		if t.FillFactor <= 0 || t.FillFactor > 1 {
			return fieldErr(field+".fillfactor", "must be in (0, 1], got %v", t.FillFactor)
		}
		if t.MaxWagons < 0 {
			return fieldErr(field+".max_wagons", "must be >= 0, got %d", t.MaxWagons)
		}
		trackIDs[t.ID] = t
	}

	for i, w := range s.Workshops {
		field := fmt.Sprintf("workshops[%d]", i)
		if w.ID == "" {
			return fieldErr(field+".id", "must not be empty")
		}
		if _, ok := trackIDs[w.Track]; !ok {
			return fieldErr(field+".track", "references unknown track %q", w.Track)
		}
		if w.RetrofitStations <= 0 {
			return fieldErr(field+".retrofit_stations", "must be > 0, got %d", w.RetrofitStations)
		}
	}

	locoIDs := make(map[string]bool, len(s.Locomotives))
	for i, l := range s.Locomotives {
		field := fmt.Sprintf("locomotives[%d]", i)
		if l.ID == "" {
			return fieldErr(field+".id", "must not be empty")
		}
		if locoIDs[l.ID] {
			return fieldErr(field+".id", "duplicate locomotive id %q", l.ID)
		}
		if _, ok := trackIDs[l.HomeTrack]; !ok {
			return fieldErr(field+".home_track", "references unknown track %q", l.HomeTrack)
		}
		locoIDs[l.ID] = true
	}

	for i, r := range s.Routes {
		field := fmt.Sprintf("routes[%d]", i)
		if len(r.Path) < 2 {
			return fieldErr(field+".path", "must name at least two tracks")
		}
		for _, tid := range []string{r.Path[0], r.Path[len(r.Path)-1]} {
			if _, ok := trackIDs[tid]; !ok {
				return fieldErr(field+".path", "references unknown track %q", tid)
			}
		}
		if r.Duration < 0 {
			return fieldErr(field+".duration", "must be >= 0, got %v", r.Duration)
		}
	}

	for i, tr := range s.Trains {
		field := fmt.Sprintf("trains[%d]", i)
		if tr.TrainID == "" {
			return fieldErr(field+".train_id", "must not be empty")
		}
		if tr.ArrivalTrack != "" {
			if _, ok := trackIDs[tr.ArrivalTrack]; !ok {
				return fieldErr(field+".arrival_track", "references unknown track %q", tr.ArrivalTrack)
			}
		}
		if i > 0 && tr.ArrivalTime < s.Trains[i-1].ArrivalTime {
			return fieldErr(field+".arrival_time", "trains must be listed in non-decreasing arrival order")
		}
		for j, w := range tr.Wagons {
			wfield := fmt.Sprintf("%s.wagons[%d]", field, j)
			if w.ID == "" {
				return fieldErr(wfield+".id", "must not be empty")
			}
			if w.Length <= 0 {
				return fieldErr(wfield+".length", "must be > 0, got %v", w.Length)
			}
		}
	}

	if err := s.ProcessTimes.toDomain().Validate(); err != nil {
		return &ValidationError{Field: "process_times", Message: err.Error()}
	}

	return nil
}

func validateStrategy(field string, s SelectionStrategy) error {
	if !s.valid() {
		return fieldErr(field, "unrecognized strategy %q", s)
	}
	return nil
}

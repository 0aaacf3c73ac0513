// CSV scenario loading is the adapter-level variant named in spec §6; it
// builds the same Scenario struct as Load, from a directory of flat tables
// (tracks.csv, routes.csv, locomotives.csv, workshops.csv, trains.csv,
// wagons.csv, scenario.csv for the scalar fields), matching the original
// implementation's csv_data_source_adapter.py table layout.
package scenario

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/popupsim/popupsim/sim"
)

// LoadCSV reads a scenario from the flat CSV tables in dir. Trains are
// joined to wagons.csv by train_id; process times and scalar scenario
// fields come from scenario.csv (one header row, one data row).
func LoadCSV(dir string) (*Scenario, error) {
	scalars, err := readCSVRows(filepath.Join(dir, "scenario.csv"))
	if err != nil {
		return nil, err
	}
	if len(scalars) != 1 {
		return nil, fmt.Errorf("scenario csv: scenario.csv must have exactly one data row, got %d", len(scalars))
	}
	row := scalars[0]

	startDate, err := time.Parse(time.RFC3339, row["start_date"])
	if err != nil {
		return nil, fmt.Errorf("scenario csv: start_date: %w", err)
	}
	endDate, err := time.Parse(time.RFC3339, row["end_date"])
	if err != nil {
		return nil, fmt.Errorf("scenario csv: end_date: %w", err)
	}
	seed, _ := strconv.ParseInt(row["seed"], 10, 64)
	normalThreshold, _ := strconv.ParseFloat(row["parking_normal_threshold"], 64)
	criticalThreshold, _ := strconv.ParseFloat(row["parking_critical_threshold"], 64)
	idleInterval, _ := strconv.ParseFloat(row["parking_idle_check_interval"], 64)

	s := &Scenario{
		ScenarioID:                row["scenario_id"],
		StartDate:                 startDate,
		EndDate:                   endDate,
		TrackSelectionStrategy:    SelectionStrategy(row["track_selection_strategy"]),
		RetrofitSelectionStrategy: SelectionStrategy(row["retrofit_selection_strategy"]),
		ParkingSelectionStrategy:  SelectionStrategy(row["parking_selection_strategy"]),
		LocoDeliveryStrategy:      LocoDeliveryStrategy(row["loco_delivery_strategy"]),
		ParkingStrategy:           row["parking_strategy"],
		ParkingNormalThreshold:    normalThreshold,
		ParkingCriticalThreshold:  criticalThreshold,
		ParkingIdleCheckInterval:  idleInterval,
		Seed:                      seed,
		ProcessTimes: ProcessTimesSpec{
			TrainToHumpDelay:    mustFloat(row, "train_to_hump_delay"),
			WagonHumpInterval:   mustFloat(row, "wagon_hump_interval"),
			ScrewCouplingTime:   mustFloat(row, "screw_coupling_time"),
			ScrewDecouplingTime: mustFloat(row, "screw_decoupling_time"),
			DACCouplingTime:     mustFloat(row, "dac_coupling_time"),
			DACDecouplingTime:   mustFloat(row, "dac_decoupling_time"),
			WagonRetrofitTime:   mustFloat(row, "wagon_retrofit_time"),
			LocoParkingDelay:    mustFloat(row, "loco_parking_delay"),
		},
	}

	trackRows, err := readCSVRows(filepath.Join(dir, "tracks.csv"))
	if err != nil {
		return nil, err
	}
	for _, r := range trackRows {
		maxWagons, _ := strconv.Atoi(r["max_wagons"])
		s.Tracks = append(s.Tracks, TrackSpec{
			ID:         r["id"],
			Type:       sim.TrackType(r["type"]),
			Length:     mustFloat(r, "length"),
			FillFactor: mustFloat(r, "fillfactor"),
			MaxWagons:  maxWagons,
		})
	}

	routeRows, err := readCSVRows(filepath.Join(dir, "routes.csv"))
	if err != nil {
		return nil, err
	}
	for _, r := range routeRows {
		s.Routes = append(s.Routes, RouteSpec{
			ID:       r["id"],
			Path:     []string{r["from_track"], r["to_track"]},
			Duration: mustFloat(r, "duration"),
		})
	}

	locoRows, err := readCSVRows(filepath.Join(dir, "locomotives.csv"))
	if err != nil {
		return nil, err
	}
	for _, r := range locoRows {
		s.Locomotives = append(s.Locomotives, LocomotiveSpec{
			ID:           r["id"],
			HomeTrack:    r["home_track"],
			CouplerFront: sim.CouplerType(r["coupler_front"]),
			CouplerBack:  sim.CouplerType(r["coupler_back"]),
		})
	}

	workshopRows, err := readCSVRows(filepath.Join(dir, "workshops.csv"))
	if err != nil {
		return nil, err
	}
	for _, r := range workshopRows {
		stations, _ := strconv.Atoi(r["retrofit_stations"])
		s.Workshops = append(s.Workshops, WorkshopSpec{ID: r["id"], Track: r["track"], RetrofitStations: stations})
	}

	trainRows, err := readCSVRows(filepath.Join(dir, "trains.csv"))
	if err != nil {
		return nil, err
	}
	wagonRows, err := readCSVRows(filepath.Join(dir, "wagons.csv"))
	if err != nil {
		return nil, err
	}
	wagonsByTrain := make(map[string][]WagonSpec)
	for _, r := range wagonRows {
		isLoaded := r["is_loaded"] == "true" || r["is_loaded"] == "1"
		needsRetrofit := r["needs_retrofit"] == "true" || r["needs_retrofit"] == "1"
		wagonsByTrain[r["train_id"]] = append(wagonsByTrain[r["train_id"]], WagonSpec{
			ID:            r["id"],
			Length:        mustFloat(r, "length"),
			IsLoaded:      isLoaded,
			NeedsRetrofit: needsRetrofit,
			CouplerA:      sim.CouplerType(r["coupler_a"]),
			CouplerB:      sim.CouplerType(r["coupler_b"]),
		})
	}
	for _, r := range trainRows {
		s.Trains = append(s.Trains, TrainSpec{
			TrainID:      r["train_id"],
			ArrivalTime:  mustFloat(r, "arrival_time"),
			ArrivalTrack: r["arrival_track"],
			Wagons:       wagonsByTrain[r["train_id"]],
		})
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario csv: validating %s: %w", dir, err)
	}
	return s, nil
}

func mustFloat(row map[string]string, key string) float64 {
	v, _ := strconv.ParseFloat(row[key], 64)
	return v
}

// readCSVRows reads a CSV file into a slice of header-keyed row maps.
func readCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario csv: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("scenario csv: reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Package scenario defines the scenario input contract (spec §6) and loads
// it from JSON or YAML files. Scenario loading is an adapter concern per
// spec.md's scoping; this package is the data contract plus structural
// validation (spec §7 configuration errors), not simulation behavior.
package scenario

import (
	"fmt"
	"time"

	"github.com/popupsim/popupsim/sim"
)

// SelectionStrategy names a track-selection algorithm (spec §4.5).
type SelectionStrategy string

const (
	StrategyRoundRobin    SelectionStrategy = "round_robin"
	StrategyLeastOccupied SelectionStrategy = "least_occupied"
	StrategyFirstAvailable SelectionStrategy = "first_available"
	StrategyRandom        SelectionStrategy = "random"
	StrategyBestFit       SelectionStrategy = "best_fit"
)

func (s SelectionStrategy) valid() bool {
	switch s {
	case StrategyRoundRobin, StrategyLeastOccupied, StrategyFirstAvailable, StrategyRandom, StrategyBestFit:
		return true
	}
	return false
}

// LocoDeliveryStrategy names how a locomotive is released after delivering
// retrofitted/parked wagons (spec §6, §9 Open Questions).
type LocoDeliveryStrategy string

const (
	LocoReturnToParking LocoDeliveryStrategy = "return_to_parking"
	LocoDirectDelivery  LocoDeliveryStrategy = "direct_delivery"
)

// WagonSpec is one wagon as declared in a train's manifest.
type WagonSpec struct {
	ID            string          `json:"id" yaml:"id"`
	Length        float64         `json:"length" yaml:"length"`
	IsLoaded      bool            `json:"is_loaded" yaml:"is_loaded"`
	NeedsRetrofit bool            `json:"needs_retrofit" yaml:"needs_retrofit"`
	CouplerA      sim.CouplerType `json:"coupler_a" yaml:"coupler_a"`
	CouplerB      sim.CouplerType `json:"coupler_b" yaml:"coupler_b"`
}

// TrainSpec is one scheduled arrival.
type TrainSpec struct {
	TrainID      string      `json:"train_id" yaml:"train_id"`
	ArrivalTime  float64     `json:"arrival_time" yaml:"arrival_time"`
	ArrivalTrack string      `json:"arrival_track,omitempty" yaml:"arrival_track,omitempty"`
	Wagons       []WagonSpec `json:"wagons" yaml:"wagons"`
}

// LocomotiveSpec is one scenario-declared locomotive.
type LocomotiveSpec struct {
	ID           string          `json:"id" yaml:"id"`
	HomeTrack    string          `json:"home_track" yaml:"home_track"`
	CouplerFront sim.CouplerType `json:"coupler_front" yaml:"coupler_front"`
	CouplerBack  sim.CouplerType `json:"coupler_back" yaml:"coupler_back"`
}

// WorkshopSpec is one scenario-declared pop-up workshop.
type WorkshopSpec struct {
	ID              string `json:"id" yaml:"id"`
	Track           string `json:"track" yaml:"track"`
	RetrofitStations int   `json:"retrofit_stations" yaml:"retrofit_stations"`
}

// TrackSpec is one scenario-declared yard track.
type TrackSpec struct {
	ID         string        `json:"id" yaml:"id"`
	Type       sim.TrackType `json:"type" yaml:"type"`
	Length     float64       `json:"length" yaml:"length"`
	FillFactor float64       `json:"fillfactor" yaml:"fillfactor"`
	MaxWagons  int           `json:"max_wagons,omitempty" yaml:"max_wagons,omitempty"`
}

// RouteSpec is one scenario-declared directed route.
type RouteSpec struct {
	ID       string   `json:"id" yaml:"id"`
	Path     []string `json:"path" yaml:"path"`
	Duration float64  `json:"duration" yaml:"duration"`
}

// ProcessTimesSpec mirrors sim.ProcessTimes with JSON/YAML tags.
type ProcessTimesSpec struct {
	TrainToHumpDelay    float64 `json:"train_to_hump_delay" yaml:"train_to_hump_delay"`
	WagonHumpInterval   float64 `json:"wagon_hump_interval" yaml:"wagon_hump_interval"`
	ScrewCouplingTime   float64 `json:"screw_coupling_time" yaml:"screw_coupling_time"`
	ScrewDecouplingTime float64 `json:"screw_decoupling_time" yaml:"screw_decoupling_time"`
	DACCouplingTime     float64 `json:"dac_coupling_time" yaml:"dac_coupling_time"`
	DACDecouplingTime   float64 `json:"dac_decoupling_time" yaml:"dac_decoupling_time"`
	WagonRetrofitTime   float64 `json:"wagon_retrofit_time" yaml:"wagon_retrofit_time"`
	LocoParkingDelay    float64 `json:"loco_parking_delay" yaml:"loco_parking_delay"`
}

func (p ProcessTimesSpec) toDomain() sim.ProcessTimes {
	return sim.ProcessTimes{
		TrainToHumpDelay:    p.TrainToHumpDelay,
		WagonHumpInterval:   p.WagonHumpInterval,
		ScrewCouplingTime:   p.ScrewCouplingTime,
		ScrewDecouplingTime: p.ScrewDecouplingTime,
		DACCouplingTime:     p.DACCouplingTime,
		DACDecouplingTime:   p.DACDecouplingTime,
		WagonRetrofitTime:   p.WagonRetrofitTime,
		LocoParkingDelay:    p.LocoParkingDelay,
	}
}

// Scenario is the full input configuration for a single run (spec §6).
type Scenario struct {
	ScenarioID string    `json:"scenario_id" yaml:"scenario_id"`
	StartDate  time.Time `json:"start_date" yaml:"start_date"`
	EndDate    time.Time `json:"end_date" yaml:"end_date"`

	TrackSelectionStrategy    SelectionStrategy `json:"track_selection_strategy" yaml:"track_selection_strategy"`
	RetrofitSelectionStrategy SelectionStrategy `json:"retrofit_selection_strategy" yaml:"retrofit_selection_strategy"`
	ParkingSelectionStrategy  SelectionStrategy `json:"parking_selection_strategy" yaml:"parking_selection_strategy"`

	LocoDeliveryStrategy LocoDeliveryStrategy `json:"loco_delivery_strategy" yaml:"loco_delivery_strategy"`

	ParkingStrategy            string  `json:"parking_strategy" yaml:"parking_strategy"`
	ParkingNormalThreshold     float64 `json:"parking_normal_threshold" yaml:"parking_normal_threshold"`
	ParkingCriticalThreshold   float64 `json:"parking_critical_threshold" yaml:"parking_critical_threshold"`
	ParkingIdleCheckInterval   float64 `json:"parking_idle_check_interval" yaml:"parking_idle_check_interval"`

	Seed int64 `json:"seed" yaml:"seed"`

	Tracks       []TrackSpec      `json:"tracks" yaml:"tracks"`
	Routes       []RouteSpec      `json:"routes" yaml:"routes"`
	Locomotives  []LocomotiveSpec `json:"locomotives" yaml:"locomotives"`
	Workshops    []WorkshopSpec   `json:"workshops" yaml:"workshops"`
	Trains       []TrainSpec      `json:"trains" yaml:"trains"`
	ProcessTimes ProcessTimesSpec `json:"process_times" yaml:"process_times"`
}

// applyDefaults applies the scenario-level defaults named in spec §6.
func (s *Scenario) applyDefaults() {
	if s.ParkingNormalThreshold == 0 {
		s.ParkingNormalThreshold = 0.3
	}
	if s.ParkingCriticalThreshold == 0 {
		s.ParkingCriticalThreshold = 0.8
	}
	if s.ParkingIdleCheckInterval == 0 {
		s.ParkingIdleCheckInterval = 1.0
	}
	if s.LocoDeliveryStrategy == "" {
		s.LocoDeliveryStrategy = LocoReturnToParking
	}
}

// ProcessTimesDomain returns the domain ProcessTimes value.
func (s *Scenario) ProcessTimesDomain() sim.ProcessTimes {
	return s.ProcessTimes.toDomain()
}

// DurationWarning returns a non-empty warning message when the scenario
// horizon exceeds 365 days (spec §6), or empty if no warning applies.
func (s *Scenario) DurationWarning() string {
	if s.EndDate.Sub(s.StartDate) > 365*24*time.Hour {
		return fmt.Sprintf("scenario %s: duration exceeds 365 days (%s to %s)", s.ScenarioID, s.StartDate, s.EndDate)
	}
	return ""
}

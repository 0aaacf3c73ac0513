// Defines ProcessTimes, the deterministic duration constants that drive
// every timed activity in the engine (spec §6 process_times). No stochastic
// distributions: per the Non-goals, these are fixed scenario constants.

package sim

import "fmt"

// ProcessTimes groups the scenario's fixed process durations, all in
// minutes.
type ProcessTimes struct {
	TrainToHumpDelay     float64
	WagonHumpInterval    float64
	ScrewCouplingTime    float64
	ScrewDecouplingTime  float64
	DACCouplingTime      float64
	DACDecouplingTime    float64
	WagonRetrofitTime    float64
	LocoParkingDelay     float64
}

// CouplingTime returns the fixed coupling duration for the given coupler
// type. Hybrid couples at the (cheaper) DAC rate, since a hybrid end is
// fitted with DAC hardware that also accepts screw links.
func (p ProcessTimes) CouplingTime(c CouplerType) float64 {
	if c == CouplerScrew {
		return p.ScrewCouplingTime
	}
	return p.DACCouplingTime
}

// DecouplingTime returns the fixed decoupling duration for the given coupler
// type.
func (p ProcessTimes) DecouplingTime(c CouplerType) float64 {
	if c == CouplerScrew {
		return p.ScrewDecouplingTime
	}
	return p.DACDecouplingTime
}

// Validate checks that every duration is non-negative (spec §7 configuration
// error).
func (p ProcessTimes) Validate() error {
	fields := map[string]float64{
		"train_to_hump_delay":  p.TrainToHumpDelay,
		"wagon_hump_interval":  p.WagonHumpInterval,
		"screw_coupling_time":  p.ScrewCouplingTime,
		"screw_decoupling_time": p.ScrewDecouplingTime,
		"dac_coupling_time":    p.DACCouplingTime,
		"dac_decoupling_time":  p.DACDecouplingTime,
		"wagon_retrofit_time":  p.WagonRetrofitTime,
		"loco_parking_delay":   p.LocoParkingDelay,
	}
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("process_times.%s must be >= 0, got %v", name, v)
		}
	}
	return nil
}

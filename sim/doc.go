// Package sim defines the PopUpSim domain model: wagons, locomotives,
// tracks, workshops, routes, rakes and batches, and the process-time
// constants that drive the retrofit workflow engine in sim/engine.
//
// Types here are deliberately inert — they carry identity, scenario-derived
// shape, and the pure checks (coupler compatibility, capacity, validation)
// that do not require simulation time or scheduling. The engine owns all
// time-dependent behavior.
package sim

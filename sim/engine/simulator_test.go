package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/sim"
	"github.com/popupsim/popupsim/sim/eventlog"
	"github.com/popupsim/popupsim/sim/scenario"
)

// buildTestScenario returns a minimal but complete yard topology: one
// collection track, one retrofit track, one single-bay workshop, one
// retrofitted-holding track, one parking track, and a single locomotive,
// connected by direct routes for every hop the workflow needs (spec §4.1
// through §4.12 end to end).
func buildTestScenario() *scenario.Scenario {
	sc := &scenario.Scenario{
		ScenarioID: "test-scenario",
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),

		TrackSelectionStrategy:    scenario.StrategyFirstAvailable,
		RetrofitSelectionStrategy: scenario.StrategyFirstAvailable,
		ParkingSelectionStrategy:  scenario.StrategyFirstAvailable,
		LocoDeliveryStrategy:      scenario.LocoDirectDelivery,

		ParkingNormalThreshold:   0.3,
		ParkingCriticalThreshold: 0.8,
		ParkingIdleCheckInterval: 5,

		Seed: 42,

		Tracks: []scenario.TrackSpec{
			{ID: "collection-1", Type: sim.TrackCollection, Length: 200, FillFactor: 1.0},
			{ID: "retrofit-1", Type: sim.TrackRetrofit, Length: 200, FillFactor: 1.0},
			{ID: "workshop-1-track", Type: sim.TrackWorkshop, Length: 200, FillFactor: 1.0},
			{ID: "retrofitted-1", Type: sim.TrackRetrofitted, Length: 200, FillFactor: 1.0},
			{ID: "parking-1", Type: sim.TrackParking, Length: 200, FillFactor: 1.0},
		},
		Routes: []scenario.RouteSpec{
			{ID: "r1", Path: []string{"collection-1", "retrofit-1"}, Duration: 2},
			{ID: "r2", Path: []string{"retrofit-1", "workshop-1-track"}, Duration: 2},
			{ID: "r3", Path: []string{"workshop-1-track", "retrofitted-1"}, Duration: 2},
			{ID: "r4", Path: []string{"retrofitted-1", "parking-1"}, Duration: 2},
		},
		// Hybrid couplers let one locomotive haul both pre-retrofit (screw)
		// and post-retrofit (DAC) wagons across the workflow.
		Locomotives: []scenario.LocomotiveSpec{
			{ID: "L1", HomeTrack: "parking-1", CouplerFront: sim.CouplerHybrid, CouplerBack: sim.CouplerHybrid},
		},
		Workshops: []scenario.WorkshopSpec{
			{ID: "ws-1", Track: "workshop-1-track", RetrofitStations: 1},
		},
		Trains: []scenario.TrainSpec{
			{
				TrainID:     "train-1",
				ArrivalTime: 0,
				Wagons: []scenario.WagonSpec{
					{ID: "w1", Length: 10, IsLoaded: false, NeedsRetrofit: true, CouplerA: sim.CouplerScrew, CouplerB: sim.CouplerScrew},
					{ID: "w2", Length: 10, IsLoaded: false, NeedsRetrofit: true, CouplerA: sim.CouplerScrew, CouplerB: sim.CouplerScrew},
					{ID: "w3", Length: 10, IsLoaded: true, NeedsRetrofit: true, CouplerA: sim.CouplerScrew, CouplerB: sim.CouplerScrew},
					{ID: "w4", Length: 10, IsLoaded: false, NeedsRetrofit: false, CouplerA: sim.CouplerScrew, CouplerB: sim.CouplerScrew},
				},
			},
		},
		ProcessTimes: scenario.ProcessTimesSpec{
			TrainToHumpDelay:    0,
			WagonHumpInterval:   0,
			ScrewCouplingTime:   1,
			ScrewDecouplingTime: 1,
			DACCouplingTime:     1,
			DACDecouplingTime:   1,
			WagonRetrofitTime:   5,
			LocoParkingDelay:    2,
		},
	}
	return sc
}

func TestNewSimulation_BuildsRuntimeResourcesFromScenario(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)

	assert.Len(t, s.Tracks, 5)
	assert.Len(t, s.Workshops, 1)
	assert.Len(t, s.Locomotives.All(), 1)
	assert.Equal(t, 0.0, s.Clock)
	assert.Greater(t, s.Horizon, 0.0)
}

func TestSimulation_Run_RejectsLoadedAndNonRetrofitWagons(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	assert.Equal(t, 2, s.RejectedWagons)
	assert.Equal(t, sim.WagonRejected, s.Wagons["w3"].Status)
	assert.Equal(t, sim.RejectionLoaded, s.Wagons["w3"].RejectionReason)
	assert.Equal(t, sim.WagonRejected, s.Wagons["w4"].Status)
	assert.Equal(t, sim.RejectionNoRetrofitNeeded, s.Wagons["w4"].RejectionReason)
}

func TestSimulation_Run_RetrofitsAndParksAcceptedWagons(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	for _, id := range []string{"w1", "w2"} {
		w := s.Wagons[id]
		require.NotNil(t, w)
		assert.Equal(t, sim.WagonParked, w.Status)
		assert.Equal(t, "parking-1", w.CurrentTrack)
		assert.Equal(t, sim.CouplerDAC, w.FrontCoupler)
		assert.Equal(t, sim.CouplerDAC, w.BackCoupler)

		flow, ok := w.FlowTime()
		assert.True(t, ok)
		assert.Greater(t, flow, 0.0)

		wait, ok := w.WaitingTime()
		assert.True(t, ok)
		assert.GreaterOrEqual(t, wait, 0.0)
	}
}

// TestSimulation_Run_EmitsResourceStateChangeRecords exercises spec §4.13:
// the event collector must carry track and bay occupancy transitions, not
// just wagon/locomotive/batch records, so utilization can be derived from
// the log alone.
func TestSimulation_Run_EmitsResourceStateChangeRecords(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	seen := make(map[string]bool)
	for _, r := range s.EventLog.Records() {
		if r.Kind == eventlog.KindResourceChange {
			seen[r.Detail] = true
		}
	}
	assert.True(t, seen["capacity_reserved"], "expected at least one track capacity_reserved record")
	assert.True(t, seen["capacity_released"], "expected at least one track capacity_released record")
	assert.True(t, seen["bay_occupied"], "expected at least one bay_occupied record")
	assert.True(t, seen["bay_released"], "expected at least one bay_released record")
}

func TestSimulation_TotalWorkshopBays_SumsAcrossWorkshops(t *testing.T) {
	sc := buildTestScenario()
	sc.Workshops = append(sc.Workshops, scenario.WorkshopSpec{ID: "ws-2", Track: "workshop-1-track", RetrofitStations: 2})
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalWorkshopBays())
}

func TestSimulation_AverageQueueLength_IntegratesOverTime(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)

	s.retrofitQueues["retrofit-1"] = []*sim.Wagon{{}, {}}
	s.Clock = 10
	s.noteQueue()
	s.retrofitQueues["retrofit-1"] = nil
	s.Clock = 20
	s.noteQueue()

	// noteQueue records 0 wagons for [0,10) and 2 wagons for [10,20)
	// -> 20 wagon-minutes over 20 minutes, avg 1.0.
	assert.InDelta(t, 1.0, s.AverageQueueLength(20), 1e-9)
}

// TestSimulation_Run_MissingRouteIsFatal exercises spec §7: an undefined
// route between two tracks a move actually needs is a scenario gap, not a
// recoverable condition, and must stop the run rather than being treated as
// a zero-duration hop.
func TestSimulation_Run_MissingRouteIsFatal(t *testing.T) {
	sc := buildTestScenario()
	sc.Routes = []scenario.RouteSpec{
		// collection-1 -> retrofit-1 deliberately omitted.
		{ID: "r2", Path: []string{"retrofit-1", "workshop-1-track"}, Duration: 2},
		{ID: "r3", Path: []string{"workshop-1-track", "retrofitted-1"}, Duration: 2},
		{ID: "r4", Path: []string{"retrofitted-1", "parking-1"}, Duration: 2},
	}
	s, err := NewSimulation(sc)
	require.NoError(t, err)

	err = s.Run()
	require.Error(t, err)
	var routeErr *RouteError
	assert.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "collection-1", routeErr.From)
	assert.Equal(t, "retrofit-1", routeErr.To)
}

func TestSimulation_Run_ClockNeverMovesBackwards(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	assert.NoError(t, s.Run())
}

func TestSimulation_Run_LocomotiveReturnsToPoolAfterEachHaul(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	locos := s.Locomotives.All()
	require.Len(t, locos, 1)
	l := locos[0]
	require.NotEmpty(t, l.History)
	for _, interval := range l.History {
		assert.False(t, interval.Open, "every interval should be closed once the run ends")
	}
}

func TestSimulation_WagonsSorted_OrdersByID(t *testing.T) {
	sc := buildTestScenario()
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	ids := make([]string, 0)
	for _, w := range s.WagonsSorted() {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"w1", "w2", "w3", "w4"}, ids)
}

func TestSimulation_Run_ReturnToParkingStrategyDelaysLocomotiveRelease(t *testing.T) {
	sc := buildTestScenario()
	sc.LocoDeliveryStrategy = scenario.LocoReturnToParking
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	assert.Equal(t, sim.WagonParked, s.Wagons["w1"].Status)
	assert.Equal(t, sim.WagonParked, s.Wagons["w2"].Status)
}

func TestSimulation_Run_NoTrains_TerminatesAtDefaultHorizon(t *testing.T) {
	sc := buildTestScenario()
	sc.Trains = nil
	s, err := NewSimulation(sc)
	require.NoError(t, err)
	assert.Equal(t, 24*60.0, s.Horizon)
	require.NoError(t, s.Run())
	assert.Empty(t, s.Wagons)
}

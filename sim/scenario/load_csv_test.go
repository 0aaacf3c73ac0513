package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSVFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func buildCSVFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeCSVFixture(t, dir, "scenario.csv",
		"scenario_id,start_date,end_date,seed,track_selection_strategy,retrofit_selection_strategy,parking_selection_strategy,loco_delivery_strategy,parking_strategy,parking_normal_threshold,parking_critical_threshold,parking_idle_check_interval,train_to_hump_delay,wagon_hump_interval,screw_coupling_time,screw_decoupling_time,dac_coupling_time,dac_decoupling_time,wagon_retrofit_time,loco_parking_delay\n"+
			"csv-scenario,2026-01-01T00:00:00Z,2026-01-03T00:00:00Z,7,first_available,first_available,first_available,direct_delivery,threshold,0.3,0.8,1,0,0,1,1,1,1,5,2\n")

	writeCSVFixture(t, dir, "tracks.csv",
		"id,type,length,fillfactor,max_wagons\n"+
			"t1,collection,100,1.0,0\n"+
			"t2,retrofit,100,1.0,0\n")

	writeCSVFixture(t, dir, "routes.csv",
		"id,from_track,to_track,duration\n"+
			"r1,t1,t2,2\n")

	writeCSVFixture(t, dir, "locomotives.csv",
		"id,home_track,coupler_front,coupler_back\n"+
			"L1,t1,hybrid,hybrid\n")

	writeCSVFixture(t, dir, "workshops.csv", "id,track,retrofit_stations\n")

	writeCSVFixture(t, dir, "trains.csv",
		"train_id,arrival_time,arrival_track\n"+
			"train-1,0,t1\n")

	writeCSVFixture(t, dir, "wagons.csv",
		"train_id,id,length,is_loaded,needs_retrofit,coupler_a,coupler_b\n"+
			"train-1,w1,10,false,true,screw,screw\n"+
			"train-1,w2,10,true,true,screw,screw\n")

	return dir
}

func TestLoadCSV_BuildsEquivalentScenario(t *testing.T) {
	dir := buildCSVFixtureDir(t)

	s, err := LoadCSV(dir)
	require.NoError(t, err)

	assert.Equal(t, "csv-scenario", s.ScenarioID)
	assert.Equal(t, int64(7), s.Seed)
	assert.Len(t, s.Tracks, 2)
	assert.Len(t, s.Routes, 1)
	assert.Len(t, s.Locomotives, 1)
	assert.Empty(t, s.Workshops)
	require.Len(t, s.Trains, 1)
	require.Len(t, s.Trains[0].Wagons, 2)
	assert.Equal(t, "w1", s.Trains[0].Wagons[0].ID)
	assert.False(t, s.Trains[0].Wagons[0].IsLoaded)
	assert.True(t, s.Trains[0].Wagons[1].IsLoaded)
}

func TestLoadCSV_MissingTable(t *testing.T) {
	dir := buildCSVFixtureDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tracks.csv")))

	_, err := LoadCSV(dir)
	assert.Error(t, err)
}

func TestLoadCSV_InvalidScenarioFailsValidation(t *testing.T) {
	dir := buildCSVFixtureDir(t)
	writeCSVFixture(t, dir, "scenario.csv",
		"scenario_id,start_date,end_date,seed,track_selection_strategy,retrofit_selection_strategy,parking_selection_strategy,loco_delivery_strategy,parking_strategy,parking_normal_threshold,parking_critical_threshold,parking_idle_check_interval,train_to_hump_delay,wagon_hump_interval,screw_coupling_time,screw_decoupling_time,dac_coupling_time,dac_decoupling_time,wagon_retrofit_time,loco_parking_delay\n"+
			",2026-01-01T00:00:00Z,2026-01-03T00:00:00Z,7,first_available,first_available,first_available,direct_delivery,threshold,0.3,0.8,1,0,0,1,1,1,1,5,2\n")

	_, err := LoadCSV(dir)
	assert.Error(t, err)
}

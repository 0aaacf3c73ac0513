package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/popupsim/popupsim/sim"
)

func wagon(id string, length float64, front, back sim.CouplerType) *sim.Wagon {
	return sim.NewWagon(id, length, false, true, front, back)
}

func TestTrimToValidPrefix_TrimsAtCapacity(t *testing.T) {
	wagons := []*sim.Wagon{
		wagon("w1", 10, sim.CouplerScrew, sim.CouplerScrew),
		wagon("w2", 10, sim.CouplerScrew, sim.CouplerScrew),
		wagon("w3", 10, sim.CouplerScrew, sim.CouplerScrew),
	}

	out := TrimToValidPrefix(wagons, 25, 0)
	assert.Len(t, out, 2)
}

func TestTrimToValidPrefix_TrimsAtCouplingIncompatibility(t *testing.T) {
	wagons := []*sim.Wagon{
		wagon("w1", 10, sim.CouplerScrew, sim.CouplerScrew),
		wagon("w2", 10, sim.CouplerDAC, sim.CouplerDAC),
		wagon("w3", 10, sim.CouplerDAC, sim.CouplerDAC),
	}

	// w1's back coupler (screw) is incompatible with w2's front (DAC), so
	// only w1 forms a valid prefix regardless of capacity.
	out := TrimToValidPrefix(wagons, 1000, 0)
	assert.Len(t, out, 1)
	assert.Equal(t, "w1", out[0].ID)
}

func TestTrimToValidPrefix_HybridBridgesIncompatibleEnds(t *testing.T) {
	wagons := []*sim.Wagon{
		wagon("w1", 10, sim.CouplerScrew, sim.CouplerHybrid),
		wagon("w2", 10, sim.CouplerHybrid, sim.CouplerDAC),
	}

	out := TrimToValidPrefix(wagons, 1000, 0)
	assert.Len(t, out, 2)
}

func TestTrimToValidPrefix_RespectsMaxWagons(t *testing.T) {
	wagons := []*sim.Wagon{
		wagon("w1", 1, sim.CouplerScrew, sim.CouplerScrew),
		wagon("w2", 1, sim.CouplerScrew, sim.CouplerScrew),
		wagon("w3", 1, sim.CouplerScrew, sim.CouplerScrew),
	}

	out := TrimToValidPrefix(wagons, 1000, 2)
	assert.Len(t, out, 2)
}

func TestTrimToValidPrefix_EmptyInput(t *testing.T) {
	assert.Empty(t, TrimToValidPrefix(nil, 100, 0))
}

func TestTrimToValidPrefix_FirstWagonTooLong(t *testing.T) {
	wagons := []*sim.Wagon{wagon("w1", 50, sim.CouplerScrew, sim.CouplerScrew)}
	assert.Empty(t, TrimToValidPrefix(wagons, 10, 0))
}

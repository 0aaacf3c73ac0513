package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/popupsim/popupsim/sim"
)

func TestCoordinationService_BeginEndParking(t *testing.T) {
	c := NewCoordinationService()
	assert.False(t, c.ParkingInProgress())

	c.BeginParking()
	assert.True(t, c.ParkingInProgress())

	c.EndParking()
	assert.False(t, c.ParkingInProgress())
}

func TestCoordinationService_AccumulateAndDrain_PreservesFIFOOrder(t *testing.T) {
	c := NewCoordinationService()
	w1 := wagon("w1", 10, sim.CouplerDAC, sim.CouplerDAC)
	w2 := wagon("w2", 10, sim.CouplerDAC, sim.CouplerDAC)

	c.AccumulateRetrofitted(w1)
	c.AccumulateRetrofitted(w2)
	assert.Equal(t, 2, c.PendingRetrofitted())

	drained := c.DrainAccumulator()
	assert.Equal(t, []*sim.Wagon{w1, w2}, drained)
	assert.Equal(t, 0, c.PendingRetrofitted())
}

func TestCoordinationService_DrainAccumulator_ClearsState(t *testing.T) {
	c := NewCoordinationService()
	c.AccumulateRetrofitted(wagon("w1", 10, sim.CouplerDAC, sim.CouplerDAC))
	c.DrainAccumulator()

	assert.Empty(t, c.DrainAccumulator())
}

func TestCoordinationService_PendingWagons_DoesNotDrain(t *testing.T) {
	c := NewCoordinationService()
	w1 := wagon("w1", 10, sim.CouplerDAC, sim.CouplerDAC)
	c.AccumulateRetrofitted(w1)

	assert.Equal(t, []*sim.Wagon{w1}, c.PendingWagons())
	assert.Equal(t, 1, c.PendingRetrofitted(), "PendingWagons must not drain the accumulator")
}

func TestCoordinationService_NextWorkshopTurn_RoundRobins(t *testing.T) {
	c := NewCoordinationService()
	assert.Equal(t, 0, c.NextWorkshopTurn(3))
	assert.Equal(t, 1, c.NextWorkshopTurn(3))
	assert.Equal(t, 2, c.NextWorkshopTurn(3))
	assert.Equal(t, 0, c.NextWorkshopTurn(3))
}

func TestCoordinationService_NextWorkshopTurn_ZeroWorkshops(t *testing.T) {
	c := NewCoordinationService()
	assert.Equal(t, 0, c.NextWorkshopTurn(0))
}

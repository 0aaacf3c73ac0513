package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeWagons(specs ...[2]CouplerType) []*Wagon {
	var out []*Wagon
	for i, s := range specs {
		out = append(out, NewWagon(string(rune('a'+i)), 10, false, true, s[0], s[1]))
	}
	return out
}

func TestRake_ValidateCoupling_AllCompatible(t *testing.T) {
	loco := NewLocomotive("L1", "home", CouplerScrew, CouplerScrew)
	wagons := makeWagons([2]CouplerType{CouplerScrew, CouplerScrew}, [2]CouplerType{CouplerScrew, CouplerScrew})
	rake := Rake{ID: "r1", LocomotiveID: "L1", WagonIDs: []string{wagons[0].ID, wagons[1].ID}}

	assert.NoError(t, rake.ValidateCoupling(loco, wagons))
}

func TestRake_ValidateCoupling_LocoToFirstWagonIncompatible(t *testing.T) {
	loco := NewLocomotive("L1", "home", CouplerScrew, CouplerScrew)
	wagons := makeWagons([2]CouplerType{CouplerDAC, CouplerDAC})
	rake := Rake{ID: "r1", LocomotiveID: "L1", WagonIDs: []string{wagons[0].ID}}

	assert.Error(t, rake.ValidateCoupling(loco, wagons))
}

func TestRake_ValidateCoupling_MidChainIncompatible(t *testing.T) {
	loco := NewLocomotive("L1", "home", CouplerHybrid, CouplerHybrid)
	wagons := makeWagons([2]CouplerType{CouplerScrew, CouplerScrew}, [2]CouplerType{CouplerDAC, CouplerDAC})
	rake := Rake{ID: "r1", LocomotiveID: "L1", WagonIDs: []string{wagons[0].ID, wagons[1].ID}}

	assert.Error(t, rake.ValidateCoupling(loco, wagons))
}

func TestRake_ValidateCoupling_LengthMismatch(t *testing.T) {
	loco := NewLocomotive("L1", "home", CouplerHybrid, CouplerHybrid)
	wagons := makeWagons([2]CouplerType{CouplerScrew, CouplerScrew})
	rake := Rake{ID: "r1", LocomotiveID: "L1", WagonIDs: []string{"a", "b"}}

	assert.Error(t, rake.ValidateCoupling(loco, wagons))
}

func TestRake_ValidateCoupling_EmptyIsValid(t *testing.T) {
	loco := NewLocomotive("L1", "home", CouplerScrew, CouplerScrew)
	rake := Rake{ID: "r1", LocomotiveID: "L1"}

	assert.NoError(t, rake.ValidateCoupling(loco, nil))
}

func TestFirstIncompatibleIndex_ReturnsBreakPosition(t *testing.T) {
	wagons := makeWagons(
		[2]CouplerType{CouplerScrew, CouplerScrew},
		[2]CouplerType{CouplerDAC, CouplerDAC},
		[2]CouplerType{CouplerDAC, CouplerDAC},
	)
	assert.Equal(t, 0, FirstIncompatibleIndex(wagons))
}

func TestFirstIncompatibleIndex_NoBreak(t *testing.T) {
	wagons := makeWagons(
		[2]CouplerType{CouplerScrew, CouplerScrew},
		[2]CouplerType{CouplerScrew, CouplerScrew},
	)
	assert.Equal(t, -1, FirstIncompatibleIndex(wagons))
}

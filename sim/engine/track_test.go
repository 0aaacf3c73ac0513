package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/sim"
)

func newTestTrack(id string, length, fillFactor float64, maxWagons int) *Track {
	return NewTrack(sim.TrackSpec{ID: id, Type: sim.TrackCollection, Length: length, FillFactor: fillFactor, MaxWagons: maxWagons})
}

func TestTrack_TryAcquire_RespectsCapacity(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)

	assert.True(t, tr.TryAcquire(60, 3))
	assert.Equal(t, 60.0, tr.Occupied)
	assert.Equal(t, 3, tr.WagonCount)

	assert.False(t, tr.TryAcquire(50, 1))
	assert.Equal(t, 60.0, tr.Occupied)
}

func TestTrack_TryAcquire_RespectsMaxWagons(t *testing.T) {
	tr := newTestTrack("t1", 1000, 1.0, 2)

	assert.True(t, tr.TryAcquire(10, 2))
	assert.False(t, tr.TryAcquire(10, 1))
}

func TestTrack_Acquire_QueuesWhenFull(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)
	tr.TryAcquire(90, 1)

	ready := false
	tr.Acquire(20, 1, func() { ready = true })
	assert.False(t, ready, "request should queue, not run immediately")

	tr.Release(90, 1)
	assert.True(t, ready, "freeing enough space should resume the waiter")
	assert.Equal(t, 20.0, tr.Occupied)
}

func TestTrack_Release_OnlyServesFIFOHead(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)
	tr.TryAcquire(100, 1)

	var firstReady, secondReady bool
	tr.Acquire(60, 1, func() { firstReady = true })
	tr.Acquire(10, 1, func() { secondReady = true })

	// Freeing only 30 doesn't fit the 60-unit head waiter; the smaller
	// second waiter must not jump the queue.
	tr.Release(30, 0)
	assert.False(t, firstReady)
	assert.False(t, secondReady)

	// Freeing enough for the head unblocks it, and then the loop continues
	// to the next head (the second waiter) since it now fits too.
	tr.Release(40, 0)
	assert.True(t, firstReady)
	assert.True(t, secondReady)
}

func TestTrack_Release_ClampsWithinTolerance(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)
	tr.TryAcquire(10, 1)

	err := tr.Release(10.05, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, tr.Occupied)
}

func TestTrack_Release_ExcessBeyondToleranceIsFatal(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)
	tr.TryAcquire(10, 1)

	err := tr.Release(25, 1)
	require.Error(t, err)
	var capErr *CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, "t1", capErr.Track)
	assert.Equal(t, 10.0, tr.Occupied, "a rejected release must not mutate occupancy")
}

func TestTrack_Occupancy(t *testing.T) {
	tr := newTestTrack("t1", 100, 0.5, 0)
	assert.Equal(t, 0.0, tr.Occupancy())

	tr.TryAcquire(25, 1)
	assert.InDelta(t, 0.5, tr.Occupancy(), 1e-9)
}

func TestTrack_HighFillFraction_TracksTimeAboveThreshold(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)

	tr.noteOccupancy(0)
	tr.TryAcquire(90, 1) // 0.90 > 0.85 threshold
	tr.noteOccupancy(10) // 10 minutes at 90% fill

	require.NoError(t, tr.Release(50, 0)) // occupancy now 0.40, below threshold

	// Advance another 10 minutes at 40% fill (not counted), then flush to 20.
	assert.InDelta(t, 0.5, tr.HighFillFraction(20), 1e-9)
}

func TestTrack_HighFillFraction_ZeroWhenNeverHigh(t *testing.T) {
	tr := newTestTrack("t1", 100, 1.0, 0)
	tr.TryAcquire(10, 1)
	assert.Equal(t, 0.0, tr.HighFillFraction(100))
}

func TestFilterByType_FiltersAndSortsByID(t *testing.T) {
	tracks := map[string]*Track{
		"c-2": newTestTrack("c-2", 100, 1.0, 0),
		"c-1": newTestTrack("c-1", 100, 1.0, 0),
		"w-1": NewTrack(sim.TrackSpec{ID: "w-1", Type: sim.TrackWorkshop, Length: 100, FillFactor: 1.0}),
	}

	out := FilterByType(tracks, sim.TrackCollection, 0)
	assert.Len(t, out, 2)
	assert.Equal(t, "c-1", out[0].Spec.ID)
	assert.Equal(t, "c-2", out[1].Spec.ID)
}

func TestFilterByType_ExcludesTracksBelowMinFree(t *testing.T) {
	tracks := map[string]*Track{
		"c-1": newTestTrack("c-1", 100, 1.0, 0),
	}
	tracks["c-1"].TryAcquire(95, 1)

	out := FilterByType(tracks, sim.TrackCollection, 10)
	assert.Empty(t, out)
}

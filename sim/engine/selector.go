package engine

import (
	"math/rand"
	"sort"

	"github.com/popupsim/popupsim/sim"
	"github.com/popupsim/popupsim/sim/scenario"
)

// TrackSelector picks one candidate track for a given hop, per one of the
// five strategies named in spec §4.5. A separate selector instance is kept
// per selection dimension (collection/retrofit/parking) so round-robin
// cursors and random draws in one dimension never interact with another's
// (spec §4.5, §9).
type TrackSelector struct {
	strategy scenario.SelectionStrategy
	rng      *rand.Rand
	cursor   int
}

// NewTrackSelector builds a selector for one dimension. rng may be nil for
// strategies that never draw randomness.
func NewTrackSelector(strategy scenario.SelectionStrategy, rng *rand.Rand) *TrackSelector {
	return &TrackSelector{strategy: strategy, rng: rng}
}

// Select returns the chosen track from candidates (already filtered by the
// caller to tracks of the right type; some callers also filter by free
// length, others do not), or nil if candidates is empty. needed is used only
// by best_fit.
func (s *TrackSelector) Select(candidates []*Track, needed float64) *Track {
	if len(candidates) == 0 {
		return nil
	}
	switch s.strategy {
	case scenario.StrategyFirstAvailable:
		return candidates[0]
	case scenario.StrategyLeastOccupied:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Occupancy() < best.Occupancy() {
				best = c
			}
		}
		return best
	case scenario.StrategyBestFit:
		best := candidates[0]
		bestSlack := best.Free() - needed
		for _, c := range candidates[1:] {
			slack := c.Free() - needed
			if slack >= 0 && (bestSlack < 0 || slack < bestSlack) {
				best, bestSlack = c, slack
			}
		}
		return best
	case scenario.StrategyRandom:
		return candidates[s.rng.Intn(len(candidates))]
	case scenario.StrategyRoundRobin:
		fallthrough
	default:
		c := candidates[s.cursor%len(candidates)]
		s.cursor++
		return c
	}
}

// FilterByType returns the subset of tracks of the given type that currently
// have at least `minFree` metres free (within trackTolerance), ordered by
// track ID. The map
// iteration underneath is randomized by Go's runtime; sorting here keeps
// selector behavior (round-robin cursor, first-available) deterministic
// across runs (spec §9: deterministic seeding replaces reliance on ambient
// ordering).
func FilterByType(tracks map[string]*Track, t sim.TrackType, minFree float64) []*Track {
	var out []*Track
	for _, tr := range tracks {
		if tr.Spec.Type == t && tr.Free()+trackTolerance >= minFree {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Spec.ID < out[j].Spec.ID })
	return out
}

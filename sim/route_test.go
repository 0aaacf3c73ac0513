package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteSpec_Endpoints(t *testing.T) {
	r := RouteSpec{ID: "r1", Path: []string{"a", "mid", "b"}}
	from, to, ok := r.Endpoints()
	assert.True(t, ok)
	assert.Equal(t, "a", from)
	assert.Equal(t, "b", to)
}

func TestRouteSpec_Endpoints_TooShortPath(t *testing.T) {
	r := RouteSpec{ID: "r1", Path: []string{"a"}}
	_, _, ok := r.Endpoints()
	assert.False(t, ok)
}

func TestRouteSpec_Validate_RejectsEmptyID(t *testing.T) {
	r := RouteSpec{Path: []string{"a", "b"}, Duration: 1}
	assert.Error(t, r.Validate())
}

func TestRouteSpec_Validate_RejectsShortPath(t *testing.T) {
	r := RouteSpec{ID: "r1", Path: []string{"a"}, Duration: 1}
	assert.Error(t, r.Validate())
}

func TestRouteSpec_Validate_RejectsNegativeDuration(t *testing.T) {
	r := RouteSpec{ID: "r1", Path: []string{"a", "b"}, Duration: -1}
	assert.Error(t, r.Validate())
}

func TestRouteSpec_Validate_AcceptsZeroDuration(t *testing.T) {
	r := RouteSpec{ID: "r1", Path: []string{"a", "b"}, Duration: 0}
	assert.NoError(t, r.Validate())
}

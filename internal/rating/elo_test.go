package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyK(t *testing.T) {
	t.Run("player thresholds", func(t *testing.T) {
		assert.Equal(t, 75, PlayerPolicy.K(900))
		assert.Equal(t, 75, PlayerPolicy.K(1099))
		assert.Equal(t, 50, PlayerPolicy.K(1100))
		assert.Equal(t, 50, PlayerPolicy.K(1349))
		assert.Equal(t, 32, PlayerPolicy.K(1350))
		assert.Equal(t, 32, PlayerPolicy.K(2000))
	})

	t.Run("team thresholds", func(t *testing.T) {
		assert.Equal(t, 50, TeamPolicy.K(1000))
		assert.Equal(t, 50, TeamPolicy.K(1349))
		assert.Equal(t, 32, TeamPolicy.K(1350))
	})

	t.Run("squad is constant", func(t *testing.T) {
		assert.Equal(t, 75, SquadPolicy.K(500))
		assert.Equal(t, 75, SquadPolicy.K(1350))
		assert.Equal(t, 75, SquadPolicy.K(2500))
	})

	t.Run("policy lookup by kind", func(t *testing.T) {
		assert.Equal(t, PlayerPolicy, PolicyFor(KindPlayer))
		assert.Equal(t, TeamPolicy, PolicyFor(KindTeam))
		assert.Equal(t, SquadPolicy, PolicyFor(KindSquad))
	})
}

func TestExpectedScore(t *testing.T) {
	assert.Equal(t, 500, ExpectedScore(1000, 1000))
	assert.Equal(t, 760, ExpectedScore(1200, 1000))
	assert.Equal(t, 240, ExpectedScore(1000, 1200))
}

func TestComputeDelta(t *testing.T) {
	t.Run("equal ratings with K=32", func(t *testing.T) {
		assert.Equal(t, 16, ComputeDelta(1000, 1000, true, 32))
		assert.Equal(t, -16, ComputeDelta(1000, 1000, false, 32))
	})

	t.Run("favourite gains little", func(t *testing.T) {
		assert.Equal(t, 8, ComputeDelta(1200, 1000, true, 32))
		assert.Equal(t, -8, ComputeDelta(1000, 1200, false, 32))
	})

	t.Run("underdog gains a lot", func(t *testing.T) {
		assert.Equal(t, 24, ComputeDelta(1000, 1200, true, 32))
		assert.Equal(t, -24, ComputeDelta(1200, 1000, false, 32))
	})

	t.Run("new rating is rounded half-up before taking the delta", func(t *testing.T) {
		// 75 * 0.5 = 37.5 exactly: 1037.5 -> 1038 and 962.5 -> 963.
		assert.Equal(t, 38, ComputeDelta(1000, 1000, true, 75))
		assert.Equal(t, -37, ComputeDelta(1000, 1000, false, 75))
	})

	t.Run("adjust uses the kind's K at the current rating", func(t *testing.T) {
		assert.Equal(t, 38, Adjust(KindPlayer, 1000, 1000, true))
		assert.Equal(t, 16, Adjust(KindPlayer, 1400, 1400, true))
		assert.Equal(t, 25, Adjust(KindTeam, 1000, 1000, true))
		assert.Equal(t, 38, Adjust(KindSquad, 1400, 1400, true))
	})
}

func TestComputeDeltaSymmetryUnderEqualK(t *testing.T) {
	for r1 := 700; r1 <= 1900; r1 += 37 {
		for r2 := 700; r2 <= 1900; r2 += 53 {
			win := ComputeDelta(r1, r2, true, 32)
			loss := ComputeDelta(r2, r1, false, 32)
			assert.Equal(t, win, -loss, "r1=%d r2=%d", r1, r2)
		}
	}
}

// With K=32 the change never lands on an exact half, so the two sides of a
// game always mirror each other. With K=50 or 75 it can, and half-up rounding
// then favours the winner by one point.
func TestComputeDeltaAsymmetricAtExactHalves(t *testing.T) {
	cases := []struct {
		name           string
		winner, loser  int
		k              int
		wantWin, wantL int
	}{
		{name: "K=50 900 beats 907", winner: 900, loser: 907, k: 50, wantWin: 26, wantL: -25},
		{name: "K=75 even ratings", winner: 1000, loser: 1000, k: 75, wantWin: 38, wantL: -37},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			win := ComputeDelta(tc.winner, tc.loser, true, tc.k)
			loss := ComputeDelta(tc.loser, tc.winner, false, tc.k)
			assert.Equal(t, tc.wantWin, win)
			assert.Equal(t, tc.wantL, loss)
			assert.Equal(t, 1, win+loss)
		})
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, Default, Average(nil))
	assert.Equal(t, 1000, Average([]int{1000, 1000}))
	assert.Equal(t, 1001, Average([]int{1000, 1001}))
	assert.Equal(t, 1000, Average([]int{1000, 1000, 1001}))
	assert.Equal(t, 1150, Average([]int{1100, 1200}))
}

package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankFor(t *testing.T) {
	cases := []struct {
		points int
		want   Rank
	}{
		{0, Bronze},
		{999, Bronze},
		{1000, Silver},
		{4999, Silver},
		{5000, Gold},
		{9999, Gold},
		{10000, Platinum},
		{999999, Platinum},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, RankFor(c.points), "points=%d", c.points)
	}
}

func TestRankMonotonicity(t *testing.T) {
	// 任意非负增量序列下段位不允许下降
	increments := []int{0, 1, 249, 340, 600, 100, 3000, 1, 5000, 42}

	points := 0
	prev := RankFor(points)
	for _, inc := range increments {
		points += inc
		next := RankFor(points)
		assert.GreaterOrEqual(t, rankIndex(next), rankIndex(prev), "rank dropped at %d points", points)
		prev = next
	}
}

func rankIndex(r Rank) int {
	for i, t := range Thresholds {
		if t.Rank == r {
			return i
		}
	}
	return -1
}

func TestEarnedPoints(t *testing.T) {
	assert.Equal(t, 340, EarnedPoints(400, 85))
	assert.Equal(t, 400, EarnedPoints(400, 100))
	assert.Equal(t, 280, EarnedPoints(400, 70))
	assert.Equal(t, 0, EarnedPoints(400, 0))
	assert.Equal(t, 175, EarnedPoints(250, 70))
}

func TestApply(t *testing.T) {
	t.Run("积分累加且触发升段", func(t *testing.T) {
		out := Apply(900, Bronze, 85, 400)
		assert.Equal(t, 340, out.EarnedPoints)
		assert.Equal(t, 1240, out.NewPoints)
		assert.Equal(t, "Silver", out.NewRank)
		assert.True(t, out.RankUp)
	})

	t.Run("未跨过门槛时不升段", func(t *testing.T) {
		out := Apply(100, Bronze, 80, 250)
		assert.Equal(t, 200, out.EarnedPoints)
		assert.Equal(t, 300, out.NewPoints)
		assert.Equal(t, "Bronze", out.NewRank)
		assert.False(t, out.RankUp)
	})

	t.Run("恰好到达门槛即升段", func(t *testing.T) {
		out := Apply(900, Bronze, 100, 100)
		assert.Equal(t, 1000, out.NewPoints)
		assert.Equal(t, "Silver", out.NewRank)
		assert.True(t, out.RankUp)
	})
}

func TestNextThreshold(t *testing.T) {
	next, ok := NextThreshold(900)
	assert.True(t, ok)
	assert.Equal(t, Silver, next.Rank)
	assert.Equal(t, 1000, next.Threshold)

	next, ok = NextThreshold(5000)
	assert.True(t, ok)
	assert.Equal(t, Platinum, next.Rank)

	_, ok = NextThreshold(10000)
	assert.False(t, ok)
}

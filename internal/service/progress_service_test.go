package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskEquivalentHints(t *testing.T) {
	cases := []struct {
		name   string
		points int
		want   string
	}{
		{"接近下一段位", 900, "1 Easy Submission to Silver"},
		{"零积分起步", 0, "2 Hard Submissions to Silver"},
		{"中等差距", 4500, "2 Medium Submissions to Gold"},
		{"刚升 Silver", 1000, "7 Hard Submissions to Gold"},
		{"恰好 Platinum", 10000, "Max Rank Achieved"},
		{"超过最高段位", 12000, "Max Rank Achieved"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, taskEquivalent(tc.points))
		})
	}
}

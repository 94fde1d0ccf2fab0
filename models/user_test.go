package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankForRecipeCount(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "Beginner"},
		{-1, "Beginner"},
		{1, "Pro"},
		{5, "Pro"},
		{6, "Professional Chef"},
		{10, "Professional Chef"},
		{11, "Master Chef"},
		{15, "Master Chef"},
		{16, "Legendary Chef"},
		{100, "Legendary Chef"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RankForRecipeCount(tt.count), "count=%d", tt.count)
	}
}

func TestRankIsMonotonic(t *testing.T) {
	order := map[string]int{
		"Beginner":          0,
		"Pro":               1,
		"Professional Chef": 2,
		"Master Chef":       3,
		"Legendary Chef":    4,
	}

	prev := RankForRecipeCount(0)
	for count := 1; count <= 30; count++ {
		rank := RankForRecipeCount(count)
		assert.GreaterOrEqual(t, order[rank], order[prev], "rank regressed at count %d", count)
		prev = rank
	}
}

func TestRankLadderAgreesWithRankForRecipeCount(t *testing.T) {
	// The ladder is also evaluated store-side; both views must agree at and
	// just below every rung.
	for _, rung := range RankLadder() {
		assert.Equal(t, rung.Label, RankForRecipeCount(rung.MinCount))
		assert.NotEqual(t, rung.Label, RankForRecipeCount(rung.MinCount-1))
	}
	assert.Equal(t, DefaultRank(), RankForRecipeCount(0))
}

func TestRankRegressesWithCount(t *testing.T) {
	// Deleting a recipe at the 6 -> 5 boundary moves the user back down.
	assert.Equal(t, "Professional Chef", RankForRecipeCount(6))
	assert.Equal(t, "Pro", RankForRecipeCount(5))
}

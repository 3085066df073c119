package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func TestRanker_OrdersByScore(t *testing.T) {
	veteran := qualifiedGuard()
	veteran.ID = "veteran"

	newcomer := qualifiedGuard()
	newcomer.ID = "newcomer"

	expired := qualifiedGuard()
	expired.ID = "expired"
	expired.LicenseExpiry = "2024-01-01"

	ranker := NewRanker(NewScorer(testNow), map[string]model.GuardHistory{
		"veteran":  familiarHistory(100),
		"expired":  familiarHistory(100),
		"newcomer": {ReliabilityScore: reliability(80)},
	})

	ranked, err := ranker.Rank([]model.Guard{expired, newcomer, veteran}, openShift())
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "veteran", ranked[0].Guard.ID)
	assert.Equal(t, 100.0, ranked[0].Score)
	assert.True(t, ranked[0].Recommended)

	assert.Equal(t, "newcomer", ranked[1].Guard.ID)
	assert.Equal(t, 87.0, ranked[1].Score)
	assert.True(t, ranked[1].Recommended)

	assert.Equal(t, "expired", ranked[2].Guard.ID)
	assert.False(t, ranked[2].Recommended)
}

func TestRanker_UnknownGuardGetsEmptyHistory(t *testing.T) {
	ranker := NewRanker(NewScorer(testNow), nil)

	ranked, err := ranker.Rank([]model.Guard{qualifiedGuard()}, openShift())
	require.NoError(t, err)

	// 100 less site familiarity (10) and reliability at the default 70 (11 of 15)
	require.Len(t, ranked, 1)
	assert.Equal(t, 86.0, ranked[0].Score)
}

func TestRanker_PropagatesScoringErrors(t *testing.T) {
	guard := qualifiedGuard()
	guard.LicenseExpiry = "soon"

	_, err := NewRanker(NewScorer(testNow), nil).Rank([]model.Guard{guard}, openShift())
	assert.Error(t, err)
}

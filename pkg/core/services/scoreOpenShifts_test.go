package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func TestScoreOpenShifts(t *testing.T) {
	store := newMockStore()
	store.addGuards(testGuard("g1", "Alex Smith"))

	needsCCTV := testShift("cctv", "2024-06-20", "09:00", "17:00")
	needsCCTV.RequiredSkills = []string{"CCTV"}

	plain := testShift("plain", "2024-06-21", "09:00", "17:00")

	past := testShift("past", "2024-06-01", "09:00", "17:00")

	draft := testShift("draft", "2024-06-22", "09:00", "17:00")
	draft.Status = model.StatusDraft

	offeredElsewhere := testShift("offered-g2", "2024-06-23", "09:00", "17:00")
	offeredElsewhere.Status = model.StatusOffered
	offeredElsewhere.OfferedTo = "g2"

	offeredToMe := testShift("offered-g1", "2024-06-24", "09:00", "17:00")
	offeredToMe.Status = model.StatusOffered
	offeredToMe.OfferedTo = "g1"

	assigned := testShift("assigned", "2024-06-25", "09:00", "17:00")
	assigned.GuardID = "g3"
	assigned.Status = model.StatusAssigned

	store.addShifts(needsCCTV, plain, past, draft, offeredElsewhere, offeredToMe, assigned)

	scored, err := ScoreOpenShifts(context.Background(), store, testDeps(&recordingSink{}, nil), "g1")
	require.NoError(t, err)

	var ids []string
	for _, s := range scored {
		ids = append(ids, s.Shift.ID)
	}
	assert.Equal(t, []string{"plain", "offered-g1", "cctv"}, ids, "best first, ties in date order")

	assert.Greater(t, scored[0].Result.Score, scored[2].Result.Score)
	assert.Equal(t, scored[0].Result.Score, scored[1].Result.Score)
}

func TestScoreOpenShifts_UnknownGuard(t *testing.T) {
	store := newMockStore()
	_, err := ScoreOpenShifts(context.Background(), store, testDeps(&recordingSink{}, nil), "nobody")
	assert.Error(t, err)
}

func TestOfferedTo(t *testing.T) {
	tests := []struct {
		offeredTo string
		want      bool
	}{
		{"", true},
		{model.OfferedToAll, true},
		{"g1", true},
		{"g2", false},
	}
	for _, tt := range tests {
		shift := model.Shift{OfferedTo: tt.offeredTo}
		assert.Equal(t, tt.want, offeredTo(shift, "g1"), "offeredTo=%q", tt.offeredTo)
	}
}

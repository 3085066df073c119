package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func TestImportGuards(t *testing.T) {
	store := newMockStore()
	store.addGuards(testGuard("g1", "Old Name"))
	sink := &recordingSink{}

	saved, err := ImportGuards(context.Background(), store, testDeps(sink, nil), []model.Guard{
		testGuard("g1", "Alex Smith"),
		testGuard("g2", "Jo Brown"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, saved)
	assert.Equal(t, "Alex Smith", store.guards["g1"].Name)
	assert.Contains(t, store.guards, "g2")

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.ActionGuardsImported, sink.events[0].Action)
	assert.Equal(t, []string{"g1", "g2"}, sink.events[0].Details["guardIds"])
}

func TestImportGuards_StoreError(t *testing.T) {
	store := newMockStore()
	store.upsertErr = errStore
	sink := &recordingSink{}

	saved, err := ImportGuards(context.Background(), store, testDeps(sink, nil), []model.Guard{testGuard("g1", "Alex Smith")})
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 0, saved)
	assert.Empty(t, sink.events)
}

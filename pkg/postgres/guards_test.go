package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReliabilityScore(t *testing.T) {
	stored := 95.0

	tests := []struct {
		name      string
		stored    *float64
		completed int
		noShows   int
		expected  *float64
	}{
		{"no history", nil, 0, 0, nil},
		{"derived from attendance", nil, 8, 2, ptr(80.0)},
		{"stored score wins", &stored, 1, 9, &stored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reliabilityScore(tt.stored, tt.completed, tt.noShows)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}

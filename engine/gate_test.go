package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artrec/hunterd/store"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		total         int32
		rights        int32
		hasCandidates bool
		want          ServingState
	}{
		{"no pool yet", 0, 0, false, Onboarding},
		{"fresh pool", 0, 0, true, ColdStartServing},
		{"below threshold", 4, 4, true, ColdStartServing},
		{"at threshold", 5, 3, true, ActiveLearning},
		{"just past threshold", 6, 3, true, PersonalizedServing},
		{"mid training", 20, 12, true, PersonalizedServing},
		{"long tail", 40, 25, true, PersonalizedServing},
		{"training complete", 35, 30, true, TrainingComplete},
		{"training complete without pool", 35, 30, false, TrainingComplete},
		{"rights past limit", 60, 45, true, TrainingComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &store.SwipeStats{TotalSwipes: tt.total, RightSwipes: tt.rights}
			require.Equal(t, tt.want, Evaluate(stats, tt.hasCandidates))
		})
	}
}

func TestEvaluateNilStats(t *testing.T) {
	require.Equal(t, ColdStartServing, Evaluate(nil, true))
	require.Equal(t, Onboarding, Evaluate(nil, false))
}

func TestPersonalized(t *testing.T) {
	require.False(t, Onboarding.Personalized())
	require.False(t, ColdStartServing.Personalized())
	require.True(t, ActiveLearning.Personalized())
	require.True(t, PersonalizedServing.Personalized())
	require.False(t, TrainingComplete.Personalized())
}

func TestUpdateDue(t *testing.T) {
	tests := []struct {
		total int32
		want  bool
	}{
		{0, false},
		{3, false},
		{4, false},
		{5, true},
		{6, false},
		{10, true},
		{13, false},
		{30, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, UpdateDue(tt.total), "total=%d", tt.total)
	}
}

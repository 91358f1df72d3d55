package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenoMatch/RenoIntake/internal/models"
	"github.com/RenoMatch/RenoIntake/internal/testutil"
)

func TestEstimateAbsentState(t *testing.T) {
	est := NewPriceEstimator(testutil.FailingGenAI())
	assert.Nil(t, est.Estimate(context.Background(), nil))
}

func TestEstimateEmptyStateDefaultTier(t *testing.T) {
	est := NewPriceEstimator(testutil.FailingGenAI())
	got := est.Estimate(context.Background(), models.ProjectState{})
	require.NotNil(t, got)
	assert.Equal(t, 700, got.Min)
	assert.Equal(t, 1500, got.Max)
}

func TestEstimateExplicitBudgetRange(t *testing.T) {
	// The budget tier never touches the generation client.
	est := NewPriceEstimator(testutil.FailingGenAI())

	tests := []struct {
		name     string
		budget   string
		wantMin  int
		wantMax  int
	}{
		{"two numbers", "entre 2000 et 5000 euros", 2000, 5000},
		{"inverted bounds swapped", "5000 à 2000 euros", 2000, 5000},
		{"single small amount spreads 30%", "environ 800", 560, 1040},
		{"single medium amount spreads 20%", "7000 euros", 5600, 8400},
		{"single large amount spreads 15%", "20000", 17000, 23000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.ProjectState{models.FieldBudgetRange: tt.budget}
			got := est.Estimate(context.Background(), state)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantMin, got.Min)
			assert.Equal(t, tt.wantMax, got.Max)
		})
	}
}

func TestEstimateGenerationTier(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"1500-3000"}}
	est := NewPriceEstimator(client)

	state := models.ProjectState{models.FieldProjectDescription: "refaire toute la cuisine"}
	got := est.Estimate(context.Background(), state)
	require.NotNil(t, got)
	assert.Equal(t, 1500, got.Min)
	assert.Equal(t, 3000, got.Max)
	require.Len(t, client.Calls, 1)
	assert.Contains(t, client.Calls[0].UserPrompt, "refaire toute la cuisine")
}

func TestEstimateGenerationTierSingleNumberBand(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"autour de 2500 euros"}}
	est := NewPriceEstimator(client)

	got := est.Estimate(context.Background(), models.ProjectState{models.FieldProjectDescription: "peinture"})
	require.NotNil(t, got)
	assert.Equal(t, 2000, got.Min)
	assert.Equal(t, 3000, got.Max)
}

func TestEstimateGenerationTierInvertedBoundsSwapped(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"3000-1500"}}
	est := NewPriceEstimator(client)

	got := est.Estimate(context.Background(), models.ProjectState{models.FieldProjectDescription: "carrelage"})
	require.NotNil(t, got)
	assert.LessOrEqual(t, got.Min, got.Max)
	assert.Equal(t, 1500, got.Min)
}

func TestEstimateKeywordTierOnOutage(t *testing.T) {
	est := NewPriceEstimator(testutil.FailingGenAI())

	state := models.ProjectState{
		models.FieldProjectCategory:    "plomberie",
		models.FieldProjectDescription: "fuite d'eau sous l'évier",
	}
	got := est.Estimate(context.Background(), state)
	require.NotNil(t, got)
	assert.Equal(t, 210, got.Min)
	assert.Equal(t, 450, got.Max)
}

func TestEstimateKeywordTierFirstMatchWins(t *testing.T) {
	est := NewPriceEstimator(testutil.FailingGenAI())

	// "cuisine" precedes "rénovation" in the base-price table, so it wins
	// even though both keywords are present.
	state := models.ProjectState{models.FieldProjectCategory: "rénovation de cuisine"}
	got := est.Estimate(context.Background(), state)
	require.NotNil(t, got)
	assert.Equal(t, 3500, got.Min)
	assert.Equal(t, 7500, got.Max)
}

func TestEstimateKeywordTierDefaultBase(t *testing.T) {
	est := NewPriceEstimator(testutil.FailingGenAI())

	state := models.ProjectState{models.FieldProjectCategory: "aménagement extérieur"}
	got := est.Estimate(context.Background(), state)
	require.NotNil(t, got)
	assert.Equal(t, 700, got.Min)
	assert.Equal(t, 1500, got.Max)
}

func TestEstimateUnparseableGenerationFallsToKeywords(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"je ne peux pas estimer ce projet"}}
	est := NewPriceEstimator(client)

	state := models.ProjectState{models.FieldProjectCategory: "peinture"}
	got := est.Estimate(context.Background(), state)
	require.NotNil(t, got)
	assert.Equal(t, 560, got.Min)
	assert.Equal(t, 1200, got.Max)
}

func TestEstimateMinNeverExceedsMax(t *testing.T) {
	states := []models.ProjectState{
		{},
		{models.FieldBudgetRange: "9000 à 1000"},
		{models.FieldBudgetRange: "environ 999"},
		{models.FieldBudgetRange: "10000"},
		{models.FieldProjectCategory: "électricité"},
		{models.FieldProjectDescription: "gros chantier de rénovation"},
	}
	est := NewPriceEstimator(testutil.FailingGenAI())
	for _, state := range states {
		got := est.Estimate(context.Background(), state)
		require.NotNil(t, got)
		assert.LessOrEqual(t, got.Min, got.Max, "state %v", state)
	}
}

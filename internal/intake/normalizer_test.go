package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenoMatch/RenoIntake/internal/models"
	"github.com/RenoMatch/RenoIntake/internal/testutil"
)

func TestNormalizeUnknownFieldFails(t *testing.T) {
	n := NewResponseNormalizer(testutil.FailingGenAI())

	_, err := n.Normalize(context.Background(), "nombre_de_pieces", "trois", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnknownField))
}

func TestNormalizeEmptyRawValueUnchanged(t *testing.T) {
	client := testutil.FailingGenAI()
	n := NewResponseNormalizer(client)

	got, err := n.Normalize(context.Background(), models.FieldProjectDescription, "   ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "   ", got)
	assert.Empty(t, client.Calls, "empty input must not call generation")
}

func TestNormalizeGenerationFailureKeepsRaw(t *testing.T) {
	n := NewResponseNormalizer(testutil.FailingGenAI())

	raw := "ben je voudrais refaire la peinture du salon quoi"
	got, err := n.Normalize(context.Background(), models.FieldProjectDescription, raw, "", "")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestNormalizeCleansValue(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"Refaire la peinture du salon"}}
	n := NewResponseNormalizer(client)

	got, err := n.Normalize(context.Background(), models.FieldProjectDescription,
		"ben je voudrais refaire la peinture du salon quoi", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Refaire la peinture du salon", got)
}

func TestNormalizeStripsWrappingQuotes(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{` «Paris, France» `}}
	n := NewResponseNormalizer(client)

	got, err := n.Normalize(context.Background(), models.FieldProjectLocation, "j'habite à paris", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Paris, France", got)
}

func TestNormalizeRejectsDegenerateResults(t *testing.T) {
	raw := "carrelage de la salle de bain"
	tests := []struct {
		name  string
		reply string
	}{
		{"identical echo", raw},
		{"too short", "ok"},
		{"blank", "   "},
		{"quotes only", `"«»"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &testutil.ScriptedGenAI{Responses: []string{tt.reply}}
			n := NewResponseNormalizer(client)
			got, err := n.Normalize(context.Background(), models.FieldProjectDescription, raw, "", "")
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}

func TestNormalizeInstructionFollowsFieldKind(t *testing.T) {
	tests := []struct {
		name    string
		fieldID string
		marker  string
	}{
		{"location fields format city country", models.FieldProjectLocation, "Ville, Pays"},
		{"choice fields keep label verbatim", models.FieldServiceType, "mot pour mot"},
		{"currency fields keep amounts", models.FieldBudgetRange, "montants"},
		{"free text becomes direct statement", models.FieldProjectDescription, "affirmation directe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &testutil.ScriptedGenAI{Responses: []string{"une valeur nettoyée plausible"}}
			n := NewResponseNormalizer(client)
			_, err := n.Normalize(context.Background(), tt.fieldID, "une réponse du client", "", "")
			require.NoError(t, err)
			require.Len(t, client.Calls, 1)
			assert.Contains(t, client.Calls[0].SystemPrompt, tt.marker)
		})
	}
}

func TestNormalizePromptCarriesContext(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"Réparation"}}
	n := NewResponseNormalizer(client)

	_, err := n.Normalize(context.Background(), models.FieldServiceType, "la première",
		"1. Réparation\n2. Installation neuve", "Catégorie de projet: Plomberie")
	require.NoError(t, err)
	require.Len(t, client.Calls, 1)
	assert.Contains(t, client.Calls[0].UserPrompt, "1. Réparation")
	assert.Contains(t, client.Calls[0].UserPrompt, "Catégorie de projet: Plomberie")
}

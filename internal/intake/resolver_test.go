package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenoMatch/RenoIntake/internal/testutil"
)

const sampleSuggestions = "1. Plomberie\n2. Électricité\n3. Chauffage"

func TestResolveNoSuggestionsPassthrough(t *testing.T) {
	client := testutil.FailingGenAI()
	r := NewSuggestionResolver(client)

	got := r.Resolve(context.Background(), "je veux refaire ma cuisine", "")
	assert.Equal(t, "je veux refaire ma cuisine", got)
	assert.Empty(t, client.Calls, "passthrough must not call generation")
}

func TestResolvePrimaryExtractionAccepted(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"Plomberie, Électricité"}}
	r := NewSuggestionResolver(client)

	got := r.Resolve(context.Background(), "oui les 2 premiers", sampleSuggestions)
	assert.Equal(t, "Plomberie, Électricité", got)
	require.Len(t, client.Calls, 1)
	assert.Contains(t, client.Calls[0].UserPrompt, sampleSuggestions)
	assert.Contains(t, client.Calls[0].UserPrompt, "oui les 2 premiers")
}

func TestResolveGenerationFailureUsesFallback(t *testing.T) {
	r := NewSuggestionResolver(testutil.FailingGenAI())

	got := r.Resolve(context.Background(), "oui tout ça", sampleSuggestions)
	assert.Equal(t, "Plomberie, Électricité, Chauffage", got)
}

func TestResolveConfirmationEchoRejected(t *testing.T) {
	// A model that just echoes the confirmation extracted nothing; the
	// structural fallback must take over.
	tests := []struct {
		name string
		echo string
	}{
		{"plain oui", "Oui"},
		{"ok with punctuation", "ok !"},
		{"numbered points phrase", "les 3 points"},
		{"parfait", "Parfait."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &testutil.ScriptedGenAI{Responses: []string{tt.echo}}
			r := NewSuggestionResolver(client)
			got := r.Resolve(context.Background(), tt.echo, sampleSuggestions)
			assert.Equal(t, "Plomberie, Électricité, Chauffage", got)
		})
	}
}

func TestResolveByteIdenticalEchoRejected(t *testing.T) {
	input := "je prends la première proposition merci beaucoup"
	client := &testutil.ScriptedGenAI{Responses: []string{input}}
	r := NewSuggestionResolver(client)

	got := r.Resolve(context.Background(), input, sampleSuggestions)
	assert.Equal(t, "Plomberie, Électricité, Chauffage", got)
}

func TestResolveEmptyPrimaryRejected(t *testing.T) {
	client := &testutil.ScriptedGenAI{Responses: []string{"   "}}
	r := NewSuggestionResolver(client)

	got := r.Resolve(context.Background(), "oui", sampleSuggestions)
	assert.Equal(t, "Plomberie, Électricité, Chauffage", got)
}

func TestResolveFallbackHandlesSingleLineEnumeration(t *testing.T) {
	r := NewSuggestionResolver(testutil.FailingGenAI())

	got := r.Resolve(context.Background(), "oui", "1. Plomberie 2. Électricité 3. Chauffage")
	assert.Equal(t, "Plomberie, Électricité, Chauffage", got)
}

func TestResolveFallbackHandlesBulletMarkers(t *testing.T) {
	r := NewSuggestionResolver(testutil.FailingGenAI())

	got := r.Resolve(context.Background(), "d'accord", "- Réparation\n- Installation neuve")
	assert.Equal(t, "Réparation, Installation neuve", got)
}

func TestResolveFallbackSentinelWhenNothingUsable(t *testing.T) {
	r := NewSuggestionResolver(testutil.FailingGenAI())

	// Marker-only suggestion texts leave no fragments to extract.
	for _, text := range []string{"1.", "- "} {
		got := r.Resolve(context.Background(), "oui", text)
		assert.Equal(t, ExtractionFailedMessage, got, "suggestions %q", text)
	}
}

package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenoMatch/RenoIntake/internal/intake"
	"github.com/RenoMatch/RenoIntake/internal/models"
	"github.com/RenoMatch/RenoIntake/internal/store"
	"github.com/RenoMatch/RenoIntake/internal/testutil"
	"github.com/RenoMatch/RenoIntake/internal/whatsapp"
)

func newTestHandler(t *testing.T) (*ResponseHandler, *whatsapp.MockClient, *store.InMemoryStore) {
	t.Helper()
	mock := whatsapp.NewMockClient()
	svc := NewWhatsAppService(mock)
	st := store.NewInMemoryStore()
	orchestrator := intake.NewOrchestrator(st, testutil.FailingGenAI())
	return NewResponseHandler(svc, orchestrator, "whatsapp"), mock, st
}

func TestProcessResponseStartsConversation(t *testing.T) {
	rh, mock, st := newTestHandler(t)

	err := rh.ProcessResponse(context.Background(), models.Response{
		From: "+33 6 12 34 56 78",
		Body: "bonjour",
		Time: 1700000000,
	})
	require.NoError(t, err)

	id, ok := rh.ConversationID("33612345678")
	require.True(t, ok)

	conv, err := st.GetConversation(id)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "33612345678", conv.Recipient)
	assert.Equal(t, "whatsapp", conv.Channel)

	// The greeting with the first intake question went back out.
	require.Len(t, mock.Sent, 1)
	assert.Equal(t, "33612345678", mock.Sent[0].To)
	assert.Contains(t, mock.Sent[0].Body, "Quel type de projet")
}

func TestProcessResponseAdvancesConversation(t *testing.T) {
	rh, mock, st := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, rh.ProcessResponse(ctx, models.Response{From: "33612345678", Body: "bonjour"}))
	require.NoError(t, rh.ProcessResponse(ctx, models.Response{From: "33612345678", Body: "plomberie"}))

	id, ok := rh.ConversationID("33612345678")
	require.True(t, ok)
	state, err := st.GetProjectState(id)
	require.NoError(t, err)
	assert.Equal(t, "plomberie", state.Get(models.FieldProjectCategory))

	// Greeting plus the next question.
	require.Len(t, mock.Sent, 2)
}

func TestProcessResponseReleasesCompletedConversation(t *testing.T) {
	rh, mock, st := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, rh.ProcessResponse(ctx, models.Response{From: "33612345678", Body: "bonjour"}))
	id, ok := rh.ConversationID("33612345678")
	require.True(t, ok)

	// Fill everything but the last field directly, then complete over the wire.
	state := models.ProjectState{}
	for _, fid := range models.FieldIDs() {
		if fid != models.FieldPhotosUploaded {
			state.Set(fid, "renseigné")
		}
	}
	require.NoError(t, st.SaveProjectState(id, state))
	conv, err := st.GetConversation(id)
	require.NoError(t, err)
	conv.TargetField = models.FieldPhotosUploaded
	conv.LastSuggestions = nil
	require.NoError(t, st.SaveConversation(*conv))

	require.NoError(t, rh.ProcessResponse(ctx, models.Response{From: "33612345678", Body: "photos envoyées"}))

	_, ok = rh.ConversationID("33612345678")
	assert.False(t, ok, "completed conversation must release the mapping")
	assert.Contains(t, mock.Sent[len(mock.Sent)-1].Body, "Récapitulatif")
}

func TestProcessResponseInvalidSender(t *testing.T) {
	rh, mock, _ := newTestHandler(t)

	err := rh.ProcessResponse(context.Background(), models.Response{From: "not-a-number", Body: "bonjour"})
	require.Error(t, err)
	assert.Empty(t, mock.Sent)
}

func TestBindConversation(t *testing.T) {
	rh, _, _ := newTestHandler(t)

	require.NoError(t, rh.BindConversation("+33612345678", "conv_api_created"))
	id, ok := rh.ConversationID("33612345678")
	require.True(t, ok)
	assert.Equal(t, "conv_api_created", id)

	assert.Error(t, rh.BindConversation("", "conv_x"))
}

package messaging

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenoMatch/RenoIntake/internal/models"
	"github.com/RenoMatch/RenoIntake/internal/twiliowhatsapp"
	"github.com/RenoMatch/RenoIntake/internal/whatsapp"
)

func TestCanonicalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"digits only", "33612345678", "33612345678", false},
		{"formatted number", "+33 6 12 34 56 78", "33612345678", false},
		{"whatsapp prefix", "whatsapp:+33612345678", "33612345678", false},
		{"empty", "", "", true},
		{"no digits", "not-a-number", "", true},
		{"too short", "12345", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canonicalizePhone(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhatsAppServiceSendEmitsReceipt(t *testing.T) {
	mock := whatsapp.NewMockClient()
	svc := NewWhatsAppService(mock)

	err := svc.SendMessage(context.Background(), "+33612345678", "Bonjour !")
	require.NoError(t, err)
	require.Len(t, mock.Sent, 1)
	assert.Equal(t, "33612345678", mock.Sent[0].To)

	select {
	case receipt := <-svc.Receipts():
		assert.Equal(t, models.MessageStatusSent, receipt.Status)
		assert.Equal(t, "33612345678", receipt.To)
	default:
		t.Fatal("expected a sent receipt")
	}
}

func TestTwilioServiceSendAfterStop(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())
	require.NoError(t, svc.Stop())

	err := svc.SendMessage(context.Background(), "33612345678", "Bonjour")
	assert.ErrorIs(t, err, ErrServiceStopped)
}

func TestTwilioWebhookEmitsResponse(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	form := url.Values{"From": {"whatsapp:+33612345678"}, "Body": {"bonjour"}}
	req := httptest.NewRequest("POST", "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	svc.WebhookHandler(rr, req)
	require.Equal(t, 200, rr.Code)

	select {
	case response := <-svc.Responses():
		assert.Equal(t, "whatsapp:+33612345678", response.From)
		assert.Equal(t, "bonjour", response.Body)
	default:
		t.Fatal("expected an inbound response")
	}
}

func TestTwilioWebhookRejectsMissingFields(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	form := url.Values{"From": {"whatsapp:+33612345678"}}
	req := httptest.NewRequest("POST", "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	svc.WebhookHandler(rr, req)
	assert.Equal(t, 400, rr.Code)
}

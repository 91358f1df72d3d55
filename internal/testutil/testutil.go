// Package testutil provides common test utilities and helpers for RenoIntake tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RenoMatch/RenoIntake/internal/genai"
)

// ErrGenerationDown simulates a total generation outage.
var ErrGenerationDown = errors.New("generation capability unavailable")

// ScriptedGenAI implements genai.ClientInterface with scripted replies, which
// is required to exercise every deterministic fallback branch. Responses are
// consumed in order; the last one repeats once the script is exhausted, so
// idempotence tests see a fixed reply. A non-nil Err fails every call.
type ScriptedGenAI struct {
	Responses []string
	Err       error
	Calls     []genai.Params
}

// Generate returns the next scripted response or the configured error.
func (s *ScriptedGenAI) Generate(ctx context.Context, p genai.Params) (string, error) {
	s.Calls = append(s.Calls, p)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", ErrGenerationDown
	}
	resp := s.Responses[0]
	if len(s.Responses) > 1 {
		s.Responses = s.Responses[1:]
	}
	return resp, nil
}

// FailingGenAI returns a client scripted to fail every generation call.
func FailingGenAI() *ScriptedGenAI {
	return &ScriptedGenAI{Err: ErrGenerationDown}
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, reqBody)
	req.Header.Set("Content-Type", "application/json")
	return req
}

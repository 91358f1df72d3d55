package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   openai.ChatCompletion
	err    error
	gotReq openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.gotReq = params
	if m.err != nil {
		return nil, m.err
	}
	return &m.resp, nil
}

func TestGenerate_Success(t *testing.T) {
	mockResp := openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  Paris, France \n"}},
		},
	}
	client := &Client{chat: &mockChatService{resp: mockResp}, model: openai.ChatModelGPT4oMini}
	out, err := client.Generate(context.Background(), Params{SystemPrompt: "sys", UserPrompt: "usr"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Paris, France" {
		t.Errorf("expected trimmed 'Paris, France', got %q", out)
	}
}

func TestGenerate_PassesSamplingControls(t *testing.T) {
	mock := &mockChatService{resp: openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "ok"}}},
	}}
	client := &Client{chat: mock, model: openai.ChatModelGPT4oMini}
	_, err := client.Generate(context.Background(), Params{SystemPrompt: "s", UserPrompt: "u", Temperature: 0.3, MaxTokens: 150})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.gotReq.Temperature.Value != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", mock.gotReq.Temperature.Value)
	}
	if mock.gotReq.MaxTokens.Value != 150 {
		t.Errorf("expected max tokens 150, got %v", mock.gotReq.MaxTokens.Value)
	}
}

func TestGenerate_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}, model: openai.ChatModelGPT4oMini}
	_, err := client.Generate(context.Background(), Params{SystemPrompt: "sys", UserPrompt: "usr"})
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{}}}, model: openai.ChatModelGPT4oMini}
	_, err := client.Generate(context.Background(), Params{SystemPrompt: "sys", UserPrompt: "usr"})
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Error("expected client instance, got nil")
	}
}

package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RenoMatch/RenoIntake/internal/intake"
	"github.com/RenoMatch/RenoIntake/internal/models"
)

// errorMessage is sent when a reply cannot be processed.
const errorMessage = "Désolé, nous n'avons pas pu traiter votre message. Pouvez-vous réessayer ?"

// ResponseHandler routes inbound channel messages into intake conversations.
// Each sender maps to at most one active conversation; the first message from
// an unknown sender starts one, later messages advance it, and a completed
// intake releases the mapping so the next message starts fresh.
type ResponseHandler struct {
	msgService   Service
	orchestrator *intake.Orchestrator
	channel      string

	mu            sync.RWMutex
	conversations map[string]string // canonical phone -> conversation id
}

// NewResponseHandler creates a handler feeding the given orchestrator and
// replying through the given service.
func NewResponseHandler(msgService Service, orchestrator *intake.Orchestrator, channel string) *ResponseHandler {
	return &ResponseHandler{
		msgService:    msgService,
		orchestrator:  orchestrator,
		channel:       channel,
		conversations: make(map[string]string),
	}
}

// Run consumes inbound responses until the context is cancelled or the
// service's response channel closes.
func (rh *ResponseHandler) Run(ctx context.Context) {
	slog.Info("ResponseHandler.Run: starting", "channel", rh.channel)
	for {
		select {
		case <-ctx.Done():
			slog.Info("ResponseHandler.Run: stopping, context cancelled")
			return
		case response, ok := <-rh.msgService.Responses():
			if !ok {
				slog.Info("ResponseHandler.Run: response channel closed")
				return
			}
			if err := rh.ProcessResponse(ctx, response); err != nil {
				slog.Error("ResponseHandler.Run: failed to process response", "error", err, "from", response.From)
			}
		}
	}
}

// ProcessResponse advances the sender's intake conversation by one turn and
// sends the rendered reply back through the channel.
func (rh *ResponseHandler) ProcessResponse(ctx context.Context, response models.Response) error {
	from, err := rh.msgService.ValidateAndCanonicalizeRecipient(response.From)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}

	rh.mu.RLock()
	conversationID, known := rh.conversations[from]
	rh.mu.RUnlock()

	if !known {
		conv, greeting, err := rh.orchestrator.StartConversation(ctx, from, rh.channel)
		if err != nil {
			rh.sendErrorMessage(ctx, from)
			return fmt.Errorf("failed to start conversation: %w", err)
		}
		rh.mu.Lock()
		rh.conversations[from] = conv.ID
		rh.mu.Unlock()
		slog.Info("ResponseHandler.ProcessResponse: conversation started", "from", from, "conversationID", conv.ID)
		return rh.msgService.SendMessage(ctx, from, greeting)
	}

	result, err := rh.orchestrator.HandleReply(ctx, conversationID, response.Body)
	if err != nil {
		rh.sendErrorMessage(ctx, from)
		return fmt.Errorf("failed to handle reply: %w", err)
	}

	if result.Completed {
		rh.mu.Lock()
		delete(rh.conversations, from)
		rh.mu.Unlock()
		slog.Info("ResponseHandler.ProcessResponse: intake completed", "from", from, "conversationID", conversationID)
	}

	return rh.msgService.SendMessage(ctx, from, result.Reply)
}

// ConversationID returns the active conversation id for a recipient, if any.
func (rh *ResponseHandler) ConversationID(recipient string) (string, bool) {
	from, err := rh.msgService.ValidateAndCanonicalizeRecipient(recipient)
	if err != nil {
		return "", false
	}
	rh.mu.RLock()
	defer rh.mu.RUnlock()
	id, ok := rh.conversations[from]
	return id, ok
}

// BindConversation associates a recipient with an existing conversation, used
// when a conversation is created through the API before the first inbound
// message.
func (rh *ResponseHandler) BindConversation(recipient, conversationID string) error {
	from, err := rh.msgService.ValidateAndCanonicalizeRecipient(recipient)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	rh.mu.Lock()
	defer rh.mu.Unlock()
	rh.conversations[from] = conversationID
	slog.Debug("ResponseHandler.BindConversation: conversation bound", "recipient", from, "conversationID", conversationID)
	return nil
}

func (rh *ResponseHandler) sendErrorMessage(ctx context.Context, to string) {
	if err := rh.msgService.SendMessage(ctx, to, errorMessage); err != nil {
		slog.Error("ResponseHandler.sendErrorMessage: send failed", "error", err, "to", to)
	}
}

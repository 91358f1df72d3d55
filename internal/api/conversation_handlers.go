// Package api provides the stateful conversation handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/RenoMatch/RenoIntake/internal/models"
)

// ConversationStartResult is the payload returned by POST /conversations.
type ConversationStartResult struct {
	Conversation models.Conversation `json:"conversation"`
	Greeting     string              `json:"greeting"`
}

// ConversationDetail is the payload returned by GET /conversations/{id}.
type ConversationDetail struct {
	Conversation models.Conversation `json:"conversation"`
	ProjectState models.ProjectState `json:"project_state"`
}

// startConversationHandler handles POST /conversations.
func (s *Server) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.ConversationStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.startConversationHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	recipient := req.Recipient
	channel := req.Channel
	if channel == "" {
		channel = "api"
	}
	if recipient != "" && s.msgService != nil {
		canonical, err := s.msgService.ValidateAndCanonicalizeRecipient(recipient)
		if err != nil {
			slog.Warn("Server.startConversationHandler: recipient validation failed", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid recipient: "+err.Error()))
			return
		}
		recipient = canonical
	}

	conv, greeting, err := s.orchestrator.StartConversation(r.Context(), recipient, channel)
	if err != nil {
		slog.Error("Server.startConversationHandler: failed to start conversation", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start conversation"))
		return
	}

	// Messaging-channel conversations get the greeting pushed out and the
	// recipient bound so inbound replies route to this conversation.
	if recipient != "" && s.msgService != nil && channel != "api" {
		if err := s.respHandler.BindConversation(recipient, conv.ID); err != nil {
			slog.Error("Server.startConversationHandler: failed to bind conversation", "error", err, "conversationID", conv.ID)
		}
		if err := s.msgService.SendMessage(r.Context(), recipient, greeting); err != nil {
			slog.Error("Server.startConversationHandler: failed to send greeting", "error", err, "conversationID", conv.ID)
		}
	}

	slog.Info("Server.startConversationHandler: conversation started", "conversationID", conv.ID, "channel", channel)
	writeJSONResponse(w, http.StatusCreated, models.Success(ConversationStartResult{Conversation: *conv, Greeting: greeting}))
}

// getConversationHandler handles GET /conversations/{id}.
func (s *Server) getConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conv, err := s.st.GetConversation(id)
	if err != nil {
		slog.Error("Server.getConversationHandler: lookup failed", "error", err, "conversationID", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load conversation"))
		return
	}
	if conv == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
		return
	}

	state, err := s.st.GetProjectState(id)
	if err != nil {
		slog.Error("Server.getConversationHandler: state lookup failed", "error", err, "conversationID", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load project state"))
		return
	}
	if state == nil {
		state = models.ProjectState{}
	}

	writeJSONResponse(w, http.StatusOK, models.Success(ConversationDetail{Conversation: *conv, ProjectState: state}))
}

// conversationMessageHandler handles POST /conversations/{id}/messages.
func (s *Server) conversationMessageHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := r.PathValue("id")

	var req models.ConversationMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.conversationMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.conversationMessageHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	result, err := s.orchestrator.HandleReply(r.Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrConversationNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
			return
		}
		slog.Error("Server.conversationMessageHandler: failed to handle reply", "error", err, "conversationID", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// conversationEstimateHandler handles GET /conversations/{id}/estimate.
func (s *Server) conversationEstimateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	est, err := s.orchestrator.Estimate(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrConversationNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
			return
		}
		slog.Error("Server.conversationEstimateHandler: estimation failed", "error", err, "conversationID", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to estimate"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(est))
}

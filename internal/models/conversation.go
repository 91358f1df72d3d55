// Package models defines conversation session structures for RenoIntake.
package models

import "time"

// ConversationStatus represents the lifecycle status of an intake conversation.
type ConversationStatus string

const (
	// ConversationStatusActive indicates the intake dialogue is in progress.
	ConversationStatusActive ConversationStatus = "active"
	// ConversationStatusCompleted indicates every intake field has been filled.
	ConversationStatusCompleted ConversationStatus = "completed"
	// ConversationStatusAbandoned indicates the client stopped replying.
	ConversationStatusAbandoned ConversationStatus = "abandoned"
)

// IsValidConversationStatus checks if the given status is supported.
func IsValidConversationStatus(status ConversationStatus) bool {
	switch status {
	case ConversationStatusActive, ConversationStatusCompleted, ConversationStatusAbandoned:
		return true
	default:
		return false
	}
}

// Conversation is one intake dialogue session with a client. The engine itself
// is memoryless between calls; the last outbound question, its target field,
// and any offered suggestions live here so the next turn can resolve replies
// against exactly what was shown.
type Conversation struct {
	ID              string             `json:"id"`
	Recipient       string             `json:"recipient,omitempty"` // phone number for messaging channels
	Channel         string             `json:"channel,omitempty"`   // e.g. "whatsapp", "api"
	Status          ConversationStatus `json:"status"`
	LastQuestion    string             `json:"last_question,omitempty"`
	LastSuggestions []string           `json:"last_suggestions,omitempty"`
	TargetField     string             `json:"target_field,omitempty"` // field the last question aimed to fill
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NormalizeRequest is the payload for POST /intake/normalize.
type NormalizeRequest struct {
	FieldID         string `json:"field_id" validate:"required"`
	RawValue        string `json:"raw_value"`
	LastSuggestions string `json:"last_suggestions,omitempty"`
	ProjectContext  string `json:"project_context,omitempty"`
}

// Validate validates a NormalizeRequest. An unknown field id indicates schema
// drift in the caller and fails loudly.
func (r *NormalizeRequest) Validate() error {
	if r.FieldID == "" {
		return ErrEmptyFieldID
	}
	if !IsValidFieldID(r.FieldID) {
		return ErrUnknownField
	}
	return nil
}

// ResolveRequest is the payload for POST /intake/resolve.
type ResolveRequest struct {
	UserInput       string `json:"user_input" validate:"required"`
	SuggestionsText string `json:"suggestions_text,omitempty"`
}

// Validate validates a ResolveRequest.
func (r *ResolveRequest) Validate() error {
	if r.UserInput == "" {
		return ErrEmptyUserInput
	}
	return nil
}

// EstimateRequest is the payload for POST /intake/estimate.
type EstimateRequest struct {
	ProjectState ProjectState `json:"project_state"`
}

// DecideRequest is the payload for POST /intake/decide.
type DecideRequest struct {
	ProjectState ProjectState `json:"project_state"`
	LastTurn     Turn         `json:"last_turn"`
}

// ConversationStartRequest is the payload for starting an intake conversation.
type ConversationStartRequest struct {
	Recipient string `json:"recipient,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

// ConversationMessageRequest is the payload for submitting a client reply.
type ConversationMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// Validate validates a ConversationMessageRequest.
func (r *ConversationMessageRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	return nil
}

// ConversationTurnResult is returned after a client reply has been processed:
// the rendered next outbound message plus the updated project state.
type ConversationTurnResult struct {
	ConversationID string         `json:"conversation_id"`
	Reply          string         `json:"reply"`
	Decision       Decision       `json:"decision"`
	ProjectState   ProjectState   `json:"project_state"`
	Estimate       *PriceEstimate `json:"estimate,omitempty"`
	Completed      bool           `json:"completed"`
}

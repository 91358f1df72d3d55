// Package models defines dialogue decision and project state structures for RenoIntake.
package models

import "errors"

// Error variables for better error handling and testability
var (
	ErrUnknownField       = errors.New("unknown intake field id")
	ErrInvalidAction      = errors.New("invalid dialogue action")
	ErrInvalidTargetField = errors.New("target field is not a canonical intake field")
	ErrEmptyUserInput     = errors.New("user input cannot be empty")
	ErrEmptyFieldID       = errors.New("field id is required")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrConversationNotFound = errors.New("conversation not found")
)

// Action is one dialogue action the decision engine can select.
type Action string

const (
	// ActionAskNext asks the question for the next unfilled field.
	ActionAskNext Action = "ask_next"
	// ActionClarify asks the user to clarify their previous reply.
	ActionClarify Action = "clarify"
	// ActionSuggest offers candidate values the user may confirm.
	ActionSuggest Action = "suggest"
	// ActionValidate recaps collected values and asks for confirmation.
	ActionValidate Action = "validate"
	// ActionFreeTalk answers an off-script user message before steering back.
	ActionFreeTalk Action = "free_talk"
)

// IsValidAction checks if the given action is part of the fixed vocabulary.
func IsValidAction(a Action) bool {
	switch a {
	case ActionAskNext, ActionClarify, ActionSuggest, ActionValidate, ActionFreeTalk:
		return true
	default:
		return false
	}
}

// Decision is the dialogue engine's output: the next action, an optional
// target field, and a rationale string for observability.
type Decision struct {
	Action      Action `json:"action"`
	TargetField string `json:"target_field,omitempty"`
	Rationale   string `json:"rationale"`
}

// Validate rejects decisions outside the fixed action vocabulary or whose
// target field is not a canonical intake field. An out-of-set field id is a
// contract violation, never silently accepted.
func (d *Decision) Validate() error {
	if !IsValidAction(d.Action) {
		return ErrInvalidAction
	}
	if d.TargetField != "" && !IsValidFieldID(d.TargetField) {
		return ErrInvalidTargetField
	}
	return nil
}

// Turn is one exchange: the system's last question or suggestion text, the
// user's raw reply, and (for suggestion turns) the offered suggestion strings.
type Turn struct {
	QuestionOrSuggestion string   `json:"question_or_suggestion"`
	UserReply            string   `json:"user_reply"`
	Suggestions          []string `json:"suggestions,omitempty"`
}

// ProjectState maps field ids to their current canonical values. A field is
// absent until filled and only ever overwritten, never deleted, by a later
// turn targeting the same field.
type ProjectState map[string]string

// IsEmpty reports whether no field has been filled yet.
func (s ProjectState) IsEmpty() bool {
	return len(s) == 0
}

// Get returns the current value for a field id, or "" when unfilled.
func (s ProjectState) Get(fieldID string) string {
	return s[fieldID]
}

// Set writes the canonical value for a field id.
func (s ProjectState) Set(fieldID, value string) {
	s[fieldID] = value
}

// MissingFields returns the unfilled canonical field ids in intake order.
func (s ProjectState) MissingFields() []string {
	var missing []string
	for _, f := range intakeFields {
		if s[f.ID] == "" {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

// Clone returns a shallow copy of the state.
func (s ProjectState) Clone() ProjectState {
	out := make(ProjectState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// PriceEstimate is a {min, max} pair in the project's currency.
// min <= max always holds after Normalize.
type PriceEstimate struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Normalize swaps the bounds if they arrive inverted. The range is never
// reported with min > max.
func (e *PriceEstimate) Normalize() {
	if e.Min > e.Max {
		e.Min, e.Max = e.Max, e.Min
	}
}

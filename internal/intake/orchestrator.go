// Package intake provides the conversation orchestrator tying the four
// engine components to persisted conversation sessions.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RenoMatch/RenoIntake/internal/genai"
	"github.com/RenoMatch/RenoIntake/internal/models"
	"github.com/RenoMatch/RenoIntake/internal/store"
	"github.com/RenoMatch/RenoIntake/internal/util"
)

// Suggestion generation settings for suggest turns.
const (
	suggesterTemperature = 0.6
	suggesterMaxTokens   = 120
)

// Orchestrator drives one intake conversation turn at a time. It owns no
// dialogue state itself: everything it needs is loaded from the store and
// written back, so a conversation survives restarts and can be resumed from
// any turn.
type Orchestrator struct {
	st          store.Store
	genaiClient genai.ClientInterface
	engine      *DecisionEngine
	normalizer  *ResponseNormalizer
	resolver    *SuggestionResolver
	estimator   *PriceEstimator
}

// NewOrchestrator creates an orchestrator with all four intake components
// sharing the given GenAI client.
func NewOrchestrator(st store.Store, genaiClient genai.ClientInterface) *Orchestrator {
	return &Orchestrator{
		st:          st,
		genaiClient: genaiClient,
		engine:      NewDecisionEngine(genaiClient),
		normalizer:  NewResponseNormalizer(genaiClient),
		resolver:    NewSuggestionResolver(genaiClient),
		estimator:   NewPriceEstimator(genaiClient),
	}
}

// StartConversation creates a new conversation session, persists its empty
// project state, and returns the greeting with the first intake question.
func (o *Orchestrator) StartConversation(ctx context.Context, recipient, channel string) (*models.Conversation, string, error) {
	first := models.FirstIntakeField()
	greeting := "Bonjour ! Je vais vous aider à préparer votre projet de rénovation. " + questionForField(first)

	now := time.Now()
	conv := models.Conversation{
		ID:           util.GenerateConversationID(),
		Recipient:    recipient,
		Channel:      channel,
		Status:       models.ConversationStatusActive,
		LastQuestion: greeting,
		TargetField:  first,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.st.SaveConversation(conv); err != nil {
		return nil, "", fmt.Errorf("failed to save new conversation: %w", err)
	}
	if err := o.st.SaveProjectState(conv.ID, models.ProjectState{}); err != nil {
		return nil, "", fmt.Errorf("failed to save initial project state: %w", err)
	}
	slog.Info("Orchestrator.StartConversation: conversation started", "conversationID", conv.ID, "channel", channel)
	return &conv, greeting, nil
}

// HandleReply processes one client reply: resolves suggestion confirmations,
// normalizes the value into the field the last question targeted, persists
// the updated state, and renders the next outbound message. When the intake
// form is complete the conversation closes with a recap and price estimate.
func (o *Orchestrator) HandleReply(ctx context.Context, conversationID, reply string) (*models.ConversationTurnResult, error) {
	conv, err := o.st.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, models.ErrConversationNotFound
	}
	state, err := o.st.GetProjectState(conversationID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = models.ProjectState{}
	}

	// Resolve confirmations against exactly what was shown last turn. The
	// extraction-failed sentinel is recoverable: keep the raw reply.
	value := reply
	suggestionsText := strings.Join(conv.LastSuggestions, "\n")
	if suggestionsText != "" {
		if resolved := o.resolver.Resolve(ctx, reply, suggestionsText); resolved != ExtractionFailedMessage {
			value = resolved
		}
	}

	if conv.TargetField != "" && strings.TrimSpace(value) != "" {
		cleaned, err := o.normalizer.Normalize(ctx, conv.TargetField, value, suggestionsText, summarizeState(state))
		if err != nil {
			return nil, err
		}
		state.Set(conv.TargetField, cleaned)
		if err := o.st.SaveProjectState(conversationID, state); err != nil {
			return nil, err
		}
	}

	result := &models.ConversationTurnResult{ConversationID: conversationID, ProjectState: state}

	if len(state.MissingFields()) == 0 {
		est := o.estimator.Estimate(ctx, state)
		if est != nil {
			if err := o.st.RecordEstimate(conversationID, *est); err != nil {
				slog.Warn("Orchestrator.HandleReply: failed to record estimate", "error", err, "conversationID", conversationID)
			}
		}
		conv.Status = models.ConversationStatusCompleted
		conv.LastQuestion = ""
		conv.TargetField = ""
		conv.LastSuggestions = nil
		result.Decision = models.Decision{Action: models.ActionValidate, Rationale: "all intake fields filled"}
		result.Estimate = est
		result.Completed = true
		result.Reply = completionMessage(state, est)
	} else {
		turn := models.Turn{QuestionOrSuggestion: conv.LastQuestion, UserReply: reply, Suggestions: conv.LastSuggestions}
		decision := o.engine.Decide(ctx, state, turn)
		message, targetField, suggestions := o.renderDecision(ctx, decision, state, conv.TargetField, reply)
		conv.LastQuestion = message
		conv.TargetField = targetField
		conv.LastSuggestions = suggestions
		result.Decision = decision
		result.Reply = message
	}

	conv.UpdatedAt = time.Now()
	if err := o.st.SaveConversation(*conv); err != nil {
		return nil, err
	}
	slog.Debug("Orchestrator.HandleReply: turn processed", "conversationID", conversationID, "action", result.Decision.Action, "completed", result.Completed)
	return result, nil
}

// Estimate recomputes the price estimate for a conversation's current state.
func (o *Orchestrator) Estimate(ctx context.Context, conversationID string) (*models.PriceEstimate, error) {
	conv, err := o.st.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, models.ErrConversationNotFound
	}
	state, err := o.st.GetProjectState(conversationID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = models.ProjectState{}
	}
	return o.estimator.Estimate(ctx, state), nil
}

// renderDecision turns a Decision into the outbound message, the field the
// message targets, and any offered suggestions.
func (o *Orchestrator) renderDecision(ctx context.Context, d models.Decision, state models.ProjectState, prevTarget, lastReply string) (string, string, []string) {
	target := d.TargetField
	if target == "" || state.Get(target) != "" {
		if missing := state.MissingFields(); len(missing) > 0 {
			target = missing[0]
		}
	}

	switch d.Action {
	case models.ActionClarify:
		if prevTarget != "" {
			target = prevTarget
		}
		return "Pouvez-vous préciser ? " + questionForField(target), target, nil
	case models.ActionSuggest:
		suggestions := o.generateSuggestions(ctx, target, state)
		var b strings.Builder
		b.WriteString(questionForField(target))
		b.WriteString("\nVoici quelques pistes :\n")
		for i, s := range suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("Répondez avec la ou les propositions qui vous conviennent.")
		return b.String(), target, suggestions
	case models.ActionValidate:
		return "Voici ce que j'ai compris :\n" + summarizeState(state) + "\nEst-ce correct ?", "", nil
	case models.ActionFreeTalk:
		return o.freeTalkReply(ctx, lastReply, target), target, nil
	default: // ask_next, including the deterministic fallback decision
		return questionForField(target), target, nil
	}
}

// generateSuggestions asks the model for short candidate values for a field,
// degrading to the canned per-field list on any failure.
func (o *Orchestrator) generateSuggestions(ctx context.Context, fieldID string, state models.ProjectState) []string {
	field, ok := models.FieldByID(fieldID)
	if !ok {
		return cannedSuggestionsForField(fieldID)
	}
	reply, err := o.genaiClient.Generate(ctx, genai.Params{
		SystemPrompt: "Propose 3 valeurs courtes et concrètes pour le champ \"" + field.Label + "\" d'un projet de rénovation. Une par ligne, sans numérotation, sans commentaire.",
		UserPrompt:   "Projet :\n" + summarizeState(state),
		Temperature:  suggesterTemperature,
		MaxTokens:    suggesterMaxTokens,
	})
	if err != nil {
		slog.Warn("Orchestrator.generateSuggestions: generation failed, using canned suggestions", "error", err, "fieldID", fieldID)
		return cannedSuggestionsForField(fieldID)
	}
	var suggestions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(enumerationPattern.ReplaceAllString(line, " "))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	if len(suggestions) == 0 {
		return cannedSuggestionsForField(fieldID)
	}
	return suggestions
}

// freeTalkReply answers an off-script message and steers back to the intake.
func (o *Orchestrator) freeTalkReply(ctx context.Context, lastReply, target string) string {
	steer := "Revenons à votre projet : " + questionForField(target)
	reply, err := o.genaiClient.Generate(ctx, genai.Params{
		SystemPrompt: "Tu accompagnes un client d'une place de marché de rénovation. Réponds en une ou deux phrases à son message, puis ramène la discussion vers la qualification de son projet.",
		UserPrompt:   "Message du client : " + lastReply + "\nQuestion à poser ensuite : " + questionForField(target),
		Temperature:  0.7,
		MaxTokens:    150,
	})
	if err != nil {
		slog.Warn("Orchestrator.freeTalkReply: generation failed, using canned steer", "error", err)
		return "Je comprends. " + steer
	}
	return reply
}

// completionMessage renders the final recap with the estimated price range.
func completionMessage(state models.ProjectState, est *models.PriceEstimate) string {
	var b strings.Builder
	b.WriteString("Votre projet est complet ! Récapitulatif :\n")
	b.WriteString(summarizeState(state))
	if est != nil {
		fmt.Fprintf(&b, "\nFourchette estimée : %d à %d €.", est.Min, est.Max)
	}
	b.WriteString("\nNous transmettons votre projet aux artisans correspondants.")
	return b.String()
}

// Package intake provides the dialogue decision engine.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RenoMatch/RenoIntake/internal/genai"
	"github.com/RenoMatch/RenoIntake/internal/models"
)

// Decision generation settings.
const (
	engineTemperature = 0.3
	engineMaxTokens   = 200
)

// FallbackRationale marks the deterministic default decision taken when the
// generation capability is unavailable or returns malformed output.
const FallbackRationale = "fallback: generation unavailable or malformed output, asking first intake question"

// DecisionEngine selects the next dialogue action from the accumulated
// project state and the last turn. Every call is a pure function of its
// inputs; the engine keeps no state of its own, which makes the dialogue
// resumable and replay-safe.
type DecisionEngine struct {
	genaiClient genai.ClientInterface
}

// NewDecisionEngine creates a decision engine backed by the given GenAI client.
func NewDecisionEngine(genaiClient genai.ClientInterface) *DecisionEngine {
	return &DecisionEngine{genaiClient: genaiClient}
}

// Decide returns the next dialogue action. Generation failure, unparseable
// output, an out-of-vocabulary action, or an out-of-set target field all
// degrade to the deterministic fallback decision; the dialogue can never
// stall.
func (e *DecisionEngine) Decide(ctx context.Context, state models.ProjectState, lastTurn models.Turn) models.Decision {
	reply, err := e.genaiClient.Generate(ctx, genai.Params{
		SystemPrompt: decisionInstruction(),
		UserPrompt:   decisionPrompt(state, lastTurn),
		Temperature:  engineTemperature,
		MaxTokens:    engineMaxTokens,
	})
	if err != nil {
		slog.Warn("DecisionEngine.Decide: generation failed, using fallback decision", "error", err)
		return fallbackDecision()
	}

	raw, ok := extractJSONObject(reply)
	if !ok {
		slog.Warn("DecisionEngine.Decide: no JSON object in reply, using fallback decision", "reply_length", len(reply))
		return fallbackDecision()
	}

	var d models.Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		slog.Warn("DecisionEngine.Decide: failed to parse decision JSON, using fallback decision", "error", err)
		return fallbackDecision()
	}
	if err := d.Validate(); err != nil {
		slog.Warn("DecisionEngine.Decide: decision rejected, using fallback decision", "error", err, "action", d.Action, "targetField", d.TargetField)
		return fallbackDecision()
	}

	slog.Debug("DecisionEngine.Decide: decision accepted", "action", d.Action, "targetField", d.TargetField)
	return d
}

// fallbackDecision is the deterministic default: ask the first field in
// intake order.
func fallbackDecision() models.Decision {
	return models.Decision{
		Action:      models.ActionAskNext,
		TargetField: models.FirstIntakeField(),
		Rationale:   FallbackRationale,
	}
}

// decisionInstruction enumerates the canonical field ids and the action
// vocabulary verbatim, so the model cannot invent identifiers.
func decisionInstruction() string {
	var b strings.Builder
	b.WriteString("Tu pilotes le dialogue de qualification d'un projet de rénovation.\n")
	b.WriteString("Choisis la prochaine action la plus utile parmi exactement :\n")
	b.WriteString("ask_next (poser la question du prochain champ), clarify (faire préciser la dernière réponse), ")
	b.WriteString("suggest (proposer des choix), validate (récapituler et faire confirmer), free_talk (répondre à un message hors sujet).\n")
	b.WriteString("Les champs possibles sont exactement :\n")
	b.WriteString(strings.Join(models.FieldIDs(), ", "))
	b.WriteString("\nRéponds uniquement avec un objet JSON de la forme ")
	b.WriteString(`{"action": "...", "target_field": "...", "rationale": "..."}`)
	b.WriteString(". Omets target_field s'il n'est pas pertinent. Aucun autre texte.")
	return b.String()
}

func decisionPrompt(state models.ProjectState, lastTurn models.Turn) string {
	var b strings.Builder
	if summary := summarizeState(state); summary != "" {
		b.WriteString("Champs déjà remplis :\n")
		b.WriteString(summary)
		b.WriteString("\n")
	} else {
		b.WriteString("Aucun champ rempli pour l'instant.\n")
	}
	if missing := state.MissingFields(); len(missing) > 0 {
		fmt.Fprintf(&b, "Champs manquants (dans l'ordre) : %s\n", strings.Join(missing, ", "))
	}
	if lastTurn.QuestionOrSuggestion != "" {
		fmt.Fprintf(&b, "Dernière question ou suggestion : %s\n", lastTurn.QuestionOrSuggestion)
	}
	if lastTurn.UserReply != "" {
		fmt.Fprintf(&b, "Dernière réponse du client : %s\n", lastTurn.UserReply)
	}
	b.WriteString("Décision :")
	return b.String()
}

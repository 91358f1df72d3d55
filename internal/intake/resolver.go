// Package intake provides the suggestion confirmation resolver.
package intake

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/RenoMatch/RenoIntake/internal/genai"
)

// ExtractionFailedMessage is the fixed sentinel returned when neither the
// generation path nor the structural fallback produced a usable value.
// Callers must treat it as a recoverable "no value extracted" outcome.
const ExtractionFailedMessage = "Je n'ai pas réussi à identifier les éléments confirmés."

// Resolution generation settings.
const (
	resolverTemperature = 0.2
	resolverMaxTokens   = 200
)

var (
	// confirmationPattern catches replies that are affirmations with no
	// substantive content. A small fixed vocabulary: best-effort, not a
	// guaranteed detector of every confirmation phrasing.
	confirmationPattern = regexp.MustCompile(`(?i)^(oui|ok|d'accord|daccord|yes|parfait|très bien|tres bien|exactement|tout à fait|c'est ça|c'est bon|tout|tous|les \d+( points| propositions| options)?)[\s.,!]*$`)

	// enumerationPattern matches leading list markers ("1. ", "2) ", "- ", "• ")
	// whether items are on separate lines or run together on one line.
	enumerationPattern = regexp.MustCompile(`(?:^|\s)(?:\d+[.)]\s*|[-•]\s+)`)
)

// SuggestionResolver extracts which previously offered suggestions a
// confirmation utterance accepts, returning their content stripped of list
// numbering and of the confirmation language itself.
type SuggestionResolver struct {
	genaiClient genai.ClientInterface
}

// NewSuggestionResolver creates a resolver backed by the given GenAI client.
func NewSuggestionResolver(genaiClient genai.ClientInterface) *SuggestionResolver {
	return &SuggestionResolver{genaiClient: genaiClient}
}

// Resolve maps userInput onto the subset of suggestionsText it confirms.
// With no suggestions it is a no-op returning userInput verbatim. The
// generation path always runs first; the structural fallback only runs after
// rejection, never in parallel, so the client is never shown two inconsistent
// automatic extractions.
func (r *SuggestionResolver) Resolve(ctx context.Context, userInput, suggestionsText string) string {
	if strings.TrimSpace(suggestionsText) == "" {
		return userInput
	}

	extracted, err := r.genaiClient.Generate(ctx, genai.Params{
		SystemPrompt: resolverInstruction(),
		UserPrompt:   resolverPrompt(userInput, suggestionsText),
		Temperature:  resolverTemperature,
		MaxTokens:    resolverMaxTokens,
	})
	if err != nil {
		slog.Warn("SuggestionResolver.Resolve: generation failed, using structural fallback", "error", err)
		return r.fallback(suggestionsText)
	}

	extracted = strings.TrimSpace(extracted)
	if extracted == "" || extracted == userInput || looksLikeConfirmation(extracted) {
		slog.Debug("SuggestionResolver.Resolve: primary result rejected", "byte_identical", extracted == userInput)
		return r.fallback(suggestionsText)
	}

	slog.Debug("SuggestionResolver.Resolve: primary extraction accepted", "length", len(extracted))
	return extracted
}

// fallback strips enumeration markers from suggestionsText and joins the
// remaining fragments. Yields the fixed sentinel when nothing usable remains.
func (r *SuggestionResolver) fallback(suggestionsText string) string {
	parts := enumerationPattern.Split(suggestionsText, -1)
	var fragments []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fragments = append(fragments, p)
		}
	}
	if len(fragments) == 0 {
		slog.Warn("SuggestionResolver.fallback: no usable fragments in suggestions text")
		return ExtractionFailedMessage
	}
	result := strings.Join(fragments, ", ")
	slog.Debug("SuggestionResolver.fallback: structural extraction succeeded", "fragments", len(fragments))
	return result
}

// looksLikeConfirmation reports whether s is confirmation-only vocabulary.
func looksLikeConfirmation(s string) bool {
	return confirmationPattern.MatchString(strings.TrimSpace(s))
}

func resolverInstruction() string {
	return strings.Join([]string{
		"Un client confirme une ou plusieurs suggestions qui lui ont été proposées pour son projet de rénovation.",
		"Identifie les suggestions confirmées (toutes, un sous-ensemble numéroté, ou une seule) et renvoie uniquement leur contenu.",
		"Retire la numérotation de liste et les mots de confirmation (oui, ok, parfait...).",
		"Sépare plusieurs éléments par une virgule. Aucun autre texte.",
	}, "\n")
}

func resolverPrompt(userInput, suggestionsText string) string {
	var b strings.Builder
	b.WriteString("Suggestions proposées :\n")
	b.WriteString(suggestionsText)
	b.WriteString("\n\nRéponse du client : ")
	b.WriteString(userInput)
	b.WriteString("\n\nContenu confirmé :")
	return b.String()
}

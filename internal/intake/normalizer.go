// Package intake provides the field-aware response normalizer.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RenoMatch/RenoIntake/internal/genai"
	"github.com/RenoMatch/RenoIntake/internal/models"
)

// Normalization generation settings. Low temperature keeps the rewrite close
// to the user's wording.
const (
	normalizerTemperature = 0.2
	normalizerMaxTokens   = 150
	// minCleanedLength guards against a degenerate generation result silently
	// erasing user input: cleaned values at or below this length are discarded.
	minCleanedLength = 3
)

// ResponseNormalizer produces a cleaned canonical value for one intake field
// from a raw user utterance. Normalization is a best-effort refinement, never
// a blocking step: any generation failure returns the raw value unchanged.
type ResponseNormalizer struct {
	genaiClient genai.ClientInterface
}

// NewResponseNormalizer creates a normalizer backed by the given GenAI client.
func NewResponseNormalizer(genaiClient genai.ClientInterface) *ResponseNormalizer {
	return &ResponseNormalizer{genaiClient: genaiClient}
}

// Normalize cleans rawValue for the given field. An unknown field id is a
// caller bug (schema drift) and fails loudly; everything else degrades to
// returning rawValue verbatim.
func (n *ResponseNormalizer) Normalize(ctx context.Context, fieldID, rawValue, lastSuggestions, projectContext string) (string, error) {
	field, ok := models.FieldByID(fieldID)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownField, fieldID)
	}
	if strings.TrimSpace(rawValue) == "" {
		slog.Debug("ResponseNormalizer.Normalize: empty raw value, returning unchanged", "fieldID", fieldID)
		return rawValue, nil
	}

	cleaned, err := n.genaiClient.Generate(ctx, genai.Params{
		SystemPrompt: normalizerInstruction(field),
		UserPrompt:   normalizerPrompt(field, rawValue, lastSuggestions, projectContext),
		Temperature:  normalizerTemperature,
		MaxTokens:    normalizerMaxTokens,
	})
	if err != nil {
		slog.Warn("ResponseNormalizer.Normalize: generation failed, returning raw value", "error", err, "fieldID", fieldID)
		return rawValue, nil
	}

	cleaned = strings.TrimSpace(strings.Trim(strings.TrimSpace(cleaned), `"«»`))
	if cleaned == rawValue || len([]rune(cleaned)) <= minCleanedLength {
		slog.Debug("ResponseNormalizer.Normalize: cleaned value rejected, keeping raw", "fieldID", fieldID, "cleaned_length", len(cleaned))
		return rawValue, nil
	}

	slog.Debug("ResponseNormalizer.Normalize: value cleaned", "fieldID", fieldID, "raw_length", len(rawValue), "cleaned_length", len(cleaned))
	return cleaned, nil
}

// normalizerInstruction builds the field-aware system instruction. It forbids
// pedagogical filler and applies per-kind canonicalization rules.
func normalizerInstruction(field models.FieldSpec) string {
	var b strings.Builder
	b.WriteString("Tu nettoies la réponse d'un client pour le champ \"")
	b.WriteString(field.Label)
	b.WriteString("\" d'un formulaire de projet de rénovation.\n")
	b.WriteString("Réponds uniquement avec la valeur nettoyée, sans guillemets.\n")
	b.WriteString("Interdit : phrases d'encouragement, tournures pédagogiques, méta-commentaires, explications.\n")

	switch field.Kind {
	case models.FieldKindLocation:
		b.WriteString("Supprime les prépositions en tête (à, en, au, sur, dans, chez, vers). ")
		b.WriteString("Formate en \"Ville, Pays\" ou \"Pays\" avec les majuscules corrigées.")
	case models.FieldKindChoice:
		b.WriteString("Conserve le libellé choisi mot pour mot, sans reformulation.")
	case models.FieldKindCurrencyRange:
		b.WriteString("Conserve les montants tels quels, retire uniquement le texte superflu autour.")
	default:
		b.WriteString("Transforme les tournures de suggestion en une affirmation directe à la première personne du projet.")
	}
	return b.String()
}

// normalizerPrompt assembles the user prompt with whatever context is available.
func normalizerPrompt(field models.FieldSpec, rawValue, lastSuggestions, projectContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Champ : %s\nRéponse brute : %s\n", field.Label, rawValue)
	if lastSuggestions != "" {
		fmt.Fprintf(&b, "Suggestions proposées précédemment :\n%s\n", lastSuggestions)
	}
	if projectContext != "" {
		fmt.Fprintf(&b, "Contexte du projet :\n%s\n", projectContext)
	}
	b.WriteString("Valeur nettoyée :")
	return b.String()
}

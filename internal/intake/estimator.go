// Package intake provides the three-tier price estimator.
package intake

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/RenoMatch/RenoIntake/internal/genai"
	"github.com/RenoMatch/RenoIntake/internal/models"
)

// Estimation generation settings. The model is asked for two numbers and
// nothing else, so the token budget stays tight.
const (
	estimatorTemperature = 0.4
	estimatorMaxTokens   = 50
)

// Single-number budget spread factors by magnitude.
const (
	spreadSmall  = 0.30 // under 1 000
	spreadMedium = 0.20 // under 10 000
	spreadLarge  = 0.15 // at or above 10 000
)

// basePrice maps a trade keyword to a fixed base price for the keyword tier.
type basePrice struct {
	keyword string
	price   int
}

// basePrices is scanned in order; the first matching keyword wins. Accented
// and unaccented spellings are both listed because client descriptions mix
// them freely.
var basePrices = []basePrice{
	{"plomberie", 300},
	{"plumbing", 300},
	{"électricité", 350},
	{"electricite", 350},
	{"electrical", 350},
	{"peinture", 800},
	{"painting", 800},
	{"carrelage", 900},
	{"tiling", 900},
	{"cuisine", 5000},
	{"kitchen", 5000},
	{"salle de bain", 4000},
	{"bathroom", 4000},
	{"rénovation", 1200},
	{"renovation", 1200},
}

// defaultBasePrice applies when no trade keyword matches.
const defaultBasePrice = 1000

// Keyword-tier band around the base price.
const (
	keywordTierLowFactor  = 0.7
	keywordTierHighFactor = 1.5
)

// PriceEstimator derives a price range from the accumulated project state
// through a strict fallback chain: explicit client-stated budget, then a
// generation-based estimate, then a keyword-driven base-price table. The
// function is non-throwing by contract; a fully failed chain still returns
// the default keyword-tier result.
type PriceEstimator struct {
	genaiClient genai.ClientInterface
}

// NewPriceEstimator creates an estimator backed by the given GenAI client.
func NewPriceEstimator(genaiClient genai.ClientInterface) *PriceEstimator {
	return &PriceEstimator{genaiClient: genaiClient}
}

// Estimate returns the price range for state, or nil only when state itself
// is absent. An empty-but-present state still yields the default keyword-tier
// estimate. The returned range always satisfies Min <= Max.
func (e *PriceEstimator) Estimate(ctx context.Context, state models.ProjectState) *models.PriceEstimate {
	if state == nil {
		slog.Debug("PriceEstimator.Estimate: absent project state, no estimate")
		return nil
	}

	if budget := strings.TrimSpace(state.Get(models.FieldBudgetRange)); budget != "" {
		if est := estimateFromBudget(budget); est != nil {
			slog.Debug("PriceEstimator.Estimate: explicit budget tier", "min", est.Min, "max", est.Max)
			return est
		}
	}

	if est := e.estimateFromGeneration(ctx, state); est != nil {
		slog.Debug("PriceEstimator.Estimate: generation tier", "min", est.Min, "max", est.Max)
		return est
	}

	est := estimateFromKeywords(state)
	slog.Debug("PriceEstimator.Estimate: keyword tier", "min", est.Min, "max", est.Max)
	return est
}

// estimateFromBudget extracts up to two numbers from the stated budget.
// Two numbers form the range directly; a single number is widened by a
// magnitude-dependent spread. No numbers means the tier produced nothing.
func estimateFromBudget(budget string) *models.PriceEstimate {
	nums := extractNumbers(budget, 2)
	switch len(nums) {
	case 2:
		est := &models.PriceEstimate{Min: nums[0], Max: nums[1]}
		est.Normalize()
		return est
	case 1:
		return spreadAround(nums[0])
	default:
		return nil
	}
}

// spreadAround widens a single stated amount into a range: ±30% under 1 000,
// ±20% under 10 000, ±15% above, rounding the low bound down and the high
// bound up.
func spreadAround(v int) *models.PriceEstimate {
	var spread float64
	switch {
	case v < 1000:
		spread = spreadSmall
	case v < 10000:
		spread = spreadMedium
	default:
		spread = spreadLarge
	}
	est := &models.PriceEstimate{
		Min: int(math.Floor(float64(v) * (1 - spread))),
		Max: int(math.Ceil(float64(v) * (1 + spread))),
	}
	est.Normalize()
	return est
}

// estimateFromGeneration asks the model for a two-number range over the full
// label-qualified state. Returns nil when the call fails or yields no
// parseable numbers, so the chain falls through to the keyword tier.
func (e *PriceEstimator) estimateFromGeneration(ctx context.Context, state models.ProjectState) *models.PriceEstimate {
	reply, err := e.genaiClient.Generate(ctx, genai.Params{
		SystemPrompt: estimatorInstruction(),
		UserPrompt:   "Projet :\n" + summarizeState(state) + "\n\nFourchette estimée :",
		Temperature:  estimatorTemperature,
		MaxTokens:    estimatorMaxTokens,
	})
	if err != nil {
		slog.Warn("PriceEstimator.estimateFromGeneration: generation failed", "error", err)
		return nil
	}

	nums := extractNumbers(reply, 2)
	switch len(nums) {
	case 2:
		est := &models.PriceEstimate{Min: nums[0], Max: nums[1]}
		est.Normalize()
		return est
	case 1:
		// Asymmetric band around the single value: 80% to 120%.
		est := &models.PriceEstimate{
			Min: int(math.Floor(float64(nums[0]) * 0.8)),
			Max: int(math.Ceil(float64(nums[0]) * 1.2)),
		}
		est.Normalize()
		return est
	default:
		slog.Warn("PriceEstimator.estimateFromGeneration: no parseable numbers in reply", "reply_length", len(reply))
		return nil
	}
}

// estimateFromKeywords classifies the category and description against the
// ordered base-price table. First match wins, never best match.
func estimateFromKeywords(state models.ProjectState) *models.PriceEstimate {
	text := strings.ToLower(state.Get(models.FieldProjectCategory) + " " + state.Get(models.FieldProjectDescription))
	base := defaultBasePrice
	for _, bp := range basePrices {
		if strings.Contains(text, bp.keyword) {
			base = bp.price
			break
		}
	}
	est := &models.PriceEstimate{
		Min: int(math.Floor(float64(base) * keywordTierLowFactor)),
		Max: int(math.Ceil(float64(base) * keywordTierHighFactor)),
	}
	est.Normalize()
	return est
}

func estimatorInstruction() string {
	return strings.Join([]string{
		"Tu es un expert en chiffrage de travaux de rénovation.",
		"Estime une fourchette de prix en euros pour le projet décrit, en raisonnant avec des tarifs réalistes du marché local pour les corps de métier concernés.",
		"Réponds avec exactement deux nombres entiers séparés par un tiret, par exemple : 1500-3000.",
		"Aucun autre texte, aucune unité, aucun symbole.",
	}, "\n")
}

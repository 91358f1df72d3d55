// Package intake implements the conversational project-intake engine for the
// RenoMatch renovation marketplace.
//
// Four components cooperate to turn free-form client replies into a
// structured project record: the ResponseNormalizer cleans extracted values
// per target field, the SuggestionResolver maps confirmation utterances onto
// previously offered suggestions, the PriceEstimator derives a price range
// for the assembled project, and the DecisionEngine selects the next dialogue
// action. Each component attempts the GenAI path once and degrades to a
// documented deterministic fallback; generation failures never surface to the
// client.
package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/RenoMatch/RenoIntake/internal/models"
)

var numberPattern = regexp.MustCompile(`\d+`)

// extractNumbers returns up to limit integers found in text, in order of
// appearance. The first-numbers-win heuristic is deliberate: free text with
// incidental numbers is ambiguous and the extraction does not try to guess
// intent beyond position.
func extractNumbers(text string, limit int) []int {
	matches := numberPattern.FindAllString(text, limit)
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// summarizeState renders every filled field label-qualified, in intake order.
func summarizeState(state models.ProjectState) string {
	var b strings.Builder
	for _, f := range models.IntakeFields() {
		if v := state.Get(f.ID); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.Label, v)
		}
	}
	return strings.TrimSpace(b.String())
}

// extractJSONObject returns the outermost {...} block of text, tolerating
// models that wrap their JSON in prose or code fences.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

package iteration

import (
	"fmt"
	"sort"
	"strings"

	"studio_backend/core"
)

const msgNoValidIterations = "No valid iterations to evaluate"

// SelectBest scores every successful iteration against the refinement
// rubric and returns the full descending ranking plus improvement
// suggestions for the winner. Ties keep input order (stable sort). A batch
// with no successful iterations returns Success=false with a message.
func SelectBest(outcomes []Outcome) BestSelection {
	type scored struct {
		outcome *Outcome
		score   float64
		reasons []string
	}

	var candidates []scored
	for i := range outcomes {
		o := &outcomes[i]
		if !o.Success {
			continue
		}
		score, reasons := rubricScore(o.Params)
		candidates = append(candidates, scored{outcome: o, score: score, reasons: reasons})
	}

	if len(candidates) == 0 {
		return BestSelection{Success: false, Message: msgNoValidIterations}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	best := candidates[0]

	allScores := make([]Score, len(candidates))
	for i, c := range candidates {
		allScores[i] = Score{
			Number:        c.outcome.Number,
			Score:         c.score,
			VariationType: c.outcome.VariationType,
		}
	}

	return BestSelection{
		Success:     true,
		Best:        best.outcome,
		Score:       best.score,
		Reasoning:   strings.Join(best.reasons, ". "),
		AllScores:   allScores,
		Suggestions: improvementSuggestions(best.outcome.Params),
	}
}

// rubricScore evaluates one iteration's parameters. Each criterion scores
// independently; reasons accumulate in evaluation order.
func rubricScore(params core.DesignRequest) (float64, []string) {
	var score float64
	var reasons []string

	switch params.Lighting {
	case core.LightingHDR:
		score += 30
		reasons = append(reasons, "HDR lighting provides superior dynamic range")
	case core.LightingStudio:
		score += 25
		reasons = append(reasons, "Studio lighting ensures consistent illumination")
	case core.LightingDramatic:
		score += 20
		reasons = append(reasons, "Dramatic lighting creates visual impact")
	}

	switch {
	case params.FOV >= 35 && params.FOV <= 55:
		score += 20
		reasons = append(reasons, "Optimal FOV for product visualization")
	case params.FOV >= 25 && params.FOV <= 70:
		score += 15
		reasons = append(reasons, "Acceptable FOV range")
	}

	if params.Reflectivity >= 0.7 && params.Reflectivity <= 0.9 {
		score += 25
		reasons = append(reasons, "Reflectivity enhances material perception")
	}

	if params.CompositionFocus == "centered" || params.CompositionFocus == "rule_of_thirds" {
		score += 15
		reasons = append(reasons, fmt.Sprintf("Composition follows %s principles", params.CompositionFocus))
	}

	if params.TextureQuality >= 0.85 {
		score += 10
		reasons = append(reasons, "High texture quality maintains detail")
	}

	return score, reasons
}

// improvementSuggestions runs independent threshold checks against the
// winning parameters. Zero to four suggestions may fire.
func improvementSuggestions(params core.DesignRequest) []string {
	var suggestions []string
	if params.Reflectivity < 0.75 {
		suggestions = append(suggestions, "Consider increasing reflectivity for more premium appearance")
	}
	if params.Lighting != core.LightingHDR {
		suggestions = append(suggestions, "Try HDR lighting for enhanced dynamic range")
	}
	if params.TextureQuality < 0.9 {
		suggestions = append(suggestions, "Increase texture quality to 0.9+ for production assets")
	}
	if params.BitDepth < 16 {
		suggestions = append(suggestions, "Use 16-bit depth for professional post-production")
	}
	return suggestions
}

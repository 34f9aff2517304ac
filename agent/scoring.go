package agent

import (
	"fmt"
	"strings"

	"studio_backend/core"
)

// Batch-health recommendation messages.
const (
	recLowConsistency  = "Low consistency detected. Consider refining prompts or adjusting generation parameters."
	recAngleDiversity  = "Camera angle diversity could be improved for better variant coverage."
	msgNoValidDesigns  = "No valid designs to evaluate"
	consistencyWarnAt  = 70.0
	diversityThreshold = 0.7
)

// ConsistencyCheck summarizes the health of an outcome batch. The score is
// the success ratio on a 0..100 scale; recommendations flag low success and
// poor camera-angle coverage. A pure function over the batch.
func ConsistencyCheck(outcomes []GenerationOutcome) ConsistencyReport {
	report := ConsistencyReport{
		Total:           len(outcomes),
		Recommendations: []string{},
	}

	var successful []GenerationOutcome
	for _, o := range outcomes {
		if o.Success {
			successful = append(successful, o)
		}
	}
	report.Successful = len(successful)
	report.Failed = report.Total - report.Successful

	if report.Total == 0 || report.Successful == 0 {
		return report
	}

	ratio := float64(report.Successful) / float64(report.Total)
	if ratio > 1 {
		ratio = 1
	}
	report.ConsistencyScore = ratio * 100

	if report.ConsistencyScore < consistencyWarnAt {
		report.Recommendations = append(report.Recommendations, recLowConsistency)
	}

	distinct := make(map[core.CameraAngle]struct{}, len(successful))
	for _, o := range successful {
		distinct[o.Camera] = struct{}{}
	}
	if float64(len(distinct)) < float64(len(successful))*diversityThreshold {
		report.Recommendations = append(report.Recommendations, recAngleDiversity)
	}

	return report
}

// SelectBestComposition scores every successful outcome and picks the
// highest. Ties keep the earliest candidate, so selection is deterministic
// for a fixed batch. An all-failed batch returns Success=false with a
// message rather than an error.
func SelectBestComposition(outcomes []GenerationOutcome) BestSelection {
	var best *GenerationOutcome
	var bestScore float64
	scores := make([]VariantScore, 0, len(outcomes))

	for i := range outcomes {
		o := &outcomes[i]
		if !o.Success {
			continue
		}
		score := compositionScore(o)
		scores = append(scores, VariantScore{VariantID: o.VariantID, Score: score})
		if best == nil || score > bestScore {
			best = o
			bestScore = score
		}
	}

	if best == nil {
		return BestSelection{Success: false, Message: msgNoValidDesigns}
	}

	return BestSelection{
		Success:   true,
		Best:      best,
		Score:     bestScore,
		Reasoning: selectionReasoning(best, bestScore),
		AllScores: scores,
	}
}

// compositionScore is the heuristic quality score for one successful
// outcome. Camera angle dominates, then lighting, then resolution, with a
// small bonus for earlier plan positions as a deterministic tie-breaker.
func compositionScore(o *GenerationOutcome) float64 {
	var score float64
	switch o.Camera {
	case core.CameraThreeQuarter:
		score += 30
	case core.CameraIsometric:
		score += 25
	}
	if o.Lighting == core.LightingStudio || o.Lighting == core.LightingHDR {
		score += 25
	}
	if o.Metadata.Width >= 1024 && o.Metadata.Height >= 1024 {
		score += 20
	}
	score += float64(10 - o.Index)
	return score
}

// selectionReasoning builds the human-readable explanation for a winner.
func selectionReasoning(o *GenerationOutcome, score float64) string {
	parts := []string{
		fmt.Sprintf("Camera angle (%s) provides optimal product visibility", o.Camera),
		fmt.Sprintf("Lighting setup (%s) enhances material representation", o.Lighting),
	}
	switch {
	case score >= 70:
		parts = append(parts, "High overall composition quality score")
	case score >= 50:
		parts = append(parts, "Acceptable composition quality with room for refinement")
	}
	return strings.Join(parts, ". ")
}

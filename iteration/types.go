// Package iteration implements the refinement sibling of the variant
// pipeline: instead of categorical camera/lighting combinations it perturbs
// continuous parameters (fov, reflectivity, lighting) across N numbered
// iterations, generates them under the same admission cap, and ranks them
// with a rubric score.
package iteration

import (
	"studio_backend/core"
	"studio_backend/imagegen"
)

// Spec is one planned parameter perturbation. Number is 1-based; the
// planner guarantees numbers are sequential and unique within a batch.
type Spec struct {
	// Number is the 1-based iteration index.
	Number int `json:"iteration_number"`

	// Params is the perturbed copy of the base request.
	Params core.DesignRequest `json:"params"`

	// VariationType summarizes what changed ("lighting_hdr_fov_52.5").
	VariationType string `json:"variation_type"`
}

// Outcome is the per-iteration generation result. As in the variant
// pipeline, exactly one outcome exists per spec and failures are values.
type Outcome struct {
	Number        int                `json:"iteration_number"`
	Success       bool               `json:"success"`
	ImageData     []byte             `json:"-"`
	ImageURL      string             `json:"image_url,omitempty"`
	Params        core.DesignRequest `json:"params"`
	VariationType string             `json:"variation_type,omitempty"`
	Metadata      imagegen.Metadata  `json:"metadata"`
	Error         string             `json:"error,omitempty"`
}

// Score pairs an iteration with its rubric score for reporting.
type Score struct {
	Number        int     `json:"iteration_number"`
	Score         float64 `json:"score"`
	VariationType string  `json:"variation_type"`
}

// BestSelection is the ranked result of best-iteration selection.
type BestSelection struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	Best        *Outcome `json:"best_iteration,omitempty"`
	Score       float64  `json:"score,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
	AllScores   []Score  `json:"all_scores,omitempty"`
	Suggestions []string `json:"improvement_suggestions,omitempty"`
}

// Package agent implements the parallel multi-variant generation pipeline:
// variant planning, bounded-concurrency fan-out against a generation
// provider, and heuristic scoring of the resulting batch.
//
// types.go defines the batch data model. A VariantSpec is consumed exactly
// once by the executor, which produces exactly one GenerationOutcome per
// spec, in input order, regardless of completion order or per-task failure.
package agent

import (
	"time"

	"studio_backend/core"
	"studio_backend/imagegen"
)

// VariantSpec is one categorical combination of camera angle, lighting, and
// color palette proposed for parallel generation. Specs are immutable once
// planned.
type VariantSpec struct {
	// ID is the unique identifier within a batch ("variant_<Index>").
	ID string `json:"variant_id"`

	// Index is the zero-based position of the variant in the plan. It is
	// carried explicitly so scoring never re-derives it from the ID.
	Index int `json:"index"`

	// Camera is the planned camera angle.
	Camera core.CameraAngle `json:"camera_angle"`

	// Lighting is the planned lighting setup.
	Lighting core.LightingSetup `json:"lighting"`

	// Colors is the ordered palette for this variant.
	Colors []string `json:"color_variation"`

	// Priority is the planner-assigned preference score in 1..10.
	Priority int `json:"priority"`
}

// GenerationOutcome is the per-task result record for one variant. Exactly
// one outcome exists per submitted spec; failed tasks yield an outcome with
// Success=false and Error set, never a missing entry.
type GenerationOutcome struct {
	// VariantID and Index identify the originating spec.
	VariantID string `json:"variant_id"`
	Index     int    `json:"index"`

	// AgentID names the logical agent that ran the task.
	AgentID string `json:"agent_id"`

	// Camera and Lighting are copied from the spec so scoring can run on
	// the outcome batch alone.
	Camera   core.CameraAngle   `json:"camera_angle"`
	Lighting core.LightingSetup `json:"lighting"`

	// Success reports whether generation produced an image.
	Success bool `json:"success"`

	// ImageData holds the raw image bytes on success.
	ImageData []byte `json:"-"`

	// ImageURL is the provider-hosted temporary URL, when available.
	ImageURL string `json:"image_url,omitempty"`

	// Metadata carries provider-reported dimensions and content type.
	Metadata imagegen.Metadata `json:"metadata"`

	// Error holds the failure reason when Success is false.
	Error string `json:"error,omitempty"`

	// Duration is the wall time the generation task took.
	Duration time.Duration `json:"-"`
}

// ConsistencyReport is the batch-health summary derived from an outcome
// batch. It has no persisted identity and is recomputed per request.
type ConsistencyReport struct {
	Total            int      `json:"total_designs"`
	Successful       int      `json:"successful"`
	Failed           int      `json:"failed"`
	ConsistencyScore float64  `json:"consistency_score"`
	Recommendations  []string `json:"recommendations"`
}

// VariantScore pairs a variant with its heuristic score for reporting.
type VariantScore struct {
	VariantID string  `json:"variant_id"`
	Score     float64 `json:"score"`
}

// BestSelection is the result of best-composition selection over a batch.
// An empty successful subset yields Success=false with a message; that is a
// normal structured result, not an error.
type BestSelection struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message,omitempty"`
	Best      *GenerationOutcome `json:"best_design,omitempty"`
	Score     float64            `json:"score,omitempty"`
	Reasoning string             `json:"reasoning,omitempty"`
	AllScores []VariantScore     `json:"all_scores,omitempty"`
}

package agent

import (
	"strings"
	"testing"

	"studio_backend/core"
	"studio_backend/imagegen"
)

func successOutcome(index int, camera core.CameraAngle, lighting core.LightingSetup, width, height int) GenerationOutcome {
	return GenerationOutcome{
		VariantID: "variant_" + string(rune('0'+index)),
		Index:     index,
		Camera:    camera,
		Lighting:  lighting,
		Success:   true,
		Metadata:  imagegen.Metadata{Width: width, Height: height, ContentType: "image/png"},
	}
}

func failedTestOutcome(index int) GenerationOutcome {
	return GenerationOutcome{
		VariantID: "variant_" + string(rune('0'+index)),
		Index:     index,
		Success:   false,
		Error:     "generation failed",
	}
}

func TestConsistencyCheck(t *testing.T) {
	tests := []struct {
		name      string
		outcomes  []GenerationOutcome
		wantScore float64
		wantRecs  []string
	}{
		{
			name: "three of four succeed",
			outcomes: []GenerationOutcome{
				successOutcome(0, core.CameraThreeQuarter, core.LightingStudio, 1024, 1024),
				successOutcome(1, core.CameraSide, core.LightingDramatic, 1024, 1024),
				successOutcome(2, core.CameraFront, core.LightingStudio, 1024, 1024),
				failedTestOutcome(3),
			},
			wantScore: 75.0,
			wantRecs:  []string{},
		},
		{
			name: "all failed",
			outcomes: []GenerationOutcome{
				failedTestOutcome(0),
				failedTestOutcome(1),
			},
			wantScore: 0.0,
			wantRecs:  []string{},
		},
		{
			name: "low success rate flags consistency",
			outcomes: []GenerationOutcome{
				successOutcome(0, core.CameraThreeQuarter, core.LightingStudio, 1024, 1024),
				failedTestOutcome(1),
				failedTestOutcome(2),
			},
			wantScore: 100.0 / 3.0,
			wantRecs:  []string{recLowConsistency},
		},
		{
			name: "repeated angles flag diversity",
			outcomes: []GenerationOutcome{
				successOutcome(0, core.CameraFront, core.LightingStudio, 1024, 1024),
				successOutcome(1, core.CameraFront, core.LightingDramatic, 1024, 1024),
				successOutcome(2, core.CameraFront, core.LightingHDR, 1024, 1024),
			},
			wantScore: 100.0,
			wantRecs:  []string{recAngleDiversity},
		},
		{
			name:      "empty batch",
			outcomes:  nil,
			wantScore: 0.0,
			wantRecs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ConsistencyCheck(tt.outcomes)

			if report.Total != len(tt.outcomes) {
				t.Errorf("Total = %d, want %d", report.Total, len(tt.outcomes))
			}
			if report.Successful+report.Failed != report.Total {
				t.Errorf("Successful+Failed = %d, want Total %d",
					report.Successful+report.Failed, report.Total)
			}
			if diff := report.ConsistencyScore - tt.wantScore; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ConsistencyScore = %v, want %v", report.ConsistencyScore, tt.wantScore)
			}
			if len(report.Recommendations) != len(tt.wantRecs) {
				t.Fatalf("Recommendations = %v, want %v", report.Recommendations, tt.wantRecs)
			}
			for i, want := range tt.wantRecs {
				if report.Recommendations[i] != want {
					t.Errorf("Recommendations[%d] = %q, want %q", i, report.Recommendations[i], want)
				}
			}
		})
	}
}

func TestSelectBestComposition(t *testing.T) {
	outcomes := []GenerationOutcome{
		// 30 camera + 25 lighting + 20 resolution + 10 position = 85
		successOutcome(0, core.CameraThreeQuarter, core.LightingStudio, 1024, 1024),
		// 0 + 0 + 0 + 9 = 9
		successOutcome(1, core.CameraSide, core.LightingDramatic, 512, 512),
		// 25 + 25 + 0 + 8 = 58
		successOutcome(2, core.CameraIsometric, core.LightingHDR, 512, 512),
		failedTestOutcome(3),
	}

	selection := SelectBestComposition(outcomes)
	if !selection.Success {
		t.Fatalf("selection failed: %s", selection.Message)
	}
	if selection.Best == nil || selection.Best.VariantID != "variant_0" {
		t.Fatalf("Best = %+v, want variant_0", selection.Best)
	}
	if selection.Score != 85 {
		t.Errorf("Score = %v, want 85", selection.Score)
	}

	wantScores := map[string]float64{
		"variant_0": 85,
		"variant_1": 9,
		"variant_2": 58,
	}
	if len(selection.AllScores) != len(wantScores) {
		t.Fatalf("AllScores has %d entries, want %d (failed outcomes excluded)",
			len(selection.AllScores), len(wantScores))
	}
	for _, vs := range selection.AllScores {
		if want, ok := wantScores[vs.VariantID]; !ok || vs.Score != want {
			t.Errorf("score for %s = %v, want %v", vs.VariantID, vs.Score, want)
		}
	}

	if !strings.Contains(selection.Reasoning, "Camera angle (three_quarter)") {
		t.Errorf("Reasoning %q missing camera note", selection.Reasoning)
	}
	if !strings.Contains(selection.Reasoning, "Lighting setup (studio)") {
		t.Errorf("Reasoning %q missing lighting note", selection.Reasoning)
	}
	if !strings.Contains(selection.Reasoning, "High overall composition quality score") {
		t.Errorf("Reasoning %q missing quality tier", selection.Reasoning)
	}
}

func TestSelectBestCompositionTieKeepsEarliest(t *testing.T) {
	// Identical attributes except the position bonus; drop it by giving
	// both the same index so scores tie exactly.
	a := successOutcome(0, core.CameraThreeQuarter, core.LightingStudio, 1024, 1024)
	b := successOutcome(0, core.CameraThreeQuarter, core.LightingStudio, 1024, 1024)
	a.VariantID = "variant_a"
	b.VariantID = "variant_b"

	selection := SelectBestComposition([]GenerationOutcome{a, b})
	if !selection.Success {
		t.Fatalf("selection failed: %s", selection.Message)
	}
	if selection.Best.VariantID != "variant_a" {
		t.Errorf("tie winner = %s, want the earliest candidate variant_a", selection.Best.VariantID)
	}
}

func TestSelectBestCompositionMidTierReasoning(t *testing.T) {
	// 25 + 25 + 0 + 8 = 58 lands in the acceptable tier.
	selection := SelectBestComposition([]GenerationOutcome{
		successOutcome(2, core.CameraIsometric, core.LightingHDR, 512, 512),
	})
	if !selection.Success {
		t.Fatalf("selection failed: %s", selection.Message)
	}
	if !strings.Contains(selection.Reasoning, "Acceptable composition quality with room for refinement") {
		t.Errorf("Reasoning %q missing acceptable tier note", selection.Reasoning)
	}
}

func TestSelectBestCompositionNoValidDesigns(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []GenerationOutcome
	}{
		{name: "empty batch", outcomes: nil},
		{name: "all failed", outcomes: []GenerationOutcome{failedTestOutcome(0), failedTestOutcome(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection := SelectBestComposition(tt.outcomes)
			if selection.Success {
				t.Error("Success = true, want false")
			}
			if selection.Message != msgNoValidDesigns {
				t.Errorf("Message = %q, want %q", selection.Message, msgNoValidDesigns)
			}
			if selection.Best != nil {
				t.Errorf("Best = %+v, want nil", selection.Best)
			}
		})
	}
}

package agent

import (
	"fmt"

	"studio_backend/core"
)

// MaxVariants caps the number of variants planned per batch.
const MaxVariants = 6

// plannedCameras and plannedLightings drive the cartesian expansion. The
// order is deliberate: three_quarter first because it scores highest for
// product visibility, studio before dramatic for the same reason.
var (
	plannedCameras   = []core.CameraAngle{core.CameraThreeQuarter, core.CameraSide, core.CameraFront}
	plannedLightings = []core.LightingSetup{core.LightingStudio, core.LightingDramatic}
)

// Planner expands a base design request into a deterministic set of variant
// specs. It performs no I/O and holds no mutable state, so a single Planner
// is safe for concurrent use.
type Planner struct {
	fallbackPalettes [][]string
}

// NewPlanner builds a planner with the given fallback palettes. When
// fallbacks is nil the built-in palettes are used.
func NewPlanner(fallbacks [][]string) *Planner {
	if fallbacks == nil {
		fallbacks = core.DefaultFallbackPalettes()
	}
	return &Planner{fallbackPalettes: fallbacks}
}

// PlanVariants expands base into at most MaxVariants variant specs, walking
// the camera x lighting grid in declaration order. Color palettes rotate
// through the base palette followed by the fallback palettes. The same
// request always yields the same plan.
func (p *Planner) PlanVariants(base core.DesignRequest) []VariantSpec {
	base.ApplyDefaults()

	palettes := make([][]string, 0, 1+len(p.fallbackPalettes))
	palettes = append(palettes, base.ColorPalette)
	palettes = append(palettes, p.fallbackPalettes...)

	specs := make([]VariantSpec, 0, MaxVariants)
	for _, camera := range plannedCameras {
		for _, lighting := range plannedLightings {
			if len(specs) >= MaxVariants {
				return specs
			}
			index := len(specs)
			specs = append(specs, VariantSpec{
				ID:       fmt.Sprintf("variant_%d", index),
				Index:    index,
				Camera:   camera,
				Lighting: lighting,
				Colors:   clonePalette(palettes[index%len(palettes)]),
				Priority: variantPriority(camera, lighting),
			})
		}
	}
	return specs
}

// variantPriority scores how promising a combination is before any image
// exists. Baseline 5, bonuses for the angles and lighting that historically
// produce the strongest product shots, capped at 10.
func variantPriority(camera core.CameraAngle, lighting core.LightingSetup) int {
	priority := 5
	switch camera {
	case core.CameraThreeQuarter:
		priority += 3
	case core.CameraIsometric:
		priority += 2
	}
	switch lighting {
	case core.LightingStudio:
		priority += 2
	case core.LightingHDR:
		priority += 3
	}
	if priority > 10 {
		priority = 10
	}
	return priority
}

// clonePalette copies a palette so a spec never aliases caller-owned slices.
func clonePalette(colors []string) []string {
	out := make([]string, len(colors))
	copy(out, colors)
	return out
}

package iteration

import (
	"fmt"

	"studio_backend/core"
)

// DefaultIterations is the iteration count used when a request does not
// specify one.
const DefaultIterations = 4

// lightingSequence is the per-iteration lighting rotation.
var lightingSequence = []core.LightingSetup{
	core.LightingStudio,
	core.LightingHDR,
	core.LightingDramatic,
	core.LightingSoft,
}

// PlanIterations produces exactly n specs by linearly interpolating the
// base parameters. Iteration i (1-based) uses t = i/n: fov scales through
// 0.9..1.1 of the base, reflectivity through 0.85..1.15, and lighting
// rotates through the fixed sequence. Pure and deterministic; n <= 0 yields
// an empty plan.
func PlanIterations(base core.DesignRequest, n int) []Spec {
	if n <= 0 {
		return []Spec{}
	}
	base.ApplyDefaults()

	specs := make([]Spec, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i+1) / float64(n)

		params := base
		params.ColorPalette = append([]string(nil), base.ColorPalette...)
		params.FOV = base.FOV * (0.9 + 0.2*t)
		params.Reflectivity = base.Reflectivity * (0.85 + 0.3*t)
		params.Lighting = lightingSequence[i%len(lightingSequence)]

		specs = append(specs, Spec{
			Number:        i + 1,
			Params:        params,
			VariationType: fmt.Sprintf("lighting_%s_fov_%.1f", params.Lighting, params.FOV),
		})
	}
	return specs
}

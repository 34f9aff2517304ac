package agent

import "studio_backend/core"

// Cost tiers reported by manufacturability analysis.
const (
	CostTierMedium = "medium"
	CostTierHigh   = "high"
)

// ManufacturabilityReport describes production feasibility for a design:
// candidate manufacturing methods, a complexity estimate, and per-product
// recommendations.
type ManufacturabilityReport struct {
	Feasible             bool     `json:"feasible"`
	ComplexityScore      float64  `json:"complexity_score"`
	EstimatedCostTier    string   `json:"estimated_cost_tier"`
	ManufacturingMethods []string `json:"manufacturing_methods"`
	Recommendations      []string `json:"recommendations"`
}

// AnalyzeManufacturability evaluates a design's production feasibility from
// its material and product type. Pure and deterministic; unknown materials
// yield a feasible report with no methods and zero complexity.
func AnalyzeManufacturability(req core.DesignRequest) ManufacturabilityReport {
	material := req.Material
	if material == "" {
		material = core.MaterialMetal
	}
	productType := req.ProductType
	if productType == "" {
		productType = "electronics"
	}

	report := ManufacturabilityReport{
		Feasible:             true,
		ComplexityScore:      0.0,
		EstimatedCostTier:    CostTierMedium,
		ManufacturingMethods: []string{},
		Recommendations:      []string{},
	}

	switch material {
	case core.MaterialMetal, core.MaterialPlastic:
		report.ManufacturingMethods = append(report.ManufacturingMethods,
			"injection_molding", "cnc_machining")
		report.ComplexityScore = 6.5
	case core.MaterialCarbonFiber:
		report.ManufacturingMethods = append(report.ManufacturingMethods,
			"composite_layup")
		report.ComplexityScore = 8.5
		report.EstimatedCostTier = CostTierHigh
	}

	switch productType {
	case "car":
		report.Recommendations = append(report.Recommendations,
			"Consider modular design approach for cost optimization",
			"Validate aerodynamic properties in CFD simulation")
	case "electronics":
		report.Recommendations = append(report.Recommendations,
			"Ensure adequate ventilation for thermal management",
			"Design for ease of assembly with minimal fasteners")
	}

	return report
}

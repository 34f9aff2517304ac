// Package core provides shared configuration and domain types for the
// design generation backend.
//
// types.go defines the closed categorical vocabularies (camera angles,
// lighting setups, materials) and the DesignRequest that every pipeline
// consumes. Camera and lighting are typed enumerations rather than free
// strings so that scoring tables can match exhaustively.
package core

import "fmt"

// CameraAngle is a predefined camera angle for product rendering.
type CameraAngle string

// Canonical camera angles.
const (
	CameraFront        CameraAngle = "front"
	CameraSide         CameraAngle = "side"
	CameraThreeQuarter CameraAngle = "three_quarter"
	CameraTop          CameraAngle = "top"
	CameraIsometric    CameraAngle = "isometric"
	CameraLowAngle     CameraAngle = "low_angle"
	CameraHighAngle    CameraAngle = "high_angle"
)

// Valid reports whether the camera angle is one of the canonical values.
func (c CameraAngle) Valid() bool {
	switch c {
	case CameraFront, CameraSide, CameraThreeQuarter, CameraTop,
		CameraIsometric, CameraLowAngle, CameraHighAngle:
		return true
	}
	return false
}

// ParseCameraAngle converts a string into a CameraAngle.
// Returns an error for unrecognized values instead of falling through
// silently.
func ParseCameraAngle(s string) (CameraAngle, error) {
	c := CameraAngle(s)
	if !c.Valid() {
		return "", fmt.Errorf("core: unknown camera angle %q", s)
	}
	return c, nil
}

// LightingSetup is a professional lighting configuration.
type LightingSetup string

// Canonical lighting setups.
const (
	LightingStudio   LightingSetup = "studio"
	LightingNatural  LightingSetup = "natural"
	LightingDramatic LightingSetup = "dramatic"
	LightingSoft     LightingSetup = "soft"
	LightingHDR      LightingSetup = "hdr"
	LightingProduct  LightingSetup = "product"
)

// Valid reports whether the lighting setup is one of the canonical values.
func (l LightingSetup) Valid() bool {
	switch l {
	case LightingStudio, LightingNatural, LightingDramatic,
		LightingSoft, LightingHDR, LightingProduct:
		return true
	}
	return false
}

// ParseLightingSetup converts a string into a LightingSetup.
func ParseLightingSetup(s string) (LightingSetup, error) {
	l := LightingSetup(s)
	if !l.Valid() {
		return "", fmt.Errorf("core: unknown lighting setup %q", s)
	}
	return l, nil
}

// MaterialType is a product material for rendering.
type MaterialType string

// Canonical material types.
const (
	MaterialMetal       MaterialType = "metal"
	MaterialPlastic     MaterialType = "plastic"
	MaterialGlass       MaterialType = "glass"
	MaterialCarbonFiber MaterialType = "carbon_fiber"
	MaterialLeather     MaterialType = "leather"
	MaterialFabric      MaterialType = "fabric"
	MaterialRubber      MaterialType = "rubber"
)

// Valid reports whether the material is one of the canonical values.
func (m MaterialType) Valid() bool {
	switch m {
	case MaterialMetal, MaterialPlastic, MaterialGlass, MaterialCarbonFiber,
		MaterialLeather, MaterialFabric, MaterialRubber:
		return true
	}
	return false
}

// Default generation parameters shared across pipelines.
const (
	DefaultWidth          = 1024
	DefaultHeight         = 1024
	DefaultFOV            = 50.0
	DefaultReflectivity   = 0.8
	DefaultTextureQuality = 0.9
	DefaultBitDepth       = 16
)

// DefaultColorPalette returns the base palette used when a request does not
// supply one. Returns a fresh slice so callers cannot mutate shared state.
func DefaultColorPalette() []string {
	return []string{"#1a1a1a", "#ffffff", "#c0c0c0"}
}

// DesignRequest is the base parameter set for design generation. It is the
// structured form of a product brief and feeds both the variant and
// iteration pipelines.
type DesignRequest struct {
	// Prompt is the natural-language description of the product.
	Prompt string `json:"prompt"`

	// ProductType categorizes the product (car, electronics, appliance).
	ProductType string `json:"product_type"`

	// CameraAngle is the base camera angle before variant planning.
	CameraAngle CameraAngle `json:"camera_angle"`

	// FOV is the field of view in degrees (10-120).
	FOV float64 `json:"fov"`

	// Lighting is the base lighting setup.
	Lighting LightingSetup `json:"lighting"`

	// Material is the dominant product material.
	Material MaterialType `json:"material"`

	// ColorPalette is an ordered list of hex color tokens.
	ColorPalette []string `json:"color_palette"`

	// Reflectivity controls surface reflectivity (0.0-1.0).
	Reflectivity float64 `json:"reflectivity"`

	// TextureQuality controls texture detail (0.0-1.0).
	TextureQuality float64 `json:"texture_quality"`

	// CompositionFocus names the framing rule (centered, rule_of_thirds).
	CompositionFocus string `json:"composition_focus"`

	// Background names the backdrop preset.
	Background string `json:"background"`

	// Width and Height are the output dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// HDREnabled requests the HDR post-production path.
	HDREnabled bool `json:"hdr_enabled"`

	// BitDepth is the output color depth (8 or 16).
	BitDepth int `json:"bit_depth"`
}

// ApplyDefaults fills zero-valued fields with the canonical defaults.
// Prompt and ProductType are left alone; callers validate those.
func (r *DesignRequest) ApplyDefaults() {
	if r.CameraAngle == "" {
		r.CameraAngle = CameraThreeQuarter
	}
	if r.FOV == 0 {
		r.FOV = DefaultFOV
	}
	if r.Lighting == "" {
		r.Lighting = LightingStudio
	}
	if r.Material == "" {
		r.Material = MaterialMetal
	}
	if len(r.ColorPalette) == 0 {
		r.ColorPalette = DefaultColorPalette()
	}
	if r.Reflectivity == 0 {
		r.Reflectivity = DefaultReflectivity
	}
	if r.TextureQuality == 0 {
		r.TextureQuality = DefaultTextureQuality
	}
	if r.CompositionFocus == "" {
		r.CompositionFocus = "centered"
	}
	if r.Background == "" {
		r.Background = "studio_white"
	}
	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	if r.BitDepth == 0 {
		r.BitDepth = DefaultBitDepth
	}
}

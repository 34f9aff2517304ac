package core

import "testing"

func TestParseCameraAngle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CameraAngle
		wantErr bool
	}{
		{
			name:  "three_quarter is valid",
			input: "three_quarter",
			want:  CameraThreeQuarter,
		},
		{
			name:  "isometric is valid",
			input: "isometric",
			want:  CameraIsometric,
		},
		{
			name:    "empty string is rejected",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unknown value is rejected",
			input:   "worms_eye",
			wantErr: true,
		},
		{
			name:    "case sensitive",
			input:   "Front",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCameraAngle(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCameraAngle(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCameraAngle(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCameraAngle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLightingSetup(t *testing.T) {
	valid := []string{"studio", "natural", "dramatic", "soft", "hdr", "product"}
	for _, v := range valid {
		if _, err := ParseLightingSetup(v); err != nil {
			t.Errorf("ParseLightingSetup(%q) unexpected error: %v", v, err)
		}
	}

	if _, err := ParseLightingSetup("neon"); err == nil {
		t.Error("ParseLightingSetup(\"neon\") expected error")
	}
}

func TestDesignRequestApplyDefaults(t *testing.T) {
	var r DesignRequest
	r.Prompt = "sleek electric vehicle"
	r.ApplyDefaults()

	if r.CameraAngle != CameraThreeQuarter {
		t.Errorf("CameraAngle = %q, want three_quarter", r.CameraAngle)
	}
	if r.Lighting != LightingStudio {
		t.Errorf("Lighting = %q, want studio", r.Lighting)
	}
	if r.FOV != DefaultFOV {
		t.Errorf("FOV = %v, want %v", r.FOV, DefaultFOV)
	}
	if r.Width != DefaultWidth || r.Height != DefaultHeight {
		t.Errorf("dimensions = %dx%d, want %dx%d", r.Width, r.Height, DefaultWidth, DefaultHeight)
	}
	if len(r.ColorPalette) != 3 || r.ColorPalette[0] != "#1a1a1a" {
		t.Errorf("ColorPalette = %v, want default palette", r.ColorPalette)
	}
	if r.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want 16", r.BitDepth)
	}
}

func TestDesignRequestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	r := DesignRequest{
		Prompt:      "camera body",
		CameraAngle: CameraSide,
		Lighting:    LightingHDR,
		FOV:         35,
		Width:       2048,
		Height:      2048,
		ColorPalette: []string{
			"#111111",
		},
	}
	r.ApplyDefaults()

	if r.CameraAngle != CameraSide || r.Lighting != LightingHDR {
		t.Error("ApplyDefaults overwrote explicit camera/lighting")
	}
	if r.FOV != 35 || r.Width != 2048 || r.Height != 2048 {
		t.Error("ApplyDefaults overwrote explicit numeric fields")
	}
	if len(r.ColorPalette) != 1 || r.ColorPalette[0] != "#111111" {
		t.Error("ApplyDefaults overwrote explicit palette")
	}
}

func TestDefaultColorPaletteReturnsFreshSlice(t *testing.T) {
	a := DefaultColorPalette()
	a[0] = "#deadbe"
	b := DefaultColorPalette()
	if b[0] != "#1a1a1a" {
		t.Error("DefaultColorPalette shares state between calls")
	}
}

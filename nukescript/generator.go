// Package nukescript emits Nuke (.nk) scripts for HDR finishing and
// side-by-side comparison of generated designs. Scripts embed the original
// generation parameters as JSON so compositors can reference them.
package nukescript

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"studio_backend/core"
)

// Generator renders Nuke scripts according to an export configuration.
type Generator struct {
	cfg core.NukeExportConfig
}

// NewGenerator builds a generator. Zero-valued config fields fall back to
// the default export settings.
func NewGenerator(cfg core.NukeExportConfig) *Generator {
	def := core.DefaultNukeExportConfig()
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.ColorSpace == "" {
		cfg.ColorSpace = def.ColorSpace
	}
	if cfg.BitDepth == 0 {
		cfg.BitDepth = def.BitDepth
	}
	if cfg.Compression == "" {
		cfg.Compression = def.Compression
	}
	return &Generator{cfg: cfg}
}

type designScriptData struct {
	ParamsJSON  string
	ImagePath   string
	OutputPath  string
	ColorSpace  string
	DataType    string
	Compression string
	Channels    string
	Lighting    float64
	Gamma       float64
	White       float64
	SharpenSize float64
	Width       int
	Height      int
}

var designScriptTemplate = template.Must(template.New("design").Parse(`#! Nuke Version 14.0
# Industrial Product Design Studio
# Generation parameters embedded below for compositor control
set cut_paste_input [stack 0]
version 14.0 v5
# JSON Parameters:
{{.ParamsJSON}}
Read {
 inputs 0
 file {{.ImagePath}}
 format "{{.Width}} {{.Height}} 0 0 {{.Width}} {{.Height}} 1 square_1K"
 origset true
 colorspace {{.ColorSpace}}
 name Read_Source
 xpos 0
 ypos 0
}
Colorspace {
 colorspace_in {{.ColorSpace}}
 colorspace_out AlexaV3LogC
 name ColorSpace_HDR
 xpos 0
 ypos 100
}
Grade {
 white {{.Lighting}}
 gamma {{.Gamma}}
 black_clamp false
 white_clamp false
 name Grade_Lighting
 label "JSON Control: lighting_intensity"
 xpos 0
 ypos 200
}
Grade {
 white {{.White}}
 name Grade_Reflectivity
 label "JSON Control: reflectivity"
 xpos 0
 ypos 300
}
Sharpen {
 size {{.SharpenSize}}
 name Sharpen_Texture
 label "JSON Control: texture_quality"
 xpos 0
 ypos 400
}
Reformat {
 type "to box"
 box_width {{.Width}}
 box_height {{.Height}}
 box_fixed true
 filter Cubic
 name Reformat_Output
 xpos 0
 ypos 500
}
Write {
 file "{{.OutputPath}}"
 file_type exr
 datatype "{{.DataType}}"
 compression "{{.Compression}}"
 channels {{.Channels}}
 colorspace {{.ColorSpace}}
 create_directories true
 name Write_EXR
 xpos 0
 ypos 600
}
`))

// DesignScript renders the single-design HDR finishing script for an image
// and the parameters that produced it.
func (g *Generator) DesignScript(imagePath string, params core.DesignRequest) (string, error) {
	params.ApplyDefaults()

	paramsJSON, err := json.MarshalIndent(params, "# ", "  ")
	if err != nil {
		return "", fmt.Errorf("nukescript: encoding parameters: %w", err)
	}

	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	data := designScriptData{
		ParamsJSON:  "# " + string(paramsJSON),
		ImagePath:   imagePath,
		OutputPath:  base + "_nuke_output." + g.cfg.Format,
		ColorSpace:  g.cfg.ColorSpace,
		DataType:    g.dataType(),
		Compression: g.compression(),
		Channels:    g.channels(),
		Lighting:    1.0,
		Gamma:       1.0,
		White:       params.Reflectivity,
		SharpenSize: params.TextureQuality * 10,
		Width:       params.Width,
		Height:      params.Height,
	}

	var sb strings.Builder
	if err := designScriptTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("nukescript: rendering design script: %w", err)
	}
	return sb.String(), nil
}

type comparisonReadData struct {
	Index int
	Label int
	Path  string
	XPos  int
}

type comparisonScriptData struct {
	Reads       []comparisonReadData
	Inputs      int
	Rows        int
	Columns     int
	SheetHeight int
	OutputPath  string
	ColorSpace  string
	DataType    string
	Compression string
}

var comparisonScriptTemplate = template.Must(template.New("comparison").Parse(`#! Nuke Version 14.0
# Design Comparison Panel
set cut_paste_input [stack 0]
version 14.0 v5
{{range .Reads}}Read {
 inputs 0
 file {{.Path}}
 format "1024 1024 0 0 1024 1024 1 square_1K"
 origset true
 colorspace {{$.ColorSpace}}
 name Read_Variant_{{.Index}}
 xpos {{.XPos}}
 ypos 0
}
Text2 {
 message "Variant {{.Label}}"
 box {0 0 1024 100}
 xjustify center
 yjustify top
 name Text_Variant_{{.Index}}
 xpos {{.XPos}}
 ypos 100
}
{{end}}ContactSheet {
 inputs {{.Inputs}}
 width 4096
 height {{.SheetHeight}}
 rows {{.Rows}}
 columns {{.Columns}}
 center true
 roworder TopBottom
 name ContactSheet_Comparison
 xpos 400
 ypos 300
}
Write {
 file "{{.OutputPath}}"
 file_type exr
 datatype "{{.DataType}}"
 compression "{{.Compression}}"
 colorspace {{.ColorSpace}}
 create_directories true
 name Write_Comparison
 xpos 400
 ypos 400
}
`))

// ComparisonScript renders a contact-sheet script comparing several
// generated images. Returns an error when no images are provided.
func (g *Generator) ComparisonScript(imagePaths []string, outputName string) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("nukescript: no images to compare")
	}

	columns := len(imagePaths)
	if columns > 4 {
		columns = 4
	}
	rows := (len(imagePaths) + columns - 1) / columns

	reads := make([]comparisonReadData, len(imagePaths))
	for i, path := range imagePaths {
		reads[i] = comparisonReadData{Index: i, Label: i + 1, Path: path, XPos: i * 200}
	}

	data := comparisonScriptData{
		Reads:       reads,
		Inputs:      len(imagePaths),
		Rows:        rows,
		Columns:     columns,
		SheetHeight: 1024 * rows,
		OutputPath:  outputName + "_comparison_output." + g.cfg.Format,
		ColorSpace:  g.cfg.ColorSpace,
		DataType:    g.dataType(),
		Compression: g.compression(),
	}

	var sb strings.Builder
	if err := comparisonScriptTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("nukescript: rendering comparison script: %w", err)
	}
	return sb.String(), nil
}

func (g *Generator) channels() string {
	if g.cfg.IncludeAlpha {
		return "all"
	}
	return "rgb"
}

func (g *Generator) dataType() string {
	if g.cfg.BitDepth >= 32 {
		return "32 bit float"
	}
	return "16 bit half"
}

func (g *Generator) compression() string {
	switch g.cfg.Compression {
	case "zip", "":
		return "Zip (1 scanline)"
	case "zip16":
		return "Zip (16 scanlines)"
	default:
		return g.cfg.Compression
	}
}

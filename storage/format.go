package storage

import (
	"bytes"
	"image"

	// Register decoders for format probing.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// supportedFormats are the image formats accepted for persistence.
var supportedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"tiff": true,
	"webp": true,
}

// ProbeFormat decodes just the image header and returns the format name.
// Returns false for unrecognized or unsupported data.
func ProbeFormat(data []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	return format, supportedFormats[format]
}

// ValidateImage reports whether the bytes look like a supported image.
func ValidateImage(data []byte) bool {
	_, ok := ProbeFormat(data)
	return ok
}

package service

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"

	"pacas-inventario/logging"
)

// Max width of the PNG preview; 794px is A4 at 96 DPI
const maxPreviewWidth = 794

// OptimizePreview decodes a screenshot and, when it is wider than maxWidth,
// downscales it keeping the aspect ratio. The result is always PNG encoded.
func OptimizePreview(imageData []byte, maxWidth int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if maxWidth <= 0 {
		maxWidth = maxPreviewWidth
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth {
		newHeight := int(float64(bounds.Dy()) * float64(maxWidth) / float64(bounds.Dx()))
		logging.Sugar.Debugf("🔄 Resizing preview: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), maxWidth, newHeight)
		img = imaging.Resize(img, maxWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	logging.Sugar.Debugf("✓ Preview optimized: output_size=%d bytes", buf.Len())
	return buf.Bytes(), nil
}

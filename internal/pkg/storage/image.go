package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// WaiverProcessor normalizes uploaded waiver/consent images before storage.
// Signed waiver photos come straight from phone cameras, so they are
// downscaled to a bounded size and re-encoded as JPEG.
type WaiverProcessor struct {
	maxWidth  int
	maxHeight int
}

// NewWaiverProcessor creates a WaiverProcessor with the standard bounds.
func NewWaiverProcessor() *WaiverProcessor {
	return &WaiverProcessor{maxWidth: 1600, maxHeight: 1600}
}

// Normalize decodes the uploaded image, fits it inside the processor's
// bounding box and re-encodes it as a JPEG suitable for archival.
func (p *WaiverProcessor) Normalize(content io.Reader) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fitted := imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, fitted, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf, nil
}

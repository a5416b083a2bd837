package docgen

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// MaxSignaturePixels caps the decoded size of an uploaded signature. Larger
// images are rejected before their pixels are decoded.
const MaxSignaturePixels = 16 << 20

// SignatureImage is a signature normalized to PNG
type SignatureImage struct {
	PNG    []byte
	Width  int
	Height int
}

// PrepareSignature decodes a PNG or JPEG signature, scales it down to fit
// maxWidth x maxHeight keeping its aspect ratio, flattens it on white and
// encodes it as PNG. Empty input yields nil.
func PrepareSignature(raw []byte, maxWidth, maxHeight int) (*SignatureImage, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &ValidationError{Issues: []ValidationIssue{{
			Field:   "signature",
			Message: fmt.Sprintf("decode image: %v", err),
		}}}
	}
	if format != "png" && format != "jpeg" {
		return nil, NewValidationError("signature", "unsupported image format "+format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSignaturePixels {
		return nil, NewValidationError("signature",
			fmt.Sprintf("image is %dx%d pixels, the limit is %d megapixels", cfg.Width, cfg.Height, MaxSignaturePixels>>20))
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &ValidationError{Issues: []ValidationIssue{{
			Field:   "signature",
			Message: fmt.Sprintf("decode image: %v", err),
		}}}
	}

	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxWidth, maxHeight)

	// Resize to fit
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	// Flatten transparency so PDF viewers and Word agree
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(dst, 0, 0)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &SignatureImage{PNG: out.Bytes(), Width: w, Height: h}, nil
}

// fitWithin scales w x h down to fit the bounds. Images already inside the
// bounds are kept as they are.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

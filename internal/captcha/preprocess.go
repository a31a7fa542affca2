package captcha

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

// Preprocessing constants tuned to the portal's captcha renderer: light
// glyphs on a noisy background, payload region inside a fixed frame.
const (
	// binarizeThreshold separates glyph pixels from background noise.
	binarizeThreshold = 0.4

	// Payload region of the rendered image. Pixels outside carry only
	// frame and noise.
	cropLeft   = 27
	cropTop    = 15
	cropRight  = 190
	cropBottom = 65
)

// Preprocess converts a challenge image into a clean black-on-white
// bitmap the OCR engine can read: grayscale, threshold binarization,
// payload crop, light blur to merge broken strokes. The transform is
// deterministic and side-effect-free.
func Preprocess(raw []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, faults.Wrap(faults.KindInvalidImage, "decode challenge image", err)
	}

	gray := imaging.Grayscale(src)
	bin := binarize(gray, binarizeThreshold)

	bounds := bin.Bounds()
	crop := image.Rect(cropLeft, cropTop, cropRight, cropBottom).Intersect(bounds)
	if !crop.Empty() {
		bin = imaging.Crop(bin, crop)
	}

	smoothed := imaging.Blur(bin, 0.6)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, smoothed, imaging.PNG); err != nil {
		return nil, faults.Wrap(faults.KindInvalidImage, "encode preprocessed image", err)
	}
	return buf.Bytes(), nil
}

// binarize maps every pixel to pure black or white around the threshold
// fraction of full luminance.
func binarize(src *image.NRGBA, threshold float64) *image.NRGBA {
	cut := uint8(threshold * 255)
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		// Grayscale input: R == G == B.
		if c.R > cut {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{A: 255}
	})
}

// Package media fits user media into bounded-size inline text payloads.
// The backing store only accepts document fields of about 1MB, so media is
// embedded as base64 data URLs instead of object-storage references.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxInlineBytes is the ceiling for an encoded payload, chosen to stay under
// the backend's ~1MB field limit with margin. Measured on the full data URL,
// prefix included.
const MaxInlineBytes = 900_000

// MaxRawVideoBytes fails video sends fast, before base64 inflates them.
const MaxRawVideoBytes = 3 * 1024 * 1024

const (
	qualityFloor = 0.10
	qualityStep  = 0.10
	shrinkRatio  = 0.7
	shrinkFloorQ = 0.15
	minWidth     = 100
)

// ImageOptions is the per-call-site bounding box and starting JPEG quality
// (0..1).
type ImageOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
}

// Presets matching the three call sites: profile pictures are small and
// sharper, chat and status images are medium.
var (
	ProfileImageOptions = ImageOptions{MaxWidth: 300, MaxHeight: 300, Quality: 0.7}
	ChatImageOptions    = ImageOptions{MaxWidth: 800, MaxHeight: 800, Quality: 0.6}
	StatusImageOptions  = ImageOptions{MaxWidth: 800, MaxHeight: 800, Quality: 0.65}
)

// EncodeImage decodes data, fits it into the bounding box preserving aspect
// ratio, and re-encodes as JPEG, stepping quality down and then shrinking
// dimensions until the data URL is under MaxInlineBytes. The loop always
// terminates: quality bottoms out at its floor and width at minWidth. If the
// ceiling still cannot be met the oversized result is returned rather than an
// error; callers must treat "under ceiling" as best-effort for large
// originals.
func EncodeImage(data []byte, opts ImageOptions) (string, error) {
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return "", fmt.Errorf("not an image file")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	w, h := fitBox(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxWidth, opts.MaxHeight)

	q := opts.Quality
	dataURL, err := scaleAndEncode(src, w, h, q)
	if err != nil {
		return "", err
	}

	// First pass: reduce quality in fixed steps.
	for len(dataURL) > MaxInlineBytes && q > qualityFloor {
		q -= qualityStep
		dataURL, err = scaleAndEncode(src, w, h, q)
		if err != nil {
			return "", err
		}
	}

	// Second pass: shrink dimensions until under the ceiling or the width
	// floor is hit.
	for len(dataURL) > MaxInlineBytes && w > minWidth {
		w = int(float64(w) * shrinkRatio)
		h = int(float64(h) * shrinkRatio)
		dataURL, err = scaleAndEncode(src, w, h, max(q, shrinkFloorQ))
		if err != nil {
			return "", err
		}
	}

	return dataURL, nil
}

// EncodeFileChecked base64-encodes raw audio/video bytes without transcoding
// and fails outright when the result exceeds the ceiling.
func EncodeFileChecked(data []byte) (string, error) {
	mime := mimetype.Detect(data).String()
	encoded := dataURL(mime, data)
	if len(encoded) > MaxInlineBytes {
		return "", fmt.Errorf("file too large for storage (%.1fMB), max ~%.1fMB after encoding",
			float64(len(encoded))/1024/1024, float64(MaxInlineBytes)/1024/1024)
	}
	return encoded, nil
}

// EncodeVideo pre-checks the raw size before encoding so obviously oversized
// videos fail fast.
func EncodeVideo(data []byte) (string, error) {
	if len(data) > MaxRawVideoBytes {
		return "", fmt.Errorf("video too large, max ~3MB")
	}
	return EncodeFileChecked(data)
}

// fitBox computes dimensions that fit within (maxW, maxH) preserving aspect
// ratio. Images already inside the box keep their size.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(float64(w)*ratio + 0.5)
	fh := int(float64(h)*ratio + 0.5)
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}

func scaleAndEncode(src image.Image, w, h int, quality float64) (string, error) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

// jpegQuality maps the 0..1 quality knob onto image/jpeg's 1..100 scale.
func jpegQuality(q float64) int {
	n := int(q*100 + 0.5)
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

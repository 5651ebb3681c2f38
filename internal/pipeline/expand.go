package pipeline

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/disintegration/imaging"

	"defectprep/internal/imgio"
)

// ExpandMode selects which axes the expander pads.
type ExpandMode int

const (
	// ExpandShorterAxis pads only the shorter axis up to the target size,
	// leaving the longer axis untouched. Square inputs pass through.
	ExpandShorterAxis ExpandMode = iota

	// ExpandBothAxes pads every axis that is below the target size.
	ExpandBothAxes
)

// Expand pads original (and mask, when non-nil) onto a larger canvas filled
// with imgio.PaddingGray. The padding on an axis is max(0, target-dim): the
// target acts as a floor, never shrinking the image. The split between
// leading and trailing padding is drawn uniformly from rng, and the mask is
// pasted at the exact same offset as the original so the two stay aligned.
//
// When no axis needs padding the inputs are returned unchanged. Expand is a
// pure transform; persisting the result is the caller's concern.
func Expand(original, mask *image.NRGBA, target int, mode ExpandMode, rng *rand.Rand) (*image.NRGBA, *image.NRGBA, error) {
	if mask != nil && !imgio.SameSize(original, mask) {
		return nil, nil, fmt.Errorf("%w: original %dx%d, mask %dx%d",
			ErrShapeMismatch,
			original.Bounds().Dx(), original.Bounds().Dy(),
			mask.Bounds().Dx(), mask.Bounds().Dy())
	}

	w := original.Bounds().Dx()
	h := original.Bounds().Dy()

	var padW, padH int
	switch mode {
	case ExpandShorterAxis:
		if h < w {
			padH = max(0, target-h)
		} else if w < h {
			padW = max(0, target-w)
		}
	case ExpandBothAxes:
		padW = max(0, target-w)
		padH = max(0, target-h)
	default:
		return nil, nil, fmt.Errorf("unknown expand mode %d", mode)
	}

	if padW == 0 && padH == 0 {
		return original, mask, nil
	}

	left := rng.Intn(padW + 1)
	top := rng.Intn(padH + 1)
	offset := image.Pt(left, top)

	expanded := imaging.Paste(imaging.New(w+padW, h+padH, imgio.PaddingGray), original, offset)
	var expandedMask *image.NRGBA
	if mask != nil {
		expandedMask = imaging.Paste(imaging.New(w+padW, h+padH, imgio.PaddingGray), mask, offset)
	}
	return expanded, expandedMask, nil
}

package pipeline

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/disintegration/imaging"

	"defectprep/internal/imgio"
)

// Candidate is one randomly positioned square crop drawn from a source pair.
type Candidate struct {
	Original *image.NRGBA
	Mask     *image.NRGBA // nil when cropping without a mask
	X, Y     int          // top-left corner in the source

	// DefectRatio is the fraction of mask pixels equal to imgio.DefectWhite,
	// always in [0, 1]. Zero when there is no mask.
	DefectRatio float64
}

// Cropper draws up to a fixed number of random square crops from a source
// pair. It is a finite, non-restartable sequence: each Next call consumes
// one attempt. Attempts are independent; overlapping or identical crops are
// not excluded.
type Cropper struct {
	original *image.NRGBA
	mask     *image.NRGBA
	size     int
	attempts int
	rng      *rand.Rand
	drawn    int
}

// NewCropper validates the source against the crop size and returns the
// candidate sequence. A source smaller than size on either axis yields
// ErrUndersized: the caller should skip the pair, not abort the batch.
func NewCropper(original, mask *image.NRGBA, size, attempts int, rng *rand.Rand) (*Cropper, error) {
	if mask != nil && !imgio.SameSize(original, mask) {
		return nil, fmt.Errorf("%w: original %dx%d, mask %dx%d",
			ErrShapeMismatch,
			original.Bounds().Dx(), original.Bounds().Dy(),
			mask.Bounds().Dx(), mask.Bounds().Dy())
	}
	w := original.Bounds().Dx()
	h := original.Bounds().Dy()
	if size > w || size > h {
		return nil, fmt.Errorf("%w: source %dx%d, crop %d", ErrUndersized, w, h, size)
	}
	return &Cropper{original: original, mask: mask, size: size, attempts: attempts, rng: rng}, nil
}

// Next draws the next candidate, or reports false once the attempt budget
// is spent.
func (c *Cropper) Next() (Candidate, bool) {
	if c.drawn >= c.attempts {
		return Candidate{}, false
	}
	c.drawn++

	maxX := c.original.Bounds().Dx() - c.size
	maxY := c.original.Bounds().Dy() - c.size
	x := c.rng.Intn(maxX + 1)
	y := c.rng.Intn(maxY + 1)
	rect := image.Rect(x, y, x+c.size, y+c.size)

	cand := Candidate{
		Original: imaging.Crop(c.original, rect),
		X:        x,
		Y:        y,
	}
	if c.mask != nil {
		cand.Mask = imaging.Crop(c.mask, rect)
		cand.DefectRatio = DefectRatio(cand.Mask)
	}
	return cand, true
}

// DefectRatio is the fraction of pixels in a mask crop equal to the defect
// color. The denominator is the full pixel count of the crop.
func DefectRatio(maskCrop *image.NRGBA) float64 {
	total := maskCrop.Bounds().Dx() * maskCrop.Bounds().Dy()
	if total == 0 {
		return 0
	}
	return float64(imgio.CountColor(maskCrop, imgio.DefectWhite)) / float64(total)
}

// Accept reports whether a crop with the given defect ratio clears the
// threshold. Raising the threshold can only shrink the accepted set.
func Accept(ratio, threshold float64) bool {
	return ratio >= threshold
}

package pipeline

import (
	"image"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"defectprep/internal/imgio"
)

func TestCropperBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	original := imaging.New(600, 512, red)
	mask := imaging.New(600, 512, imgio.PaddingGray)

	cropper, err := NewCropper(original, mask, 512, 40, rng)
	require.NoError(t, err)

	var drawn int
	for cand, ok := cropper.Next(); ok; cand, ok = cropper.Next() {
		drawn++
		require.GreaterOrEqual(t, cand.X, 0)
		require.LessOrEqual(t, cand.X, 88)
		require.Equal(t, 0, cand.Y)
		require.Equal(t, 512, cand.Original.Bounds().Dx())
		require.Equal(t, 512, cand.Original.Bounds().Dy())
		require.Equal(t, 512, cand.Mask.Bounds().Dx())
	}
	require.Equal(t, 40, drawn)

	// The sequence is exhausted for good.
	_, ok := cropper.Next()
	require.False(t, ok)
}

func TestCropperExactFitHasSinglePosition(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	original := imaging.New(512, 512, red)
	mask := imaging.New(512, 512, imgio.DefectWhite)

	cropper, err := NewCropper(original, mask, 512, 5, rng)
	require.NoError(t, err)

	for cand, ok := cropper.Next(); ok; cand, ok = cropper.Next() {
		require.Equal(t, 0, cand.X)
		require.Equal(t, 0, cand.Y)
		require.Equal(t, 1.0, cand.DefectRatio)
	}
}

func TestCropperUndersized(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	original := imaging.New(300, 600, red)

	_, err := NewCropper(original, nil, 512, 5, rng)
	require.ErrorIs(t, err, ErrUndersized)
}

func TestCropperShapeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	original := imaging.New(600, 600, red)
	mask := imaging.New(600, 601, imgio.PaddingGray)

	_, err := NewCropper(original, mask, 512, 5, rng)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestCropperNilMask(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	original := imaging.New(600, 600, red)

	cropper, err := NewCropper(original, nil, 512, 3, rng)
	require.NoError(t, err)

	cand, ok := cropper.Next()
	require.True(t, ok)
	require.Nil(t, cand.Mask)
	require.Equal(t, 0.0, cand.DefectRatio)
}

func TestDefectRatio(t *testing.T) {
	gray := imaging.New(100, 100, imgio.PaddingGray)
	require.Equal(t, 0.0, DefectRatio(gray))

	white := imaging.New(100, 100, imgio.DefectWhite)
	require.Equal(t, 1.0, DefectRatio(white))
}

// A 10x10 white block on a 100x100 gray canvas gives ratio 100/10000.
func TestDefectRatioPartial(t *testing.T) {
	canvas := imaging.New(100, 100, imgio.PaddingGray)
	canvas = imaging.Paste(canvas, imaging.New(10, 10, imgio.DefectWhite), image.Pt(20, 30))
	require.InDelta(t, 0.01, DefectRatio(canvas), 1e-12)
}

func TestAccept(t *testing.T) {
	require.True(t, Accept(0.0002, 0.0002))
	require.True(t, Accept(0.5, 0.0002))
	require.False(t, Accept(0.0001, 0.0002))

	// Zero threshold keeps everything, including defect-free crops.
	require.True(t, Accept(0, 0))

	// Raising the threshold never accepts a ratio a lower one rejected.
	for _, ratio := range []float64{0, 0.0001, 0.001, 0.5, 1} {
		if !Accept(ratio, 0.001) {
			require.False(t, Accept(ratio, 0.01))
		}
	}
}

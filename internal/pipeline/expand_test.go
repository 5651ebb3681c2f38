package pipeline

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"defectprep/internal/imgio"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// contentOffset locates the first pixel of c scanning row-major, which is the
// paste offset when the whole source is filled with c.
func contentOffset(t *testing.T, img *image.NRGBA, c color.NRGBA) image.Point {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) == c {
				return image.Pt(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	t.Fatalf("color %v not found", c)
	return image.Point{}
}

func TestExpandShorterAxisPadsHeightOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	original := imaging.New(600, 400, red)
	mask := imaging.New(600, 400, blue)

	for i := 0; i < 50; i++ {
		expOrig, expMask, err := Expand(original, mask, 512, ExpandShorterAxis, rng)
		require.NoError(t, err)

		require.Equal(t, 600, expOrig.Bounds().Dx())
		require.Equal(t, 512, expOrig.Bounds().Dy())
		require.Equal(t, 600, expMask.Bounds().Dx())
		require.Equal(t, 512, expMask.Bounds().Dy())

		off := contentOffset(t, expOrig, red)
		require.Equal(t, 0, off.X)
		require.GreaterOrEqual(t, off.Y, 0)
		require.LessOrEqual(t, off.Y, 112)

		// Mask lands at the exact same offset.
		require.Equal(t, off, contentOffset(t, expMask, blue))

		// Rows outside the pasted band are pure padding.
		if off.Y > 0 {
			require.Equal(t, imgio.PaddingGray, expOrig.NRGBAAt(0, off.Y-1))
			require.Equal(t, imgio.PaddingGray, expMask.NRGBAAt(0, off.Y-1))
		}
		if bottom := off.Y + 400; bottom < 512 {
			require.Equal(t, imgio.PaddingGray, expOrig.NRGBAAt(599, bottom))
		}
	}
}

func TestExpandBothAxes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	original := imaging.New(300, 200, red)
	mask := imaging.New(300, 200, blue)

	expOrig, expMask, err := Expand(original, mask, 512, ExpandBothAxes, rng)
	require.NoError(t, err)
	require.Equal(t, 512, expOrig.Bounds().Dx())
	require.Equal(t, 512, expOrig.Bounds().Dy())

	off := contentOffset(t, expOrig, red)
	require.LessOrEqual(t, off.X, 212)
	require.LessOrEqual(t, off.Y, 312)
	require.Equal(t, off, contentOffset(t, expMask, blue))
}

func TestExpandOversizedAxisIsClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	original := imaging.New(800, 300, red)

	// Both-axes mode: width already exceeds the target, only height grows.
	expOrig, _, err := Expand(original, nil, 512, ExpandBothAxes, rng)
	require.NoError(t, err)
	require.Equal(t, 800, expOrig.Bounds().Dx())
	require.Equal(t, 512, expOrig.Bounds().Dy())
}

func TestExpandPassThrough(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	original := imaging.New(512, 512, red)
	mask := imaging.New(512, 512, blue)

	expOrig, expMask, err := Expand(original, mask, 512, ExpandBothAxes, rng)
	require.NoError(t, err)
	require.Same(t, original, expOrig)
	require.Same(t, mask, expMask)

	// Square input passes through in shorter-axis mode regardless of size.
	small := imaging.New(100, 100, red)
	expOrig, _, err = Expand(small, nil, 512, ExpandShorterAxis, rng)
	require.NoError(t, err)
	require.Same(t, small, expOrig)
}

func TestExpandShapeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	original := imaging.New(600, 400, red)
	mask := imaging.New(400, 600, blue)

	_, _, err := Expand(original, mask, 512, ExpandShorterAxis, rng)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestExpandNilMask(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	original := imaging.New(600, 400, red)

	expOrig, expMask, err := Expand(original, nil, 512, ExpandShorterAxis, rng)
	require.NoError(t, err)
	require.Nil(t, expMask)
	require.Equal(t, 512, expOrig.Bounds().Dy())
}

func TestExpandDeterministicWithSeed(t *testing.T) {
	original := imaging.New(600, 400, red)

	a, _, err := Expand(original, nil, 512, ExpandShorterAxis, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, _, err := Expand(original, nil, 512, ExpandShorterAxis, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.Equal(t, contentOffset(t, a, red), contentOffset(t, b, red))
}

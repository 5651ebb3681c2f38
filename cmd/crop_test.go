package cmd

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"defectprep/internal/imgio"
	"defectprep/internal/pair"
)

func TestCropPairMaskSaveFailureLeavesNoOrphan(t *testing.T) {
	inDir := t.TempDir()
	originalPath := filepath.Join(inDir, "7.png")
	maskPath := filepath.Join(inDir, "7_mask.png")
	require.NoError(t, imgio.Save(originalPath, imaging.New(512, 512, imgio.PaddingGray)))
	require.NoError(t, imgio.Save(maskPath, imaging.New(512, 512, imgio.DefectWhite)))

	outOriginals := t.TempDir()
	// A regular file in place of the mask output root makes every mask
	// save fail while the original save still succeeds.
	outMasks := filepath.Join(t.TempDir(), "masks")
	require.NoError(t, os.WriteFile(outMasks, []byte("x"), 0o644))

	opts := Options{
		OutOriginals: outOriginals,
		OutMasks:     outMasks,
		MaskSuffix:   "_mask",
		CropRatio:    1.0,
		Attempts:     3,
		Threshold:    0.0002,
	}
	p := pair.Pair{Original: originalPath, Mask: maskPath, Base: "7", Ext: ".png"}

	accepted, _, err := cropPair(p, opts, rand.New(rand.NewSource(17)))
	require.Error(t, err)
	require.Equal(t, 0, accepted)

	// The half-written crop was cleaned up: outputs only ever exist as
	// complete pairs.
	entries, err := os.ReadDir(outOriginals)
	require.NoError(t, err)
	require.Empty(t, entries)
}

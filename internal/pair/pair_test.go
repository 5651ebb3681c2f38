package pair

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestMaskFor(t *testing.T) {
	require.Equal(t, filepath.Join("data", "7_mask.png"), MaskFor(filepath.Join("data", "7.png"), "_mask"))
	require.Equal(t, filepath.Join("data", "7_expanded_2_mask.png"), MaskFor(filepath.Join("data", "7_expanded_2.png"), "_mask"))
	require.Equal(t, "plate_triple.jpg", MaskFor("plate.jpg", "_triple"))
}

func TestIsMask(t *testing.T) {
	require.True(t, IsMask("7_mask.png", "_mask"))
	require.True(t, IsMask("7_mask_cropped_3.png", "_mask"))
	require.False(t, IsMask("7.png", "_mask"))
	require.False(t, IsMask("7_label.png", "_mask"))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.png")
	touch(t, dir, "1_mask.png")
	touch(t, dir, "2.png") // no mask
	touch(t, dir, "3.jpg")
	touch(t, dir, "3_mask.jpg")

	pairs, unmatched, err := List(dir, dir, "_mask", false)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Len(t, unmatched, 1)

	require.Equal(t, "1", pairs[0].Base)
	require.Equal(t, ".png", pairs[0].Ext)
	require.Equal(t, filepath.Join(dir, "1_mask.png"), pairs[0].Mask)
	require.Equal(t, "3", pairs[1].Base)
	require.Equal(t, ".jpg", pairs[1].Ext)
	require.Equal(t, filepath.Join(dir, "2.png"), unmatched[0])
}

func TestListSeparateMaskDir(t *testing.T) {
	origDir := t.TempDir()
	maskDir := t.TempDir()
	touch(t, origDir, "9.png")
	touch(t, maskDir, "9_mask.png")

	pairs, unmatched, err := List(origDir, maskDir, "_mask", false)
	require.NoError(t, err)
	require.Empty(t, unmatched)
	require.Len(t, pairs, 1)
	require.Equal(t, filepath.Join(maskDir, "9_mask.png"), pairs[0].Mask)
}

func TestListDigitsOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "12.png")
	touch(t, dir, "12_mask.png")
	touch(t, dir, "notes.png")
	touch(t, dir, "notes_mask.png")

	pairs, unmatched, err := List(dir, dir, "_mask", true)
	require.NoError(t, err)
	require.Empty(t, unmatched)
	require.Len(t, pairs, 1)
	require.Equal(t, "12", pairs[0].Base)
}

func TestListMissingDir(t *testing.T) {
	_, _, err := List(filepath.Join(t.TempDir(), "nope"), ".", "_mask", false)
	require.Error(t, err)
}

func TestListBare(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png")
	touch(t, dir, "b_mask.png") // still excluded
	touch(t, dir, "c.jpg")

	pairs, err := ListBare(dir, "_mask", false)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, "a", pairs[0].Base)
	require.Empty(t, pairs[0].Mask)
	require.Equal(t, "c", pairs[1].Base)
}

func TestListMasks(t *testing.T) {
	maskDir := t.TempDir()
	labelDir := t.TempDir()
	touch(t, maskDir, "4_mask.png")
	touch(t, labelDir, "4_label.png")
	touch(t, maskDir, "5_mask.png") // no label
	touch(t, maskDir, "4.png")      // not a mask, ignored

	sets, unmatched, err := ListMasks(maskDir, labelDir)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.Len(t, unmatched, 1)

	require.Equal(t, "4", sets[0].Base)
	require.Equal(t, ".png", sets[0].Ext)
	require.Equal(t, filepath.Join(maskDir, "4_mask.png"), sets[0].Mask)
	require.Equal(t, filepath.Join(labelDir, "4_label.png"), sets[0].Label)
	require.Equal(t, filepath.Join(maskDir, "5_mask.png"), unmatched[0])
}

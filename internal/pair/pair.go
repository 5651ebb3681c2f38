// Package pair implements the filename conventions that tie an image to its
// companion files: "{base}_mask{ext}" for defect masks and
// "{base}_label{ext}" for class-ID label images. Pairing is resolved here,
// once, so no command re-derives paths by ad-hoc string splitting.
package pair

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pair is an original image matched with its mask by filename convention.
type Pair struct {
	Original string // absolute path of the original image
	Mask     string // absolute path of the matching mask
	Base     string // original base name without extension
	Ext      string // extension including the dot
}

// MaskFor returns the expected mask path for an original image. The suffix
// is inserted between base name and extension, so already-expanded names
// like "7_expanded_2.png" resolve to "7_expanded_2_mask.png".
func MaskFor(originalPath, suffix string) string {
	dir := filepath.Dir(originalPath)
	name := filepath.Base(originalPath)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, base+suffix+ext)
}

// IsMask reports whether name carries the mask suffix in its base name.
func IsMask(name, suffix string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.Contains(base, suffix)
}

// isAllDigits reports whether s is a non-empty run of ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// List scans originalDir for original images and matches each against a mask
// in maskDir (which may equal originalDir). It returns the matched pairs and
// the original files for which no mask exists. Files whose base name carries
// the mask suffix are never treated as originals. With digitsOnly set, only
// files whose base name is purely numeric are considered, matching the raw
// export naming of the capture rigs.
func List(originalDir, maskDir, suffix string, digitsOnly bool) (pairs []Pair, unmatched []string, err error) {
	entries, err := os.ReadDir(originalDir)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if IsMask(name, suffix) {
			continue
		}
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		if digitsOnly && !isAllDigits(base) {
			continue
		}

		original := filepath.Join(originalDir, name)
		mask := filepath.Join(maskDir, base+suffix+ext)
		if _, statErr := os.Stat(mask); statErr != nil {
			unmatched = append(unmatched, original)
			continue
		}
		pairs = append(pairs, Pair{Original: original, Mask: mask, Base: base, Ext: ext})
	}
	return pairs, unmatched, nil
}

// ListBare scans dir like List but without requiring masks: every
// non-mask file becomes a Pair with an empty Mask path.
func ListBare(dir, suffix string, digitsOnly bool) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var pairs []Pair
	for _, name := range names {
		if IsMask(name, suffix) {
			continue
		}
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		if digitsOnly && !isAllDigits(base) {
			continue
		}
		pairs = append(pairs, Pair{Original: filepath.Join(dir, name), Base: base, Ext: ext})
	}
	return pairs, nil
}

// MaskSet is a mask image matched with its label image for defect extraction.
type MaskSet struct {
	Base  string // shared base name
	Ext   string // extension including the dot
	Mask  string // path of the full mask
	Label string // path of the class-ID label image
}

// ListMasks scans maskDir for "{base}_mask{ext}" files and matches each with
// "{base}_label{ext}" in labelDir. Masks with no label are returned in
// unmatched.
func ListMasks(maskDir, labelDir string) (sets []MaskSet, unmatched []string, err error) {
	entries, err := os.ReadDir(maskDir)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		lower := strings.ToLower(name)
		idx := strings.LastIndex(lower, "_mask.")
		if idx < 0 {
			continue
		}
		base := name[:idx]
		ext := name[idx+len("_mask"):]

		maskPath := filepath.Join(maskDir, name)
		labelPath := filepath.Join(labelDir, base+"_label"+ext)
		if _, statErr := os.Stat(labelPath); statErr != nil {
			unmatched = append(unmatched, maskPath)
			continue
		}
		sets = append(sets, MaskSet{Base: base, Ext: ext, Mask: maskPath, Label: labelPath})
	}
	return sets, unmatched, nil
}

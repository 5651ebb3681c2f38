// Package imgio wraps image loading, saving and pixel bookkeeping for the
// dataset pipeline. All images are handled as 8-bit RGB grids (NRGBA in
// memory, alpha ignored for comparisons).
package imgio

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	// Register decoders for the extensions the pipeline accepts beyond
	// what the stdlib ships with.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var (
	// PaddingGray fills the border region added by expansion. Masks use the
	// same fill so a padded pixel never counts as defect.
	PaddingGray = color.NRGBA{R: 127, G: 127, B: 127, A: 255}

	// DefectWhite marks defect pixels inside a mask. Distinct from
	// PaddingGray; the two must never be interchanged.
	DefectWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// savableExts is the set of output extensions the encoder supports.
// Anything else falls back to PNG.
var savableExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tiff": true,
}

// Load decodes the image at path into an NRGBA grid.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return imaging.Clone(img), nil
}

// Save encodes img to path, inferring the format from the extension.
func Save(path string, img *image.NRGBA) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NormalizeExt lowercases ext and maps unsupported output formats to ".png".
func NormalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !savableExts[ext] {
		return ".png"
	}
	return ext
}

// SameSize reports whether two grids have identical width and height.
func SameSize(a, b *image.NRGBA) bool {
	return a.Bounds().Dx() == b.Bounds().Dx() && a.Bounds().Dy() == b.Bounds().Dy()
}

// CountColor returns the number of pixels whose R, G and B channels equal c.
// Alpha is not compared.
func CountColor(img *image.NRGBA, c color.NRGBA) int {
	b := img.Bounds()
	count := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i] == c.R && img.Pix[i+1] == c.G && img.Pix[i+2] == c.B {
				count++
			}
		}
	}
	return count
}

// Dimensions reads only the header of the image at path and returns its
// width and height without decoding pixel data.
func Dimensions(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode header of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// SideEstimate returns int(sqrt(w*h)), the square-equivalent side length of
// an image. Used by the stats command to suggest an expansion target.
func SideEstimate(w, h int) int {
	return int(math.Sqrt(float64(w) * float64(h)))
}

// Package extract isolates single-defect masks from multi-class label
// images. A label image encodes a defect class ID in every channel of a
// pixel; extraction keeps the full mask only where the label matches the
// requested ID.
package extract

import (
	"fmt"
	"image"

	"defectprep/internal/imgio"
)

// DefectOnly returns a copy of mask keeping only the pixels where label
// equals (id,id,id); everything else is black. It returns (nil, nil) when no
// pixel carries the requested ID, so the caller can skip the pair without
// treating it as an error.
func DefectOnly(label, mask *image.NRGBA, id uint8) (*image.NRGBA, error) {
	if !imgio.SameSize(label, mask) {
		return nil, fmt.Errorf("label %dx%d and mask %dx%d dimensions differ",
			label.Bounds().Dx(), label.Bounds().Dy(),
			mask.Bounds().Dx(), mask.Bounds().Dy())
	}

	lb := label.Bounds()
	mb := mask.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, mb.Dx(), mb.Dy()))
	found := false
	for y := 0; y < mb.Dy(); y++ {
		for x := 0; x < mb.Dx(); x++ {
			oi := out.PixOffset(x, y)
			li := label.PixOffset(lb.Min.X+x, lb.Min.Y+y)
			if label.Pix[li] != id || label.Pix[li+1] != id || label.Pix[li+2] != id {
				// Left black; remapped to gray later.
				out.Pix[oi+3] = 255
				continue
			}
			found = true
			mi := mask.PixOffset(mb.Min.X+x, mb.Min.Y+y)
			copy(out.Pix[oi:oi+4], mask.Pix[mi:mi+4])
		}
	}
	if !found {
		return nil, nil
	}
	return out, nil
}

// GrayRemap replaces every pure-black pixel with the padding gray, so the
// extracted mask uses the same non-content color as expanded canvases and
// downstream ratio tests stay consistent. The input is not modified.
func GrayRemap(mask *image.NRGBA) *image.NRGBA {
	b := mask.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mi := mask.PixOffset(x, y)
			oi := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			if mask.Pix[mi] == 0 && mask.Pix[mi+1] == 0 && mask.Pix[mi+2] == 0 {
				out.Pix[oi] = imgio.PaddingGray.R
				out.Pix[oi+1] = imgio.PaddingGray.G
				out.Pix[oi+2] = imgio.PaddingGray.B
				out.Pix[oi+3] = 255
				continue
			}
			copy(out.Pix[oi:oi+4], mask.Pix[mi:mi+4])
		}
	}
	return out
}

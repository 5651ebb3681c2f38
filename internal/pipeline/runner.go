package pipeline

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"defectprep/internal/imgio"
	"defectprep/internal/pair"
)

// Params holds the tunables of the expand-crop-validate pipeline.
type Params struct {
	TargetSize    int     // expansion canvas floor, per axis
	CropSize      int     // side of the square samples
	Augmentations int     // expanded variants drawn per source pair
	CropsPerAug   int     // crop attempts per expanded variant
	Threshold     float64 // minimum defect ratio for a crop to be kept
}

// PairResult counts the crop attempts of a single source pair.
type PairResult struct {
	Accepted int
	Rejected int
}

// Runner drives the full pipeline for one batch: expansion with the target
// as a floor on both axes, random square crops, and the defect-ratio
// acceptance test. Accepted crops are numbered by a single monotonic counter
// across the whole run, owned here rather than by a package global.
type Runner struct {
	params       Params
	outOriginals string
	outMasks     string
	rng          *rand.Rand
	nextID       int
}

// NewRunner returns a runner writing accepted originals and masks into the
// two given output roots.
func NewRunner(params Params, outOriginals, outMasks string, rng *rand.Rand) *Runner {
	return &Runner{
		params:       params,
		outOriginals: outOriginals,
		outMasks:     outMasks,
		rng:          rng,
	}
}

// Emitted returns how many crop pairs the runner has written so far.
func (r *Runner) Emitted() int {
	return r.nextID
}

// ProcessPair runs the pipeline for one image/mask pair. Any error is a
// per-pair failure: the caller logs it and moves on to the next pair.
func (r *Runner) ProcessPair(p pair.Pair) (PairResult, error) {
	var res PairResult

	original, err := imgio.Load(p.Original)
	if err != nil {
		return res, err
	}
	mask, err := imgio.Load(p.Mask)
	if err != nil {
		return res, err
	}
	ext := imgio.NormalizeExt(p.Ext)

	for aug := 0; aug < r.params.Augmentations; aug++ {
		expanded, expandedMask, err := Expand(original, mask, r.params.TargetSize, ExpandBothAxes, r.rng)
		if err != nil {
			return res, err
		}

		cropper, err := NewCropper(expanded, expandedMask, r.params.CropSize, r.params.CropsPerAug, r.rng)
		if err != nil {
			// Every augmentation of this pair has the same dimensions, so
			// retrying is pointless: skip the remaining attempts.
			return res, err
		}

		for cand, ok := cropper.Next(); ok; cand, ok = cropper.Next() {
			if !Accept(cand.DefectRatio, r.params.Threshold) {
				log.Debugf("rejected crop of %s at (%d,%d): ratio %.6f < %.6f",
					p.Base, cand.X, cand.Y, cand.DefectRatio, r.params.Threshold)
				res.Rejected++
				continue
			}

			r.nextID++
			outOriginal := filepath.Join(r.outOriginals, fmt.Sprintf("%d%s", r.nextID, ext))
			outMask := filepath.Join(r.outMasks, fmt.Sprintf("%d_mask%s", r.nextID, ext))
			if err := imgio.Save(outOriginal, cand.Original); err != nil {
				r.nextID--
				return res, err
			}
			if err := imgio.Save(outMask, cand.Mask); err != nil {
				// Outputs exist strictly in pairs: never leave a numbered
				// original behind without its mask.
				os.Remove(outOriginal)
				r.nextID--
				return res, err
			}
			log.Debugf("saved %s (ratio %.4f)", filepath.Base(outOriginal), cand.DefectRatio)
			res.Accepted++
		}
	}
	return res, nil
}

package cmd

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"defectprep/internal/imgio"
	"defectprep/internal/pair"
	"defectprep/internal/pipeline"
	"defectprep/internal/utils"
)

var cropOpts Options

var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Draw random square crops from expanded pairs, keeping defect-rich ones",
	Long: `crop draws random square windows from each image/mask pair and keeps a
crop only when its defect-pixel ratio clears the threshold. Kept crops are
named {base}_cropped_{k} with a per-source counter. With --no-mask every
crop is kept and no mask is required.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCrop(cropOpts)
	},
}

func init() {
	cropCmd.Flags().StringVarP(&cropOpts.InputDir, "input", "i", "", "Directory holding the (expanded) originals")
	cropCmd.Flags().StringVar(&cropOpts.MaskDir, "masks", "", "Directory holding the masks (default: same as --input)")
	cropCmd.Flags().StringVarP(&cropOpts.OutOriginals, "out-originals", "o", "cropped_originals", "Output directory for kept original crops")
	cropCmd.Flags().StringVarP(&cropOpts.OutMasks, "out-masks", "m", "cropped_masks", "Output directory for kept mask crops")
	cropCmd.Flags().Float64Var(&cropOpts.CropRatio, "crop-ratio", 1.0, "Crop side as a fraction of the shorter image side")
	cropCmd.Flags().IntVarP(&cropOpts.Attempts, "attempts", "n", 10, "Crop attempts per pair")
	cropCmd.Flags().Float64VarP(&cropOpts.Threshold, "threshold", "t", 0.0002, "Minimum defect-pixel ratio for a crop to be kept")
	cropCmd.Flags().StringVar(&cropOpts.MaskSuffix, "mask-suffix", "_mask", "Suffix locating a companion mask")
	cropCmd.Flags().BoolVar(&cropOpts.NoMask, "no-mask", false, "Crop bare images: no masks, every crop is kept")
	cropCmd.Flags().Int64Var(&cropOpts.Seed, "seed", 0, "Random seed (0 = derive from clock)")

	rootCmd.AddCommand(cropCmd)
}

func runCrop(opts Options) {
	opts.InputDir = envFallback(opts.InputDir, "DEFECTPREP_INPUT_DIR")
	if opts.InputDir == "" {
		utils.Die("No input directory (use --input or DEFECTPREP_INPUT_DIR)", nil)
	}
	if opts.MaskDir == "" {
		opts.MaskDir = opts.InputDir
	}
	if opts.CropRatio <= 0 || opts.CropRatio > 1.0 {
		utils.Die("Invalid crop ratio", fmt.Errorf("must be in (0, 1], got %f", opts.CropRatio))
	}
	if opts.Attempts < 1 {
		utils.Die("Invalid number of attempts", fmt.Errorf("must be >= 1, got %d", opts.Attempts))
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		utils.Die("Invalid defect threshold", fmt.Errorf("must be in [0, 1], got %f", opts.Threshold))
	}
	if err := utils.EnsureDir(opts.OutOriginals); err != nil {
		utils.Die("Cannot create output directory", err)
	}
	if !opts.NoMask {
		if err := utils.EnsureDir(opts.OutMasks); err != nil {
			utils.Die("Cannot create output directory", err)
		}
	}

	var pairs []pair.Pair
	var unmatched []string
	var listErr error
	if opts.NoMask {
		pairs, listErr = pair.ListBare(opts.InputDir, opts.MaskSuffix, false)
	} else {
		pairs, unmatched, listErr = pair.List(opts.InputDir, opts.MaskDir, opts.MaskSuffix, false)
	}
	if listErr != nil {
		utils.Die("Failed to list input directory", listErr)
	}
	for _, orphan := range unmatched {
		log.Warnf("no matching mask for %s, skipped", filepath.Base(orphan))
	}

	rng := newRand(opts.Seed)
	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionSetDescription("✂️  Cropping"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	var accepted, rejected, errored int
	for _, p := range pairs {
		acc, rej, err := cropPair(p, opts, rng)
		accepted += acc
		rejected += rej
		if err != nil {
			errored++
			if errors.Is(err, pipeline.ErrShapeMismatch) || errors.Is(err, pipeline.ErrUndersized) {
				log.Warnf("pair %s skipped: %v", p.Base, err)
			} else {
				log.Errorf("pair %s failed: %v", p.Base, err)
			}
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "📊 CROP SUMMARY\n")
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "Sources processed: %d\n", len(pairs)-errored)
	fmt.Fprintf(os.Stderr, "Sources skipped:   %d (no matching mask)\n", len(unmatched))
	fmt.Fprintf(os.Stderr, "Sources errored:   %d\n", errored)
	fmt.Fprintf(os.Stderr, "Crops kept:        %d\n", accepted)
	fmt.Fprintf(os.Stderr, "Crops rejected:    %d\n", rejected)
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

// cropPair draws the crops of a single source pair and persists the kept
// ones. Without a mask every crop is kept.
func cropPair(p pair.Pair, opts Options, rng *rand.Rand) (accepted, rejected int, err error) {
	original, err := imgio.Load(p.Original)
	if err != nil {
		return 0, 0, err
	}
	var mask *image.NRGBA
	if p.Mask != "" {
		if mask, err = imgio.Load(p.Mask); err != nil {
			return 0, 0, err
		}
	}

	w := original.Bounds().Dx()
	h := original.Bounds().Dy()
	shorter := w
	if h < w {
		shorter = h
	}
	size := int(float64(shorter) * opts.CropRatio)
	if size < 1 {
		size = 1
	}

	cropper, err := pipeline.NewCropper(original, mask, size, opts.Attempts, rng)
	if err != nil {
		return 0, 0, err
	}

	ext := imgio.NormalizeExt(p.Ext)
	threshold := opts.Threshold
	if mask == nil {
		// No mask means nothing to measure; keep everything.
		threshold = 0
	}

	for cand, ok := cropper.Next(); ok; cand, ok = cropper.Next() {
		if !pipeline.Accept(cand.DefectRatio, threshold) {
			log.Debugf("rejected crop of %s at (%d,%d): ratio %.6f < %.6f",
				p.Base, cand.X, cand.Y, cand.DefectRatio, threshold)
			rejected++
			continue
		}

		accepted++
		outName := fmt.Sprintf("%s_cropped_%d%s", p.Base, accepted, ext)
		outPath := filepath.Join(opts.OutOriginals, outName)
		if err := imgio.Save(outPath, cand.Original); err != nil {
			return accepted - 1, rejected, err
		}
		if cand.Mask != nil {
			maskName := fmt.Sprintf("%s_cropped_%d%s%s", p.Base, accepted, opts.MaskSuffix, ext)
			if err := imgio.Save(filepath.Join(opts.OutMasks, maskName), cand.Mask); err != nil {
				// Never leave a crop behind without its mask.
				os.Remove(outPath)
				return accepted - 1, rejected, err
			}
		}
		log.Debugf("saved %s (ratio %.4f)", outName, cand.DefectRatio)
	}
	return accepted, rejected, nil
}

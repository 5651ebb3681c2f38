package cmd

import (
	"fmt"
	"image"
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

var expandOpts Options

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Pad images (and their masks) along the shorter axis to a target size",
	Long: `expand pads each image's shorter axis up to the target size with gray,
splitting the padding randomly between the leading and trailing side. A
companion mask, when present, receives the identical offset so the pair
stays aligned. Square images pass through unchanged.`,
	Run: func(cmd *cobra.Command, args []string) {
		runExpand(expandOpts)
	},
}

func init() {
	expandCmd.Flags().StringVarP(&expandOpts.InputDir, "input", "i", "", "Directory holding originals (and masks unless --no-mask)")
	expandCmd.Flags().StringVarP(&expandOpts.OutOriginals, "out-originals", "o", "expanded_originals", "Output directory for expanded originals")
	expandCmd.Flags().StringVarP(&expandOpts.OutMasks, "out-masks", "m", "expanded_masks", "Output directory for expanded masks")
	expandCmd.Flags().IntVar(&expandOpts.TargetSize, "target-size", 512, "Target size for the shorter axis")
	expandCmd.Flags().IntVarP(&expandOpts.Expansions, "num-expansions", "n", 1, "Expanded variants per source image")
	expandCmd.Flags().StringVar(&expandOpts.MaskSuffix, "mask-suffix", "_mask", "Suffix locating a companion mask")
	expandCmd.Flags().BoolVar(&expandOpts.NoMask, "no-mask", false, "Expand bare images without masks")
	expandCmd.Flags().BoolVar(&expandOpts.DigitsOnly, "digits-only", false, "Only process files whose base name is purely numeric")
	expandCmd.Flags().Int64Var(&expandOpts.Seed, "seed", 0, "Random seed (0 = derive from clock)")

	rootCmd.AddCommand(expandCmd)
}

func runExpand(opts Options) {
	opts.InputDir = envFallback(opts.InputDir, "DEFECTPREP_INPUT_DIR")
	if opts.InputDir == "" {
		utils.Die("No input directory (use --input or DEFECTPREP_INPUT_DIR)", nil)
	}
	if opts.TargetSize < 1 {
		utils.Die("Invalid target size", fmt.Errorf("must be >= 1, got %d", opts.TargetSize))
	}
	if opts.Expansions < 1 {
		utils.Die("Invalid number of expansions", fmt.Errorf("must be >= 1, got %d", opts.Expansions))
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
		pairs, listErr = pair.ListBare(opts.InputDir, opts.MaskSuffix, opts.DigitsOnly)
	} else {
		pairs, unmatched, listErr = pair.List(opts.InputDir, opts.InputDir, opts.MaskSuffix, opts.DigitsOnly)
	}
	if listErr != nil {
		utils.Die("Failed to list input directory", listErr)
	}
	for _, orphan := range unmatched {
		log.Warnf("no matching mask for %s, skipped", filepath.Base(orphan))
	}

	rng := newRand(opts.Seed)
	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionSetDescription("🪟 Expanding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	var written, errored int
	for _, p := range pairs {
		original, err := imgio.Load(p.Original)
		if err != nil {
			log.Errorf("pair %s failed: %v", p.Base, err)
			errored++
			bar.Add(1)
			continue
		}
		var mask *image.NRGBA
		if p.Mask != "" {
			mask, err = imgio.Load(p.Mask)
			if err != nil {
				log.Errorf("pair %s failed: %v", p.Base, err)
				errored++
				bar.Add(1)
				continue
			}
		}

		ext := imgio.NormalizeExt(p.Ext)
		failed := false
		for i := 1; i <= opts.Expansions; i++ {
			expanded, expandedMask, err := pipeline.Expand(original, mask, opts.TargetSize, pipeline.ExpandShorterAxis, rng)
			if err != nil {
				log.Warnf("pair %s skipped: %v", p.Base, err)
				failed = true
				break
			}

			outName := fmt.Sprintf("%s_expanded_%d%s", p.Base, i, ext)
			if err := imgio.Save(filepath.Join(opts.OutOriginals, outName), expanded); err != nil {
				log.Errorf("pair %s failed: %v", p.Base, err)
				failed = true
				break
			}
			if expandedMask != nil {
				maskName := fmt.Sprintf("%s_expanded_%d%s%s", p.Base, i, opts.MaskSuffix, ext)
				if err := imgio.Save(filepath.Join(opts.OutMasks, maskName), expandedMask); err != nil {
					log.Errorf("pair %s failed: %v", p.Base, err)
					failed = true
					break
				}
			}
			written++
		}
		if failed {
			errored++
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "📊 EXPAND SUMMARY\n")
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "Sources processed: %d\n", len(pairs)-errored)
	fmt.Fprintf(os.Stderr, "Sources skipped:   %d (no matching mask)\n", len(unmatched))
	fmt.Fprintf(os.Stderr, "Sources errored:   %d\n", errored)
	fmt.Fprintf(os.Stderr, "Variants written:  %d\n", written)
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

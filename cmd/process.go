package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"defectprep/internal/config"
	"defectprep/internal/pair"
	"defectprep/internal/pipeline"
	"defectprep/internal/utils"
)

var processOpts Options

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the full expand-crop-validate pipeline over a directory",
	Long: `process reads every image/mask pair from the input directory, pads each
axis below the target size with gray, draws random square crops, and keeps
only the crops whose defect-pixel ratio clears the threshold. Accepted crops
are numbered by one monotonic counter across the whole run.`,
	Run: func(cmd *cobra.Command, args []string) {
		runProcess(cmd, processOpts)
	},
}

func init() {
	processCmd.Flags().StringVarP(&processOpts.InputDir, "input", "i", "", "Directory holding originals and their masks")
	processCmd.Flags().StringVarP(&processOpts.OutOriginals, "out-originals", "o", "augmented_originals", "Output directory for accepted original crops")
	processCmd.Flags().StringVarP(&processOpts.OutMasks, "out-masks", "m", "augmented_masks", "Output directory for accepted mask crops")
	processCmd.Flags().StringVar(&processOpts.ProfilePath, "profile", "", "YAML profile with pipeline parameters")
	processCmd.Flags().IntVar(&processOpts.TargetSize, "target-size", 512, "Expansion target size per axis (acts as a floor)")
	processCmd.Flags().IntVar(&processOpts.CropSize, "crop-size", 512, "Side length of the square crops")
	processCmd.Flags().IntVar(&processOpts.Expansions, "augmentations", 1, "Expanded variants per source pair")
	processCmd.Flags().IntVar(&processOpts.Attempts, "attempts", 10, "Crop attempts per expanded variant")
	processCmd.Flags().Float64VarP(&processOpts.Threshold, "threshold", "t", 0.0002, "Minimum defect-pixel ratio for a crop to be kept")
	processCmd.Flags().StringVar(&processOpts.MaskSuffix, "mask-suffix", "_mask", "Suffix locating a companion mask")
	processCmd.Flags().Int64Var(&processOpts.Seed, "seed", 0, "Random seed (0 = derive from clock)")

	rootCmd.AddCommand(processCmd)
}

// resolveProfile layers explicit flags over the YAML profile over the
// defaults, and validates the merged result before any file is touched.
func resolveProfile(cmd *cobra.Command, opts Options) (*config.Profile, error) {
	prof, err := config.Load(opts.ProfilePath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("target-size") {
		prof.Expansion.TargetSize = opts.TargetSize
	}
	if flags.Changed("augmentations") {
		prof.Expansion.Augmentations = opts.Expansions
	}
	if flags.Changed("crop-size") {
		prof.Crop.Size = opts.CropSize
	}
	if flags.Changed("attempts") {
		prof.Crop.Attempts = opts.Attempts
	}
	if flags.Changed("threshold") {
		prof.Crop.DefectThreshold = opts.Threshold
	}
	if flags.Changed("mask-suffix") {
		prof.MaskSuffix = opts.MaskSuffix
	}
	if flags.Changed("seed") {
		prof.Seed = opts.Seed
	}

	if err := prof.Validate(); err != nil {
		return nil, err
	}
	return prof, nil
}

func runProcess(cmd *cobra.Command, opts Options) {
	opts.InputDir = envFallback(opts.InputDir, "DEFECTPREP_INPUT_DIR")
	if opts.InputDir == "" {
		utils.Die("No input directory (use --input or DEFECTPREP_INPUT_DIR)", nil)
	}
	info, err := os.Stat(opts.InputDir)
	if err != nil {
		utils.Die("Unable to access input directory", err)
	}
	if !info.IsDir() {
		utils.Die("Input path is not a directory", fmt.Errorf("got %s", opts.InputDir))
	}

	prof, err := resolveProfile(cmd, opts)
	if err != nil {
		utils.Die("Invalid pipeline configuration", err)
	}
	if err := utils.EnsureDir(opts.OutOriginals); err != nil {
		utils.Die("Cannot create output directory", err)
	}
	if err := utils.EnsureDir(opts.OutMasks); err != nil {
		utils.Die("Cannot create output directory", err)
	}

	pairs, unmatched, err := pair.List(opts.InputDir, opts.InputDir, prof.MaskSuffix, false)
	if err != nil {
		utils.Die("Failed to list input directory", err)
	}
	for _, orphan := range unmatched {
		log.Warnf("no matching mask for %s, skipped", filepath.Base(orphan))
	}

	fmt.Fprintf(os.Stderr, "🧵 Processing %d pairs (target %d, crop %d, threshold %g)\n",
		len(pairs), prof.Expansion.TargetSize, prof.Crop.Size, prof.Crop.DefectThreshold)
	rng := newRand(prof.Seed)

	runner := pipeline.NewRunner(pipeline.Params{
		TargetSize:    prof.Expansion.TargetSize,
		CropSize:      prof.Crop.Size,
		Augmentations: prof.Expansion.Augmentations,
		CropsPerAug:   prof.Crop.Attempts,
		Threshold:     prof.Crop.DefectThreshold,
	}, opts.OutOriginals, opts.OutMasks, rng)

	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionSetDescription("🔬 Cropping"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	var accepted, rejected, errored int
	for _, p := range pairs {
		res, err := runner.ProcessPair(p)
		accepted += res.Accepted
		rejected += res.Rejected
		if err != nil {
			errored++
			switch {
			case errors.Is(err, pipeline.ErrShapeMismatch):
				log.Warnf("pair %s skipped: %v", p.Base, err)
			case errors.Is(err, pipeline.ErrUndersized):
				log.Warnf("pair %s skipped: %v", p.Base, err)
			default:
				log.Errorf("pair %s failed: %v", p.Base, err)
			}
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "📊 PROCESS SUMMARY\n")
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "Pairs processed:   %d\n", len(pairs)-errored)
	fmt.Fprintf(os.Stderr, "Pairs skipped:     %d (no matching mask)\n", len(unmatched))
	fmt.Fprintf(os.Stderr, "Pairs errored:     %d\n", errored)
	fmt.Fprintf(os.Stderr, "Crops accepted:    %d\n", accepted)
	fmt.Fprintf(os.Stderr, "Crops rejected:    %d\n", rejected)
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

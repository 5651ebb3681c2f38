package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"defectprep/internal/extract"
	"defectprep/internal/imgio"
	"defectprep/internal/pair"
	"defectprep/internal/utils"
)

var (
	extractMaskDir      string
	extractLabelDir     string
	extractOutMasks     string
	extractOriginalDir  string
	extractOutOriginals string
	extractDefectID     int
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract single-defect masks from multi-class label images",
	Long: `extract keeps mask pixels only where the matching label image carries the
requested defect class ID, remaps the remainder to gray, and copies the
paired original image alongside. Pairs without the requested ID produce no
output at all.`,
	Run: func(cmd *cobra.Command, args []string) {
		runExtract()
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractMaskDir, "masks", "", "Directory holding {base}_mask files")
	extractCmd.Flags().StringVar(&extractLabelDir, "labels", "", "Directory holding {base}_label files")
	extractCmd.Flags().StringVar(&extractOutMasks, "out-masks", "extracted_masks", "Output directory for extracted masks")
	extractCmd.Flags().StringVar(&extractOriginalDir, "originals", "", "Directory holding the paired original images")
	extractCmd.Flags().StringVar(&extractOutOriginals, "out-originals", "extracted_originals", "Output directory for copied originals")
	extractCmd.Flags().IntVar(&extractDefectID, "defect-id", -1, "Defect class ID to extract (0-255)")

	extractCmd.MarkFlagRequired("masks")
	extractCmd.MarkFlagRequired("labels")
	extractCmd.MarkFlagRequired("defect-id")

	rootCmd.AddCommand(extractCmd)
}

func runExtract() {
	if extractDefectID < 0 || extractDefectID > 255 {
		utils.Die("Invalid defect ID", fmt.Errorf("must be in [0, 255], got %d", extractDefectID))
	}
	for _, dir := range []string{extractMaskDir, extractLabelDir} {
		info, err := os.Stat(dir)
		if err != nil {
			utils.Die("Unable to access directory", err)
		}
		if !info.IsDir() {
			utils.Die("Not a directory", fmt.Errorf("got %s", dir))
		}
	}
	if err := utils.EnsureDir(extractOutMasks); err != nil {
		utils.Die("Cannot create output directory", err)
	}
	if extractOriginalDir != "" {
		if err := utils.EnsureDir(extractOutOriginals); err != nil {
			utils.Die("Cannot create output directory", err)
		}
	}

	sets, unmatched, err := pair.ListMasks(extractMaskDir, extractLabelDir)
	if err != nil {
		utils.Die("Failed to list mask directory", err)
	}
	for _, orphan := range unmatched {
		log.Warnf("no matching label for %s, skipped", filepath.Base(orphan))
	}

	fmt.Fprintf(os.Stderr, "🏷️  Extracting defect ID %d from %d mask/label sets\n", extractDefectID, len(sets))
	bar := progressbar.NewOptions(len(sets),
		progressbar.OptionSetDescription("🧬 Extracting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	var processed, skipped, errored, copied, missing int
	for _, set := range sets {
		bar.Add(1)

		label, err := imgio.Load(set.Label)
		if err != nil {
			log.Errorf("set %s failed: %v", set.Base, err)
			errored++
			continue
		}
		mask, err := imgio.Load(set.Mask)
		if err != nil {
			log.Errorf("set %s failed: %v", set.Base, err)
			errored++
			continue
		}

		defectMask, err := extract.DefectOnly(label, mask, uint8(extractDefectID))
		if err != nil {
			log.Warnf("set %s skipped: %v", set.Base, err)
			errored++
			continue
		}
		if defectMask == nil {
			log.Debugf("set %s has no pixel with defect ID %d", set.Base, extractDefectID)
			skipped++
			continue
		}

		outPath := filepath.Join(extractOutMasks, filepath.Base(set.Mask))
		if err := imgio.Save(outPath, extract.GrayRemap(defectMask)); err != nil {
			log.Errorf("set %s failed: %v", set.Base, err)
			errored++
			continue
		}
		processed++

		if extractOriginalDir == "" {
			continue
		}
		originalName := set.Base + set.Ext
		src := filepath.Join(extractOriginalDir, originalName)
		if _, err := os.Stat(src); err != nil {
			log.Warnf("original %s not found", originalName)
			missing++
			continue
		}
		if err := utils.CopyFile(src, filepath.Join(extractOutOriginals, originalName)); err != nil {
			log.Errorf("copying %s failed: %v", originalName, err)
			errored++
			continue
		}
		copied++
	}
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "📊 EXTRACT SUMMARY\n")
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "Masks extracted:   %d\n", processed)
	fmt.Fprintf(os.Stderr, "Sets without ID:   %d\n", skipped)
	fmt.Fprintf(os.Stderr, "Sets errored:      %d\n", errored)
	fmt.Fprintf(os.Stderr, "Originals copied:  %d\n", copied)
	fmt.Fprintf(os.Stderr, "Originals missing: %d\n", missing)
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Options holds shared configuration for the processing commands.
type Options struct {
	InputDir     string
	MaskDir      string
	OutOriginals string
	OutMasks     string
	MaskSuffix   string
	TargetSize   int
	CropSize     int
	CropRatio    float64
	Expansions   int
	Attempts     int
	Threshold    float64
	Seed         int64
	NoMask       bool
	DigitsOnly   bool
	ProfilePath  string
}

var verbose bool

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "defectprep",
	Short: "Dataset preparation toolbox for defect-detection imagery",
	Long: `defectprep prepares image/mask pairs for defect-detection training:
expansion padding, random square cropping with a minimum-defect-coverage
test, single-defect mask extraction, and batch renaming.`,
	Version: Version, // This enables the --version flag
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file can pre-seed DEFECTPREP_* defaults for directories.
		_ = godotenv.Load()

		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func Execute() {
	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-crop diagnostics (ratios, rejections)")
}

// envFallback returns value, or the environment variable key when value is
// empty. Lets a .env file carry the directory layout of a dataset series.
func envFallback(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

// newRand builds the injectable random source shared by a run. A zero seed
// derives one from the clock; either way the seed is echoed so any run can
// be reproduced exactly.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fmt.Fprintf(os.Stderr, "🎲 Random seed: %d\n", seed)
	return rand.New(rand.NewSource(seed))
}

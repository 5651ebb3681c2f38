package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"defectprep/internal/rename"
	"defectprep/internal/utils"
)

var (
	renameSrcDir string
	renameDstDir string
)

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Batch-rename dataset files",
	Long: `rename applies a bulk naming change to every file of a directory. With the
same source and output directory files are renamed in place; with a
different output directory they are copied under the new name and the
sources stay untouched.`,
}

var renamePrefixCmd = &cobra.Command{
	Use:   "prefix <prefix>",
	Short: "Prepend a prefix to every file name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reportRename(rename.Prefix(renameSource(), renameDest(), args[0]))
	},
}

var renameSuffixCmd = &cobra.Command{
	Use:   "suffix <suffix>",
	Short: "Insert a suffix between base name and extension",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reportRename(rename.Suffix(renameSource(), renameDest(), args[0]))
	},
}

var renameReplaceCmd = &cobra.Command{
	Use:   "replace <old> <new>",
	Short: "Replace a substring inside base names (e.g. _mask -> _triple)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		reportRename(rename.Replace(renameSource(), renameDest(), args[0], args[1]))
	},
}

var renameExtCmd = &cobra.Command{
	Use:   "ext <old-ext> <new-ext>",
	Short: "Replace the file extension (e.g. .jpg .png)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		reportRename(rename.ReplaceExt(renameSource(), renameDest(), args[0], args[1]))
	},
}

var renameSequentialCmd = &cobra.Command{
	Use:   "sequential",
	Short: "Rename files to 1, 2, 3, ... in sorted name order",
	Run: func(cmd *cobra.Command, args []string) {
		reportRename(rename.Sequential(renameSource(), renameDest()))
	},
}

func init() {
	renameCmd.PersistentFlags().StringVarP(&renameSrcDir, "input", "i", "", "Source directory")
	renameCmd.PersistentFlags().StringVarP(&renameDstDir, "output", "o", "", "Output directory (default: rename in place)")
	renameCmd.MarkPersistentFlagRequired("input")

	renameCmd.AddCommand(renamePrefixCmd)
	renameCmd.AddCommand(renameSuffixCmd)
	renameCmd.AddCommand(renameReplaceCmd)
	renameCmd.AddCommand(renameExtCmd)
	renameCmd.AddCommand(renameSequentialCmd)
	rootCmd.AddCommand(renameCmd)
}

func renameSource() string {
	info, err := os.Stat(renameSrcDir)
	if err != nil {
		utils.Die("Unable to access source directory", err)
	}
	if !info.IsDir() {
		utils.Die("Source path is not a directory", fmt.Errorf("got %s", renameSrcDir))
	}
	return renameSrcDir
}

func renameDest() string {
	if renameDstDir == "" {
		return renameSrcDir
	}
	return renameDstDir
}

func reportRename(res rename.Result, err error) {
	if err != nil {
		utils.Die("Rename run failed", err)
	}
	fmt.Fprintf(os.Stderr, "✅ Renamed %d of %d matching files\n", res.Processed, res.Scanned)
}

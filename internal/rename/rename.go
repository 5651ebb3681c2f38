// Package rename implements the batch file-renaming modes of the dataset
// toolbox. When source and output directories resolve to the same place,
// files are renamed in place; otherwise they are copied under the new name
// and the sources are left untouched.
package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"defectprep/internal/utils"
)

// Result counts the files a rename operation looked at and changed.
type Result struct {
	Scanned   int
	Processed int
}

// sameDir reports whether two directories resolve to the same location.
func sameDir(a, b string) bool {
	ra, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	rb, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	if resolved, err := filepath.EvalSymlinks(ra); err == nil {
		ra = resolved
	}
	if resolved, err := filepath.EvalSymlinks(rb); err == nil {
		rb = resolved
	}
	return ra == rb
}

// transfer moves or copies a single file depending on whether src and dst
// directories are the same.
func transfer(srcDir, dstDir, oldName, newName string) error {
	oldPath := filepath.Join(srcDir, oldName)
	newPath := filepath.Join(dstDir, newName)
	if sameDir(srcDir, dstDir) {
		return os.Rename(oldPath, newPath)
	}
	return utils.CopyFile(oldPath, newPath)
}

// listFiles returns the sorted regular-file names of dir.
func listFiles(dir string) ([]string, error) {
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
	return names, nil
}

// apply runs op over every file of srcDir. op returns the new name, or ""
// to skip the file. Per-file failures are logged and do not stop the run.
func apply(srcDir, dstDir string, op func(name string) string) (Result, error) {
	var res Result
	names, err := listFiles(srcDir)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return res, err
	}

	for _, name := range names {
		newName := op(name)
		if newName == "" || newName == name {
			continue
		}
		res.Scanned++
		if err := transfer(srcDir, dstDir, name, newName); err != nil {
			log.Warnf("rename %q -> %q failed: %v", name, newName, err)
			continue
		}
		res.Processed++
	}
	return res, nil
}

// Prefix prepends prefix to every file name.
func Prefix(srcDir, dstDir, prefix string) (Result, error) {
	return apply(srcDir, dstDir, func(name string) string {
		return prefix + name
	})
}

// Suffix inserts suffix between the base name and the extension.
func Suffix(srcDir, dstDir, suffix string) (Result, error) {
	return apply(srcDir, dstDir, func(name string) string {
		ext := filepath.Ext(name)
		return strings.TrimSuffix(name, ext) + suffix + ext
	})
}

// Replace substitutes old with repl inside the base name. Files whose base
// name does not contain old are skipped.
func Replace(srcDir, dstDir, old, repl string) (Result, error) {
	return apply(srcDir, dstDir, func(name string) string {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		if !strings.Contains(base, old) {
			return ""
		}
		return strings.ReplaceAll(base, old, repl) + ext
	})
}

// ReplaceExt swaps the extension oldExt (case-insensitive) for newExt.
func ReplaceExt(srcDir, dstDir, oldExt, newExt string) (Result, error) {
	return apply(srcDir, dstDir, func(name string) string {
		if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(oldExt)) {
			return ""
		}
		return name[:len(name)-len(oldExt)] + newExt
	})
}

// Sequential renames files to 1..N (sorted by original name), keeping each
// file's extension. In-place runs go through a temporary-name phase first so
// a file named "2.png" cannot be overwritten before it is itself renamed.
func Sequential(srcDir, dstDir string) (Result, error) {
	var res Result
	names, err := listFiles(srcDir)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return res, err
	}
	res.Scanned = len(names)

	if !sameDir(srcDir, dstDir) {
		for i, name := range names {
			newName := fmt.Sprintf("%d%s", i+1, filepath.Ext(name))
			if err := utils.CopyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, newName)); err != nil {
				log.Warnf("rename %q -> %q failed: %v", name, newName, err)
				continue
			}
			res.Processed++
		}
		return res, nil
	}

	// Phase 1: park everything under collision-proof temporary names.
	type pending struct {
		tempName  string
		finalName string
	}
	var staged []pending
	for i, name := range names {
		temp := fmt.Sprintf("__defectprep_tmp_%d%s", i+1, filepath.Ext(name))
		if err := os.Rename(filepath.Join(srcDir, name), filepath.Join(srcDir, temp)); err != nil {
			log.Warnf("staging %q failed: %v", name, err)
			continue
		}
		staged = append(staged, pending{tempName: temp, finalName: fmt.Sprintf("%d%s", i+1, filepath.Ext(name))})
	}

	// Phase 2: settle the final numeric names.
	for _, p := range staged {
		if err := os.Rename(filepath.Join(srcDir, p.tempName), filepath.Join(srcDir, p.finalName)); err != nil {
			log.Warnf("finalizing %q failed: %v", p.finalName, err)
			continue
		}
		res.Processed++
	}
	return res, nil
}

package clap

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SupportedExtension reports whether path has a recognized audio file
// extension (case-insensitive).
func SupportedExtension(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Discover resolves a set of input paths (files or directories) into an
// ordered, deduplicated list of supported audio files.
//
// Directories are walked recursively with entries visited in
// lexicographic order, so two runs over the same tree yield identical
// lists. Inputs that are neither a supported file nor a directory are
// reported through skipped (may be nil) and do not fail the call.
//
// An empty result is not an error here; batch callers must treat it as
// [ErrNoInput].
func Discover(inputs []string, skipped func(path string)) ([]string, error) {
	report := func(p string) {
		if skipped != nil {
			skipped(p)
		}
	}

	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			report(in)
			continue
		}
		if !info.IsDir() {
			if SupportedExtension(in) {
				files = append(files, in)
			} else {
				report(in)
			}
			continue
		}
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && SupportedExtension(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Deduplicate, first occurrence wins.
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

package utils

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/templates"
)

// GeneratedMarker starts every file the generator writes. Only files that
// carry it are ever overwritten or cleaned.
const GeneratedMarker = templates.Header

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	directoryFilter DirectoryFilter
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{directoryFilter: DefaultDirectoryFilter()}
}

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"_examples":    true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden and underscore directories, which the go tool ignores too
		if (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// IsGenerated reports whether content was written by the generator
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte(GeneratedMarker))
}

// CleanDirectories removes generated registry files below the given
// directories and returns the removed paths, sorted. Files with the
// generated name that lack the marker are left alone.
func (fp *FileProcessor) CleanDirectories(baseDirs []string) ([]string, error) {
	var removed []string
	for _, baseDir := range baseDirs {
		if baseDir == "" {
			baseDir = "."
		}
		files, err := fp.GeneratedFiles(baseDir)
		if err != nil {
			return removed, err
		}
		for _, file := range files {
			if err := os.Remove(file); err != nil {
				return removed, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to remove %s", file)
			}
			removed = append(removed, file)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// GeneratedFiles lists the generated registry files below root
func (fp *FileProcessor) GeneratedFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if entry.IsDir() {
			if path != root && !fp.directoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Name() != models.GeneratedFileName {
			return nil
		}
		content, err := os.ReadFile(path)
		if err == nil && IsGenerated(content) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to walk %s", root)
	}
	return files, nil
}

// WriteGeneratedFile writes content to path, creating its directory. It
// reports whether the file changed and refuses to overwrite a file that was
// not generated.
func (fp *FileProcessor) WriteGeneratedFile(path, content string) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && !IsGenerated(existing):
		return false, errors.Newf(errors.FileSystemErrorCode, "refusing to overwrite %s: not a generated file", path).
			WithSuggestion("rename the file or choose another output directory")
	case err == nil && string(existing) == content:
		return false, nil
	case err != nil && !os.IsNotExist(err):
		return false, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to read %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to write %s", path)
	}
	return true, nil
}

package cli

import (
	"path/filepath"
	"strings"

	"github.com/toyz/registrar/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// CleanGeneratedFiles removes the generated registry files below the given
// directories. Go-style patterns like ./... clean the base directory tree.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	if len(directories) == 0 {
		directories = []string{"./..."}
	}

	roots := make([]string, 0, len(directories))
	for _, dir := range directories {
		base := strings.TrimSuffix(filepath.ToSlash(dir), "...")
		base = strings.TrimSuffix(base, "/")
		if base == "" {
			base = "."
		}
		roots = append(roots, filepath.FromSlash(base))
	}
	return c.fileProcessor.CleanDirectories(roots)
}

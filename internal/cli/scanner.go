package cli

import (
	"github.com/toyz/registrar/internal/config"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/scanner"
)

// DirectoryScanner loads the packages of a module and extracts components
type DirectoryScanner struct {
	kinds *metadata.Kinds
}

// NewDirectoryScanner creates a scanner that parses annotations against kinds
func NewDirectoryScanner(kinds *metadata.Kinds) *DirectoryScanner {
	return &DirectoryScanner{kinds: kinds}
}

// ScanDirectories scans the package patterns, resolved in the directory of
// the configuration file. Configured excludes are skipped and every
// configured interface is checked against the components found.
func (s *DirectoryScanner) ScanDirectories(cfg *config.Config, patterns []string) (*scanner.Result, error) {
	var interfaces []string
	seen := make(map[string]bool)
	for _, r := range cfg.Registries {
		if r.Interface != "" && !seen[r.Interface] {
			seen[r.Interface] = true
			interfaces = append(interfaces, r.Interface)
		}
	}

	return scanner.New(s.kinds, scanner.Options{
		Dir:        cfg.Dir,
		Exclude:    cfg.Excluded,
		Interfaces: interfaces,
	}).Scan(patterns...)
}

package utils

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/toyz/registrar/internal/errors"
)

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct {
	readFile func(string) ([]byte, error)
}

// NewGoModParser creates a new go.mod parser reading from disk
func NewGoModParser() *GoModParser {
	return &GoModParser{readFile: os.ReadFile}
}

// ParseModuleName extracts the module name from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", errors.Newf(errors.FileSystemErrorCode, "file is not a go.mod file: %s", goModPath)
	}

	content, err := p.readFile(cleanPath)
	if err != nil {
		return "", errors.Wrap(errors.FileSystemErrorCode, "failed to read go.mod file", err).
			WithContext("path", cleanPath)
	}

	modFile, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return "", errors.Wrap(errors.ConfigurationErrorCode, "failed to parse go.mod file", err).
			WithContext("path", cleanPath)
	}
	if modFile.Module == nil || strings.TrimSpace(modFile.Module.Mod.Path) == "" {
		return "", errors.New(errors.ConfigurationErrorCode, "no module declaration found in go.mod").
			WithContext("path", cleanPath)
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.Wrap(errors.FileSystemErrorCode, "failed to resolve directory", err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := p.readFile(goModPath); err == nil && len(content) > 0 {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", errors.Newf(errors.FileSystemErrorCode, "go.mod file not found above %s", startDir).
		WithSuggestion("run registrar inside a Go module or pass -module")
}

// ModuleRoot finds the module containing dir and returns its root
// directory and module path
func (p *GoModParser) ModuleRoot(dir string) (root, module string, err error) {
	goMod, err := p.FindGoModFile(dir)
	if err != nil {
		return "", "", err
	}
	module, err = p.ParseModuleName(goMod)
	if err != nil {
		return "", "", err
	}
	return filepath.Dir(goMod), module, nil
}

package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/utils"
)

// Module is the Go module a generation run works in
type Module struct {
	Root string // directory holding go.mod
	Path string // module path
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// ResolveModule finds the module containing dir. A custom module path
// replaces the one declared in go.mod but the root still comes from go.mod.
func (r *ModuleResolver) ResolveModule(dir, customModule string) (Module, error) {
	root, path, err := r.gomod.ModuleRoot(dir)
	if err != nil {
		return Module{}, errors.Wrap(errors.ConfigurationErrorCode, "failed to determine module", err).
			WithSuggestion("check that go.mod exists and declares a module")
	}
	if customModule != "" {
		path = customModule
	}
	return Module{Root: root, Path: path}, nil
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(module Module, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", errors.Wrap(errors.FileSystemErrorCode, "failed to resolve package directory", err)
	}

	relPath, err := filepath.Rel(module.Root, absPackageDir)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ConfigurationErrorCode, "directory %s is outside module %s", packageDir, module.Path).
			WithContext("module_root", module.Root)
	}

	// Convert file path separators to forward slashes for import paths
	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return module.Path, nil
	}
	return fmt.Sprintf("%s/%s", module.Path, importPath), nil
}

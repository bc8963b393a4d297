// Package scanner discovers components in Go packages. It loads packages with
// full type information so method parameter types and interface satisfaction
// are known to the build pass.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/utils"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Options configures a Scanner
type Options struct {
	// Dir is the directory patterns are resolved in, usually the module root
	Dir string

	// Exclude reports whether a package directory is skipped
	Exclude func(dir string) bool

	// Interfaces are identities (<import path>.<Name>) checked against every
	// component and recorded in Component.Interfaces
	Interfaces []string

	// Env overrides the environment of the go command
	Env []string
}

// Scanner loads packages and extracts annotated components
type Scanner struct {
	kinds *metadata.Kinds
	opts  Options
}

// New creates a scanner that parses annotations against kinds
func New(kinds *metadata.Kinds, opts Options) *Scanner {
	return &Scanner{kinds: kinds, opts: opts}
}

// Package is one scanned package and its components
type Package struct {
	Path       string // import path
	Name       string
	Dir        string
	Components []*models.Component
}

// Result is the outcome of a scan. It is the component source of the code
// generation host: every discovered component is autoconfigured.
type Result struct {
	Packages []*Package
}

// Components lists the components of every package, in package path order
// and then declaration order
func (r *Result) Components() []*models.Component {
	var all []*models.Component
	for _, pkg := range r.Packages {
		all = append(all, pkg.Components...)
	}
	return all
}

// IsEligible implements models.Source
func (r *Result) IsEligible(c *models.Component) bool {
	return c != nil && c.Autoconfigured
}

// Package returns the scanned package with the given import path
func (r *Result) Package(path string) *Package {
	for _, pkg := range r.Packages {
		if pkg.Path == path {
			return pkg
		}
	}
	return nil
}

// Scan loads patterns (for example ./...) and extracts their components
func (s *Scanner) Scan(patterns ...string) (*Result, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	overlay, err := generatedOverlay(s.opts.Dir)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Mode:      loadMode,
		Dir:       s.opts.Dir,
		Env:       s.opts.Env,
		ParseFile: parseFile,
		Overlay:   overlay,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapScanError(strings.Join(patterns, " "), err)
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	if err := loadErrors(pkgs); err != nil {
		return nil, err
	}

	ifaces, err := s.lookupInterfaces(pkgs)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}
		dir := filepath.Dir(pkg.GoFiles[0])
		if s.opts.Exclude != nil && s.opts.Exclude(dir) {
			continue
		}

		scanned := &Package{Path: pkg.PkgPath, Name: pkg.Name, Dir: dir}
		if scanned.Components, err = s.scanPackage(pkg, ifaces); err != nil {
			return nil, err
		}
		result.Packages = append(result.Packages, scanned)
	}
	return result, nil
}

// generatedOverlay replaces every generated file below dir with its package
// clause, for the go command as well as the parser. Stale output that no
// longer compiles, or imports modules the scanned module does not require,
// is never loaded.
func generatedOverlay(dir string) (map[string][]byte, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to resolve %s", dir)
	}
	files, err := utils.NewFileProcessor().GeneratedFiles(root)
	if err != nil {
		return nil, err
	}

	overlay := make(map[string][]byte, len(files))
	for _, path := range files {
		f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.PackageClauseOnly)
		if err != nil {
			return nil, errors.WrapScanError(path, err)
		}
		overlay[path] = []byte(utils.GeneratedMarker + "\n\npackage " + f.Name.Name + "\n")
	}
	return overlay, nil
}

// parseFile reads only the package clause of generated files
func parseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	mode := parser.ParseComments | parser.SkipObjectResolution
	if filepath.Base(filename) == models.GeneratedFileName {
		mode = parser.PackageClauseOnly
	}
	return parser.ParseFile(fset, filename, src, mode)
}

func loadErrors(pkgs []*packages.Package) error {
	var messages []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			messages = append(messages, e.Error())
		}
	})
	if len(messages) == 0 {
		return nil
	}
	return errors.Newf(errors.ScanErrorCode, "failed to load packages: %s", strings.Join(messages, "; ")).
		WithSuggestion("Run go build ./... to see the compiler errors")
}

type namedInterface struct {
	identity string
	iface    *types.Interface
}

// lookupInterfaces resolves the configured interface identities among the
// loaded packages and their dependencies
func (s *Scanner) lookupInterfaces(pkgs []*packages.Package) ([]namedInterface, error) {
	if len(s.opts.Interfaces) == 0 {
		return nil, nil
	}

	byPath := make(map[string]*types.Package)
	var visit func(*types.Package)
	visit = func(pkg *types.Package) {
		if _, seen := byPath[pkg.Path()]; seen {
			return
		}
		byPath[pkg.Path()] = pkg
		for _, imp := range pkg.Imports() {
			visit(imp)
		}
	}
	for _, pkg := range pkgs {
		if pkg.Types != nil {
			visit(pkg.Types)
		}
	}

	var result []namedInterface
	for _, identity := range s.opts.Interfaces {
		i := strings.LastIndex(identity, ".")
		if i <= 0 {
			return nil, errors.NewConfigurationError("registry.interface", fmt.Sprintf("%q is not of the form <import path>.<Name>", identity))
		}
		path, name := identity[:i], identity[i+1:]

		pkg, ok := byPath[path]
		if !ok {
			return nil, errors.NewConfigurationError("registry.interface", fmt.Sprintf("package %s of interface %s is not loaded", path, name)).
				WithSuggestion("Import the package from a scanned package or add it to the scan patterns")
		}
		obj, ok := pkg.Scope().Lookup(name).(*types.TypeName)
		if !ok || !types.IsInterface(obj.Type()) {
			return nil, errors.NewConfigurationError("registry.interface", fmt.Sprintf("%s is not an interface", identity))
		}
		result = append(result, namedInterface{identity: identity, iface: obj.Type().Underlying().(*types.Interface)})
	}
	return result, nil
}

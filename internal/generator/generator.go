package generator

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/tools/imports"

	"github.com/toyz/registrar/internal/binding"
	"github.com/toyz/registrar/internal/build"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/templates"
)

// RegistryImportPath is the package generated files build registries from
const RegistryImportPath = "github.com/toyz/registrar/pkg/registry"

// callableType is the value type of method registries unless configured
var callableType = models.TypeRef{Name: "Callable", Package: RegistryImportPath, Kind: models.TypeNamed}

// Package is the output package of a generated file
type Package struct {
	Name string // package name
	Path string // import path
	Dir  string // directory the file is written to
}

// Target is one registry rendered into an output package
type Target struct {
	Script      *build.Script
	Constructor string // defaults to New<RegistryID>Registry
	ValueType   string // type argument of the registry, see ParseValueType
	Interface   string // interface identity, the default value type of class registries
	Method      bool   // the registry collects method callables
}

// Generator renders build scripts into Go source that constructs and fills
// the configured registries
type Generator struct {
	templates *templates.TemplateRegistry
	formatter func(filename string, src []byte) ([]byte, error)
}

// NewGenerator creates a new code generator instance
func NewGenerator() *Generator {
	return &Generator{
		templates: templates.DefaultTemplateRegistry,
		formatter: format,
	}
}

func format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
}

type fileData struct {
	PackageName string
	Imports     string
	Registries  []constructorData
}

type constructorData struct {
	RegistryID    string
	Constructor   string
	Type          string
	New           string
	Params        []paramData
	Registrations []registrationData
}

type paramData struct {
	Name string
	Type string
}

type registrationData struct {
	Source string
	Args   string
}

// expr is Go source emitted as is inside registration arguments
type expr string

// Generate renders every target into the registry file of pkg. Targets keep
// their order and so do the registrations of each script.
func (g *Generator) Generate(pkg Package, targets []Target) (*models.GeneratedFile, error) {
	if pkg.Name == "" || pkg.Path == "" {
		return nil, errors.New(errors.GenerationErrorCode, "output package needs a name and an import path").
			WithContext("dir", pkg.Dir)
	}

	im := templates.NewImportManager(pkg.Path)
	data := fileData{PackageName: pkg.Name}
	file := &models.GeneratedFile{
		PackageName: pkg.Name,
		FilePath:    filepath.Join(pkg.Dir, models.GeneratedFileName),
	}

	// qualified names need every import in place before local names are
	// handed out, so constructors are rendered in two steps
	var pending []*pendingConstructor
	constructors := make(map[string]string)
	for _, target := range targets {
		p, err := g.prepare(im, target)
		if err != nil {
			return nil, err
		}
		if other, ok := constructors[p.data.Constructor]; ok {
			return nil, errors.Newf(errors.GenerationErrorCode, "registries %q and %q both use constructor %s", other, p.data.RegistryID, p.data.Constructor).
				WithContext(errors.ContextRegistry, p.data.RegistryID).
				WithSuggestion("set a distinct constructor name on one of the registries")
		}
		constructors[p.data.Constructor] = p.data.RegistryID
		pending = append(pending, p)
	}

	for _, p := range pending {
		if err := p.finish(im); err != nil {
			return nil, err
		}
		data.Registries = append(data.Registries, p.data)
		file.Registries = append(file.Registries, p.data.RegistryID)
	}
	data.Imports = im.GenerateImports()

	src, err := g.templates.Execute("registry-file", data)
	if err != nil {
		return nil, err
	}
	formatted, err := g.formatter(file.FilePath, []byte(src))
	if err != nil {
		return nil, errors.Wrapf(errors.GenerationErrorCode, err, "failed to format %s", file.FilePath).
			WithContext("package", pkg.Path)
	}
	file.Content = string(formatted)
	return file, nil
}

type pendingConstructor struct {
	data       constructorData
	script     *build.Script
	components []*models.Component
	types      map[string]string // component identity -> parameter type
	callable   bool               // values are registry.Callable
	registry   string             // file-local name of the registry package
}

func (g *Generator) prepare(im *templates.ImportManager, target Target) (*pendingConstructor, error) {
	script := target.Script
	if script == nil {
		return nil, errors.New(errors.GenerationErrorCode, "target has no script")
	}
	if !script.Variant.Valid() {
		return nil, errors.NewUnknownVariantError(script.RegistryID, script.Variant.String(), nil)
	}

	constructor := target.Constructor
	if constructor == "" {
		constructor = templates.DefaultTemplateUtils.BuildConstructorName(script.RegistryID)
	}
	if !isExportedIdent(constructor) {
		return nil, errors.Newf(errors.ConfigurationErrorCode, "constructor %q is not an exported Go identifier", constructor).
			WithContext(errors.ContextRegistry, script.RegistryID)
	}

	valueType, err := defaultValueType(target)
	if err != nil {
		return nil, errors.Wrapf(errors.ConfigurationErrorCode, err, "registry %q: invalid value type", script.RegistryID).
			WithContext(errors.ContextRegistry, script.RegistryID)
	}

	p := &pendingConstructor{
		script:   script,
		types:    make(map[string]string),
		callable: valueType == callableType,
		registry: im.Add(RegistryImportPath, "registry"),
	}
	typeArg := renderType(im, valueType)
	impl := script.Variant.Implementation()
	p.data = constructorData{
		RegistryID:  script.RegistryID,
		Constructor: constructor,
		Type:        fmt.Sprintf("%s.%s[%s]", p.registry, impl, typeArg),
		New:         fmt.Sprintf("%s.New%s[%s]", p.registry, impl, typeArg),
	}

	for i, r := range script.Registrations {
		c := r.Value.Component
		if c == nil {
			return nil, errors.Newf(errors.GenerationErrorCode, "registry %q: registration %d has no component", script.RegistryID, i).
				WithContext(errors.ContextRegistry, script.RegistryID)
		}
		if _, ok := p.types[c.Identity()]; ok {
			continue
		}
		p.types[c.Identity()] = "*" + im.Qualify(c.PackagePath, c.PackageName, c.Name)
		p.components = append(p.components, c)
	}
	return p, nil
}

func (p *pendingConstructor) finish(im *templates.ImportManager) error {
	names := templates.NewVarNames(im.Taken, "r", "err")
	vars := make(map[string]string, len(p.components))
	for _, c := range p.components {
		name := names.Next(c.Name)
		vars[c.Identity()] = name
		p.data.Params = append(p.data.Params, paramData{Name: name, Type: p.types[c.Identity()]})
	}

	for _, r := range p.script.Registrations {
		value := p.value(r.Value, vars[r.Value.Component.Identity()])
		call, err := p.script.Call(r, value)
		if err != nil {
			return err
		}
		p.data.Registrations = append(p.data.Registrations, registrationData{
			Source: source(r),
			Args:   renderArgs(call.Args()),
		})
	}
	return nil
}

func (p *pendingConstructor) value(v build.Value, receiver string) expr {
	code := binding.Expression(v, receiver)
	if v.Kind == binding.Callable && p.callable {
		code = fmt.Sprintf("%s.MustCallable(%s, %s)", p.registry, strconv.Quote(v.BindingID), code)
	}
	return expr(code)
}

func source(r build.Registration) string {
	if r.Method != "" {
		return r.Component + "." + r.Method
	}
	return r.Component
}

func renderArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case string:
			parts[i] = strconv.Quote(a)
		case int:
			parts[i] = strconv.Itoa(a)
		case expr:
			parts[i] = string(a)
		default:
			parts[i] = fmt.Sprintf("%#v", a)
		}
	}
	return strings.Join(parts, ", ")
}

func defaultValueType(target Target) (models.TypeRef, error) {
	switch {
	case target.ValueType != "":
		return ParseValueType(target.ValueType)
	case target.Method:
		return callableType, nil
	case target.Interface != "":
		return ParseValueType(target.Interface)
	default:
		return models.TypeRef{Name: "any", Kind: models.TypeBuiltin}, nil
	}
}

func renderType(im *templates.ImportManager, t models.TypeRef) string {
	if t.Package == "" {
		return t.Name
	}
	name := im.Qualify(t.Package, "", t.Name)
	if t.Pointer {
		return "*" + name
	}
	return name
}

// ParseValueType reads the type argument of a generated registry. Accepted
// forms are a predeclared type such as any or string, a qualified named type
// such as example.com/app/events.Handler with an optional leading *, the
// short form registry.Callable, and unnamed func, slice or map types written
// in Go syntax whose packages goimports can resolve.
func ParseValueType(spec string) (models.TypeRef, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "":
		return models.TypeRef{}, fmt.Errorf("empty type")
	case spec == "registry.Callable" || spec == "Callable":
		return callableType, nil
	case strings.HasPrefix(spec, "func") || strings.HasPrefix(spec, "[]") ||
		strings.HasPrefix(spec, "map[") || strings.HasPrefix(spec, "chan "):
		return models.TypeRef{Name: spec, Kind: models.TypeComposite}, nil
	}

	pointer := strings.HasPrefix(spec, "*")
	name := strings.TrimPrefix(spec, "*")
	i := strings.LastIndex(name, ".")
	if i < 0 {
		if pointer || !isIdent(name) {
			return models.TypeRef{}, fmt.Errorf("%q is not a predeclared type", spec)
		}
		return models.TypeRef{Name: name, Kind: models.TypeBuiltin}, nil
	}

	pkg, typeName := name[:i], name[i+1:]
	if pkg == "" || strings.ContainsAny(pkg, " \t[]*") || !isExportedIdent(typeName) {
		return models.TypeRef{}, fmt.Errorf("%q is not an import path followed by an exported type name", spec)
	}
	return models.TypeRef{Name: typeName, Package: pkg, Kind: models.TypeNamed, Pointer: pointer}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}

func isExportedIdent(s string) bool {
	return isIdent(s) && unicode.IsUpper([]rune(s)[0])
}

package templates

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/toyz/registrar/internal/errors"
)

// Header marks generated files
const Header = "// Code generated by registrar. DO NOT EDIT."

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
	set       *template.Template
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerRegistryTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the registered template names, sorted
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute renders the named template. All templates are parsed into one set
// so they can include each other.
func (tr *TemplateRegistry) Execute(name string, data interface{}) (string, error) {
	set, err := tr.parse()
	if err != nil {
		return "", err
	}
	if set.Lookup(name) == nil {
		return "", errors.Newf(errors.TemplateErrorCode, "template not found: %s", name).
			WithContext("template", name).
			WithSuggestion(fmt.Sprintf("available templates: %s", strings.Join(tr.Names(), ", ")))
	}

	var buf strings.Builder
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(errors.TemplateErrorCode, err, "failed to execute template %s", name).
			WithContext("template", name)
	}
	return buf.String(), nil
}

func (tr *TemplateRegistry) parse() (*template.Template, error) {
	if tr.set != nil {
		return tr.set, nil
	}

	set := template.New("").Funcs(template.FuncMap{
		"toCamelCase": DefaultTemplateUtils.ToCamelCase,
		"quote":       DefaultTemplateUtils.QuoteString,
	})
	for _, name := range tr.Names() {
		if _, err := set.New(name).Parse(tr.templates[name]); err != nil {
			return nil, errors.Wrapf(errors.TemplateErrorCode, err, "failed to parse template %s", name).
				WithContext("template", name)
		}
	}
	tr.set = set
	return set, nil
}

// registerFileTemplates registers the generated file layout
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["registry-file"] = Header + `

package {{.PackageName}}

{{.Imports}}
{{range .Registries}}{{template "registry-constructor" .}}
{{end}}`
}

// registerRegistryTemplates registers the per-registry constructor
func (tr *TemplateRegistry) registerRegistryTemplates() {
	tr.templates["registry-constructor"] = `// {{.Constructor}} builds the sealed {{quote .RegistryID}} registry.
func {{.Constructor}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p.Name}} {{$p.Type}}{{end}}) (*{{.Type}}, error) {
	r := {{.New}}()
{{range .Registrations}}{{template "registration" .}}{{end}}	r.Seal()
	return r, nil
}
`

	tr.templates["registration"] = `	// {{.Source}}
	if err := r.Register({{.Args}}); err != nil {
		return nil, err
	}
`
}

// Global template registry instance
var DefaultTemplateRegistry = NewTemplateRegistry()

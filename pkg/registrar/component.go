package registrar

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/toyz/registrar/internal/annotations"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
)

// Definition declares a live component and the annotations it would carry in
// source. Build one with Define.
type Definition struct {
	// Instance is the component value. Its dynamic type names the component.
	Instance interface{}

	// Annotations are the type-level annotation comments
	Annotations []string

	// Methods maps exported method names to their annotation comments
	Methods map[string][]string

	// Tags are container tags. models.TagIgnoreMetadata excludes the
	// component from metadata registries.
	Tags []string

	// TagAttributes holds the attributes of tags added with TagWith
	TagAttributes map[string]map[string]string

	// Manual components are not autoconfigured and never auto-wired
	Manual bool
}

// Define starts a definition for instance with type-level annotations
func Define(instance interface{}, annotations ...string) *Definition {
	return &Definition{
		Instance:    instance,
		Annotations: annotations,
		Methods:     make(map[string][]string),
	}
}

// Method attaches annotations to the exported method name
func (d *Definition) Method(name string, annotations ...string) *Definition {
	d.Methods[name] = append(d.Methods[name], annotations...)
	return d
}

// Tag adds container tags
func (d *Definition) Tag(tags ...string) *Definition {
	d.Tags = append(d.Tags, tags...)
	return d
}

// TagWith adds a tag carrying attributes, such as the identifier read by a
// tagged registry
func (d *Definition) TagWith(tag string, attributes map[string]string) *Definition {
	d.Tag(tag)
	if d.TagAttributes == nil {
		d.TagAttributes = make(map[string]map[string]string)
	}
	if d.TagAttributes[tag] == nil {
		d.TagAttributes[tag] = make(map[string]string, len(attributes))
	}
	for k, v := range attributes {
		d.TagAttributes[tag][k] = v
	}
	return d
}

// WithoutAutoconfigure excludes the component from auto-wiring
func (d *Definition) WithoutAutoconfigure() *Definition {
	d.Manual = true
	return d
}

// component converts a definition into the model the build pass reads.
// Methods follow the method set order of the instance type, which is sorted
// by name.
func (d *Definition) component(parser *annotations.Parser, interfaces []reflect.Type) (*models.Component, error) {
	if d.Instance == nil {
		return nil, fmt.Errorf("definition has no instance")
	}

	rt := reflect.TypeOf(d.Instance)
	named := rt
	if named.Kind() == reflect.Pointer {
		named = named.Elem()
	}
	if named.Name() == "" {
		return nil, fmt.Errorf("component %s is not a named type", rt)
	}

	c := &models.Component{
		Name:           named.Name(),
		PackagePath:    named.PkgPath(),
		PackageName:    packageName(named.PkgPath()),
		Autoconfigured: !d.Manual,
		Tags:           append([]string(nil), d.Tags...),
		TagAttributes:  d.TagAttributes,
		Instance:       d.Instance,
		Location:       annotations.SourceLocation{File: named.String()},
	}

	parsed, err := parser.ParseComments(d.Annotations, annotations.SourceLocation{File: c.Identity(), Line: 1})
	if err != nil {
		return nil, err
	}
	var ignored bool
	if c.Annotations, ignored = metadata.SplitIgnore(parsed); ignored && !c.HasTag(models.TagIgnoreMetadata) {
		c.Tags = append(c.Tags, models.TagIgnoreMetadata)
	}

	for _, iface := range interfaces {
		if rt.Implements(iface) {
			c.Interfaces = append(c.Interfaces, typeRef(iface).Identity())
		}
	}

	names := make([]string, 0, len(d.Methods))
	for name := range d.Methods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rm, ok := rt.MethodByName(name)
		if !ok {
			return nil, fmt.Errorf("component %s has no exported method %s", c.Identity(), name)
		}
		m := &models.Method{
			Name:            name,
			PointerReceiver: rt.Kind() == reflect.Pointer,
			Location:        annotations.SourceLocation{File: c.Identity() + "." + name},
		}
		if m.Annotations, err = parser.ParseComments(d.Methods[name], annotations.SourceLocation{File: c.Identity() + "." + name, Line: 1}); err != nil {
			return nil, err
		}

		// In(0) is the receiver
		ft := rm.Type
		for i := 1; i < ft.NumIn(); i++ {
			pt := ft.In(i)
			variadic := ft.IsVariadic() && i == ft.NumIn()-1
			if variadic {
				pt = pt.Elem()
			}
			m.Parameters = append(m.Parameters, models.Parameter{
				Name:     fmt.Sprintf("p%d", i-1),
				Type:     typeRef(pt),
				Variadic: variadic,
			})
		}
		c.Methods = append(c.Methods, m)
	}

	return c, nil
}

func typeRef(t reflect.Type) models.TypeRef {
	ref := models.TypeRef{}
	if t.Kind() == reflect.Pointer && t.Elem().Name() != "" {
		ref.Pointer = true
		t = t.Elem()
	}

	switch {
	case t.Name() == "":
		ref.Name = t.String()
		ref.Kind = models.TypeComposite
		if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
			ref.Name = "any"
			ref.Kind = models.TypeBuiltin
		}
	case t.PkgPath() == "":
		ref.Name = t.Name()
		ref.Kind = models.TypeBuiltin
	default:
		ref.Name = t.Name()
		ref.Package = t.PkgPath()
		ref.Kind = models.TypeNamed
		if t.Kind() == reflect.Interface {
			ref.Kind = models.TypeInterface
		}
	}
	return ref
}

func packageName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

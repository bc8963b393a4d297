package models

import (
	"github.com/toyz/registrar/internal/annotations"
)

// TagIgnoreMetadata excludes a component from every metadata scan. The
// scanner adds it for //registrar::ignore.
const TagIgnoreMetadata = "registrar.ignore_metadata"

// Component is a discovered unit of the application. It is supplied whole
// by a host and read-only for the build pass.
type Component struct {
	Name           string                          // type name
	PackagePath    string                          // import path of the declaring package
	PackageName    string                          // package name of the declaring package
	Autoconfigured bool                            // eligible for auto-wiring
	Tags           []string                        // container tags, including exclusion tags
	TagAttributes  map[string]map[string]string    // attributes of the tags that carry them
	Annotations    []*annotations.ParsedAnnotation // annotations on the type declaration
	Methods        []*Method                       // methods in declaration order
	Interfaces     []string                        // identities of interfaces the component satisfies
	Location       annotations.SourceLocation      // type declaration position
	Instance       interface{}                     // live value, set by the in-process host only
}

// Identity returns the fully-qualified implementation identity
func (c *Component) Identity() string {
	if c.PackagePath == "" {
		return c.Name
	}
	return c.PackagePath + "." + c.Name
}

// HasTag checks whether the component carries the given tag
func (c *Component) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagAttribute returns the attribute key of tag
func (c *Component) TagAttribute(tag, key string) (string, bool) {
	v, ok := c.TagAttributes[tag][key]
	return v, ok
}

// Implements checks whether the component satisfies the interface identity
func (c *Component) Implements(iface string) bool {
	for _, i := range c.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

// Method returns the method with the given name, or nil
func (c *Component) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Method is a method declared on a component
type Method struct {
	Name            string                          // method name
	PointerReceiver bool                            // declared on *T rather than T
	Parameters      []Parameter                     // parameters in declaration order
	Annotations     []*annotations.ParsedAnnotation // annotations on the method
	Location        annotations.SourceLocation      // method declaration position
}

// RequiredParameters returns the parameters a caller must always supply.
// A trailing variadic parameter is optional.
func (m *Method) RequiredParameters() []Parameter {
	required := make([]Parameter, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		if !p.Variadic {
			required = append(required, p)
		}
	}
	return required
}

// Parameter is a single method parameter
type Parameter struct {
	Name     string
	Type     TypeRef
	Variadic bool
}

// Source supplies the components of one build
type Source interface {
	Components() []*Component
	IsEligible(c *Component) bool
}

// ComponentList is a Source over a fixed slice in discovery order. A
// component is eligible when it is marked Autoconfigured.
type ComponentList []*Component

func (l ComponentList) Components() []*Component {
	return l
}

func (l ComponentList) IsEligible(c *Component) bool {
	return c != nil && c.Autoconfigured
}

// GeneratedFileName is the file the code generator writes into each package.
// Scanners read only its package clause so stale output never breaks a load.
const GeneratedFileName = "autogen_registry.go"

// GeneratedFile is a rendered registry file
type GeneratedFile struct {
	PackageName string
	FilePath    string
	Content     string
	Registries  []string // ids of the registries built by the file, in order
}

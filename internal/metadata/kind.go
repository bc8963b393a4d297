package metadata

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/registrar/internal/annotations"
)

// Parameter names the capabilities contribute to a kind's annotation schema
const (
	ParamIdentifier = "Id"
	ParamPriority   = "Priority"
)

// IgnoreKind is the annotation that excludes a type from metadata scanning
const IgnoreKind = "ignore"

// Kind is a declared metadata type, the unit a registry build pass targets
type Kind struct {
	Name         string
	Description  string
	Capabilities Capability
	Targets      Target
}

// Schema derives the annotation schema of the kind from its capabilities
func (k Kind) Schema() annotations.AnnotationSchema {
	schema := annotations.AnnotationSchema{
		Name:        k.Name,
		Description: k.Description,
		Parameters:  make(map[string]annotations.ParameterSpec),
	}

	if k.Capabilities.Has(CapabilityIdentifiable) {
		schema.Parameters[ParamIdentifier] = annotations.ParameterSpec{
			Type:        annotations.StringType,
			Description: "Identifier the component or method is registered under",
		}
		schema.Positional = ParamIdentifier
		schema.Examples = append(schema.Examples, fmt.Sprintf("//registrar::%s -Id=create", k.Name))
	}
	if k.Capabilities.Has(CapabilityPrioritized) {
		schema.Parameters[ParamPriority] = annotations.ParameterSpec{
			Type:         annotations.IntType,
			DefaultValue: 0,
			Description:  "Priority, higher values are consumed first",
		}
		schema.Examples = append(schema.Examples, fmt.Sprintf("//registrar::%s -Priority=10", k.Name))
	}
	return schema
}

// Kinds is the set of metadata kinds known to a build. Registering a kind
// also registers its annotation schema so the parser accepts it.
type Kinds struct {
	mu          sync.RWMutex
	kinds       map[string]Kind
	annotations annotations.AnnotationRegistry
	parser      *annotations.Parser
}

// NewKinds creates a kind set backed by a fresh annotation registry
func NewKinds() *Kinds {
	reg := annotations.NewRegistry()
	return &Kinds{
		kinds:       make(map[string]Kind),
		annotations: reg,
		parser:      annotations.NewParser(reg),
	}
}

// Register adds a kind. A kind without targets is a type-level kind.
func (k *Kinds) Register(kind Kind) error {
	if kind.Targets == 0 {
		kind.Targets = TargetType
	}
	if err := k.annotations.Register(kind.Schema()); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.kinds[kind.Name] = kind
	return nil
}

// Lookup returns the kind with the given name
func (k *Kinds) Lookup(name string) (Kind, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	kind, ok := k.kinds[name]
	return kind, ok
}

// Names returns all kind names, sorted
func (k *Kinds) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	names := make([]string, 0, len(k.kinds))
	for name := range k.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parser returns an annotation parser that accepts every registered kind
func (k *Kinds) Parser() *annotations.Parser {
	return k.parser
}

// BuiltinKinds returns the kinds available without configuration
func BuiltinKinds() []Kind {
	return []Kind{
		{
			Name:         "service",
			Description:  "Registers a component into a plain service registry",
			Capabilities: CapabilityService,
			Targets:      TargetType,
		},
		{
			Name:         "identity",
			Description:  "Registers a component under an identifier",
			Capabilities: CapabilityService | CapabilityIdentifiable,
			Targets:      TargetType,
		},
		{
			Name:         "prioritized",
			Description:  "Registers a component with a priority",
			Capabilities: CapabilityService | CapabilityPrioritized,
			Targets:      TargetType,
		},
		{
			Name:         "identity_prioritized",
			Description:  "Registers a component under an identifier with a priority",
			Capabilities: CapabilityService | CapabilityIdentifiable | CapabilityPrioritized,
			Targets:      TargetType,
		},
		{
			Name:         "handler",
			Description:  "Registers a method as a callable handler",
			Capabilities: CapabilityService | CapabilityIdentifiable | CapabilityPrioritized,
			Targets:      TargetMethod,
		},
		{
			Name:        IgnoreKind,
			Description: "Excludes a type from metadata scanning",
			Targets:     TargetType,
		},
	}
}

// NewDefaultKinds creates a kind set holding the builtin kinds
func NewDefaultKinds() *Kinds {
	kinds := NewKinds()
	for _, kind := range BuiltinKinds() {
		if err := kinds.Register(kind); err != nil {
			panic(fmt.Sprintf("registering builtin kind %s: %v", kind.Name, err))
		}
	}
	return kinds
}

// SplitIgnore removes the ignore marker from a parsed annotation list and
// reports whether it was present
func SplitIgnore(list []*annotations.ParsedAnnotation) ([]*annotations.ParsedAnnotation, bool) {
	kept := list[:0:0]
	ignored := false
	for _, ann := range list {
		if ann.Name == IgnoreKind {
			ignored = true
			continue
		}
		kept = append(kept, ann)
	}
	return kept, ignored
}

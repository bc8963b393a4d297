package metadata

import (
	"github.com/toyz/registrar/internal/annotations"
)

// Instance is one declared piece of metadata on a type or method
type Instance struct {
	Kind     Kind
	Target   Target // site the metadata was declared on
	ID       string // explicit identifier, empty when absent
	Priority int
	Location annotations.SourceLocation
}

// NewInstance builds an instance from a parsed annotation of kind
func NewInstance(kind Kind, target Target, annotation *annotations.ParsedAnnotation) *Instance {
	inst := &Instance{
		Kind:     kind,
		Target:   target,
		Location: annotation.Location,
	}
	if kind.Capabilities.Has(CapabilityIdentifiable) {
		inst.ID = annotation.GetString(ParamIdentifier)
	}
	if kind.Capabilities.Has(CapabilityPrioritized) {
		inst.Priority = annotation.GetInt(ParamPriority)
	}
	return inst
}

func (i *Instance) Is(c Capability) bool {
	return i != nil && i.Kind.Capabilities.Has(c)
}

func (i *Instance) IsService() bool {
	return i.Is(CapabilityService)
}

func (i *Instance) IsIdentifiable() bool {
	return i.Is(CapabilityIdentifiable)
}

func (i *Instance) IsPrioritized() bool {
	return i.Is(CapabilityPrioritized)
}

// HasIdentifier reports whether the instance is identifiable and carries
// a non-empty identifier
func (i *Instance) HasIdentifier() bool {
	return i.IsIdentifiable() && i.ID != ""
}

// DeclaredOn reports whether the instance sits on target and its kind permits it
func (i *Instance) DeclaredOn(target Target) bool {
	return i.Target == target && i.Kind.Targets.Allows(target)
}

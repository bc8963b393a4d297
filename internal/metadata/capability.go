package metadata

import (
	"fmt"
	"strings"
)

// Capability is a set of orthogonal traits a metadata kind may satisfy
type Capability uint8

const (
	// CapabilityService is the base capability every registry variant requires
	CapabilityService Capability = 1 << iota
	// CapabilityIdentifiable marks metadata that may carry an identifier
	CapabilityIdentifiable
	// CapabilityPrioritized marks metadata that carries a priority
	CapabilityPrioritized
)

var capabilityNames = []struct {
	capability Capability
	name       string
}{
	{CapabilityService, "service"},
	{CapabilityIdentifiable, "identifiable"},
	{CapabilityPrioritized, "prioritized"},
}

// Has reports whether every capability in other is present
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// Names returns the capability names in declaration order
func (c Capability) Names() []string {
	var names []string
	for _, entry := range capabilityNames {
		if c&entry.capability != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	return strings.Join(c.Names(), "|")
}

// ParseCapability converts a capability name to a Capability
func ParseCapability(s string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "service":
		return CapabilityService, nil
	case "identifiable", "identity":
		return CapabilityIdentifiable, nil
	case "prioritized", "priority":
		return CapabilityPrioritized, nil
	default:
		return 0, fmt.Errorf("unknown capability: %s", s)
	}
}

// ParseCapabilities combines a list of capability names
func ParseCapabilities(names []string) (Capability, error) {
	var result Capability
	for _, name := range names {
		c, err := ParseCapability(name)
		if err != nil {
			return 0, err
		}
		result |= c
	}
	return result, nil
}

// Target is a set of declaration sites a metadata kind may be written on
type Target uint8

const (
	TargetType Target = 1 << iota
	TargetMethod
)

// Allows reports whether the target set includes t
func (t Target) Allows(other Target) bool {
	return t&other != 0
}

func (t Target) String() string {
	switch t {
	case TargetType:
		return "type"
	case TargetMethod:
		return "method"
	case TargetType | TargetMethod:
		return "type|method"
	default:
		return "none"
	}
}

// ParseTargets combines a list of target names
func ParseTargets(names []string) (Target, error) {
	var result Target
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type", "class", "struct":
			result |= TargetType
		case "method", "func":
			result |= TargetMethod
		default:
			return 0, fmt.Errorf("unknown target: %s", name)
		}
	}
	return result, nil
}

package variant

import (
	"fmt"
	"sort"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/pkg/registry"
)

// Variant is one of the closed set of registry shapes
type Variant int

const (
	Plain Variant = iota
	Identity
	Prioritized
	IdentityPrioritized
)

// Variants lists every variant, most specific first
var Variants = []Variant{IdentityPrioritized, Prioritized, Identity, Plain}

type shape struct {
	name           string
	implementation string // pkg/registry type
	keyed          bool
	prioritized    bool
}

// shapes is the single mapping from a variant to its registration shape.
// Every other property of a variant is derived from it.
var shapes = [...]shape{
	Plain:               {name: "Plain", implementation: "ServiceRegistry"},
	Identity:            {name: "Identity", implementation: "IdentityServiceRegistry", keyed: true},
	Prioritized:         {name: "Prioritized", implementation: "PrioritizedServiceRegistry", prioritized: true},
	IdentityPrioritized: {name: "IdentityPrioritized", implementation: "IdentityPrioritizedServiceRegistry", keyed: true, prioritized: true},
}

// Valid reports whether v is a member of the closed set
func (v Variant) Valid() bool {
	return v >= 0 && int(v) < len(shapes)
}

func (v Variant) String() string {
	if !v.Valid() {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return shapes[v].name
}

// Implementation returns the name of the pkg/registry type of the variant
func (v Variant) Implementation() string {
	if !v.Valid() {
		return ""
	}
	return shapes[v].implementation
}

// Keyed reports whether registrations carry an identifier
func (v Variant) Keyed() bool {
	return v.Valid() && shapes[v].keyed
}

// Prioritized reports whether registrations carry a priority
func (v Variant) Prioritized() bool {
	return v.Valid() && shapes[v].prioritized
}

// Traits returns the registry traits the variant stands for
func (v Variant) Traits() registry.Trait {
	traits := registry.TraitService
	if v.Keyed() {
		traits |= registry.TraitIdentity
	}
	if v.Prioritized() {
		traits |= registry.TraitPriority
	}
	return traits
}

// Requires returns the metadata capabilities the variant requires
func (v Variant) Requires() metadata.Capability {
	required := metadata.CapabilityService
	if v.Keyed() {
		required |= metadata.CapabilityIdentifiable
	}
	if v.Prioritized() {
		required |= metadata.CapabilityPrioritized
	}
	return required
}

// Arity returns the number of arguments of the registration call
func (v Variant) Arity() int {
	n := 1
	if v.Keyed() {
		n++
	}
	if v.Prioritized() {
		n++
	}
	return n
}

// Match returns the most specific variant whose traits are all declared.
// Service is required by every variant.
func Match(traits registry.Trait) (Variant, bool) {
	if !traits.Has(registry.TraitService) {
		return 0, false
	}
	for _, v := range Variants {
		if traits.Has(v.Traits()) {
			return v, true
		}
	}
	return 0, false
}

// Catalog maps registry implementation names to variants
type Catalog struct {
	implementations map[string]registry.Trait
}

// NewCatalog creates a catalog of the pkg/registry implementations. The
// single-prioritized names are accepted as aliases of the prioritized shapes.
func NewCatalog() *Catalog {
	return &Catalog{implementations: map[string]registry.Trait{
		"ServiceRegistry":                          registry.TraitService,
		"IdentityServiceRegistry":                  registry.TraitService | registry.TraitIdentity,
		"PrioritizedServiceRegistry":               registry.TraitService | registry.TraitPriority,
		"SinglePrioritizedServiceRegistry":         registry.TraitService | registry.TraitPriority,
		"IdentityPrioritizedServiceRegistry":       registry.TraitService | registry.TraitIdentity | registry.TraitPriority,
		"IdentitySinglePrioritizedServiceRegistry": registry.TraitService | registry.TraitIdentity | registry.TraitPriority,
	}}
}

// Declare adds a custom implementation with its traits
func (c *Catalog) Declare(name string, traits registry.Trait) {
	c.implementations[name] = traits
}

// Names returns the known implementation names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.implementations))
	for name := range c.implementations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the variant of a named implementation
func (c *Catalog) Resolve(registryID, implementation string) (Variant, error) {
	traits, ok := c.implementations[implementation]
	if !ok {
		return 0, errors.NewUnknownVariantError(registryID, implementation, c.Names())
	}
	v, ok := Match(traits)
	if !ok {
		return 0, errors.NewUnknownVariantError(registryID, implementation, c.Names())
	}
	return v, nil
}

// ResolveTraits returns the variant of a trait set declared directly
func ResolveTraits(registryID string, traits registry.Trait) (Variant, error) {
	v, ok := Match(traits)
	if !ok {
		return 0, errors.NewUnknownVariantError(registryID, traits.String(), []string{"service", "service|identity", "service|priority", "service|identity|priority"})
	}
	return v, nil
}

// ResolveSink returns the variant of a live registry value
func ResolveSink(registryID string, sink any) (Variant, error) {
	v, ok := Match(registry.TraitsOf(sink))
	if !ok {
		return 0, errors.NewUnknownVariantError(registryID, fmt.Sprintf("%T", sink), NewCatalog().Names())
	}
	return v, nil
}

// Call is a registration call shaped for a variant
type Call struct {
	Variant  Variant
	ID       string
	Value    any
	Priority int
}

// Args returns the call arguments in registration order
func (c Call) Args() []any {
	args := make([]any, 0, c.Variant.Arity())
	if c.Variant.Keyed() {
		args = append(args, c.ID)
	}
	args = append(args, c.Value)
	if c.Variant.Prioritized() {
		args = append(args, c.Priority)
	}
	return args
}

// Shape builds the registration call of a variant. Fields the variant does
// not carry are dropped.
func Shape(v Variant, id string, value any, priority int) (Call, error) {
	if !v.Valid() {
		return Call{}, errors.Newf(errors.UnknownVariantErrorCode, "unsupported registry variant %s", v)
	}
	call := Call{Variant: v, Value: value}
	if v.Keyed() {
		call.ID = id
	}
	if v.Prioritized() {
		call.Priority = priority
	}
	return call, nil
}

// Apply performs the call against a sink of the matching shape
func (c Call) Apply(sink any) error {
	if !c.Variant.Valid() {
		return errors.Newf(errors.UnknownVariantErrorCode, "unsupported registry variant %s", c.Variant)
	}

	accepted := false
	var err error
	switch keyed, prioritized := c.Variant.Keyed(), c.Variant.Prioritized(); {
	case keyed && prioritized:
		if s, ok := sink.(registry.IdentityPrioritizedSink); ok {
			accepted, err = true, s.AddIdentifiedPrioritized(c.ID, c.Value, c.Priority)
		}
	case prioritized:
		if s, ok := sink.(registry.PrioritizedSink); ok {
			accepted, err = true, s.AddPrioritized(c.Value, c.Priority)
		}
	case keyed:
		if s, ok := sink.(registry.IdentitySink); ok {
			accepted, err = true, s.AddIdentified(c.ID, c.Value)
		}
	default:
		if s, ok := sink.(registry.PlainSink); ok {
			accepted, err = true, s.Add(c.Value)
		}
	}
	if !accepted {
		return errors.Newf(errors.RegistryErrorCode, "%T does not accept %s registrations", sink, c.Variant)
	}
	return err
}

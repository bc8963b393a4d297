// Package registrar builds service registries at runtime from annotated
// component instances. It runs the same build pass as the code generator and
// applies the resulting script to pkg/registry sinks.
package registrar

import (
	"reflect"

	"github.com/toyz/registrar/internal/build"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/resolver"
	"github.com/toyz/registrar/pkg/registry"
)

// Kind declares a custom metadata kind
type Kind = metadata.Kind

// Capabilities of a Kind
const (
	Service      = metadata.CapabilityService
	Identifiable = metadata.CapabilityIdentifiable
	Prioritized  = metadata.CapabilityPrioritized
)

// Targets of a Kind
const (
	OnType   = metadata.TargetType
	OnMethod = metadata.TargetMethod
)

// Aliases for the build types that appear in the host API
type (
	Candidate          = resolver.Candidate
	IdentifierResolver = resolver.IdentifierResolver
	ResolverFunc       = resolver.Func
	Logger             = build.Logger
	Script             = build.Script
)

// Registry describes one registry to build.
type Registry struct {
	// ID names the registry in errors
	ID string

	// ClassKind is the type-level kind that selects components
	ClassKind string

	// MethodKind, when set, registers annotated methods as callables
	MethodKind string

	// Interface restricts the registry to components implementing it
	Interface reflect.Type

	// Compound requires method identifiers
	Compound bool

	// Resolver computes method identifiers. ResolverName selects a named
	// resolver instead.
	Resolver     IdentifierResolver
	ResolverName string
}

// TaggedRegistry describes a keyed registry filled from the components
// carrying a tag, whatever their annotations.
type TaggedRegistry struct {
	ID  string
	Tag string

	// Attribute names the tag attribute that holds the identifier.
	// Components tagged without it are skipped. When empty the component
	// identity is the identifier.
	Attribute string
}

// Host collects component definitions and builds registries from them
type Host struct {
	kinds      *metadata.Kinds
	log        Logger
	interfaces []reflect.Type
	components models.ComponentList
}

// Option configures a Host
type Option func(*Host)

// WithLogger receives build progress
func WithLogger(log Logger) Option {
	return func(h *Host) {
		h.log = log
	}
}

// New creates a host with the builtin kinds
func New(opts ...Option) *Host {
	h := &Host{kinds: metadata.NewDefaultKinds()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Kinds returns the names of the declared kinds
func (h *Host) Kinds() []string {
	return h.kinds.Names()
}

// Declare registers a custom kind. Declare kinds before adding definitions
// that use them.
func (h *Host) Declare(kind Kind) error {
	return h.kinds.Register(kind)
}

// Add parses the definitions and appends them in order
func (h *Host) Add(defs ...*Definition) error {
	for _, def := range defs {
		c, err := def.component(h.kinds.Parser(), h.interfaces)
		if err != nil {
			return err
		}
		h.components = append(h.components, c)
	}
	return nil
}

// Source returns the components added so far
func (h *Host) Source() models.Source {
	return h.components
}

// Script runs the build pass for r. The variant comes from the traits of sink.
func (h *Host) Script(r Registry, sink any) (*Script, error) {
	config := build.Config{
		RegistryID: r.ID,
		Traits:     registry.TraitsOf(sink),
		ClassKind:  r.ClassKind,
		MethodKind: r.MethodKind,
		Compound:   r.Compound,
		Resolver:   r.Resolver,
	}

	if r.Interface != nil {
		if r.Interface.Kind() != reflect.Interface {
			return nil, errors.NewConfigurationError("registry.interface", r.Interface.String()+" is not an interface")
		}
		config.Interface = typeRef(r.Interface).Identity()
		h.markInterface(r.Interface)
	}

	if config.Resolver == nil && r.ResolverName != "" {
		res, err := resolver.Lookup(r.ResolverName, resolver.Options{})
		if err != nil {
			return nil, errors.Wrap(errors.ConfigurationErrorCode, "registry "+r.ID, err)
		}
		config.Resolver = res
	}

	var opts []build.Option
	if h.log != nil {
		opts = append(opts, build.WithLogger(h.log))
	}
	pass, err := build.NewPass(config, metadata.NewAnnotationReader(h.kinds), opts...)
	if err != nil {
		return nil, err
	}
	return pass.Run(h.components)
}

// Build fills sink with the registrations of r and seals it. Nothing is
// written to sink when any registration would fail.
func (h *Host) Build(r Registry, sink any) error {
	script, err := h.Script(r, sink)
	if err != nil {
		return err
	}
	return fill(script, sink)
}

// TaggedScript runs a tagged pass for r
func (h *Host) TaggedScript(r TaggedRegistry) (*Script, error) {
	var opts []build.Option
	if h.log != nil {
		opts = append(opts, build.WithLogger(h.log))
	}
	pass, err := build.NewTaggedPass(build.TaggedConfig{RegistryID: r.ID, Tag: r.Tag, Attribute: r.Attribute}, opts...)
	if err != nil {
		return nil, err
	}
	return pass.Run(h.components)
}

// BuildTagged fills the keyed sink with the components tagged r.Tag and
// seals it, with the same guarantees as Build
func (h *Host) BuildTagged(r TaggedRegistry, sink any) error {
	script, err := h.TaggedScript(r)
	if err != nil {
		return err
	}
	return fill(script, sink)
}

func fill(script *Script, sink any) error {
	if err := rehearse(script, sink); err != nil {
		return err
	}
	if err := build.Apply(script, sink, nil); err != nil {
		return err
	}
	if s, ok := sink.(registry.Sealer); ok {
		s.Seal()
	}
	return nil
}

// rehearse checks script against the current state of sink, then applies it
// to an empty registry of the same type
func rehearse(script *Script, sink any) error {
	if s, ok := sink.(interface{ Sealed() bool }); ok && s.Sealed() {
		return errors.Newf(errors.RegistryErrorCode, "registry %q is sealed", script.RegistryID).
			WithContext(errors.ContextRegistry, script.RegistryID)
	}
	if s, ok := sink.(interface{ Has(id string) bool }); ok && script.Variant.Keyed() {
		for _, reg := range script.Registrations {
			if s.Has(reg.ID) {
				return errors.Newf(errors.RegistryErrorCode, "registry %q already holds identifier %q", script.RegistryID, reg.ID).
					WithContext(errors.ContextRegistry, script.RegistryID).
					WithContext(errors.ContextComponent, reg.Component).
					WithContext(errors.ContextMethod, reg.Method)
			}
		}
	}

	t := reflect.TypeOf(sink)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil
	}
	return build.Apply(script, reflect.New(t.Elem()).Interface(), nil)
}

// markInterface records iface on every component implementing it
func (h *Host) markInterface(iface reflect.Type) {
	for _, known := range h.interfaces {
		if known == iface {
			return
		}
	}
	h.interfaces = append(h.interfaces, iface)

	identity := typeRef(iface).Identity()
	for _, c := range h.components {
		if reflect.TypeOf(c.Instance).Implements(iface) && !c.Implements(identity) {
			c.Interfaces = append(c.Interfaces, identity)
		}
	}
}

package build

import (
	stderrors "errors"

	"github.com/toyz/registrar/internal/binding"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/resolver"
	"github.com/toyz/registrar/internal/variant"
)

// KindChecker is implemented by readers that can tell whether a kind exists.
// NewPass uses it to reject unknown kinds before any component is read.
type KindChecker interface {
	HasKind(name string) bool
}

// Pass turns the components of a source into the script of one registry
type Pass struct {
	config  Config
	reader  metadata.Reader
	catalog *variant.Catalog
	log     Logger
	variant variant.Variant
}

// NewPass validates config and resolves the registry variant
func NewPass(config Config, reader metadata.Reader, opts ...Option) (*Pass, error) {
	p := &Pass{
		config:  config,
		reader:  reader,
		catalog: variant.NewCatalog(),
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if reader == nil {
		return nil, errors.NewConfigurationError("reader", "a metadata reader is required")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	if checker, ok := reader.(KindChecker); ok {
		kinds := []struct{ field, name string }{
			{"registry.class_kind", config.ClassKind},
			{"registry.method_kind", config.MethodKind},
		}
		for _, kind := range kinds {
			if kind.name != "" && !checker.HasKind(kind.name) {
				return nil, errors.NewConfigurationError(kind.field, "kind "+kind.name+" is not registered").
					WithContext(errors.ContextRegistry, config.RegistryID).
					WithContext(errors.ContextKind, kind.name)
			}
		}
	}

	v, err := config.resolveVariant(p.catalog)
	if err != nil {
		return nil, err
	}
	p.variant = v
	return p, nil
}

// Variant returns the resolved registry variant
func (p *Pass) Variant() variant.Variant {
	return p.variant
}

// Config returns the pass configuration
func (p *Pass) Config() Config {
	return p.config
}

// Run builds the script. Any error aborts the whole pass and no script is
// returned.
func (p *Pass) Run(source models.Source) (*Script, error) {
	script := &Script{RegistryID: p.config.RegistryID, Variant: p.variant}

	components := source.Components()
	p.log.Debugf("registry %s: %s %d components (%s)", p.config.RegistryID, StageScanning, len(components), p.variant)

	claimed := make(map[string]Registration)
	for _, c := range components {
		regs, err := p.component(source, c, claimed)
		if err != nil {
			return nil, err
		}
		script.Registrations = append(script.Registrations, regs...)
	}

	p.log.Debugf("registry %s: %s with %d registrations", p.config.RegistryID, StageDone, len(script.Registrations))
	return script, nil
}

func (p *Pass) component(source models.Source, c *models.Component, claimed map[string]Registration) ([]Registration, error) {
	if !Accept(source, c) {
		return nil, nil
	}
	if p.config.Interface != "" && !c.Implements(p.config.Interface) {
		p.log.Debugf("registry %s: %s skipped %s, does not implement %s", p.config.RegistryID, StageFiltering, c.Identity(), p.config.Interface)
		return nil, nil
	}

	class, err := p.classMetadata(c)
	if err != nil || class == nil {
		return nil, err
	}

	if p.config.MethodPass() {
		return p.methods(c, class, claimed)
	}

	decl := resolver.Declaration(c, nil, class)
	if err := p.checkCapabilities(decl, class.Kind.Capabilities, p.variant.Requires()); err != nil {
		return nil, err
	}

	reg := Registration{
		Value:     binding.NewReference(c),
		Component: c.Identity(),
	}
	if p.variant.Keyed() {
		reg.ID = resolver.ClassIdentifier(c, class)
		if err := p.claim(claimed, decl, reg); err != nil {
			return nil, err
		}
	}
	if p.variant.Prioritized() {
		reg.Priority = class.Priority
	}

	p.log.Debugf("registry %s: %s %s", p.config.RegistryID, StageAppending, reg)
	return []Registration{reg}, nil
}

// classMetadata returns the single type-level instance of the class kind,
// or nil when the component declares none
func (p *Pass) classMetadata(c *models.Component) (*metadata.Instance, error) {
	classes, err := p.reader.ClassMetadata(c, p.config.ClassKind)
	if err != nil {
		return nil, p.readError(err, c, nil, p.config.ClassKind)
	}

	switch len(classes) {
	case 0:
		return nil, nil
	case 1:
	default:
		decl := resolver.Declaration(c, nil, classes[1])
		return nil, p.fail(errors.NewDuplicateMetadataError(decl, len(classes)), StageExtractingMetadata)
	}

	class := classes[0]
	if err := p.checkTarget(resolver.Declaration(c, nil, class), class, metadata.TargetType); err != nil {
		return nil, err
	}
	return class, nil
}

func (p *Pass) methods(c *models.Component, class *metadata.Instance, claimed map[string]Registration) ([]Registration, error) {
	methods, err := p.reader.MethodsDeclaring(c, p.config.MethodKind)
	if err != nil {
		return nil, p.readError(err, c, nil, p.config.MethodKind)
	}

	required := p.variant.Requires()
	if p.config.Resolver != nil {
		required &^= metadata.CapabilityIdentifiable
	}
	rules := resolver.MethodRules{
		Registry: p.config.RegistryID,
		Compound: p.config.Compound,
		Resolver: p.config.Resolver,
	}

	var regs []Registration
	for _, m := range methods {
		inst, err := p.reader.MethodMetadata(m, p.config.MethodKind)
		if err != nil {
			return nil, p.readError(err, c, m, p.config.MethodKind)
		}
		if inst == nil {
			continue
		}

		decl := resolver.Declaration(c, m, inst)
		if err := p.checkTarget(decl, inst, metadata.TargetMethod); err != nil {
			return nil, err
		}
		if err := p.checkCapabilities(decl, class.Kind.Capabilities|inst.Kind.Capabilities, required); err != nil {
			return nil, err
		}

		id, err := resolver.MethodIdentifier(rules, resolver.Candidate{
			Component:      c,
			Method:         m,
			MethodMetadata: inst,
			ClassMetadata:  class,
		})
		if err != nil {
			return nil, p.fail(err, StageResolvingIdentifier)
		}

		reg := Registration{
			Value:     binding.Bind(c, m, id),
			Component: c.Identity(),
			Method:    m.Name,
		}
		if p.variant.Keyed() {
			reg.ID = id
			if err := p.claim(claimed, decl, reg); err != nil {
				return nil, err
			}
		}
		if p.variant.Prioritized() {
			reg.Priority = methodPriority(class, inst)
		}

		p.log.Debugf("registry %s: %s %s", p.config.RegistryID, StageAppending, reg)
		regs = append(regs, reg)
	}
	return regs, nil
}

// claim records the identifier of reg, failing when an earlier registration
// of the pass already uses it
func (p *Pass) claim(claimed map[string]Registration, decl errors.Declaration, reg Registration) error {
	if first, ok := claimed[reg.ID]; ok {
		return p.fail(errors.NewDuplicateIdentifierError(decl, reg.ID, first.target()), StageAppending)
	}
	claimed[reg.ID] = reg
	return nil
}

// methodPriority reads the class priority first and falls back to the method
func methodPriority(class, method *metadata.Instance) int {
	if class.IsPrioritized() {
		return class.Priority
	}
	return method.Priority
}

func (p *Pass) checkTarget(decl errors.Declaration, inst *metadata.Instance, want metadata.Target) error {
	if inst.DeclaredOn(want) {
		return nil
	}
	expected := want
	if inst.Target == want {
		expected = inst.Kind.Targets
	}
	return p.fail(errors.NewWrongTargetError(decl, expected.String(), inst.Target.String()), StageExtractingMetadata)
}

// checkCapabilities reports the first missing capability, in the order
// priority, identity, service
func (p *Pass) checkCapabilities(decl errors.Declaration, have, required metadata.Capability) error {
	for _, c := range []metadata.Capability{metadata.CapabilityPrioritized, metadata.CapabilityIdentifiable, metadata.CapabilityService} {
		if required.Has(c) && !have.Has(c) {
			err := errors.NewMissingCapabilityError(decl, c.String(), p.variant.String()).
				WithContext(errors.ContextRegistry, p.config.RegistryID)
			return p.fail(err, StageValidatingCapability)
		}
	}
	return nil
}

func (p *Pass) readError(err error, c *models.Component, m *models.Method, kind string) error {
	var re errors.RegistrarError
	if stderrors.As(err, &re) {
		return p.fail(err, StageExtractingMetadata)
	}
	wrapped := errors.Wrap(errors.ConfigurationErrorCode, "reading metadata", err).
		WithContext(errors.ContextKind, kind)
	if c != nil {
		wrapped = wrapped.WithContext(errors.ContextComponent, c.Identity())
	}
	if m != nil {
		wrapped = wrapped.WithContext(errors.ContextMethod, m.Name)
	}
	return p.fail(wrapped, StageExtractingMetadata)
}

// fail attaches the stage and registry to err
func (p *Pass) fail(err error, stage Stage) error {
	var base *errors.BaseError
	if stderrors.As(err, &base) {
		base.WithContext(errors.ContextStage, stage.String())
		if base.ContextString(errors.ContextRegistry) == "" {
			base.WithContext(errors.ContextRegistry, p.config.RegistryID)
		}
		return err
	}
	return errors.Wrap(errors.ConfigurationErrorCode, "build pass failed", err).
		WithContext(errors.ContextStage, stage.String()).
		WithContext(errors.ContextRegistry, p.config.RegistryID)
}

package build

import (
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/resolver"
	"github.com/toyz/registrar/internal/variant"
	"github.com/toyz/registrar/pkg/registry"
)

// Config describes one registry and the metadata that feeds it
type Config struct {
	// RegistryID names the registry in scripts, generated code and errors
	RegistryID string

	// Implementation is a catalog name such as IdentityServiceRegistry.
	// When empty the variant is matched from Traits.
	Implementation string
	Traits         registry.Trait

	// ClassKind is the type-level metadata kind. MethodKind, when set, turns
	// the pass into a method pass that registers bound callables.
	ClassKind  string
	MethodKind string

	// Interface, when set, skips components that do not satisfy it
	Interface string

	// Compound requires method identifiers when there is no Resolver
	Compound bool
	Resolver resolver.IdentifierResolver
}

// MethodPass reports whether the pass registers methods
func (c Config) MethodPass() bool {
	return c.MethodKind != ""
}

func (c Config) validate() error {
	if c.RegistryID == "" {
		return errors.NewConfigurationError("registry.id", "registry id is required")
	}
	if c.ClassKind == "" {
		return errors.NewConfigurationError("registry.class_kind", "class kind is required").
			WithContext(errors.ContextRegistry, c.RegistryID)
	}
	if c.Resolver != nil && !c.MethodPass() {
		return errors.NewConfigurationError("registry.resolver", "identifier resolvers apply to method registries only").
			WithContext(errors.ContextRegistry, c.RegistryID).
			WithSuggestion("Set method_kind or remove the resolver")
	}
	return nil
}

func (c Config) resolveVariant(catalog *variant.Catalog) (variant.Variant, error) {
	if c.Implementation != "" {
		return catalog.Resolve(c.RegistryID, c.Implementation)
	}
	return variant.ResolveTraits(c.RegistryID, c.Traits)
}

// Logger receives pass progress. utils.DiagnosticSystem satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// Option customizes a Pass
type Option func(*Pass)

// WithLogger sets the logger for pass progress
func WithLogger(l Logger) Option {
	return func(p *Pass) {
		if l != nil {
			p.log = l
		}
	}
}

// WithCatalog resolves implementation names against catalog instead of the
// pkg/registry catalog
func WithCatalog(catalog *variant.Catalog) Option {
	return func(p *Pass) {
		if catalog != nil {
			p.catalog = catalog
		}
	}
}

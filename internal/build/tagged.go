package build

import (
	"github.com/toyz/registrar/internal/binding"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/variant"
)

// TaggedConfig describes a registry filled from container tags instead of
// metadata
type TaggedConfig struct {
	RegistryID string

	// Tag selects the components
	Tag string

	// Attribute names the tag attribute holding the identifier. Components
	// whose tag lacks it are skipped. When empty the component identity is
	// the identifier.
	Attribute string
}

// TaggedPass turns the tagged components of a source into an identity script
type TaggedPass struct {
	config TaggedConfig
	log    Logger
}

// NewTaggedPass validates config. Only WithLogger applies to tagged passes.
func NewTaggedPass(config TaggedConfig, opts ...Option) (*TaggedPass, error) {
	if config.RegistryID == "" {
		return nil, errors.NewConfigurationError("registry.id", "registry id is required")
	}
	if config.Tag == "" {
		return nil, errors.NewConfigurationError("registry.tag", "tag is required").
			WithContext(errors.ContextRegistry, config.RegistryID)
	}

	p := &Pass{log: nopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return &TaggedPass{config: config, log: p.log}, nil
}

// Run builds the script. Tags are explicit, so eligibility and the metadata
// exclusion tag do not apply.
func (p *TaggedPass) Run(source models.Source) (*Script, error) {
	script := &Script{RegistryID: p.config.RegistryID, Variant: variant.Identity}
	claimed := make(map[string]Registration)

	for _, c := range source.Components() {
		if !c.HasTag(p.config.Tag) {
			continue
		}

		id := c.Identity()
		if p.config.Attribute != "" {
			var ok bool
			if id, ok = c.TagAttribute(p.config.Tag, p.config.Attribute); !ok {
				p.log.Debugf("registry %s: %s skipped %s, tag %s has no %s", p.config.RegistryID, StageFiltering, c.Identity(), p.config.Tag, p.config.Attribute)
				continue
			}
		}

		reg := Registration{ID: id, Value: binding.NewReference(c), Component: c.Identity()}
		if first, ok := claimed[id]; ok {
			decl := errors.Declaration{Component: c.Identity(), Kind: p.config.Tag, Loc: errors.SourceLocation(c.Location)}
			return nil, errors.NewDuplicateIdentifierError(decl, id, first.target()).
				WithContext(errors.ContextRegistry, p.config.RegistryID).
				WithContext(errors.ContextStage, StageAppending.String())
		}
		claimed[id] = reg

		p.log.Debugf("registry %s: %s %s", p.config.RegistryID, StageAppending, reg)
		script.Registrations = append(script.Registrations, reg)
	}

	p.log.Debugf("registry %s: %s with %d registrations", p.config.RegistryID, StageDone, len(script.Registrations))
	return script, nil
}

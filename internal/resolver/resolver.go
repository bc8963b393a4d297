package resolver

import (
	stderrors "errors"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
)

// CompoundSeparator joins a class identifier and a method identifier
const CompoundSeparator = ":"

// Candidate is a method registration awaiting an identifier
type Candidate struct {
	Component      *models.Component
	Method         *models.Method
	MethodMetadata *metadata.Instance
	ClassMetadata  *metadata.Instance
}

// IdentifierResolver computes the identifier of a method registration
type IdentifierResolver interface {
	Resolve(c Candidate) (string, error)
}

// Func adapts a plain function to IdentifierResolver
type Func func(c Candidate) (string, error)

func (f Func) Resolve(c Candidate) (string, error) {
	return f(c)
}

// MethodRules configures method identifier resolution for one registry
type MethodRules struct {
	Registry string             // registry id, used in errors
	Compound bool               // require method identifiers when no resolver is set
	Resolver IdentifierResolver // takes precedence over every other rule
}

// ClassIdentifier returns the identifier of a class-level registration: the
// explicit identifier of identifiable metadata, else the component identity.
func ClassIdentifier(c *models.Component, class *metadata.Instance) string {
	if class.HasIdentifier() {
		return class.ID
	}
	return c.Identity()
}

// MethodIdentifier returns the identifier of a method registration.
//
// A configured resolver wins. Otherwise the class identifier, when present,
// is the base. Method metadata that is not identifiable yields the base. A
// method identifier is joined to the base as base:id, or used alone when
// there is no base.
func MethodIdentifier(rules MethodRules, cand Candidate) (string, error) {
	decl := Declaration(cand.Component, cand.Method, cand.MethodMetadata)

	if rules.Resolver != nil {
		id, err := rules.Resolver.Resolve(cand)
		if err != nil {
			var re errors.RegistrarError
			if stderrors.As(err, &re) {
				return "", err
			}
			return "", errors.NewIdentifierNotSpecifiedError(decl, rules.Registry).WithCause(err)
		}
		if id == "" {
			return "", errors.NewIdentifierNotSpecifiedError(decl, rules.Registry)
		}
		return id, nil
	}

	var base string
	if cand.ClassMetadata.HasIdentifier() {
		base = cand.ClassMetadata.ID
	}

	if !cand.MethodMetadata.IsIdentifiable() {
		if base == "" {
			return "", errors.NewIdentifierNotSpecifiedError(decl, rules.Registry)
		}
		return base, nil
	}

	if rules.Compound && !cand.MethodMetadata.HasIdentifier() {
		return "", errors.NewCompoundIdentifierError(decl)
	}

	switch {
	case cand.MethodMetadata.HasIdentifier() && base != "":
		return base + CompoundSeparator + cand.MethodMetadata.ID, nil
	case cand.MethodMetadata.HasIdentifier():
		return cand.MethodMetadata.ID, nil
	case base != "":
		return base, nil
	default:
		return "", errors.NewIdentifierNotSpecifiedError(decl, rules.Registry)
	}
}

// Declaration describes where a registration was declared, for errors
func Declaration(c *models.Component, m *models.Method, inst *metadata.Instance) errors.Declaration {
	d := errors.Declaration{}
	if c != nil {
		d.Component = c.Identity()
		d.Loc = errors.SourceLocation(c.Location)
	}
	if m != nil {
		d.Method = m.Name
		d.Loc = errors.SourceLocation(m.Location)
	}
	if inst != nil {
		d.Kind = inst.Kind.Name
		if inst.Location.File != "" {
			d.Loc = errors.SourceLocation(inst.Location)
		}
	}
	return d
}

package resolver

import (
	"fmt"
	"sort"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/models"
)

// FirstParameter identifies a handler by the type of its single required
// parameter, so a method Handle(cmd CreateUser) registers under the
// identity of CreateUser.
type FirstParameter struct {
	AllowInterface bool // accept interface parameter types
	SkipContext    bool // ignore a leading context.Context parameter
}

func (r FirstParameter) Resolve(c Candidate) (string, error) {
	decl := Declaration(c.Component, c.Method, c.MethodMetadata)
	if c.Method == nil {
		return "", errors.NewInvalidSignatureError(decl, "resolver requires a method")
	}

	params := c.Method.RequiredParameters()
	if r.SkipContext && len(params) > 0 && params[0].Type.IsContext() {
		params = params[1:]
	}

	if len(params) != 1 {
		return "", errors.NewInvalidSignatureError(decl,
			fmt.Sprintf("expected exactly one required parameter, found %d", len(params)))
	}

	param := params[0]
	switch param.Type.Kind {
	case models.TypeNamed:
	case models.TypeInterface:
		if !r.AllowInterface {
			return "", errors.NewInvalidSignatureError(decl,
				fmt.Sprintf("parameter %s has interface type %s", param.Name, param.Type))
		}
	default:
		return "", errors.NewInvalidSignatureError(decl,
			fmt.Sprintf("parameter %s has %s type %s, expected a named type", param.Name, param.Type.Kind, param.Type))
	}

	return param.Type.Identity(), nil
}

// Options configures a named resolver
type Options struct {
	AllowInterface bool
	SkipContext    bool
}

var builtins = map[string]func(Options) IdentifierResolver{
	"first_parameter": func(o Options) IdentifierResolver {
		return FirstParameter{AllowInterface: o.AllowInterface, SkipContext: o.SkipContext}
	},
	"first_parameter_type": func(o Options) IdentifierResolver {
		return FirstParameter{AllowInterface: true, SkipContext: o.SkipContext}
	},
}

// Lookup returns a builtin resolver by name
func Lookup(name string, opts Options) (IdentifierResolver, error) {
	factory, ok := builtins[name]
	if !ok {
		return nil, errors.NewConfigurationError("resolver",
			fmt.Sprintf("unknown resolver %q, available: %v", name, Names()))
	}
	return factory(opts), nil
}

// Names returns the builtin resolver names, sorted
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

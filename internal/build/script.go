package build

import (
	"fmt"

	"github.com/toyz/registrar/internal/binding"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/variant"
)

// Value is what a registration stores: a component reference or a bound callable
type Value = binding.Value

// Registration is one resolved registration call
type Registration struct {
	ID        string // empty unless the variant is keyed
	Priority  int    // zero unless the variant is prioritized
	Value     Value
	Component string // component identity
	Method    string // empty for class registrations
}

// Script is the ordered output of a pass for one registry
type Script struct {
	RegistryID    string
	Variant       variant.Variant
	Registrations []Registration
}

// Len returns the number of registrations
func (s *Script) Len() int {
	return len(s.Registrations)
}

// Call shapes r for the script's variant around the runtime value
func (s *Script) Call(r Registration, value any) (variant.Call, error) {
	return variant.Shape(s.Variant, r.ID, value, r.Priority)
}

// ValueResolver turns a script value into the value stored in a sink
type ValueResolver func(Value) (any, error)

// Apply replays script against sink in order. resolve may be nil, in which
// case binding.Resolve produces values from live component instances.
func Apply(script *Script, sink any, resolve ValueResolver) error {
	if script == nil {
		return errors.New(errors.RegistryErrorCode, "no script to apply")
	}
	if resolve == nil {
		resolve = binding.Resolve
	}

	for i, r := range script.Registrations {
		value, err := resolve(r.Value)
		if err != nil {
			return errors.Wrapf(errors.RegistryErrorCode, err, "registry %q: resolving registration %d (%s)", script.RegistryID, i, r.Value).
				WithContext(errors.ContextRegistry, script.RegistryID).
				WithContext(errors.ContextComponent, r.Component).
				WithContext(errors.ContextMethod, r.Method)
		}

		call, err := script.Call(r, value)
		if err != nil {
			return err
		}
		if err := call.Apply(sink); err != nil {
			return errors.Wrapf(errors.RegistryErrorCode, err, "registry %q: applying registration %d", script.RegistryID, i).
				WithContext(errors.ContextRegistry, script.RegistryID).
				WithContext(errors.ContextComponent, r.Component).
				WithContext(errors.ContextMethod, r.Method)
		}
	}
	return nil
}

// target names the component, or component and method, behind r
func (r Registration) target() string {
	if r.Method == "" {
		return r.Component
	}
	return r.Component + "." + r.Method
}

func (r Registration) String() string {
	switch {
	case r.ID != "" && r.Priority != 0:
		return fmt.Sprintf("%s => %s (priority %d)", r.ID, r.Value, r.Priority)
	case r.ID != "":
		return fmt.Sprintf("%s => %s", r.ID, r.Value)
	case r.Priority != 0:
		return fmt.Sprintf("%s (priority %d)", r.Value, r.Priority)
	default:
		return r.Value.String()
	}
}

// Package registry provides the runtime registries a registrar build fills.
//
// Four registry shapes exist. Each is a typed generic container that is
// written once by a builder and then sealed:
//
//	ServiceRegistry[T]                    Register(value)
//	IdentityServiceRegistry[T]            Register(id, value)
//	PrioritizedServiceRegistry[T]         Register(value, priority)
//	IdentityPrioritizedServiceRegistry[T] Register(id, value, priority)
//
// Prioritized registries are consumed by descending priority. Entries with
// equal priority keep their registration order.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrSealed is returned when registering into a sealed registry
	ErrSealed = errors.New("registry is sealed")
	// ErrDuplicateIdentifier is returned when an identifier is registered twice
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	// ErrTypeMismatch is returned when an untyped value cannot be stored
	ErrTypeMismatch = errors.New("value type mismatch")
)

// Trait is a capability a registry implementation declares
type Trait uint8

const (
	TraitService Trait = 1 << iota
	TraitIdentity
	TraitPriority
)

// Has reports whether every trait in other is present
func (t Trait) Has(other Trait) bool {
	return t&other == other
}

func (t Trait) String() string {
	var names []string
	if t.Has(TraitService) {
		names = append(names, "service")
	}
	if t.Has(TraitIdentity) {
		names = append(names, "identity")
	}
	if t.Has(TraitPriority) {
		names = append(names, "priority")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Declarer is implemented by registries that declare their traits
type Declarer interface {
	Traits() Trait
}

// Sink interfaces accept untyped values with the arity of one registry shape.
type (
	PlainSink interface {
		Add(value any) error
	}
	IdentitySink interface {
		AddIdentified(id string, value any) error
	}
	PrioritizedSink interface {
		AddPrioritized(value any, priority int) error
	}
	IdentityPrioritizedSink interface {
		AddIdentifiedPrioritized(id string, value any, priority int) error
	}
)

// Sealer is implemented by registries that can be frozen after building
type Sealer interface {
	Seal()
}

// TraitsOf returns the traits a sink declares, or infers them from the
// sink interfaces it implements, most specific first.
func TraitsOf(sink any) Trait {
	if d, ok := sink.(Declarer); ok {
		return d.Traits()
	}
	switch sink.(type) {
	case IdentityPrioritizedSink:
		return TraitService | TraitIdentity | TraitPriority
	case PrioritizedSink:
		return TraitService | TraitPriority
	case IdentitySink:
		return TraitService | TraitIdentity
	case PlainSink:
		return TraitService
	default:
		return 0
	}
}

// Coerce converts an untyped value into T. A Callable whose function is a T
// is unwrapped.
func Coerce[T any](value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	if c, ok := value.(Callable); ok {
		if fn, ok := c.Func().(T); ok {
			return fn, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("%w: %T is not assignable to %s", ErrTypeMismatch, value, reflect.TypeFor[T]())
}

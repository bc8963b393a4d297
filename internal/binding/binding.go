package binding

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/pkg/registry"
)

// ValueKind says what a registration stores
type ValueKind int

const (
	// Reference stores the component itself
	Reference ValueKind = iota
	// Callable stores one bound method of the component
	Callable
)

func (k ValueKind) String() string {
	if k == Callable {
		return "callable"
	}
	return "reference"
}

// Value is the host-independent description of a registered value
type Value struct {
	Kind      ValueKind
	Component *models.Component
	Method    string // set for callables
	BindingID string // set for callables
}

// NewReference describes a class-level registration of c
func NewReference(c *models.Component) Value {
	return Value{Kind: Reference, Component: c}
}

// Bind describes the method m of c bound into a single invocable unit that
// is addressed by its binding id from then on
func Bind(c *models.Component, m *models.Method, identifier string) Value {
	return Value{
		Kind:      Callable,
		Component: c,
		Method:    m.Name,
		BindingID: BindingID(identifier),
	}
}

var bindingIDReplacer = strings.NewReplacer(`\`, ".", "/", ".")

// BindingID derives the name of a bound callable from its identifier
func BindingID(identifier string) string {
	return bindingIDReplacer.Replace(identifier) + ".callable"
}

func (v Value) String() string {
	if v.Kind == Callable {
		return fmt.Sprintf("%s.%s as %s", v.Component.Identity(), v.Method, v.BindingID)
	}
	return v.Component.Identity()
}

// Method binds the named method of a live instance
func Method(instance any, name, bindingID string) (registry.Callable, error) {
	if instance == nil {
		return registry.Callable{}, fmt.Errorf("cannot bind %s: no instance", name)
	}

	m := reflect.ValueOf(instance).MethodByName(name)
	if !m.IsValid() {
		hint := ""
		if reflect.TypeOf(instance).Kind() != reflect.Pointer {
			if _, ok := reflect.PointerTo(reflect.TypeOf(instance)).MethodByName(name); ok {
				hint = " (declared on the pointer receiver, register a pointer)"
			}
		}
		return registry.Callable{}, fmt.Errorf("cannot bind %s: %T has no exported method %s%s", bindingID, instance, name, hint)
	}
	return registry.NewCallable(bindingID, m.Interface())
}

// Resolve produces the runtime value of v from the component's live instance
func Resolve(v Value) (any, error) {
	if v.Component == nil {
		return nil, fmt.Errorf("value has no component")
	}
	switch v.Kind {
	case Reference:
		if v.Component.Instance == nil {
			return nil, fmt.Errorf("component %s has no instance", v.Component.Identity())
		}
		return v.Component.Instance, nil
	case Callable:
		return Method(v.Component.Instance, v.Method, v.BindingID)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// Expression renders v as Go source, given the variable holding the component
func Expression(v Value, receiver string) string {
	if v.Kind == Callable {
		return receiver + "." + v.Method
	}
	return receiver
}

package registry

import (
	"fmt"
	"reflect"
)

// Callable is a bound invocable unit: a method value addressed by its
// binding name rather than by the component and method it came from.
type Callable struct {
	name string
	fn   reflect.Value
}

// NewCallable wraps fn, which must be a non-nil function
func NewCallable(name string, fn any) (Callable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return Callable{}, fmt.Errorf("callable %s: %T is not a function", name, fn)
	}
	return Callable{name: name, fn: v}, nil
}

// MustCallable is NewCallable for method values known to be valid, as in
// generated code. It panics when fn is not a function.
func MustCallable(name string, fn any) Callable {
	c, err := NewCallable(name, fn)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the binding name
func (c Callable) Name() string {
	return c.name
}

// Func returns the underlying function value
func (c Callable) Func() any {
	if !c.fn.IsValid() {
		return nil
	}
	return c.fn.Interface()
}

// Type returns the function type
func (c Callable) Type() reflect.Type {
	if !c.fn.IsValid() {
		return nil
	}
	return c.fn.Type()
}

// Call invokes the function. Arguments are checked against the signature
// and a nil argument becomes the zero value of its parameter.
func (c Callable) Call(args ...any) ([]any, error) {
	if !c.fn.IsValid() {
		return nil, fmt.Errorf("callable %s is not bound", c.name)
	}

	ft := c.fn.Type()
	if ft.IsVariadic() {
		if len(args) < ft.NumIn()-1 {
			return nil, fmt.Errorf("callable %s: expected at least %d arguments, got %d", c.name, ft.NumIn()-1, len(args))
		}
	} else if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("callable %s: expected %d arguments, got %d", c.name, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := paramType(ft, i)
		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("callable %s: argument %d is %s, expected %s", c.name, i, v.Type(), pt)
		}
		in[i] = v
	}

	out := c.fn.Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

func (c Callable) String() string {
	return fmt.Sprintf("callable(%s)", c.name)
}

package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/models"
)

type greeter struct {
	prefix string
}

func (g *greeter) Greet(name string) string {
	return g.prefix + name
}

func (g greeter) Prefix() string {
	return g.prefix
}

func TestBindingID(t *testing.T) {
	assert.Equal(t, "cmd:create.callable", BindingID("cmd:create"))
	assert.Equal(t, "example.com.app.users.CreateUser.callable", BindingID("example.com/app/users.CreateUser"))
	assert.Equal(t, "App.Command.Create.callable", BindingID(`App\Command\Create`))
}

func TestBind(t *testing.T) {
	c := &models.Component{Name: "Handlers", PackagePath: "example.com/app"}
	v := Bind(c, &models.Method{Name: "Create"}, "cmd:create")

	assert.Equal(t, Callable, v.Kind)
	assert.Equal(t, "Create", v.Method)
	assert.Equal(t, "cmd:create.callable", v.BindingID)
	assert.Equal(t, "example.com/app.Handlers.Create as cmd:create.callable", v.String())
	assert.Equal(t, "h.Create", Expression(v, "h"))

	ref := NewReference(c)
	assert.Equal(t, "h", Expression(ref, "h"))
	assert.Equal(t, "example.com/app.Handlers", ref.String())
}

func TestMethod(t *testing.T) {
	g := &greeter{prefix: "hi "}

	callable, err := Method(g, "Greet", "greet.callable")
	require.NoError(t, err)
	out, err := callable.Call("bob")
	require.NoError(t, err)
	assert.Equal(t, []any{"hi bob"}, out)

	fn, ok := callable.Func().(func(string) string)
	require.True(t, ok)
	assert.Equal(t, "hi al", fn("al"))

	_, err = Method(*g, "Greet", "greet.callable")
	assert.ErrorContains(t, err, "pointer receiver")

	_, err = Method(g, "Missing", "x.callable")
	assert.ErrorContains(t, err, "no exported method Missing")

	_, err = Method(nil, "Greet", "x.callable")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	g := &greeter{prefix: "yo "}
	c := &models.Component{Name: "greeter", Instance: g}

	ref, err := Resolve(NewReference(c))
	require.NoError(t, err)
	assert.Same(t, g, ref)

	bound, err := Resolve(Bind(c, &models.Method{Name: "Prefix"}, "prefix"))
	require.NoError(t, err)
	fn, ok := bound.(interface{ Call(...any) ([]any, error) })
	require.True(t, ok)
	out, err := fn.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{"yo "}, out)

	_, err = Resolve(NewReference(&models.Component{Name: "empty"}))
	assert.ErrorContains(t, err, "has no instance")
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponent_Identity(t *testing.T) {
	assert.Equal(t, "example.com/app/users.Handlers", (&Component{Name: "Handlers", PackagePath: "example.com/app/users"}).Identity())
	assert.Equal(t, "Handlers", (&Component{Name: "Handlers"}).Identity())
}

func TestComponent_Lookups(t *testing.T) {
	c := &Component{
		Name:       "Handlers",
		Tags:       []string{TagIgnoreMetadata},
		Interfaces: []string{"example.com/app/bus.Handler"},
		Methods:    []*Method{{Name: "Create"}, {Name: "Delete"}},
	}

	assert.True(t, c.HasTag(TagIgnoreMetadata))
	assert.False(t, c.HasTag("other"))
	assert.True(t, c.Implements("example.com/app/bus.Handler"))
	assert.False(t, c.Implements("example.com/app/bus.Query"))
	assert.Equal(t, "Delete", c.Method("Delete").Name)
	assert.Nil(t, c.Method("Update"))
}

func TestMethod_RequiredParameters(t *testing.T) {
	m := &Method{Parameters: []Parameter{
		{Name: "ctx", Type: TypeRef{Name: "Context", Package: "context", Kind: TypeInterface}},
		{Name: "opts", Type: TypeRef{Name: "[]Option", Kind: TypeComposite}, Variadic: true},
	}}

	required := m.RequiredParameters()
	assert.Len(t, required, 1)
	assert.True(t, required[0].Type.IsContext())
}

func TestTypeRef_String(t *testing.T) {
	ref := TypeRef{Name: "CreateUser", Package: "example.com/app/users", Kind: TypeNamed, Pointer: true}
	assert.Equal(t, "example.com/app/users.CreateUser", ref.Identity())
	assert.Equal(t, "*example.com/app/users.CreateUser", ref.String())
	assert.Equal(t, "string", TypeRef{Name: "string", Kind: TypeBuiltin}.Identity())
}

func TestComponentList_IsEligible(t *testing.T) {
	auto := &Component{Name: "A", Autoconfigured: true}
	manual := &Component{Name: "B"}
	list := ComponentList{auto, manual}

	assert.Len(t, list.Components(), 2)
	assert.True(t, list.IsEligible(auto))
	assert.False(t, list.IsEligible(manual))
	assert.False(t, list.IsEligible(nil))
}

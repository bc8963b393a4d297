package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/annotations"
	"github.com/toyz/registrar/internal/models"
)

func TestCapability(t *testing.T) {
	all := CapabilityService | CapabilityIdentifiable | CapabilityPrioritized

	assert.True(t, all.Has(CapabilityService|CapabilityPrioritized))
	assert.False(t, CapabilityService.Has(CapabilityIdentifiable))
	assert.Equal(t, "service|identifiable|prioritized", all.String())
	assert.Equal(t, "none", Capability(0).String())

	parsed, err := ParseCapabilities([]string{"service", "Identity", "priority"})
	require.NoError(t, err)
	assert.Equal(t, all, parsed)

	_, err = ParseCapabilities([]string{"cached"})
	assert.Error(t, err)
}

func TestParseTargets(t *testing.T) {
	both, err := ParseTargets([]string{"type", "method"})
	require.NoError(t, err)
	assert.Equal(t, TargetType|TargetMethod, both)
	assert.Equal(t, "type|method", both.String())
	assert.True(t, both.Allows(TargetMethod))

	_, err = ParseTargets([]string{"field"})
	assert.Error(t, err)
}

func TestKind_Schema(t *testing.T) {
	plain := Kind{Name: "listener", Capabilities: CapabilityService}.Schema()
	assert.Empty(t, plain.Parameters)
	assert.Empty(t, plain.Positional)

	full := Kind{Name: "command", Capabilities: CapabilityService | CapabilityIdentifiable | CapabilityPrioritized}.Schema()
	assert.Equal(t, []string{ParamIdentifier, ParamPriority}, full.ParameterNames())
	assert.Equal(t, ParamIdentifier, full.Positional)
	assert.Equal(t, 0, full.Parameters[ParamPriority].DefaultValue)
}

func TestKinds_Register(t *testing.T) {
	kinds := NewKinds()
	require.NoError(t, kinds.Register(Kind{Name: "listener", Capabilities: CapabilityService}))

	kind, ok := kinds.Lookup("listener")
	require.True(t, ok)
	assert.Equal(t, TargetType, kind.Targets, "kinds default to type targets")
	assert.True(t, kinds.Parser().Registry().IsRegistered("listener"))

	assert.Error(t, kinds.Register(Kind{Name: "listener"}))
}

func TestNewDefaultKinds(t *testing.T) {
	kinds := NewDefaultKinds()
	assert.Equal(t, []string{"handler", "identity", "identity_prioritized", IgnoreKind, "prioritized", "service"}, kinds.Names())

	handler, ok := kinds.Lookup("handler")
	require.True(t, ok)
	assert.Equal(t, TargetMethod, handler.Targets)
}

func TestAnnotationReader(t *testing.T) {
	kinds := NewKinds()
	require.NoError(t, kinds.Register(Kind{
		Name:         "command",
		Capabilities: CapabilityService | CapabilityIdentifiable | CapabilityPrioritized,
		Targets:      TargetType | TargetMethod,
	}))
	require.NoError(t, kinds.Register(Kind{Name: "listener", Capabilities: CapabilityService}))

	parse := func(comment string) *annotations.ParsedAnnotation {
		parsed, err := kinds.Parser().ParseAnnotation(comment, annotations.SourceLocation{File: "h.go", Line: 1})
		require.NoError(t, err)
		return parsed
	}

	create := &models.Method{Name: "Create", Annotations: []*annotations.ParsedAnnotation{
		parse("//registrar::command -Id=create"),
		parse("//registrar::command -Id=second"),
	}}
	helper := &models.Method{Name: "helper"}
	remove := &models.Method{Name: "Delete", Annotations: []*annotations.ParsedAnnotation{parse("//registrar::command")}}

	component := &models.Component{
		Name:        "Handlers",
		Annotations: []*annotations.ParsedAnnotation{parse("//registrar::command -Id=user -Priority=3"), parse("//registrar::listener")},
		Methods:     []*models.Method{create, helper, remove},
	}
	reader := NewAnnotationReader(kinds)

	t.Run("class metadata", func(t *testing.T) {
		instances, err := reader.ClassMetadata(component, "command")
		require.NoError(t, err)
		require.Len(t, instances, 1)
		assert.Equal(t, "user", instances[0].ID)
		assert.Equal(t, 3, instances[0].Priority)
		assert.True(t, instances[0].HasIdentifier())
		assert.True(t, instances[0].DeclaredOn(TargetType))
	})

	t.Run("non identifiable kind", func(t *testing.T) {
		instances, err := reader.ClassMetadata(component, "listener")
		require.NoError(t, err)
		require.Len(t, instances, 1)
		assert.False(t, instances[0].IsIdentifiable())
		assert.False(t, instances[0].HasIdentifier())
	})

	t.Run("methods in declaration order", func(t *testing.T) {
		methods, err := reader.MethodsDeclaring(component, "command")
		require.NoError(t, err)
		require.Len(t, methods, 2)
		assert.Equal(t, "Create", methods[0].Name)
		assert.Equal(t, "Delete", methods[1].Name)
	})

	t.Run("first method instance wins", func(t *testing.T) {
		inst, err := reader.MethodMetadata(create, "command")
		require.NoError(t, err)
		assert.Equal(t, "create", inst.ID)
		assert.True(t, inst.DeclaredOn(TargetMethod))

		none, err := reader.MethodMetadata(helper, "command")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := reader.ClassMetadata(component, "query")
		assert.ErrorContains(t, err, `"query" is not registered`)
	})
}

func TestInstance_DeclaredOn(t *testing.T) {
	methodOnly := Kind{Name: "handler", Capabilities: CapabilityService, Targets: TargetMethod}
	onType := &Instance{Kind: methodOnly, Target: TargetType}

	assert.False(t, onType.DeclaredOn(TargetType))
	assert.False(t, onType.DeclaredOn(TargetMethod))

	var missing *Instance
	assert.False(t, missing.IsService())
}

package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/pkg/registry"
)

func TestVariant_Properties(t *testing.T) {
	testCases := []struct {
		variant  Variant
		impl     string
		keyed    bool
		priority bool
		arity    int
		requires metadata.Capability
	}{
		{Plain, "ServiceRegistry", false, false, 1, metadata.CapabilityService},
		{Identity, "IdentityServiceRegistry", true, false, 2, metadata.CapabilityService | metadata.CapabilityIdentifiable},
		{Prioritized, "PrioritizedServiceRegistry", false, true, 2, metadata.CapabilityService | metadata.CapabilityPrioritized},
		{IdentityPrioritized, "IdentityPrioritizedServiceRegistry", true, true, 3, metadata.CapabilityService | metadata.CapabilityIdentifiable | metadata.CapabilityPrioritized},
	}

	for _, tc := range testCases {
		t.Run(tc.variant.String(), func(t *testing.T) {
			assert.True(t, tc.variant.Valid())
			assert.Equal(t, tc.impl, tc.variant.Implementation())
			assert.Equal(t, tc.keyed, tc.variant.Keyed())
			assert.Equal(t, tc.priority, tc.variant.Prioritized())
			assert.Equal(t, tc.arity, tc.variant.Arity())
			assert.Equal(t, tc.requires, tc.variant.Requires())

			matched, ok := Match(tc.variant.Traits())
			require.True(t, ok)
			assert.Equal(t, tc.variant, matched)
		})
	}

	assert.False(t, Variant(9).Valid())
	assert.Equal(t, "Variant(9)", Variant(9).String())
	assert.Empty(t, Variant(9).Implementation())
}

func TestMatch_MostSpecificFirst(t *testing.T) {
	_, ok := Match(registry.TraitIdentity | registry.TraitPriority)
	assert.False(t, ok, "service trait is required")

	v, ok := Match(registry.TraitService | registry.TraitIdentity | registry.TraitPriority)
	require.True(t, ok)
	assert.Equal(t, IdentityPrioritized, v)
}

func TestCatalog_Resolve(t *testing.T) {
	catalog := NewCatalog()

	v, err := catalog.Resolve("bus", "IdentitySinglePrioritizedServiceRegistry")
	require.NoError(t, err)
	assert.Equal(t, IdentityPrioritized, v)

	v, err = catalog.Resolve("listeners", "ServiceRegistry")
	require.NoError(t, err)
	assert.Equal(t, Plain, v)

	_, err = catalog.Resolve("bus", "MapRegistry")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.UnknownVariantErrorCode))
	assert.Contains(t, err.Error(), "IdentityServiceRegistry")

	catalog.Declare("MapRegistry", registry.TraitService|registry.TraitIdentity)
	v, err = catalog.Resolve("bus", "MapRegistry")
	require.NoError(t, err)
	assert.Equal(t, Identity, v)

	catalog.Declare("Broken", registry.TraitIdentity)
	_, err = catalog.Resolve("bus", "Broken")
	assert.True(t, errors.HasCode(err, errors.UnknownVariantErrorCode))
}

func TestResolveSink(t *testing.T) {
	v, err := ResolveSink("bus", registry.NewPrioritizedServiceRegistry[any]())
	require.NoError(t, err)
	assert.Equal(t, Prioritized, v)

	_, err = ResolveSink("bus", map[string]any{})
	assert.True(t, errors.HasCode(err, errors.UnknownVariantErrorCode))
}

func TestShape(t *testing.T) {
	testCases := []struct {
		variant Variant
		args    []any
	}{
		{Plain, []any{"v"}},
		{Identity, []any{"id", "v"}},
		{Prioritized, []any{"v", 7}},
		{IdentityPrioritized, []any{"id", "v", 7}},
	}

	for _, tc := range testCases {
		t.Run(tc.variant.String(), func(t *testing.T) {
			call, err := Shape(tc.variant, "id", "v", 7)
			require.NoError(t, err)
			assert.Equal(t, tc.args, call.Args())
			assert.Len(t, call.Args(), tc.variant.Arity())
		})
	}

	_, err := Shape(Variant(-1), "id", "v", 0)
	assert.True(t, errors.HasCode(err, errors.UnknownVariantErrorCode))
}

func TestCall_Apply(t *testing.T) {
	r := registry.NewIdentityPrioritizedServiceRegistry[string]()

	call, err := Shape(IdentityPrioritized, "a", "alpha", 3)
	require.NoError(t, err)
	require.NoError(t, call.Apply(r))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", got)

	plain, err := Shape(Plain, "", "beta", 0)
	require.NoError(t, err)
	err = plain.Apply(r)
	assert.True(t, errors.HasCode(err, errors.RegistryErrorCode))

	mismatch, err := Shape(IdentityPrioritized, "b", 12, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, mismatch.Apply(r), registry.ErrTypeMismatch)
}

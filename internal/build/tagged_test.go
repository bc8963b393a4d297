package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/binding"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/variant"
)

func tagged(name string, tag string, attributes map[string]string) *models.Component {
	c := &models.Component{Name: name, PackagePath: pkg, Autoconfigured: true}
	if tag != "" {
		c.Tags = []string{tag}
	}
	if attributes != nil {
		c.TagAttributes = map[string]map[string]string{tag: attributes}
	}
	return c
}

func TestTaggedPass_Run(t *testing.T) {
	manual := tagged("Manual", "payment", map[string]string{"code": "wire"})
	manual.Autoconfigured = false
	ignored := tagged("Ignored", "payment", map[string]string{"code": "cheque"})
	ignored.Tags = append(ignored.Tags, models.TagIgnoreMetadata)

	components := models.ComponentList{
		tagged("Card", "payment", map[string]string{"code": "card"}),
		tagged("Bare", "payment", nil),
		tagged("Other", "shipping", map[string]string{"code": "post"}),
		tagged("Untagged", "", nil),
		manual,
		ignored,
	}

	testCases := []struct {
		name     string
		config   TaggedConfig
		expected []string
	}{
		{
			name:     "identifier from the tag attribute",
			config:   TaggedConfig{RegistryID: "payments", Tag: "payment", Attribute: "code"},
			expected: []string{"card", "wire", "cheque"},
		},
		{
			name:     "component identity without an attribute",
			config:   TaggedConfig{RegistryID: "payments", Tag: "payment"},
			expected: []string{pkg + ".Card", pkg + ".Bare", pkg + ".Manual", pkg + ".Ignored"},
		},
		{
			name:   "no tagged components",
			config: TaggedConfig{RegistryID: "payments", Tag: "billing"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewTaggedPass(tc.config)
			require.NoError(t, err)
			script, err := p.Run(components)
			require.NoError(t, err)

			assert.Equal(t, variant.Identity, script.Variant)
			assert.Equal(t, tc.expected, ids(script))
			for _, r := range script.Registrations {
				assert.Equal(t, binding.Reference, r.Value.Kind)
			}
		})
	}
}

func TestTaggedPass_DuplicateIdentifier(t *testing.T) {
	p, err := NewTaggedPass(TaggedConfig{RegistryID: "payments", Tag: "payment", Attribute: "code"})
	require.NoError(t, err)

	script, err := p.Run(models.ComponentList{
		tagged("Card", "payment", map[string]string{"code": "card"}),
		tagged("Debit", "payment", map[string]string{"code": "card"}),
	})
	assert.Nil(t, script)
	base := requireCode(t, err, errors.DuplicateIdentifierErrorCode)
	assert.Equal(t, pkg+".Debit", base.ContextString(errors.ContextComponent))
	assert.Equal(t, pkg+".Card", base.ContextString("first_declaration"))
	assert.Equal(t, "payments", base.ContextString(errors.ContextRegistry))
}

func TestNewTaggedPass_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		config TaggedConfig
		field  string
	}{
		{"missing id", TaggedConfig{Tag: "payment"}, "registry.id"},
		{"missing tag", TaggedConfig{RegistryID: "payments"}, "registry.tag"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTaggedPass(tc.config)
			base := requireCode(t, err, errors.ConfigurationErrorCode)
			assert.Equal(t, tc.field, base.ContextString("field"))
		})
	}
}

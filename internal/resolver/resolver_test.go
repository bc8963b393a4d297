package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
)

var (
	identifiable = metadata.Kind{Name: "command", Capabilities: metadata.CapabilityService | metadata.CapabilityIdentifiable, Targets: metadata.TargetType | metadata.TargetMethod}
	plainKind    = metadata.Kind{Name: "listener", Capabilities: metadata.CapabilityService, Targets: metadata.TargetType | metadata.TargetMethod}
)

func classMeta(id string) *metadata.Instance {
	return &metadata.Instance{Kind: identifiable, Target: metadata.TargetType, ID: id}
}

func methodMeta(id string) *metadata.Instance {
	return &metadata.Instance{Kind: identifiable, Target: metadata.TargetMethod, ID: id}
}

func TestClassIdentifier(t *testing.T) {
	c := &models.Component{Name: "Mailer", PackagePath: "example.com/app/mail"}

	assert.Equal(t, "X", ClassIdentifier(c, classMeta("X")))
	assert.Equal(t, "example.com/app/mail.Mailer", ClassIdentifier(c, classMeta("")))
	assert.Equal(t, "example.com/app/mail.Mailer", ClassIdentifier(c, &metadata.Instance{Kind: plainKind, ID: "ignored"}))
}

func TestMethodIdentifier(t *testing.T) {
	component := &models.Component{Name: "Handlers", PackagePath: "example.com/app"}
	method := &models.Method{Name: "Create"}

	testCases := []struct {
		name       string
		rules      MethodRules
		class      *metadata.Instance
		method     *metadata.Instance
		expected   string
		expectCode errors.ErrorCode
	}{
		{
			name:     "compound form",
			class:    classMeta("cmd"),
			method:   methodMeta("create"),
			expected: "cmd:create",
		},
		{
			name:     "method identifier without base",
			class:    classMeta(""),
			method:   methodMeta("create"),
			expected: "create",
		},
		{
			name:     "non identifiable method uses base",
			class:    classMeta("svc-a"),
			method:   &metadata.Instance{Kind: plainKind, Target: metadata.TargetMethod},
			expected: "svc-a",
		},
		{
			name:     "identifiable method without id falls back to base",
			class:    classMeta("svc-a"),
			method:   methodMeta(""),
			expected: "svc-a",
		},
		{
			name:       "compound mode requires method id",
			rules:      MethodRules{Compound: true},
			class:      classMeta("svc-a"),
			method:     methodMeta(""),
			expectCode: errors.CompoundIdentifierErrorCode,
		},
		{
			name:     "compound mode with method id",
			rules:    MethodRules{Compound: true},
			class:    classMeta("cmd"),
			method:   methodMeta("create"),
			expected: "cmd:create",
		},
		{
			name:       "nothing to identify by",
			class:      classMeta(""),
			method:     &metadata.Instance{Kind: plainKind, Target: metadata.TargetMethod},
			expectCode: errors.IdentifierNotSpecifiedErrorCode,
		},
		{
			name:       "identifiable but empty everywhere",
			class:      &metadata.Instance{Kind: plainKind},
			method:     methodMeta(""),
			expectCode: errors.IdentifierNotSpecifiedErrorCode,
		},
		{
			name: "resolver takes precedence",
			rules: MethodRules{Compound: true, Resolver: Func(func(c Candidate) (string, error) {
				return "resolved:" + c.Method.Name, nil
			})},
			class:    classMeta("cmd"),
			method:   methodMeta(""),
			expected: "resolved:Create",
		},
		{
			name:       "empty resolver result",
			rules:      MethodRules{Resolver: Func(func(Candidate) (string, error) { return "", nil })},
			class:      classMeta("cmd"),
			method:     methodMeta("create"),
			expectCode: errors.IdentifierNotSpecifiedErrorCode,
		},
		{
			name:       "resolver error is wrapped",
			rules:      MethodRules{Resolver: Func(func(Candidate) (string, error) { return "", fmt.Errorf("boom") })},
			class:      classMeta("cmd"),
			method:     methodMeta("create"),
			expectCode: errors.IdentifierNotSpecifiedErrorCode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := MethodIdentifier(tc.rules, Candidate{
				Component:      component,
				Method:         method,
				MethodMetadata: tc.method,
				ClassMetadata:  tc.class,
			})
			if tc.expectCode != errors.UnknownErrorCode {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tc.expectCode), "got %v", err)
				assert.Empty(t, id)

				var re *errors.BaseError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "example.com/app.Handlers", re.ContextString(errors.ContextComponent))
				assert.Equal(t, "Create", re.ContextString(errors.ContextMethod))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestMethodIdentifier_ResolverCalledOnce(t *testing.T) {
	calls := 0
	rules := MethodRules{Resolver: Func(func(Candidate) (string, error) {
		calls++
		return "x", nil
	})}

	_, err := MethodIdentifier(rules, Candidate{Component: &models.Component{Name: "A"}, Method: &models.Method{Name: "Run"}, MethodMetadata: methodMeta("")})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func named(pkg, name string) models.TypeRef {
	return models.TypeRef{Name: name, Package: pkg, Kind: models.TypeNamed}
}

func TestFirstParameter(t *testing.T) {
	ctx := models.Parameter{Name: "ctx", Type: models.TypeRef{Name: "Context", Package: "context", Kind: models.TypeInterface}}
	cmd := models.Parameter{Name: "cmd", Type: named("example.com/app/users", "CreateUser")}
	ptrCmd := models.Parameter{Name: "cmd", Type: models.TypeRef{Name: "CreateUser", Package: "example.com/app/users", Kind: models.TypeNamed, Pointer: true}}
	event := models.Parameter{Name: "e", Type: models.TypeRef{Name: "Event", Package: "example.com/app/events", Kind: models.TypeInterface}}
	str := models.Parameter{Name: "s", Type: models.TypeRef{Name: "string", Kind: models.TypeBuiltin}}
	generic := models.Parameter{Name: "v", Type: models.TypeRef{Name: "T", Kind: models.TypeParameter}}
	opts := models.Parameter{Name: "opts", Type: models.TypeRef{Name: "[]Option", Kind: models.TypeComposite}, Variadic: true}

	testCases := []struct {
		name     string
		resolver FirstParameter
		params   []models.Parameter
		expected string
		reason   string
	}{
		{name: "named type", params: []models.Parameter{cmd}, expected: "example.com/app/users.CreateUser"},
		{name: "pointer to named type", params: []models.Parameter{ptrCmd}, expected: "example.com/app/users.CreateUser"},
		{name: "variadic is optional", params: []models.Parameter{cmd, opts}, expected: "example.com/app/users.CreateUser"},
		{name: "context skipped", resolver: FirstParameter{SkipContext: true}, params: []models.Parameter{ctx, cmd}, expected: "example.com/app/users.CreateUser"},
		{name: "context counted", params: []models.Parameter{ctx, cmd}, reason: "found 2"},
		{name: "no parameters", params: nil, reason: "found 0"},
		{name: "builtin", params: []models.Parameter{str}, reason: "builtin"},
		{name: "type parameter", params: []models.Parameter{generic}, reason: "type parameter"},
		{name: "interface rejected", params: []models.Parameter{event}, reason: "interface type"},
		{name: "interface allowed", resolver: FirstParameter{AllowInterface: true}, params: []models.Parameter{event}, expected: "example.com/app/events.Event"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := tc.resolver.Resolve(Candidate{
				Component:      &models.Component{Name: "Handlers", PackagePath: "example.com/app"},
				Method:         &models.Method{Name: "Handle", Parameters: tc.params},
				MethodMetadata: methodMeta(""),
			})
			if tc.reason != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.InvalidSignatureErrorCode))
				assert.Contains(t, err.Error(), tc.reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestLookup(t *testing.T) {
	r, err := Lookup("first_parameter", Options{SkipContext: true})
	require.NoError(t, err)
	assert.Equal(t, FirstParameter{SkipContext: true}, r)

	r, err = Lookup("first_parameter_type", Options{})
	require.NoError(t, err)
	assert.Equal(t, FirstParameter{AllowInterface: true}, r)

	_, err = Lookup("by_name", Options{})
	assert.True(t, errors.HasCode(err, errors.ConfigurationErrorCode))
	assert.Equal(t, []string{"first_parameter", "first_parameter_type"}, Names())
}

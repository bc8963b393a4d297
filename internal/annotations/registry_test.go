package annotations

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	testCases := []struct {
		name    string
		schema  AnnotationSchema
		wantErr string
	}{
		{
			name:   "valid schema",
			schema: AnnotationSchema{Name: "event", Parameters: map[string]ParameterSpec{"Id": {Type: StringType}}},
		},
		{
			name:    "invalid name",
			schema:  AnnotationSchema{Name: "bad-name"},
			wantErr: "invalid annotation kind name",
		},
		{
			name:    "mismatched default",
			schema:  AnnotationSchema{Name: "event", Parameters: map[string]ParameterSpec{"Priority": {Type: IntType, DefaultValue: "high"}}},
			wantErr: "must be int",
		},
		{
			name:    "undeclared positional",
			schema:  AnnotationSchema{Name: "event", Positional: "Id"},
			wantErr: "positional parameter Id is not declared",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tc.schema)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, reg.IsRegistered(tc.schema.Name))
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(AnnotationSchema{Name: "event"}))

	err := reg.Register(AnnotationSchema{Name: "event"})
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, RegistrationErrorCode, regErr.Code())
}

func TestRegistry_GetSchemaUnknown(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(AnnotationSchema{Name: "b"}))
	require.NoError(t, reg.Register(AnnotationSchema{Name: "a"}))

	_, err := reg.GetSchema("c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a, b")
	assert.Equal(t, []string{"a", "b"}, reg.ListKinds())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("kind_%d", i)
			assert.NoError(t, reg.Register(AnnotationSchema{Name: name}))
			assert.True(t, reg.IsRegistered(name))
			_ = reg.ListKinds()
		}(i)
	}
	wg.Wait()

	assert.Len(t, reg.ListKinds(), 20)
}

func TestDefaultRegistry_IsShared(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/utils"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/app\n\ngo 1.22\n"
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

const eventsSource = `package events

type Event interface {
	Name() string
}

type UserCreated struct{}

func (UserCreated) Name() string { return "user.created" }
`

const handlersSource = `package handlers

import (
	"context"

	"example.com/app/events"
)

type Runner interface {
	Run() error
}

// UserHandlers handles user commands.
//
//registrar::identity -Id=user
type UserHandlers struct{}

//registrar::handler create
func (h *UserHandlers) Create(ctx context.Context, e events.UserCreated) error { return nil }

func (h *UserHandlers) helper() {}

// Run is not annotated.
func (h *UserHandlers) Run() error { return nil }

//registrar::service
type plain struct{}

//registrar::service
type Generic[T any] struct{}

//registrar::ignore
//registrar::service
type Skipped struct{}

type Names []string
`

const laterSource = `package handlers

//registrar::handler -Id=delete -Priority=3
func (h *UserHandlers) Delete(ids ...string) {}
`

func TestScanner_Scan(t *testing.T) {
	files := map[string]string{
		"events/events.go":     eventsSource,
		"handlers/handlers.go": handlersSource,
		"handlers/later.go":    laterSource,
	}
	// stale generated output that no longer type checks and imports a
	// module the scanned module does not require
	files["handlers/"+models.GeneratedFileName] = utils.GeneratedMarker + "\n\npackage handlers\n\n" +
		"import \"example.com/missing/registry\"\n\nvar _ = registry.Removed\n\nvar _ = removedSymbol\n"
	dir := writeModule(t, files)

	s := New(metadata.NewDefaultKinds(), Options{
		Dir:        dir,
		Interfaces: []string{"example.com/app/handlers.Runner"},
	})
	result, err := s.Scan("./...")
	require.NoError(t, err)

	require.Len(t, result.Packages, 2)
	assert.Equal(t, "example.com/app/events", result.Packages[0].Path)
	assert.Equal(t, "example.com/app/handlers", result.Packages[1].Path)

	handlers := result.Package("example.com/app/handlers")
	require.NotNil(t, handlers)
	var names []string
	for _, c := range handlers.Components {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"UserHandlers", "Skipped"}, names)

	user := handlers.Components[0]
	assert.Equal(t, "example.com/app/handlers.UserHandlers", user.Identity())
	assert.True(t, user.Autoconfigured)
	assert.True(t, result.IsEligible(user))
	require.Len(t, user.Annotations, 1)
	assert.Equal(t, "identity", user.Annotations[0].Name)
	assert.Equal(t, "user", user.Annotations[0].GetString(metadata.ParamIdentifier))
	assert.True(t, user.Implements("example.com/app/handlers.Runner"))
	assert.True(t, strings.HasSuffix(user.Location.File, "handlers.go"))

	var methods []string
	for _, m := range user.Methods {
		methods = append(methods, m.Name)
	}
	assert.Equal(t, []string{"Create", "Run", "Delete"}, methods)

	create := user.Method("Create")
	assert.True(t, create.PointerReceiver)
	require.Len(t, create.Parameters, 2)
	assert.True(t, create.Parameters[0].Type.IsContext())
	assert.Equal(t, "example.com/app/events.UserCreated", create.Parameters[1].Type.Identity())
	assert.Equal(t, models.TypeNamed, create.Parameters[1].Type.Kind)

	del := user.Method("Delete")
	require.Len(t, del.Parameters, 1)
	assert.True(t, del.Parameters[0].Variadic)
	assert.Equal(t, models.TypeBuiltin, del.Parameters[0].Type.Kind)
	assert.Equal(t, 3, del.Annotations[0].GetInt(metadata.ParamPriority))

	skipped := handlers.Components[1]
	assert.True(t, skipped.HasTag(models.TagIgnoreMetadata))
	require.Len(t, skipped.Annotations, 1)
	assert.Equal(t, "service", skipped.Annotations[0].Name)

	assert.Len(t, result.Components(), 3, "events.UserCreated is a component without annotations")
}

func TestScanner_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		files      map[string]string
		opts       Options
		assertions func(t *testing.T, err error)
	}{
		{
			name: "unknown kind",
			files: map[string]string{"a/a.go": `package a

//registrar::query
type A struct{}
`},
			assertions: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "query")
			},
		},
		{
			name: "annotated unexported method",
			files: map[string]string{"a/a.go": `package a

//registrar::service
type A struct{}

//registrar::handler run
func (A) run() {}
`},
			assertions: func(t *testing.T, err error) {
				assert.True(t, errors.HasCode(err, errors.ScanErrorCode))
				assert.ErrorContains(t, err, "must be exported")
			},
		},
		{
			name: "compile errors",
			files: map[string]string{"a/a.go": `package a

type A struct{ missing Undefined }
`},
			assertions: func(t *testing.T, err error) {
				assert.True(t, errors.HasCode(err, errors.ScanErrorCode))
			},
		},
		{
			name:  "missing interface",
			files: map[string]string{"a/a.go": "package a\n\ntype A struct{}\n"},
			opts:  Options{Interfaces: []string{"example.com/app/b.Runner"}},
			assertions: func(t *testing.T, err error) {
				assert.True(t, errors.HasCode(err, errors.ConfigurationErrorCode))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.opts
			opts.Dir = writeModule(t, tc.files)
			_, err := New(metadata.NewDefaultKinds(), opts).Scan()
			require.Error(t, err)
			tc.assertions(t, err)
		})
	}
}

func TestScanner_Exclude(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"a/a.go":            "package a\n\n//registrar::service\ntype A struct{}\n",
		"internal/gen/g.go": "package gen\n\n//registrar::service\ntype G struct{}\n",
	})

	s := New(metadata.NewDefaultKinds(), Options{
		Dir: dir,
		Exclude: func(pkgDir string) bool {
			return strings.Contains(filepath.ToSlash(pkgDir), "/internal/")
		},
	})
	result, err := s.Scan("./...")
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	assert.Equal(t, "example.com/app/a", result.Packages[0].Path)
}

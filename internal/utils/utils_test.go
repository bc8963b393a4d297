package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/models"
)

func captured(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level).WithOutput(&out, &errOut)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	testCases := []struct {
		name       string
		level      DiagnosticLevel
		assertions func(t *testing.T, out, errOut string)
	}{
		{
			name:  "silent",
			level: DiagnosticSilent,
			assertions: func(t *testing.T, out, errOut string) {
				assert.Empty(t, out)
				assert.Empty(t, errOut)
			},
		},
		{
			name:  "quiet shows errors only",
			level: DiagnosticError,
			assertions: func(t *testing.T, out, errOut string) {
				assert.Empty(t, out)
				assert.Equal(t, "[ERROR] broken\n", errOut)
			},
		},
		{
			name:  "info",
			level: DiagnosticInfo,
			assertions: func(t *testing.T, out, errOut string) {
				assert.Equal(t, "[WARN] careful\n[INFO] hello\n[SUCCESS] done\n", out)
				assert.Equal(t, "[ERROR] broken\n", errOut)
			},
		},
		{
			name:  "verbose includes pass progress",
			level: DiagnosticVerbose,
			assertions: func(t *testing.T, out, errOut string) {
				assert.Contains(t, out, "[VERBOSE] detail\n")
				assert.Contains(t, out, "[VERBOSE] pass commands\n")
				assert.NotContains(t, out, "[DEBUG]")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, out, errOut := captured(tc.level)
			d.Error("broken")
			d.Warn("careful")
			d.Info("hello")
			d.Success("done")
			d.Verbose("detail")
			d.Debugf("pass %s", "commands")
			d.Debug("internals")
			tc.assertions(t, out.String(), errOut.String())
		})
	}
}

func TestDiagnosticSystem_Progress(t *testing.T) {
	d, out, errOut := captured(DiagnosticInfo)

	d.StartProgress("Scanning packages")
	d.EndProgress(true, "3 packages")
	d.StartProgress("Writing files")
	d.EndProgress(false, "")
	d.EndProgress(true, "no task")

	assert.Equal(t, "Scanning packages...\n✓ Scanning packages: 3 packages\nWriting files...\n", out.String())
	assert.Equal(t, "✗ Writing files\n", errOut.String())
}

func TestDiagnosticSystem_ProgressTiming(t *testing.T) {
	d, out, _ := captured(DiagnosticVerbose)
	d.showTime = true
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return clock }

	d.StartProgress("Building")
	clock = clock.Add(1500 * time.Millisecond)
	d.EndProgress(true, "")

	assert.Contains(t, out.String(), "✓ Building (1.5s)\n")
}

func TestDiagnosticSystem_Formatting(t *testing.T) {
	d, out, _ := captured(DiagnosticInfo)

	d.Header("generating registries")
	d.Section("Registries")
	d.Indent()
	d.List("commands: %d registrations", 2)
	d.Unindent()
	d.Unindent()
	d.List("listeners")
	d.Summary("Summary", map[string]interface{}{"registries": 2, "files": 1, "run": "abc"})

	assert.Equal(t, "Registrar: generating registries\n"+
		"\nRegistries\n"+
		"  - commands: 2 registrations\n"+
		"- listeners\n"+
		"\nSummary\n"+
		"   files: 1\n"+
		"   registries: 2\n"+
		"   run: abc\n\n", out.String())
}

func TestParseDiagnosticLevel(t *testing.T) {
	assert.Equal(t, DiagnosticInfo, ParseDiagnosticLevel(false, false))
	assert.Equal(t, DiagnosticVerbose, ParseDiagnosticLevel(false, true))
	assert.Equal(t, DiagnosticError, ParseDiagnosticLevel(true, true))
}

func TestShouldUseColors(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "1")
	assert.False(t, shouldUseColors())

	t.Setenv("NO_COLOR", "")
	assert.True(t, shouldUseColors())

	t.Setenv("FORCE_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, shouldUseColors())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGoModParser(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/app\n\ngo 1.25\n")
	nested := filepath.Join(root, "internal", "handlers")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	p := NewGoModParser()

	goMod, err := p.FindGoModFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "go.mod"), goMod)

	name, err := p.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", name)

	dir, module, err := p.ModuleRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, dir)
	assert.Equal(t, "example.com/app", module)
}

func TestGoModParser_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad", "go.mod"), "modul example.com/app\n")
	writeFile(t, filepath.Join(root, "empty", "go.mod"), "go 1.25\n")

	p := NewGoModParser()

	_, err := p.ParseModuleName(filepath.Join(root, "bad", "go.sum"))
	assert.True(t, errors.HasCode(err, errors.FileSystemErrorCode))

	_, err = p.ParseModuleName(filepath.Join(root, "missing", "go.mod"))
	assert.True(t, errors.HasCode(err, errors.FileSystemErrorCode))

	_, err = p.ParseModuleName(filepath.Join(root, "bad", "go.mod"))
	assert.True(t, errors.HasCode(err, errors.ConfigurationErrorCode))

	_, err = p.ParseModuleName(filepath.Join(root, "empty", "go.mod"))
	assert.True(t, errors.HasCode(err, errors.ConfigurationErrorCode))

	p.readFile = func(string) ([]byte, error) { return nil, os.ErrNotExist }
	_, err = p.FindGoModFile(root)
	assert.True(t, errors.HasCode(err, errors.FileSystemErrorCode))
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	root := t.TempDir()
	generated := GeneratedMarker + "\n\npackage wiring\n"
	writeFile(t, filepath.Join(root, "wiring", models.GeneratedFileName), generated)
	writeFile(t, filepath.Join(root, "a", "b", models.GeneratedFileName), generated)
	writeFile(t, filepath.Join(root, "handwritten", models.GeneratedFileName), "package handwritten\n")
	writeFile(t, filepath.Join(root, "vendor", "x", models.GeneratedFileName), generated)
	writeFile(t, filepath.Join(root, "wiring", "wiring.go"), "package wiring\n")

	fp := NewFileProcessor()
	removed, err := fp.CleanDirectories([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "b", models.GeneratedFileName),
		filepath.Join(root, "wiring", models.GeneratedFileName),
	}, removed)

	assert.FileExists(t, filepath.Join(root, "handwritten", models.GeneratedFileName))
	assert.FileExists(t, filepath.Join(root, "vendor", "x", models.GeneratedFileName))
	assert.FileExists(t, filepath.Join(root, "wiring", "wiring.go"))

	_, err = fp.CleanDirectories([]string{filepath.Join(root, "missing")})
	assert.True(t, errors.HasCode(err, errors.FileSystemErrorCode))
}

func TestFileProcessor_WriteGeneratedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "internal", "wiring", models.GeneratedFileName)
	content := GeneratedMarker + "\n\npackage wiring\n"

	fp := NewFileProcessor()

	changed, err := fp.WriteGeneratedFile(path, content)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = fp.WriteGeneratedFile(path, content)
	require.NoError(t, err)
	assert.False(t, changed, "identical content is not rewritten")

	changed, err = fp.WriteGeneratedFile(path, content+"\nvar _ = 1\n")
	require.NoError(t, err)
	assert.True(t, changed)

	handwritten := filepath.Join(root, "manual.go")
	writeFile(t, handwritten, "package manual\n")
	_, err = fp.WriteGeneratedFile(handwritten, content)
	assert.True(t, errors.HasCode(err, errors.FileSystemErrorCode))
	data, err := os.ReadFile(handwritten)
	require.NoError(t, err)
	assert.Equal(t, "package manual\n", string(data))
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Clean(t *testing.T) {
	tempDir := t.TempDir()
	generated := "// Code generated by registrar. DO NOT EDIT.\n\npackage test\n"

	dirs := []string{"controllers", "services", "nested/deep/wiring"}
	var autogenFiles []string
	for _, dir := range dirs {
		dirPath := filepath.Join(tempDir, dir)
		require.NoError(t, os.MkdirAll(dirPath, 0755))
		autogenFile := filepath.Join(dirPath, "autogen_registry.go")
		require.NoError(t, os.WriteFile(autogenFile, []byte(generated), 0644))
		autogenFiles = append(autogenFiles, autogenFile)
	}

	// files that should not be deleted
	regular := filepath.Join(tempDir, "controllers", "user_controller.go")
	require.NoError(t, os.WriteFile(regular, []byte("package test\n"), 0644))
	handWritten := filepath.Join(tempDir, "manual", "autogen_registry.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(handWritten), 0755))
	require.NoError(t, os.WriteFile(handWritten, []byte("package manual\n"), 0644))

	t.Run("single directory", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 0, run([]string{"-clean", filepath.Join(tempDir, "services")}, &stdout, &stderr))
		assert.NoFileExists(t, autogenFiles[1])
		assert.FileExists(t, autogenFiles[0])
		assert.Contains(t, stdout.String(), "1 files removed")
	})

	t.Run("recursive pattern", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 0, run([]string{"-clean", filepath.Join(tempDir, "...")}, &stdout, &stderr))
		for _, file := range autogenFiles {
			assert.NoFileExists(t, file)
		}
		assert.FileExists(t, regular)
		assert.FileExists(t, handWritten)
	})

	t.Run("missing directory", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run([]string{"-clean", filepath.Join(tempDir, "nope")}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "Clean operation failed")
	})
}

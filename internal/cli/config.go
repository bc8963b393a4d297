package cli

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories are the package patterns to scan, such as ./...
	Directories []string

	// ConfigPath is the registrar.yaml to load
	ConfigPath string

	// ModuleName is the custom module path for imports
	// If empty, will be determined from go.mod file
	ModuleName string

	// DryRun reports the registrations without writing files
	DryRun bool
}

// patterns returns the package patterns to scan
func (c Config) patterns() []string {
	if len(c.Directories) == 0 {
		return []string{"./..."}
	}
	return c.Directories
}

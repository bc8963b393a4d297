// Package config loads the registrar.yaml file that declares metadata kinds
// and the registries to generate, plus the REGISTRAR_* environment defaults.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/toyz/registrar/internal/build"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/resolver"
	"github.com/toyz/registrar/pkg/registry"
)

// FileName is the configuration file looked up by default
const FileName = "registrar.yaml"

// Env holds defaults read from REGISTRAR_* variables. Flags override them.
type Env struct {
	Config  string `envconfig:"CONFIG" default:"registrar.yaml"`
	Module  string `envconfig:"MODULE"`
	Verbose bool   `envconfig:"VERBOSE"`
	Quiet   bool   `envconfig:"QUIET"`
}

// EnvFromEnv reads the REGISTRAR_* environment
func EnvFromEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("REGISTRAR", &env); err != nil {
		return Env{}, errors.Wrap(errors.ConfigurationErrorCode, "invalid REGISTRAR environment", err)
	}
	return env, nil
}

// Kind declares a custom metadata kind
type Kind struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Capabilities []string `yaml:"capabilities"`
	Targets      []string `yaml:"targets"`
}

// Registry declares one registry and where its constructor is generated
type Registry struct {
	ID             string   `yaml:"id"`
	Implementation string   `yaml:"implementation"`
	Traits         []string `yaml:"traits"`

	ClassKind  string `yaml:"class_kind"`
	MethodKind string `yaml:"method_kind"`
	Interface  string `yaml:"interface"`

	CompoundIdentifier bool   `yaml:"compound_identifier"`
	Resolver           string `yaml:"resolver"`
	AllowInterface     bool   `yaml:"allow_interface"`
	SkipContext        bool   `yaml:"skip_context"`

	ValueType   string `yaml:"value_type"`
	Output      string `yaml:"output"`  // directory relative to the config file
	Package     string `yaml:"package"` // package name, defaults to the last element of Output
	Constructor string `yaml:"constructor"`
}

// Config is a parsed registrar.yaml
type Config struct {
	Kinds      []Kind     `yaml:"kinds"`
	Registries []Registry `yaml:"registries"`
	Exclude    []string   `yaml:"exclude"`

	// Dir is the directory of the loaded file. Outputs and excludes are
	// relative to it.
	Dir string `yaml:"-"`
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to read config %s", path).
			WithContext("path", path).
			WithSuggestion(fmt.Sprintf("create %s or pass -config", FileName))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "failed to resolve config directory", err)
	}
	cfg.Dir = abs
	return cfg, nil
}

// Parse decodes and validates configuration data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ConfigurationErrorCode, "failed to parse config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every kind and registry and reports all problems at once
func (c *Config) Validate() error {
	errs := errors.NewMultipleErrors()

	kinds := make(map[string]bool)
	for i, k := range c.Kinds {
		field := fmt.Sprintf("kinds[%d]", i)
		if k.Name == "" {
			errs.Add(errors.NewConfigurationError(field+".name", "kind name is required"))
			continue
		}
		if kinds[k.Name] {
			errs.Add(errors.NewConfigurationError(field+".name", fmt.Sprintf("kind %q is declared twice", k.Name)))
		}
		kinds[k.Name] = true
		if _, err := k.Metadata(); err != nil {
			errs.Add(errors.NewConfigurationError(field, err.Error()))
		}
	}

	ids := make(map[string]bool)
	for i, r := range c.Registries {
		field := fmt.Sprintf("registries[%d]", i)
		if r.ID == "" {
			errs.Add(errors.NewConfigurationError(field+".id", "registry id is required"))
			continue
		}
		field = fmt.Sprintf("registries[%s]", r.ID)
		if ids[r.ID] {
			errs.Add(errors.NewConfigurationError(field+".id", "registry id is declared twice"))
		}
		ids[r.ID] = true

		if r.ClassKind == "" {
			errs.Add(errors.NewConfigurationError(field+".class_kind", "class kind is required"))
		}
		if r.Output == "" {
			errs.Add(errors.NewConfigurationError(field+".output", "output directory is required").
				WithSuggestion("set output to the package directory the constructor is generated into"))
		}
		if r.Implementation != "" && len(r.Traits) > 0 {
			errs.Add(errors.NewConfigurationError(field, "set either implementation or traits, not both"))
		}
		if _, err := r.Trait(); err != nil {
			errs.Add(errors.NewConfigurationError(field+".traits", err.Error()))
		}
		if r.Resolver != "" {
			if r.MethodKind == "" {
				errs.Add(errors.NewConfigurationError(field+".resolver", "identifier resolvers apply to method registries only"))
			}
			if _, err := resolver.Lookup(r.Resolver, resolver.Options{}); err != nil {
				errs.Add(errors.NewConfigurationError(field+".resolver", fmt.Sprintf("unknown resolver %q, available: %v", r.Resolver, resolver.Names())))
			}
		}
	}

	for i, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs.Add(errors.NewConfigurationError(fmt.Sprintf("exclude[%d]", i), fmt.Sprintf("invalid glob %q", pattern)))
		}
	}
	return errs.ErrOrNil()
}

// Metadata converts the declaration into a metadata kind
func (k Kind) Metadata() (metadata.Kind, error) {
	caps, err := metadata.ParseCapabilities(k.Capabilities)
	if err != nil {
		return metadata.Kind{}, err
	}
	if !caps.Has(metadata.CapabilityService) {
		caps |= metadata.CapabilityService
	}
	targets, err := metadata.ParseTargets(k.Targets)
	if err != nil {
		return metadata.Kind{}, err
	}
	return metadata.Kind{
		Name:         k.Name,
		Description:  k.Description,
		Capabilities: caps,
		Targets:      targets,
	}, nil
}

// Trait parses the declared traits. Service is implied.
func (r Registry) Trait() (registry.Trait, error) {
	if len(r.Traits) == 0 {
		return 0, nil
	}
	traits := registry.TraitService
	for _, name := range r.Traits {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "service":
		case "identity", "identifiable":
			traits |= registry.TraitIdentity
		case "priority", "prioritized":
			traits |= registry.TraitPriority
		default:
			return 0, fmt.Errorf("unknown trait %q, expected service, identity or priority", name)
		}
	}
	return traits, nil
}

// BuildConfig converts the declaration into the configuration of a build pass
func (r Registry) BuildConfig() (build.Config, error) {
	traits, err := r.Trait()
	if err != nil {
		return build.Config{}, errors.NewConfigurationError("registries["+r.ID+"].traits", err.Error())
	}
	if r.Implementation == "" && traits == 0 {
		traits = registry.TraitService
	}

	cfg := build.Config{
		RegistryID:     r.ID,
		Implementation: r.Implementation,
		Traits:         traits,
		ClassKind:      r.ClassKind,
		MethodKind:     r.MethodKind,
		Interface:      r.Interface,
		Compound:       r.CompoundIdentifier,
	}
	if r.Resolver != "" {
		res, err := resolver.Lookup(r.Resolver, resolver.Options{
			AllowInterface: r.AllowInterface,
			SkipContext:    r.SkipContext,
		})
		if err != nil {
			return build.Config{}, err
		}
		cfg.Resolver = res
	}
	return cfg, nil
}

// PackageName returns the package name of the generated file
func (r Registry) PackageName() string {
	if r.Package != "" {
		return r.Package
	}
	name := path.Base(filepath.ToSlash(filepath.Clean(r.Output)))
	name = strings.NewReplacer("-", "", ".", "").Replace(name)
	if name == "" || name == "/" {
		return "registries"
	}
	return strings.ToLower(name)
}

// OutputDir returns the absolute output directory of r
func (c *Config) OutputDir(r Registry) string {
	if filepath.IsAbs(r.Output) {
		return filepath.Clean(r.Output)
	}
	return filepath.Join(c.Dir, r.Output)
}

// RegisterKinds declares the configured kinds in kinds
func (c *Config) RegisterKinds(kinds *metadata.Kinds) error {
	for _, k := range c.Kinds {
		kind, err := k.Metadata()
		if err != nil {
			return errors.NewConfigurationError("kinds["+k.Name+"]", err.Error())
		}
		if err := kinds.Register(kind); err != nil {
			return errors.Wrapf(errors.ConfigurationErrorCode, err, "failed to declare kind %s", k.Name).
				WithContext(errors.ContextKind, k.Name)
		}
	}
	return nil
}

// Excluded reports whether the package directory dir matches an exclude
// glob. Patterns match the slash-separated path relative to Dir.
func (c *Config) Excluded(dir string) bool {
	if len(c.Exclude) == 0 {
		return false
	}
	rel := dir
	if c.Dir != "" && filepath.IsAbs(dir) {
		r, err := filepath.Rel(c.Dir, dir)
		if err != nil {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

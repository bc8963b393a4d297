package cli

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/registrar/internal/build"
	"github.com/toyz/registrar/internal/config"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/generator"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/scanner"
	"github.com/toyz/registrar/internal/utils"
)

// Generator coordinates the CLI generation process
type Generator struct {
	moduleResolver *ModuleResolver
	codeGenerator  *generator.Generator
	fileProcessor  *utils.FileProcessor
	diagnostics    *utils.DiagnosticSystem
	newRunID       func() string
	summary        GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		moduleResolver: NewModuleResolver(),
		codeGenerator:  generator.NewGenerator(),
		fileProcessor:  utils.NewFileProcessor(),
		diagnostics:    diagnostics,
		newRunID:       func() string { return uuid.NewString() },
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// output is one generated file and the registries rendered into it
type output struct {
	dir        string
	pkgName    string
	registries []config.Registry
	scripts    map[string]*build.Script
}

// Run executes the complete generation process. Every registry is built
// before anything is written, so a configuration error in one registry leaves
// all files untouched.
func (g *Generator) Run(cfg Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{RunID: g.newRunID()}

	g.diagnostics.Verbose("Starting registry generation at %s", startTime.Format("15:04:05"))
	g.diagnostics.Debug("Scanning patterns: %v", cfg.patterns())

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.FileName
	}
	g.diagnostics.StartProgress("Loading " + configPath)
	file, err := config.Load(configPath)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d registries", len(file.Registries)))

	g.diagnostics.StartProgress("Resolving module")
	module, err := g.moduleResolver.ResolveModule(file.Dir, cfg.ModuleName)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, module.Path)

	kinds := metadata.NewDefaultKinds()
	if err := file.RegisterKinds(kinds); err != nil {
		return err
	}

	g.diagnostics.StartProgress("Scanning packages")
	result, err := NewDirectoryScanner(kinds).ScanDirectories(file, cfg.patterns())
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.summary.PackagesProcessed = len(result.Packages)
	g.summary.ComponentsFound = len(result.Components())
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d packages, %d components", g.summary.PackagesProcessed, g.summary.ComponentsFound))

	g.diagnostics.StartProgress("Building registries")
	outputs, err := g.build(file, kinds, result)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return err
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d registrations", g.summary.Registrations))

	files, err := g.render(module, outputs)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		g.printDryRun(outputs, files)
	} else if err := g.write(files); err != nil {
		return err
	}

	g.warnStale(module, files)

	g.diagnostics.Summary("Generation summary", map[string]interface{}{
		"run":           g.summary.RunID,
		"packages":      g.summary.PackagesProcessed,
		"components":    g.summary.ComponentsFound,
		"registries":    g.summary.RegistriesBuilt,
		"registrations": g.summary.Registrations,
		"duration":      time.Since(startTime).Round(time.Millisecond),
	})
	return nil
}

// build runs one pass per registry and groups the scripts by output
// directory, in configuration order
func (g *Generator) build(file *config.Config, kinds *metadata.Kinds, result *scanner.Result) ([]*output, error) {
	errs := errors.NewMultipleErrors()
	reader := metadata.NewAnnotationReader(kinds)

	var outputs []*output
	byDir := make(map[string]*output)
	for _, reg := range file.Registries {
		script, err := g.runPass(reg, reader, result)
		if err != nil {
			errs.Add(asRegistrarError(err))
			continue
		}

		dir := file.OutputDir(reg)
		out, ok := byDir[dir]
		if !ok {
			out = &output{dir: dir, pkgName: reg.PackageName(), scripts: make(map[string]*build.Script)}
			byDir[dir] = out
			outputs = append(outputs, out)
		} else if out.pkgName != reg.PackageName() {
			errs.Add(errors.NewConfigurationError("registries["+reg.ID+"].package",
				fmt.Sprintf("package %s conflicts with package %s already generated into %s", reg.PackageName(), out.pkgName, reg.Output)).
				WithContext(errors.ContextRegistry, reg.ID))
			continue
		}
		out.registries = append(out.registries, reg)
		out.scripts[reg.ID] = script

		g.summary.RegistriesBuilt++
		g.summary.Registrations += script.Len()
		g.diagnostics.Verbose("registry %s: %d registrations (%s)", reg.ID, script.Len(), script.Variant)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (g *Generator) runPass(reg config.Registry, reader *metadata.AnnotationReader, source models.Source) (*build.Script, error) {
	buildConfig, err := reg.BuildConfig()
	if err != nil {
		return nil, err
	}
	pass, err := build.NewPass(buildConfig, reader, build.WithLogger(g.diagnostics))
	if err != nil {
		return nil, err
	}
	return pass.Run(source)
}

func (g *Generator) render(module Module, outputs []*output) ([]*models.GeneratedFile, error) {
	files := make([]*models.GeneratedFile, 0, len(outputs))
	for _, out := range outputs {
		pkgPath, err := g.moduleResolver.BuildPackagePath(module, out.dir)
		if err != nil {
			return nil, err
		}

		targets := make([]generator.Target, 0, len(out.registries))
		for _, reg := range out.registries {
			targets = append(targets, generator.Target{
				Script:      out.scripts[reg.ID],
				Constructor: reg.Constructor,
				ValueType:   reg.ValueType,
				Interface:   reg.Interface,
				Method:      reg.MethodKind != "",
			})
		}

		file, err := g.codeGenerator.Generate(generator.Package{Name: out.pkgName, Path: pkgPath, Dir: out.dir}, targets)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (g *Generator) write(files []*models.GeneratedFile) error {
	g.diagnostics.StartProgress("Writing registry files")
	for _, file := range files {
		changed, err := g.fileProcessor.WriteGeneratedFile(file.FilePath, file.Content)
		if err != nil {
			g.diagnostics.EndProgress(false, "")
			return err
		}
		if changed {
			g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
			g.diagnostics.Verbose("wrote %s", file.FilePath)
		} else {
			g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, file.FilePath)
			g.diagnostics.Verbose("%s is up to date", file.FilePath)
		}
	}
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d written, %d unchanged", len(g.summary.GeneratedFiles), len(g.summary.UnchangedFiles)))
	return nil
}

func (g *Generator) printDryRun(outputs []*output, files []*models.GeneratedFile) {
	for i, out := range outputs {
		g.diagnostics.Section(files[i].FilePath)
		for _, reg := range out.registries {
			script := out.scripts[reg.ID]
			g.diagnostics.List("%s (%s, %d registrations)", reg.ID, script.Variant.Implementation(), script.Len())
			g.diagnostics.Indent()
			for _, r := range script.Registrations {
				g.diagnostics.List("%s", r)
			}
			g.diagnostics.Unindent()
		}
	}
}

// warnStale reports generated files the configuration no longer produces
func (g *Generator) warnStale(module Module, files []*models.GeneratedFile) {
	existing, err := g.fileProcessor.GeneratedFiles(module.Root)
	if err != nil {
		g.diagnostics.Debug("skipping stale file check: %v", err)
		return
	}
	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[filepath.Clean(f.FilePath)] = true
	}
	for _, path := range existing {
		if !current[filepath.Clean(path)] {
			g.diagnostics.Warn("%s is no longer produced by any registry, remove it with -clean", path)
		}
	}
}

func asRegistrarError(err error) errors.RegistrarError {
	var re errors.RegistrarError
	if stderrors.As(err, &re) {
		return re
	}
	return errors.Wrap(errors.UnknownErrorCode, "registry build failed", err)
}

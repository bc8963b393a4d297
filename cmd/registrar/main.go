package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/toyz/registrar/internal/cli"
	"github.com/toyz/registrar/internal/config"
	"github.com/toyz/registrar/internal/models"
	"github.com/toyz/registrar/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code
func run(args []string, stdout, stderr io.Writer) int {
	env, err := config.EnvFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	flags := flag.NewFlagSet("registrar", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		configFlag  = flags.String("config", env.Config, "Path to the registry configuration (env REGISTRAR_CONFIG)")
		moduleFlag  = flags.String("module", env.Module, "Custom module name for imports (defaults to go.mod module, env REGISTRAR_MODULE)")
		verboseFlag = flags.Bool("verbose", env.Verbose, "Enable verbose output and detailed error reporting (env REGISTRAR_VERBOSE)")
		quietFlag   = flags.Bool("quiet", env.Quiet, "Only show errors and final results (env REGISTRAR_QUIET)")
		cleanFlag   = flags.Bool("clean", false, "Delete all generated "+models.GeneratedFileName+" files from the specified directories")
		dryRunFlag  = flags.Bool("dry-run", false, "List the registrations of every registry without writing files")
		helpFlag    = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: registrar [options] [package-patterns...]\n\n")
		fmt.Fprintf(stderr, "Registrar Code Generator\n")
		fmt.Fprintf(stderr, "Scans Go packages for registrar:: annotations and generates registry constructors.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  package-patterns   Packages to scan, resolved next to the configuration file\n")
		fmt.Fprintf(stderr, "                     Defaults to ./...\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  registrar                                   # Generate every configured registry\n")
		fmt.Fprintf(stderr, "  registrar ./internal/...                    # Scan internal packages only\n")
		fmt.Fprintf(stderr, "  registrar -config tools/registrar.yaml      # Use another configuration\n")
		fmt.Fprintf(stderr, "  registrar -dry-run                          # Show registrations without writing\n")
		fmt.Fprintf(stderr, "  registrar -clean ./...                      # Delete generated registry files\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *helpFlag {
		flags.Usage()
		return 0
	}
	patterns := flags.Args()

	diagnostics := utils.NewDiagnosticSystem(utils.ParseDiagnosticLevel(*quietFlag, *verboseFlag))
	if stdout != os.Stdout || stderr != os.Stderr {
		diagnostics.WithOutput(stdout, stderr)
	}
	diagnostics.Header("registry generator")

	if *cleanFlag {
		diagnostics.StartProgress("Cleaning generated files")
		removed, err := cli.NewCleaner().CleanGeneratedFiles(patterns)
		if err != nil {
			diagnostics.EndProgress(false, "")
			diagnostics.Error("Clean operation failed: %v", err)
			return 1
		}
		diagnostics.EndProgress(true, fmt.Sprintf("%d files removed", len(removed)))
		for _, file := range removed {
			diagnostics.Verbose("removed %s", file)
		}
		return 0
	}

	reporter := cli.NewDiagnosticReporter(*verboseFlag)
	if stdout != os.Stdout || stderr != os.Stderr {
		reporter.WithOutput(stdout, stderr)
	}
	generator := cli.NewGenerator(diagnostics)
	err = generator.Run(cli.Config{
		Directories: patterns,
		ConfigPath:  *configFlag,
		ModuleName:  *moduleFlag,
		DryRun:      *dryRunFlag,
	})
	if err != nil {
		reporter.ReportError(err)
		return 1
	}

	if !*quietFlag && !*dryRunFlag {
		reporter.ReportSuccess(generator.GetSummary())
	}
	return 0
}

package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/registrar/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
	colors  bool
}

// NewDiagnosticReporter creates a new diagnostic reporter
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
		colors:  !color.NoColor,
	}
}

// WithOutput redirects the reporter and turns colors off
func (r *DiagnosticReporter) WithOutput(out, errOut io.Writer) *DiagnosticReporter {
	r.out = out
	r.errOut = errOut
	r.colors = false
	return r
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	fmt.Fprintf(r.errOut, "%s %s\n", r.paint("!", color.FgYellow, color.Bold), message)
	for _, s := range suggestions {
		fmt.Fprintf(r.errOut, "  %s\n", s)
	}
}

// ReportError prints err with its location, context and suggestions. A
// collection of errors is reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.errOut, "\nERROR: Registry Generation Failed\n")
	fmt.Fprintf(r.errOut, "=================================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.errOut, "%d problems found\n\n", multi.Count())
		for i, e := range multi.Errors {
			fmt.Fprintf(r.errOut, "[%d/%d] ", i+1, multi.Count())
			r.reportRegistrarError(e)
		}
		r.printGeneralHelp()
		return
	}

	var re errors.RegistrarError
	if stderrors.As(err, &re) {
		r.reportRegistrarError(re)
	} else {
		fmt.Fprintf(r.errOut, "Message: %s\n\n", err.Error())
	}
	r.printGeneralHelp()
}

func (r *DiagnosticReporter) reportRegistrarError(err errors.RegistrarError) {
	r.printErrorHeader(err.ErrorCode())

	message := err.Error()
	if base, ok := err.(*errors.BaseError); ok {
		message = base.Message
		if base.Cause != nil {
			message = fmt.Sprintf("%s: %v", message, base.Cause)
		}
	}
	fmt.Fprintf(r.errOut, "Message: %s\n\n", message)

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.errOut, "Location: %s\n\n", loc)
	}
	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	r.printAdditionalHelp(err.ErrorCode())

	if r.verbose {
		r.printErrorChain(err)
	}
}

// printErrorHeader prints a formatted error header based on error type
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	title := code.String()
	if code.IsConfiguration() {
		title = "Configuration: " + title
	}
	fmt.Fprintf(r.errOut, "Type: %s\n", r.paint(title, color.FgRed, color.Bold))
	fmt.Fprintf(r.errOut, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// contextOrder lists the keys printed before the rest
var contextOrder = []string{
	errors.ContextRegistry,
	errors.ContextComponent,
	errors.ContextMethod,
	errors.ContextKind,
	errors.ContextStage,
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.errOut, "Context:\n")

	printed := make(map[string]bool)
	for _, key := range contextOrder {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.errOut, "   %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.errOut, "   %s: %v\n", formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.errOut, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.errOut, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.errOut, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.errOut, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.errOut, "\n")
}

// printAdditionalHelp prints additional help based on error type
func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.DuplicateMetadataErrorCode:
		fmt.Fprintf(r.errOut, "Metadata Rules:\n")
		fmt.Fprintf(r.errOut, "  - A registry reads at most one instance of its kind per type\n")
		fmt.Fprintf(r.errOut, "  - Methods of method registries carry at most one instance as well\n\n")

	case errors.IdentifierNotSpecifiedErrorCode, errors.CompoundIdentifierErrorCode:
		fmt.Fprintf(r.errOut, "Identifier Help:\n")
		fmt.Fprintf(r.errOut, "  - Keyed registries need an identifier on every registration\n")
		fmt.Fprintf(r.errOut, "  - Pass it positionally, for example //registrar::command user:create\n")
		fmt.Fprintf(r.errOut, "  - Or configure a resolver on the registry\n\n")

	case errors.DuplicateIdentifierErrorCode:
		fmt.Fprintf(r.errOut, "Identifier Help:\n")
		fmt.Fprintf(r.errOut, "  - Identifiers are unique within one keyed registry\n")
		fmt.Fprintf(r.errOut, "  - Both declarations are listed in the context above\n\n")

	case errors.InvalidSignatureErrorCode:
		fmt.Fprintf(r.errOut, "Signature Help:\n")
		fmt.Fprintf(r.errOut, "  - The first_parameter resolver reads the first non-context parameter\n")
		fmt.Fprintf(r.errOut, "  - That parameter must be a named type unless allow_interface is set\n\n")

	case errors.ConfigurationErrorCode:
		fmt.Fprintf(r.errOut, "Configuration Help:\n")
		fmt.Fprintf(r.errOut, "  - Check %s next to your go.mod\n", "registrar.yaml")
		fmt.Fprintf(r.errOut, "  - Every registry needs an id, a class_kind and an output directory\n\n")
	}
}

func (r *DiagnosticReporter) printGeneralHelp() {
	fmt.Fprintf(r.errOut, "For more help:\n")
	if !r.verbose {
		fmt.Fprintf(r.errOut, "  - Run with -verbose for more detailed output\n")
	}
	fmt.Fprintf(r.errOut, "  - Run with -dry-run to list registrations without writing files\n\n")
}

// printErrorChain prints the wrapped causes in verbose mode
func (r *DiagnosticReporter) printErrorChain(err error) {
	cause := stderrors.Unwrap(err)
	if cause == nil {
		return
	}
	fmt.Fprintf(r.errOut, "Error Chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(r.errOut, "  %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
	fmt.Fprintf(r.errOut, "\n")
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\n%s\n", r.paint("Registry Generation Completed Successfully!", color.FgGreen))
	fmt.Fprintf(r.out, "===========================================\n\n")

	if summary.PackagesProcessed > 0 {
		fmt.Fprintf(r.out, "Processed %d packages\n", summary.PackagesProcessed)
	}
	if summary.ComponentsFound > 0 {
		fmt.Fprintf(r.out, "Found %d components\n", summary.ComponentsFound)
	}
	if summary.RegistriesBuilt > 0 {
		fmt.Fprintf(r.out, "Built %d registries with %d registrations\n", summary.RegistriesBuilt, summary.Registrations)
	}

	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if len(summary.UnchangedFiles) > 0 {
		fmt.Fprintf(r.out, "\nUp to date:\n")
		for _, file := range summary.UnchangedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if summary.RunID != "" {
		fmt.Fprintf(r.out, "\nRun: %s\n", summary.RunID)
	}
}

func (r *DiagnosticReporter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if r.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	RunID             string
	PackagesProcessed int
	ComponentsFound   int
	RegistriesBuilt   int
	Registrations     int
	GeneratedFiles    []string
	UnchangedFiles    []string
}

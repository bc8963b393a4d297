package errors

import (
	"fmt"
	"strings"
)

// Context keys attached to configuration errors
const (
	ContextComponent  = "component"
	ContextMethod     = "method"
	ContextKind       = "kind"
	ContextRegistry   = "registry"
	ContextStage      = "stage"
	ContextCapability = "capability"
)

// Declaration identifies the offending declaration of a configuration error.
type Declaration struct {
	Component string
	Method    string
	Kind      string
	Loc       SourceLocation
}

func (d Declaration) apply(err *BaseError) *BaseError {
	return err.
		WithLocation(d.Loc).
		WithContext(ContextComponent, d.Component).
		WithContext(ContextMethod, d.Method).
		WithContext(ContextKind, d.Kind)
}

func (d Declaration) target() string {
	if d.Method == "" {
		return d.Component
	}
	return d.Component + "." + d.Method
}

// NewDuplicateMetadataError reports more than one class-level declaration of a kind
func NewDuplicateMetadataError(d Declaration, count int) *BaseError {
	err := Newf(DuplicateMetadataErrorCode,
		"annotation //registrar::%s should be declared once only on %s (found %d)",
		d.Kind, d.target(), count)
	return d.apply(err).
		WithSuggestion(fmt.Sprintf("Remove the extra //registrar::%s annotations from %s", d.Kind, d.Component))
}

// NewWrongTargetError reports metadata found on a target its kind does not allow
func NewWrongTargetError(d Declaration, expected, actual string) *BaseError {
	err := Newf(WrongTargetErrorCode,
		"annotation //registrar::%s on %s targets a %s, expected a %s",
		d.Kind, d.target(), actual, expected)
	return d.apply(err).
		WithContext("expected_target", expected).
		WithContext("actual_target", actual).
		WithSuggestion(fmt.Sprintf("Move the annotation to a %s declaration", expected))
}

// NewMissingCapabilityError reports metadata that cannot satisfy the bound registry variant
func NewMissingCapabilityError(d Declaration, capability, variant string) *BaseError {
	err := Newf(MissingCapabilityErrorCode,
		"annotation //registrar::%s on %s must implement capability %q required by the %s registry",
		d.Kind, d.target(), capability, variant)
	return d.apply(err).
		WithContext(ContextCapability, capability).
		WithContext("variant", variant).
		WithSuggestion(fmt.Sprintf("Declare kind %q with the %s capability or bind it to a different registry", d.Kind, capability))
}

// NewIdentifierNotSpecifiedError reports a method registration that resolved no identifier
func NewIdentifierNotSpecifiedError(d Declaration, registry string) *BaseError {
	err := Newf(IdentifierNotSpecifiedErrorCode,
		"method %s must declare an identifier or registry %q must have an identifier resolver",
		d.target(), registry)
	return d.apply(err).
		WithContext(ContextRegistry, registry).
		WithSuggestions(
			"Add -Id=<identifier> to the class or method annotation",
			fmt.Sprintf("Configure a resolver for registry %q", registry),
		)
}

// NewCompoundIdentifierError reports compound mode without a method identifier
func NewCompoundIdentifierError(d Declaration) *BaseError {
	err := Newf(CompoundIdentifierErrorCode,
		"annotation //registrar::%s on %s should have an identifier, because the registry has no identifier resolver and compound identifiers are enabled",
		d.Kind, d.target())
	return d.apply(err).
		WithSuggestions(
			"Add -Id=<identifier> to the method annotation",
			"Set compound_identifier: false on the registry",
		)
}

// NewInvalidSignatureError reports a handler that the parameter-type resolver cannot use
func NewInvalidSignatureError(d Declaration, reason string) *BaseError {
	err := Newf(InvalidSignatureErrorCode, "invalid handler signature for %s: %s", d.target(), reason)
	return d.apply(err).
		WithContext("reason", reason).
		WithSuggestion("Handlers must accept exactly one parameter of a named, non-builtin type")
}

// NewDuplicateIdentifierError reports two registrations of a keyed registry
// resolving the same identifier
func NewDuplicateIdentifierError(d Declaration, id, first string) *BaseError {
	err := Newf(DuplicateIdentifierErrorCode,
		"identifier %q of %s is already used by %s",
		id, d.target(), first)
	return d.apply(err).
		WithContext("identifier", id).
		WithContext("first_declaration", first).
		WithSuggestion(fmt.Sprintf("Give %s or %s a different identifier", d.target(), first))
}

// NewUnknownVariantError reports a registry implementation that matches no catalog variant
func NewUnknownVariantError(registry, implementation string, available []string) *BaseError {
	err := Newf(UnknownVariantErrorCode,
		"registry %q implementation %q does not implement any available registry type: [%s]",
		registry, implementation, strings.Join(available, ", "))
	return err.
		WithContext(ContextRegistry, registry).
		WithContext("implementation", implementation).
		WithSuggestion("Use one of the listed implementations or declare traits explicitly")
}

// NewConfigurationError reports an invalid registrar configuration value
func NewConfigurationError(field, message string) *BaseError {
	return Newf(ConfigurationErrorCode, "invalid configuration %s: %s", field, message).
		WithContext("field", field)
}

package annotations

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// AnnotationRegistry defines the interface for managing annotation schemas
type AnnotationRegistry interface {
	// Register a new annotation kind with its schema
	Register(schema AnnotationSchema) error

	// GetSchema retrieves the schema for an annotation kind
	GetSchema(name string) (AnnotationSchema, error)

	// ListKinds returns all registered annotation kinds, sorted by name
	ListKinds() []string

	// IsRegistered checks if an annotation kind is registered
	IsRegistered(name string) bool
}

var kindNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// registry is the concrete implementation of AnnotationRegistry
type registry struct {
	mu      sync.RWMutex                // Protects concurrent access
	schemas map[string]AnnotationSchema // Schema storage
}

// NewRegistry creates a new annotation registry
func NewRegistry() AnnotationRegistry {
	return &registry{
		schemas: make(map[string]AnnotationSchema),
	}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide annotation registry
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds a new annotation kind with its schema to the registry
func (r *registry) Register(schema AnnotationSchema) error {
	if !kindNamePattern.MatchString(schema.Name) {
		return &RegistrationError{
			Msg:  fmt.Sprintf("invalid annotation kind name '%s'", schema.Name),
			Hint: "Kind names must be identifiers such as command or event_listener",
		}
	}

	// Validate schema parameters before taking the lock
	if err := validateSchema(schema); err != nil {
		return &RegistrationError{Msg: fmt.Sprintf("invalid schema for %s: %v", schema.Name, err)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Name]; exists {
		return &RegistrationError{
			Msg:  fmt.Sprintf("annotation kind %s is already registered", schema.Name),
			Hint: "Pick a different kind name",
		}
	}

	r.schemas[schema.Name] = schema
	return nil
}

// GetSchema retrieves the schema for an annotation kind
func (r *registry) GetSchema(name string) (AnnotationSchema, error) {
	r.mu.RLock()
	schema, exists := r.schemas[name]
	r.mu.RUnlock()

	if !exists {
		return AnnotationSchema{}, newUnknownKindError(name, SourceLocation{}, r.ListKinds())
	}
	return schema, nil
}

func (r *registry) ListKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)
	return kinds
}

func (r *registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[name]
	return exists
}

// validateSchema performs basic validation on a schema
func validateSchema(schema AnnotationSchema) error {
	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}

		if paramSpec.Type < StringType || paramSpec.Type > IntType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}

		if paramSpec.DefaultValue != nil {
			if err := validateDefaultValue(paramName, paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return err
			}
		}
	}

	if schema.Positional != "" {
		if _, ok := schema.Parameters[schema.Positional]; !ok {
			return fmt.Errorf("positional parameter %s is not declared", schema.Positional)
		}
	}

	return nil
}

// validateDefaultValue checks if the default value matches the parameter type
func validateDefaultValue(paramName string, paramType ParameterType, defaultValue interface{}) error {
	switch paramType {
	case StringType:
		if _, ok := defaultValue.(string); !ok {
			return fmt.Errorf("default value for string parameter %s must be string, got %T", paramName, defaultValue)
		}
	case BoolType:
		if _, ok := defaultValue.(bool); !ok {
			return fmt.Errorf("default value for bool parameter %s must be bool, got %T", paramName, defaultValue)
		}
	case IntType:
		if _, ok := defaultValue.(int); !ok {
			return fmt.Errorf("default value for int parameter %s must be int, got %T", paramName, defaultValue)
		}
	}
	return nil
}

package annotations

import (
	"fmt"
)

// flagValue marks a parameter written as a bare -Flag with no value.
type flagValue struct{}

// validate types the raw parameters of an annotation, applies schema
// defaults and runs the schema validators. Every problem is collected.
func validate(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	var errs []error

	for _, paramName := range sortedKeys(annotation.Parameters) {
		raw := annotation.Parameters[paramName]
		spec, exists := schema.Parameters[paramName]
		if !exists {
			errs = append(errs, &ValidationError{
				Parameter: paramName,
				Expected:  "known parameter",
				Actual:    fmt.Sprintf("unknown parameter '%s'", paramName),
				Loc:       annotation.Location,
				Hint:      unknownParameterHint(paramName, schema),
			})
			delete(annotation.Parameters, paramName)
			continue
		}

		value, err := convertParameter(raw, spec)
		if err != nil {
			errs = append(errs, &ValidationError{
				Parameter: paramName,
				Expected:  spec.Type.String(),
				Actual:    describeRaw(raw),
				Loc:       annotation.Location,
				Hint:      err.Error(),
			})
			delete(annotation.Parameters, paramName)
			continue
		}

		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				errs = append(errs, &ValidationError{
					Parameter: paramName,
					Expected:  "valid value",
					Actual:    fmt.Sprintf("%v", value),
					Loc:       annotation.Location,
					Hint:      err.Error(),
				})
			}
		}
		annotation.Parameters[paramName] = value
	}

	for _, paramName := range schema.ParameterNames() {
		spec := schema.Parameters[paramName]
		if _, exists := annotation.Parameters[paramName]; exists {
			continue
		}
		if spec.Required && !annotation.Explicit[paramName] {
			errs = append(errs, &ValidationError{
				Parameter: paramName,
				Expected:  fmt.Sprintf("required parameter of type %s", spec.Type),
				Actual:    "missing",
				Loc:       annotation.Location,
				Hint:      fmt.Sprintf("Add -%s=<value> to the annotation", paramName),
			})
			continue
		}
		if spec.DefaultValue != nil {
			annotation.Parameters[paramName] = spec.DefaultValue
		}
	}

	if len(errs) == 0 {
		for _, customValidator := range schema.Validators {
			if err := customValidator(annotation); err != nil {
				errs = append(errs, &SchemaError{
					Msg:  err.Error(),
					Loc:  annotation.Location,
					Hint: "Check annotation parameters and their combinations",
				})
			}
		}
	}

	if len(errs) > 0 {
		return &MultipleValidationErrors{Errors: errs}
	}
	return nil
}

// convertParameter turns a raw lexer value into the schema type. A bare flag
// is true for booleans and the default value for anything that has one.
func convertParameter(raw interface{}, spec ParameterSpec) (interface{}, error) {
	if _, isFlag := raw.(flagValue); isFlag {
		if spec.Type == BoolType {
			return true, nil
		}
		if spec.DefaultValue != nil {
			return spec.DefaultValue, nil
		}
		return nil, fmt.Errorf("parameter of type %s requires a value", spec.Type)
	}

	switch spec.Type {
	case StringType:
		return ConvertToString(raw)
	case BoolType:
		return ConvertToBool(raw)
	case IntType:
		return ConvertToInt(raw)
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", spec.Type)
	}
}

func describeRaw(raw interface{}) string {
	if _, isFlag := raw.(flagValue); isFlag {
		return "flag without value"
	}
	return fmt.Sprintf("'%v'", raw)
}

func unknownParameterHint(paramName string, schema AnnotationSchema) string {
	names := schema.ParameterNames()
	if len(names) == 0 {
		return fmt.Sprintf("Remove -%s, //registrar::%s takes no parameters", paramName, schema.Name)
	}
	return fmt.Sprintf("Remove -%s or use one of: %v", paramName, names)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

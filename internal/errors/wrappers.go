package errors

import "fmt"

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapGenerationError wraps code generation errors for a target file
func WrapGenerationError(target string, cause error) *BaseError {
	return Wrapf(GenerationErrorCode, cause, "failed to generate %s", target).
		WithContext("target", target)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	return Wrapf(TemplateErrorCode, cause, "failed to %s template '%s'", operation, templateName).
		WithContext("template", templateName)
}

// WrapScanError wraps package loading errors
func WrapScanError(pattern string, cause error) *BaseError {
	return Wrapf(ScanErrorCode, cause, "failed to scan %s", pattern).
		WithContext("pattern", pattern)
}

package templates

import (
	"strconv"
	"strings"
	"unicode"
)

// TemplateUtils provides common utilities for template generation
type TemplateUtils struct{}

// NewTemplateUtils creates a new template utilities instance
func NewTemplateUtils() *TemplateUtils {
	return &TemplateUtils{}
}

// ToCamelCase converts a string to camelCase. A leading run of upper case
// letters is lowered as a whole, so "HTTPHandler" becomes "httpHandler".
func (tu *TemplateUtils) ToCamelCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n > 1 && n < len(runes):
		n-- // the last upper case rune starts the next word
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// QuoteString renders s as a Go string literal
func (tu *TemplateUtils) QuoteString(s string) string {
	return strconv.Quote(s)
}

// ExtractTypeName extracts the type name from a potentially qualified type
func (tu *TemplateUtils) ExtractTypeName(qualifiedType string) string {
	if i := strings.LastIndex(qualifiedType, "."); i >= 0 {
		return qualifiedType[i+1:]
	}
	return qualifiedType
}

// BuildConstructorName creates the constructor name of a registry
func (tu *TemplateUtils) BuildConstructorName(registryID string) string {
	var b strings.Builder
	b.WriteString("New")
	upper := true
	for _, r := range registryID {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	b.WriteString("Registry")
	return b.String()
}

// VarNames hands out distinct local variable names
type VarNames struct {
	taken func(string) bool
	used  map[string]bool
}

// NewVarNames creates a name set. taken reports names claimed elsewhere,
// such as import names, and may be nil.
func NewVarNames(taken func(string) bool, reserved ...string) *VarNames {
	v := &VarNames{taken: taken, used: make(map[string]bool)}
	for _, name := range reserved {
		v.used[name] = true
	}
	return v
}

// Next returns camelCase(base), suffixed with a number when already in use
func (v *VarNames) Next(base string) string {
	name := DefaultTemplateUtils.ToCamelCase(base)
	if name == "" {
		name = "v"
	}
	candidate := name
	for i := 2; v.unavailable(candidate); i++ {
		candidate = name + strconv.Itoa(i)
	}
	v.used[candidate] = true
	return candidate
}

func (v *VarNames) unavailable(name string) bool {
	return v.used[name] || isKeyword(name) || (v.taken != nil && v.taken(name))
}

// DefaultTemplateUtils provides a global instance for convenience
var DefaultTemplateUtils = NewTemplateUtils()

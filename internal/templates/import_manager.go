package templates

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ImportManager assigns file-local names to imported packages and renders
// the import block of a generated file
type ImportManager struct {
	current string            // import path of the package being generated
	names   map[string]string // path -> name used in the file
	paths   map[string]string // name -> path
}

// NewImportManager creates an import manager for a file in the package at
// current. References into that package are left unqualified.
func NewImportManager(current string) *ImportManager {
	return &ImportManager{
		current: current,
		names:   make(map[string]string),
		paths:   make(map[string]string),
	}
}

// Add imports path and returns the name to qualify its identifiers with. The
// package name is used when free, otherwise a numbered suffix is appended.
// An empty name is derived from the path. The current package returns "".
func (im *ImportManager) Add(importPath, name string) string {
	if importPath == "" || importPath == im.current {
		return ""
	}
	if existing, ok := im.names[importPath]; ok {
		return existing
	}

	base := sanitize(name)
	if base == "" {
		base = AssumedName(importPath)
	}
	candidate := base
	for i := 2; im.taken(candidate); i++ {
		candidate = base + strconv.Itoa(i)
	}

	im.names[importPath] = candidate
	im.paths[candidate] = importPath
	return candidate
}

// Reserve claims a name, such as a local variable, so no import takes it
func (im *ImportManager) Reserve(name string) {
	if _, ok := im.paths[name]; !ok {
		im.paths[name] = ""
	}
}

// Taken reports whether name is used by an import or was reserved
func (im *ImportManager) Taken(name string) bool {
	return im.taken(name)
}

func (im *ImportManager) taken(name string) bool {
	_, ok := im.paths[name]
	return ok || isKeyword(name)
}

// Qualify returns typeName qualified for use in the generated file
func (im *ImportManager) Qualify(importPath, pkgName, typeName string) string {
	if q := im.Add(importPath, pkgName); q != "" {
		return q + "." + typeName
	}
	return typeName
}

// Paths returns the imported paths, sorted
func (im *ImportManager) Paths() []string {
	paths := make([]string, 0, len(im.names))
	for p := range im.names {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// GenerateImports renders the import section. Standard library packages
// come first, separated from the rest by a blank line. An alias is written
// only when the file-local name differs from the assumed package name.
func (im *ImportManager) GenerateImports() string {
	var std, other []string
	for _, p := range im.Paths() {
		spec := strconv.Quote(p)
		if name := im.names[p]; name != AssumedName(p) {
			spec = name + " " + spec
		}
		if isStandard(p) {
			std = append(std, spec)
		} else {
			other = append(other, spec)
		}
	}

	switch total := len(std) + len(other); total {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("import %s\n", append(std, other...)[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, spec := range std {
		result.WriteString("\t" + spec + "\n")
	}
	if len(std) > 0 && len(other) > 0 {
		result.WriteString("\n")
	}
	for _, spec := range other {
		result.WriteString("\t" + spec + "\n")
	}
	result.WriteString(")\n")
	return result.String()
}

// AssumedName guesses the package name of an import path the way goimports
// does: the last element, skipping a major version suffix, without a "go-"
// prefix and cut at the first character that cannot appear in an identifier.
func AssumedName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		if dir := path.Dir(importPath); dir != "." && dir != "/" {
			base = path.Base(dir)
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	if s := sanitize(base); s != "" {
		return s
	}
	return "pkg"
}

func notIdentifier(r rune) bool {
	return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || (b.Len() > 0 && unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isStandard(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

func isKeyword(name string) bool {
	return keywords[name]
}

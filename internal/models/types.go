package models

// TypeKind classifies a parameter type for handler signature checks
type TypeKind int

const (
	TypeNamed     TypeKind = iota // named, non-interface type declared in a package
	TypeInterface                 // named interface type
	TypeBuiltin                   // predeclared type such as string, int, error or any
	TypeParameter                 // generic type parameter
	TypeComposite                 // unnamed slice, map, func, chan, struct or array type
)

// String returns the string representation of the type kind
func (k TypeKind) String() string {
	switch k {
	case TypeNamed:
		return "named"
	case TypeInterface:
		return "interface"
	case TypeBuiltin:
		return "builtin"
	case TypeParameter:
		return "type parameter"
	case TypeComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// TypeRef describes a parameter type
type TypeRef struct {
	Name    string   // type name, or the type expression for unnamed types
	Package string   // import path, empty for builtin and unnamed types
	Kind    TypeKind // classification
	Pointer bool     // a pointer to the named type
}

// Identity returns the fully-qualified type identity used as a registry key
func (t TypeRef) Identity() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// String renders the type the way it would appear in source
func (t TypeRef) String() string {
	if t.Pointer {
		return "*" + t.Identity()
	}
	return t.Identity()
}

// IsContext reports whether the type is context.Context
func (t TypeRef) IsContext() bool {
	return t.Package == "context" && t.Name == "Context" && !t.Pointer
}

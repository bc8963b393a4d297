package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// annotationNode is the grammar root of a registrar annotation:
//
//	//registrar::<kind> [<positional>] [-Name[=<value>]]...
type annotationNode struct {
	Kind       string     `parser:"Comment Namespace @Ident"`
	Positional *valueNode `parser:"@@?"`
	Args       []*argNode `parser:"@@*"`
}

// argNode is a named parameter or a bare flag
type argNode struct {
	Name  string     `parser:"Dash @Ident"`
	Value *valueNode `parser:"( Equals @@ )?"`
}

// valueNode is a parameter value
type valueNode struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Word   *string `parser:"| @Ident"`
}

func (v *valueNode) raw() string {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Word != nil:
		return *v.Word
	default:
		return ""
	}
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Namespace", Pattern: `registrar::`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.:/@\\$-]*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser parses registrar annotations and validates them against the
// schemas of an AnnotationRegistry.
type Parser struct {
	grammar  *participle.Parser[annotationNode]
	registry AnnotationRegistry
}

// NewParser creates a parser bound to registry. A nil registry uses DefaultRegistry.
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}

	grammar := participle.MustBuild[annotationNode](
		participle.Lexer(annotationLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	return &Parser{
		grammar:  grammar,
		registry: registry,
	}
}

// Registry returns the schema registry the parser validates against
func (p *Parser) Registry() AnnotationRegistry {
	return p.registry
}

// IsAnnotation reports whether a comment line is a registrar annotation.
// Comments that are not annotations are documentation and are ignored.
func IsAnnotation(comment string) bool {
	content := strings.TrimSpace(comment)
	if !strings.HasPrefix(content, "//") {
		return false
	}
	content = strings.TrimSpace(strings.TrimPrefix(content, "//"))
	return strings.HasPrefix(content, Prefix)
}

// ParseAnnotation parses a single annotation comment and validates it
// against the registered schema of its kind.
func (p *Parser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	source := strings.TrimSpace(comment)
	if !IsAnnotation(source) {
		return nil, &SyntaxError{
			Msg:  fmt.Sprintf("'%s' is not a registrar annotation", source),
			Loc:  location,
			Hint: fmt.Sprintf("Annotations start with //%s", Prefix),
		}
	}

	node, err := p.grammar.ParseString(location.File, source)
	if err != nil {
		return nil, newSyntaxError(err, source, location)
	}

	schema, err := p.registry.GetSchema(node.Kind)
	if err != nil {
		return nil, newUnknownKindError(node.Kind, location, p.registry.ListKinds())
	}

	parsed := &ParsedAnnotation{
		Name:       node.Kind,
		Parameters: make(map[string]interface{}),
		Explicit:   make(map[string]bool),
		Location:   location,
		Raw:        source,
	}

	if node.Positional != nil {
		if schema.Positional == "" {
			return nil, &ValidationError{
				Parameter: "(positional)",
				Expected:  "named parameters only",
				Actual:    fmt.Sprintf("'%s'", node.Positional.raw()),
				Loc:       location,
				Hint:      fmt.Sprintf("//registrar::%s does not take a positional value", node.Kind),
			}
		}
		parsed.Parameters[schema.Positional] = node.Positional.raw()
		parsed.Explicit[schema.Positional] = true
	}

	for _, arg := range node.Args {
		if parsed.Explicit[arg.Name] {
			return nil, &ValidationError{
				Parameter: arg.Name,
				Expected:  "a single value",
				Actual:    "duplicate parameter",
				Loc:       location,
				Hint:      fmt.Sprintf("Specify -%s only once", arg.Name),
			}
		}
		if arg.Value == nil {
			parsed.Parameters[arg.Name] = flagValue{}
		} else {
			parsed.Parameters[arg.Name] = arg.Value.raw()
		}
		parsed.Explicit[arg.Name] = true
	}

	if err := validate(parsed, schema); err != nil {
		return nil, err
	}
	return parsed, nil
}

// ParseComments parses every annotation in a comment group, skipping
// ordinary documentation lines. Lines are numbered from location.Line.
func (p *Parser) ParseComments(comments []string, location SourceLocation) ([]*ParsedAnnotation, error) {
	var result []*ParsedAnnotation
	for i, comment := range comments {
		if !IsAnnotation(comment) {
			continue
		}
		loc := location
		if loc.Line > 0 {
			loc.Line += i
		}
		parsed, err := p.ParseAnnotation(comment, loc)
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

func newSyntaxError(err error, source string, location SourceLocation) *SyntaxError {
	loc := location
	msg := err.Error()
	if perr, ok := err.(participle.Error); ok {
		msg = perr.Message()
		if loc.Column == 0 {
			loc.Column = perr.Position().Column
		} else {
			loc.Column += perr.Position().Column - 1
		}
	}

	hint := "Use the form //registrar::<kind> [value] -Name=value -Flag"
	if strings.Contains(source, "= ") || strings.HasSuffix(source, "=") {
		hint = "Parameter values must follow '=' without spaces"
	}
	return &SyntaxError{Msg: msg, Loc: loc, Hint: hint}
}

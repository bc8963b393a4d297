package scanner

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/registrar/internal/annotations"
	"github.com/toyz/registrar/internal/errors"
	"github.com/toyz/registrar/internal/metadata"
	"github.com/toyz/registrar/internal/models"
)

// scanPackage extracts the components of one package. Types are collected
// first so methods declared in any file attach to their receiver.
func (s *Scanner) scanPackage(pkg *packages.Package, ifaces []namedInterface) ([]*models.Component, error) {
	files := sortedFiles(pkg)

	var components []*models.Component
	byName := make(map[string]*models.Component)

	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}

				c, err := s.component(pkg, ts, doc, ifaces)
				if err != nil {
					return nil, err
				}
				if c != nil {
					components = append(components, c)
					byName[c.Name] = c
				}
			}
		}
	}

	for _, file := range files {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
				continue
			}
			name, pointer := receiver(fd.Recv.List[0].Type)
			c, ok := byName[name]
			if !ok {
				continue
			}

			m, err := s.method(pkg, fd, pointer)
			if err != nil {
				return nil, err
			}
			if m != nil {
				c.Methods = append(c.Methods, m)
			}
		}
	}

	return components, nil
}

// component returns the component declared by ts, or nil when ts is not an
// exported, non-generic struct type
func (s *Scanner) component(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup, ifaces []namedInterface) (*models.Component, error) {
	if !ts.Name.IsExported() || ts.TypeParams != nil || ts.Assign.IsValid() {
		return nil, nil
	}
	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return nil, nil
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, nil
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return nil, nil
	}

	parsed, err := s.parse(pkg.Fset, doc)
	if err != nil {
		return nil, err
	}

	c := &models.Component{
		Name:           ts.Name.Name,
		PackagePath:    pkg.PkgPath,
		PackageName:    pkg.Name,
		Autoconfigured: true,
		Location:       location(pkg.Fset, ts.Name.Pos()),
	}

	var ignored bool
	if c.Annotations, ignored = metadata.SplitIgnore(parsed); ignored {
		c.Tags = append(c.Tags, models.TagIgnoreMetadata)
	}

	for _, ni := range ifaces {
		if types.Implements(named, ni.iface) || types.Implements(types.NewPointer(named), ni.iface) {
			c.Interfaces = append(c.Interfaces, ni.identity)
		}
	}
	return c, nil
}

func (s *Scanner) method(pkg *packages.Package, fd *ast.FuncDecl, pointer bool) (*models.Method, error) {
	parsed, err := s.parse(pkg.Fset, fd.Doc)
	if err != nil {
		return nil, err
	}

	if !fd.Name.IsExported() {
		if len(parsed) > 0 {
			return nil, errors.Newf(errors.ScanErrorCode, "annotated method %s must be exported", fd.Name.Name).
				WithLocation(errors.SourceLocation(location(pkg.Fset, fd.Name.Pos()))).
				WithSuggestion("Registries bind methods from generated code, rename the method to start with an upper case letter")
		}
		return nil, nil
	}

	fn, ok := pkg.TypesInfo.Defs[fd.Name].(*types.Func)
	if !ok {
		return nil, nil
	}
	sig := fn.Type().(*types.Signature)

	m := &models.Method{
		Name:            fd.Name.Name,
		PointerReceiver: pointer,
		Annotations:     parsed,
		Location:        location(pkg.Fset, fd.Name.Pos()),
	}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		t := p.Type()
		variadic := sig.Variadic() && i == params.Len()-1
		if variadic {
			t = t.(*types.Slice).Elem()
		}
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("p%d", i)
		}
		m.Parameters = append(m.Parameters, models.Parameter{Name: name, Type: typeRef(t), Variadic: variadic})
	}
	return m, nil
}

// parse reads the registrar annotations of a doc comment group
func (s *Scanner) parse(fset *token.FileSet, doc *ast.CommentGroup) ([]*annotations.ParsedAnnotation, error) {
	if doc == nil {
		return nil, nil
	}
	var result []*annotations.ParsedAnnotation
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		parsed, err := s.kinds.Parser().ParseAnnotation(comment.Text, location(fset, comment.Pos()))
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

func typeRef(t types.Type) models.TypeRef {
	ref := models.TypeRef{}
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		if _, named := types.Unalias(p.Elem()).(*types.Named); named {
			ref.Pointer = true
			t = types.Unalias(p.Elem())
		}
	}

	switch tt := t.(type) {
	case *types.TypeParam:
		ref.Name = tt.Obj().Name()
		ref.Kind = models.TypeParameter
	case *types.Basic:
		ref.Name = tt.Name()
		ref.Kind = models.TypeBuiltin
	case *types.Named:
		obj := tt.Obj()
		ref.Name = obj.Name()
		switch {
		case obj.Pkg() == nil:
			ref.Kind = models.TypeBuiltin
		case types.IsInterface(tt):
			ref.Package = obj.Pkg().Path()
			ref.Kind = models.TypeInterface
		default:
			ref.Package = obj.Pkg().Path()
			ref.Kind = models.TypeNamed
		}
	case *types.Interface:
		ref.Name = types.TypeString(tt, nil)
		ref.Kind = models.TypeComposite
		if tt.Empty() {
			ref.Name = "any"
			ref.Kind = models.TypeBuiltin
		}
	default:
		ref.Name = types.TypeString(t, nil)
		ref.Kind = models.TypeComposite
	}
	return ref
}

// receiver returns the base type name of a method receiver
func receiver(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name, pointer
	case *ast.IndexExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", pointer
}

func sortedFiles(pkg *packages.Package) []*ast.File {
	files := append([]*ast.File(nil), pkg.Syntax...)
	sort.SliceStable(files, func(i, j int) bool {
		return pkg.Fset.Position(files[i].Pos()).Filename < pkg.Fset.Position(files[j].Pos()).Filename
	})
	return files
}

func location(fset *token.FileSet, pos token.Pos) annotations.SourceLocation {
	p := fset.Position(pos)
	return annotations.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

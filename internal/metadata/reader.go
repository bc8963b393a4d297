package metadata

import (
	"fmt"

	"github.com/toyz/registrar/internal/annotations"
	"github.com/toyz/registrar/internal/models"
)

// Reader reads declared metadata of a kind from components and methods
type Reader interface {
	// ClassMetadata returns every type-level instance of kind, zero or more
	ClassMetadata(c *models.Component, kind string) ([]*Instance, error)

	// MethodMetadata returns the first method-level instance of kind, or nil
	MethodMetadata(m *models.Method, kind string) (*Instance, error)

	// MethodsDeclaring lists the methods carrying kind, in declaration order
	MethodsDeclaring(c *models.Component, kind string) ([]*models.Method, error)
}

// AnnotationReader implements Reader over the parsed annotations attached
// to components and methods
type AnnotationReader struct {
	kinds *Kinds
}

// NewAnnotationReader creates a reader resolving kinds against kinds
func NewAnnotationReader(kinds *Kinds) *AnnotationReader {
	return &AnnotationReader{kinds: kinds}
}

// HasKind reports whether kind is registered
func (r *AnnotationReader) HasKind(kind string) bool {
	_, ok := r.kinds.Lookup(kind)
	return ok
}

func (r *AnnotationReader) ClassMetadata(c *models.Component, kind string) ([]*Instance, error) {
	k, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}

	var result []*Instance
	for _, ann := range c.Annotations {
		if ann.Name == kind {
			result = append(result, NewInstance(k, TargetType, ann))
		}
	}
	return result, nil
}

func (r *AnnotationReader) MethodMetadata(m *models.Method, kind string) (*Instance, error) {
	k, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}

	if ann := firstOf(m.Annotations, kind); ann != nil {
		return NewInstance(k, TargetMethod, ann), nil
	}
	return nil, nil
}

func (r *AnnotationReader) MethodsDeclaring(c *models.Component, kind string) ([]*models.Method, error) {
	if _, err := r.lookup(kind); err != nil {
		return nil, err
	}

	var result []*models.Method
	for _, m := range c.Methods {
		if firstOf(m.Annotations, kind) != nil {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *AnnotationReader) lookup(kind string) (Kind, error) {
	k, ok := r.kinds.Lookup(kind)
	if !ok {
		return Kind{}, fmt.Errorf("metadata kind %q is not registered (known: %v)", kind, r.kinds.Names())
	}
	return k, nil
}

func firstOf(list []*annotations.ParsedAnnotation, kind string) *annotations.ParsedAnnotation {
	for _, ann := range list {
		if ann.Name == kind {
			return ann
		}
	}
	return nil
}

package registry

// ServiceRegistry is an ordered list of services
type ServiceRegistry[T any] struct {
	store store[T]
}

func NewServiceRegistry[T any]() *ServiceRegistry[T] {
	return &ServiceRegistry[T]{}
}

// Register appends a service
func (r *ServiceRegistry[T]) Register(value T) error {
	return r.store.add(entry[T]{value: value}, false)
}

// All returns the services in registration order
func (r *ServiceRegistry[T]) All() []T {
	return values(r.store.snapshot(false))
}

func (r *ServiceRegistry[T]) Len() int     { return r.store.len() }
func (r *ServiceRegistry[T]) Seal()        { r.store.seal() }
func (r *ServiceRegistry[T]) Sealed() bool { return r.store.isSealed() }
func (r *ServiceRegistry[T]) Traits() Trait {
	return TraitService
}

// Add implements PlainSink
func (r *ServiceRegistry[T]) Add(value any) error {
	v, err := Coerce[T](value)
	if err != nil {
		return err
	}
	return r.Register(v)
}

// IdentityServiceRegistry maps unique identifiers to services
type IdentityServiceRegistry[T any] struct {
	store store[T]
}

func NewIdentityServiceRegistry[T any]() *IdentityServiceRegistry[T] {
	return &IdentityServiceRegistry[T]{}
}

// Register adds a service under id. Identifiers are unique.
func (r *IdentityServiceRegistry[T]) Register(id string, value T) error {
	return r.store.add(entry[T]{id: id, value: value}, true)
}

// Get returns the service registered under id
func (r *IdentityServiceRegistry[T]) Get(id string) (T, bool) {
	e, ok := r.store.get(id)
	return e.value, ok
}

func (r *IdentityServiceRegistry[T]) Has(id string) bool {
	_, ok := r.store.get(id)
	return ok
}

// Identifiers returns the identifiers in registration order
func (r *IdentityServiceRegistry[T]) Identifiers() []string {
	return identifiers(r.store.snapshot(false))
}

// All returns the services in registration order
func (r *IdentityServiceRegistry[T]) All() []T {
	return values(r.store.snapshot(false))
}

func (r *IdentityServiceRegistry[T]) Len() int     { return r.store.len() }
func (r *IdentityServiceRegistry[T]) Seal()        { r.store.seal() }
func (r *IdentityServiceRegistry[T]) Sealed() bool { return r.store.isSealed() }
func (r *IdentityServiceRegistry[T]) Traits() Trait {
	return TraitService | TraitIdentity
}

// AddIdentified implements IdentitySink
func (r *IdentityServiceRegistry[T]) AddIdentified(id string, value any) error {
	v, err := Coerce[T](value)
	if err != nil {
		return err
	}
	return r.Register(id, v)
}

package registry

// PrioritizedServiceRegistry is a list of services consumed by descending
// priority
type PrioritizedServiceRegistry[T any] struct {
	store store[T]
}

func NewPrioritizedServiceRegistry[T any]() *PrioritizedServiceRegistry[T] {
	return &PrioritizedServiceRegistry[T]{}
}

// Register appends a service with a priority
func (r *PrioritizedServiceRegistry[T]) Register(value T, priority int) error {
	return r.store.add(entry[T]{value: value, priority: priority}, false)
}

// All returns the services by descending priority. Equal priorities keep
// their registration order.
func (r *PrioritizedServiceRegistry[T]) All() []T {
	return values(r.store.snapshot(true))
}

func (r *PrioritizedServiceRegistry[T]) Len() int     { return r.store.len() }
func (r *PrioritizedServiceRegistry[T]) Seal()        { r.store.seal() }
func (r *PrioritizedServiceRegistry[T]) Sealed() bool { return r.store.isSealed() }
func (r *PrioritizedServiceRegistry[T]) Traits() Trait {
	return TraitService | TraitPriority
}

// AddPrioritized implements PrioritizedSink
func (r *PrioritizedServiceRegistry[T]) AddPrioritized(value any, priority int) error {
	v, err := Coerce[T](value)
	if err != nil {
		return err
	}
	return r.Register(v, priority)
}

// IdentityPrioritizedServiceRegistry maps unique identifiers to services and
// is consumed by descending priority
type IdentityPrioritizedServiceRegistry[T any] struct {
	store store[T]
}

func NewIdentityPrioritizedServiceRegistry[T any]() *IdentityPrioritizedServiceRegistry[T] {
	return &IdentityPrioritizedServiceRegistry[T]{}
}

// Register adds a service under id with a priority
func (r *IdentityPrioritizedServiceRegistry[T]) Register(id string, value T, priority int) error {
	return r.store.add(entry[T]{id: id, value: value, priority: priority}, true)
}

// Get returns the service registered under id
func (r *IdentityPrioritizedServiceRegistry[T]) Get(id string) (T, bool) {
	e, ok := r.store.get(id)
	return e.value, ok
}

func (r *IdentityPrioritizedServiceRegistry[T]) Has(id string) bool {
	_, ok := r.store.get(id)
	return ok
}

// Identifiers returns the identifiers by descending priority
func (r *IdentityPrioritizedServiceRegistry[T]) Identifiers() []string {
	return identifiers(r.store.snapshot(true))
}

// All returns the services by descending priority
func (r *IdentityPrioritizedServiceRegistry[T]) All() []T {
	return values(r.store.snapshot(true))
}

func (r *IdentityPrioritizedServiceRegistry[T]) Len() int     { return r.store.len() }
func (r *IdentityPrioritizedServiceRegistry[T]) Seal()        { r.store.seal() }
func (r *IdentityPrioritizedServiceRegistry[T]) Sealed() bool { return r.store.isSealed() }
func (r *IdentityPrioritizedServiceRegistry[T]) Traits() Trait {
	return TraitService | TraitIdentity | TraitPriority
}

// AddIdentifiedPrioritized implements IdentityPrioritizedSink
func (r *IdentityPrioritizedServiceRegistry[T]) AddIdentifiedPrioritized(id string, value any, priority int) error {
	v, err := Coerce[T](value)
	if err != nil {
		return err
	}
	return r.Register(id, v, priority)
}

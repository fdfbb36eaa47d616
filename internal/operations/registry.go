package operations

import (
	"fmt"
	"sync"

	apperrors "inpcalc/internal/errors"
	"inpcalc/pkg/contracts/domain"
)

// Kind is the (sample type, location) pair a routine serves. Location
// AnyLocation matches every location of the type.
type Kind struct {
	Type     domain.SampleType
	Location domain.Location
}

// String renders the kind as type/location
func (k Kind) String() string {
	if k.Location == domain.LocationNone {
		return string(k.Type)
	}
	return fmt.Sprintf("%s/%s", k.Type, k.Location)
}

// Registry maps sample kinds to calculation routines
type Registry struct {
	mu       sync.RWMutex
	routines map[Kind]Routine
	order    []Kind // Maintains registration order
}

// NewRegistry creates an empty routine registry
func NewRegistry() *Registry {
	return &Registry{
		routines: make(map[Kind]Routine),
		order:    make([]Kind, 0),
	}
}

// Register binds routine to kind
func (r *Registry) Register(kind Kind, routine Routine) error {
	if routine == nil {
		return fmt.Errorf("cannot register nil routine for %s", kind)
	}
	if routine.ID() == "" {
		return fmt.Errorf("routine ID cannot be empty")
	}
	if kind.Type == "" {
		return fmt.Errorf("routine %s: sample type cannot be empty", routine.ID())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.routines[kind]; exists {
		return fmt.Errorf("kind %s already registered to routine %s", kind, existing.ID())
	}

	r.routines[kind] = routine
	r.order = append(r.order, kind)
	return nil
}

// Replace binds routine to kind, overriding any existing registration
func (r *Registry) Replace(kind Kind, routine Routine) error {
	if routine == nil {
		return fmt.Errorf("cannot register nil routine for %s", kind)
	}

	r.mu.Lock()
	if _, exists := r.routines[kind]; exists {
		r.routines[kind] = routine
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	return r.Register(kind, routine)
}

// Lookup returns the routine for a sample type and location. An exact
// registration wins over an AnyLocation one. Unknown pairs fail with
// UnsupportedSampleKind.
func (r *Registry) Lookup(sampleType, location string) (Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exact := Kind{Type: domain.SampleType(sampleType), Location: domain.Location(location)}
	if routine, ok := r.routines[exact]; ok {
		return routine, nil
	}

	wildcard := Kind{Type: domain.SampleType(sampleType), Location: AnyLocation}
	if routine, ok := r.routines[wildcard]; ok {
		return routine, nil
	}

	return nil, apperrors.UnsupportedSampleKind(sampleType, location)
}

// Has checks if a kind is registered
func (r *Registry) Has(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.routines[kind]
	return exists
}

// Kinds returns all registered kinds in registration order
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, len(r.order))
	copy(kinds, r.order)
	return kinds
}

// List returns all registered routines in registration order
func (r *Registry) List() []Routine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routines := make([]Routine, 0, len(r.order))
	for _, kind := range r.order {
		routines = append(routines, r.routines[kind])
	}
	return routines
}

// Count returns the number of registered kinds
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.routines)
}

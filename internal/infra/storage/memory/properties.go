package memory

import (
	"context"
	"sync"

	domainproperty "glampstay/internal/domain/property"
)

// PropertyRepository keeps properties in memory. Callers always get copies.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.ID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	if p == nil || p.ID == "" {
		return domainproperty.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[p.ID]; ok && current.Version != p.Version {
		return ErrConcurrentUpdate
	}
	p.Version++
	r.items[p.ID] = p.Clone()
	return nil
}

func (r *PropertyRepository) List(ctx context.Context, filter domainproperty.ListFilter) ([]*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainproperty.Property, 0, len(r.items))
	for _, p := range r.items {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)

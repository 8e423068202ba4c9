package registry

import (
	"errors"
	"fmt"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// ErrNotFound is returned by ByID for unknown source ids.
var ErrNotFound = errors.New("source not found")

// Registry is the static, in-memory source catalog. It is the single
// source of truth for sync eligibility. Everything except the IsActive
// flags is read-only after construction.
type Registry struct {
	sources []models.SourceDescriptor
	byID    map[string]int
}

// New builds a registry from the given descriptors. Construction fails
// when two descriptors share an id or a descriptor's config does not
// match its type.
func New(sources []models.SourceDescriptor) (*Registry, error) {
	r := &Registry{
		sources: make([]models.SourceDescriptor, len(sources)),
		byID:    make(map[string]int, len(sources)),
	}
	copy(r.sources, sources)

	for i, src := range r.sources {
		if src.ID == "" {
			return nil, fmt.Errorf("source %q: empty id", src.Name)
		}
		if _, dup := r.byID[src.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		if err := checkConfig(src); err != nil {
			return nil, err
		}
		r.byID[src.ID] = i
	}
	return r, nil
}

// checkConfig enforces that exactly the type-appropriate config block is
// set. RSS sources need neither.
func checkConfig(src models.SourceDescriptor) error {
	switch src.Type {
	case models.SourceTypeAPI:
		if src.Scrape != nil {
			return fmt.Errorf("source %q: api source carries scrape config", src.ID)
		}
	case models.SourceTypeScrape:
		if src.API != nil {
			return fmt.Errorf("source %q: scrape source carries api config", src.ID)
		}
	case models.SourceTypeRSS:
		if src.API != nil || src.Scrape != nil {
			return fmt.Errorf("source %q: rss source carries fetch config", src.ID)
		}
	default:
		return fmt.Errorf("source %q: unknown type %q", src.ID, src.Type)
	}
	return nil
}

// List returns every descriptor in catalog order.
func (r *Registry) List() []models.SourceDescriptor {
	out := make([]models.SourceDescriptor, len(r.sources))
	copy(out, r.sources)
	return out
}

// Active returns the descriptors whose IsActive flag is set, in catalog
// order.
func (r *Registry) Active() []models.SourceDescriptor {
	out := make([]models.SourceDescriptor, 0, len(r.sources))
	for _, src := range r.sources {
		if src.IsActive {
			out = append(out, src)
		}
	}
	return out
}

// ByID looks up a single descriptor.
func (r *Registry) ByID(id string) (models.SourceDescriptor, error) {
	i, ok := r.byID[id]
	if !ok {
		return models.SourceDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.sources[i], nil
}

// SetActive flips a source's IsActive flag. Admin actions call this
// between sync passes; readers tolerate the flag changing between, but
// not within, a pass.
func (r *Registry) SetActive(id string, active bool) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.sources[i].IsActive = active
	return nil
}

// Len reports the catalog size.
func (r *Registry) Len() int { return len(r.sources) }

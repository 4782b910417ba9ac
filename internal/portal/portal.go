package portal

import (
	"context"
	"fmt"

	"MuralNotifier/internal/domain"
)

// Section describes one searchable area of a portal, usually a court
// or publication board endpoint provided by config.
type Section struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute one portal sweep.
type Request struct {
	PortalName string
	Sections   []Section
	Options    map[string]string
}

// Scanner captures a single portal strategy (TSE mural, other court
// portals later).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Publication, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("portal scanner %s is not registered", name)
}

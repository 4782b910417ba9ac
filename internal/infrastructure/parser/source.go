package parser

import (
	"context"
	"fmt"
	"log/slog"

	"MuralNotifier/internal/config"
	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/portal"
	"MuralNotifier/internal/ports"
)

// PortalSource implements PublicationSource via registered portal
// scanner strategies.
type PortalSource struct {
	registry *portal.Registry
	portals  []config.PortalConfig
	logger   *slog.Logger
}

var _ ports.PublicationSource = (*PortalSource)(nil)

// NewPortalSource wires the scanner registry with config-defined portals.
func NewPortalSource(reg *portal.Registry, portals []config.PortalConfig, log *slog.Logger) *PortalSource {
	return &PortalSource{
		registry: reg,
		portals:  portals,
		logger:   log,
	}
}

// FetchLatest iterates over configured portals and executes their
// scanners, aggregating every publication they produce.
func (s *PortalSource) FetchLatest(ctx context.Context) ([]domain.Publication, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("portal registry is not configured")
	}

	s.debug("fetch latest", "portals", len(s.portals))

	var aggregated []domain.Publication
	for _, cfg := range s.portals {
		s.debug("process portal", "portal", cfg.Name, "scanner", cfg.Scanner, "sections", len(cfg.Sections))
		strategy, err := s.registry.Resolve(cfg.Scanner)
		if err != nil {
			return nil, fmt.Errorf("portal %s: %w", cfg.Name, err)
		}

		req := portal.Request{
			PortalName: cfg.Name,
			Options:    cfg.Options,
			Sections:   toPortalSections(cfg.Sections),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan portal %s: %w", cfg.Name, err)
		}

		s.debug("portal produced publications", "portal", cfg.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("portal source done", "total_publications", len(aggregated))
	return aggregated, nil
}

func toPortalSections(cfg []config.SectionConfig) []portal.Section {
	sections := make([]portal.Section, 0, len(cfg))
	for _, section := range cfg {
		sections = append(sections, portal.Section{
			Name: section.Name,
			URL:  section.URL,
		})
	}
	return sections
}

func (s *PortalSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

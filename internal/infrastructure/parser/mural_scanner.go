package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/portal"
)

const (
	searchPathMarker = "publicacao/pesquisa"
	defaultPageSize  = 50
)

// MuralScanner crawls a court "mural" portal: it discovers the
// publication-search endpoints from the dashboard page and pulls their
// JSON result pages. Items that do not decode are dropped with a
// logged reason, never fatal to the sweep.
type MuralScanner struct {
	client   *http.Client
	pageSize int
	logger   *slog.Logger
}

// NewMuralScanner wires an HTTP client; pageSize defaults to 50.
func NewMuralScanner(client *http.Client, logger *slog.Logger) *MuralScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &MuralScanner{client: client, pageSize: defaultPageSize, logger: logger}
}

// Name identifies the strategy inside the registry.
func (m *MuralScanner) Name() string {
	return "mural"
}

// Scan walks each configured section, resolves it to one or more
// search endpoints and returns every decodable publication, deduped by
// publication number within the sweep.
func (m *MuralScanner) Scan(ctx context.Context, req portal.Request) ([]domain.Publication, error) {
	if len(req.Sections) == 0 {
		return nil, fmt.Errorf("no sections provided for portal %s", req.PortalName)
	}

	pageSize := m.pageSize
	if raw, ok := req.Options["pageSize"]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	results := make([]domain.Publication, 0)
	seen := map[int64]struct{}{}

	for _, section := range req.Sections {
		endpoints, err := m.resolveEndpoints(ctx, section)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Name, err)
		}

		for _, endpoint := range endpoints {
			pubs, err := m.fetchPublications(ctx, endpoint, pageSize)
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", section.Name, err)
			}
			for _, pub := range pubs {
				if pub.Number > 0 {
					if _, ok := seen[pub.Number]; ok {
						continue
					}
					seen[pub.Number] = struct{}{}
				}
				results = append(results, pub)
			}
		}
	}

	return results, nil
}

// resolveEndpoints returns the JSON search URLs for a section. A URL
// pointing straight at a search endpoint is used as-is; a dashboard
// URL is fetched and scraped for search links.
func (m *MuralScanner) resolveEndpoints(ctx context.Context, section portal.Section) ([]string, error) {
	if strings.Contains(section.URL, searchPathMarker) {
		return []string{section.URL}, nil
	}

	doc, base, err := m.fetchDocument(ctx, section.URL)
	if err != nil {
		return nil, err
	}

	endpoints := discoverEndpoints(doc, base)
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no search endpoints discovered at %s", section.URL)
	}
	m.debug("discovered search endpoints", "section", section.Name, "count", len(endpoints))
	return endpoints, nil
}

// discoverEndpoints scans anchors and forms for search-path references.
func discoverEndpoints(doc *goquery.Document, base *url.URL) []string {
	var endpoints []string
	seen := map[string]struct{}{}

	collect := func(ref string) {
		if ref == "" || !strings.Contains(ref, searchPathMarker) {
			return
		}
		resolved := ref
		if parsed, err := url.Parse(ref); err == nil {
			resolved = base.ResolveReference(parsed).String()
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		endpoints = append(endpoints, resolved)
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		collect(href)
	})
	doc.Find("form[action]").Each(func(_ int, sel *goquery.Selection) {
		action, _ := sel.Attr("action")
		collect(action)
	})

	return endpoints
}

// fetchPublications pages through one search endpoint until a short
// page signals the end.
func (m *MuralScanner) fetchPublications(ctx context.Context, endpoint string, pageSize int) ([]domain.Publication, error) {
	var collected []domain.Publication

	page := 1
	for {
		pageURL, err := buildPageURL(endpoint, page, pageSize)
		if err != nil {
			return nil, err
		}

		items, err := m.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			pub, err := DecodePublication(item)
			if err != nil {
				m.debug("dropping malformed publication", "endpoint", endpoint, "error", err)
				continue
			}
			collected = append(collected, pub)
		}

		if len(items) < pageSize {
			return collected, nil
		}
		page++
	}
}

// searchPayload is the wire shape of one search-result page.
type searchPayload struct {
	Collection []map[string]any `json:"collection"`
}

func (m *MuralScanner) fetchPage(ctx context.Context, pageURL string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MuralNotifier/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal returned %s", resp.Status)
	}

	var payload searchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return payload.Collection, nil
}

func (m *MuralScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "MuralNotifier/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("portal returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}
	return doc, base, nil
}

func buildPageURL(base string, page, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("pagina", strconv.Itoa(page))
	query.Set("quantidade", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (m *MuralScanner) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

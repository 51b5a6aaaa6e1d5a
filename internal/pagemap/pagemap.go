// File: internal/pagemap/pagemap.go

// Package pagemap loads the page-type to URL table that anchors event replay
// and rewrites recorded URLs onto the configured environment.
package pagemap

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/internal/config"
)

// Table maps lowercased page types onto environment-specific URLs.
type Table struct {
	urls map[string]string
}

// Load reads a PAGE_TYPE,URL CSV file and rebases every URL onto the
// configured environment. A missing or unreadable file is not fatal: replay
// still works through the navigator's fallback routes, so the table just
// comes back empty with a warning.
func Load(path string, site config.SiteConfig, logger *zap.Logger) *Table {
	log := logger.Named("PageMap")

	f, err := os.Open(path)
	if err != nil {
		log.Warn("Could not load page type mappings", zap.String("path", path), zap.Error(err))
		return &Table{urls: map[string]string{}}
	}
	defer f.Close()

	table, err := Parse(f, site)
	if err != nil {
		log.Warn("Could not parse page type mappings", zap.String("path", path), zap.Error(err))
		return &Table{urls: map[string]string{}}
	}

	log.Info("Loaded page type mappings", zap.Int("count", table.Len()), zap.String("path", path))
	return table
}

// Parse reads the CSV from r. The header row must carry PAGE_TYPE and URL
// columns; extra columns are ignored. Rows with an empty page type or URL
// are skipped.
func Parse(r io.Reader, site config.SiteConfig) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	pageTypeCol, urlCol := -1, -1
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "PAGE_TYPE":
			pageTypeCol = i
		case "URL":
			urlCol = i
		}
	}
	if pageTypeCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("CSV header missing PAGE_TYPE or URL column: %v", header)
	}

	urls := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if pageTypeCol >= len(record) || urlCol >= len(record) {
			continue
		}

		pageType := strings.TrimSpace(record[pageTypeCol])
		rawURL := strings.TrimSpace(record[urlCol])
		if pageType == "" || rawURL == "" {
			continue
		}

		urls[strings.ToLower(pageType)] = Rebase(rawURL, site)
	}

	return &Table{urls: urls}, nil
}

// URL returns the environment URL for a page type. Lookup is
// case-insensitive.
func (t *Table) URL(pageType string) (string, bool) {
	u, ok := t.urls[strings.ToLower(pageType)]
	return u, ok
}

// Len returns the number of mapped page types.
func (t *Table) Len() int { return len(t.urls) }

// Rebase rewrites a recorded URL onto the environment's base URL. URLs on
// any of the configured environment hosts are stripped to their path and
// reattached to the current base; third-party hosts pass through untouched;
// relative paths are appended. The literal "undefined" collapses to the
// base URL itself.
func Rebase(raw string, site config.SiteConfig) string {
	base := strings.TrimRight(site.BaseURL(), "/")

	if raw == "" || raw == "undefined" {
		return base
	}

	siteHosts := environmentHosts(site)

	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			return base + "/" + strings.TrimLeft(raw, "/")
		}
		if _, ours := siteHosts[strings.ToLower(parsed.Host)]; !ours {
			// Third-party URL (pricing tools, partner storefronts); keep as is.
			return raw
		}
		return base + pathWithQuery(parsed)
	}

	// Scheme-less forms like "www.chewy.com/dog-food" still count as ours.
	if i := strings.IndexByte(raw, '/'); i > 0 {
		if _, ours := siteHosts[strings.ToLower(raw[:i])]; ours {
			return base + raw[i:]
		}
	}

	if strings.HasPrefix(raw, "/") {
		return base + raw
	}
	return base + "/" + raw
}

// environmentHosts collects the hostnames of every configured environment,
// so a prod URL recorded in an event can be rebased onto qat and vice versa.
func environmentHosts(site config.SiteConfig) map[string]struct{} {
	hosts := make(map[string]struct{}, len(site.BaseURLs))
	for _, baseURL := range site.BaseURLs {
		if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
			hosts[strings.ToLower(parsed.Host)] = struct{}{}
		}
	}
	return hosts
}

func pathWithQuery(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

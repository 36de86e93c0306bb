// Package duration resolves a project's video runtime in whole minutes
// from Google Sheets links on the card, backed by a persistent cache so
// each sheet is fetched at most once.
package duration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/charmbracelet/log"

	"dubline/internal/domain"
)

var (
	sheetIDRe  = regexp.MustCompile(`docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	sheetGIDRe = regexp.MustCompile(`[#?&]gid=(\d+)`)
)

// SheetLink identifies one spreadsheet tab extracted from a card link.
type SheetLink struct {
	SpreadsheetID string
	GID           string
}

// ParseSheetLink recognizes Google Sheets URLs and extracts the
// spreadsheet id and optional tab id.
func ParseSheetLink(raw string) (SheetLink, bool) {
	m := sheetIDRe.FindStringSubmatch(raw)
	if m == nil {
		return SheetLink{}, false
	}
	link := SheetLink{SpreadsheetID: m[1]}
	if g := sheetGIDRe.FindStringSubmatch(raw); g != nil {
		link.GID = g[1]
	}
	return link, true
}

// exportURLs returns the CSV export endpoints to try for a sheet, the
// visualization query first and the direct download as fallback. Both
// shapes must fail before a link is given up on.
func (l SheetLink) exportURLs() []string {
	gid := ""
	if l.GID != "" {
		gid = "&gid=" + url.QueryEscape(l.GID)
	}
	base := "https://docs.google.com/spreadsheets/d/" + l.SpreadsheetID
	return []string{
		base + "/gviz/tq?tqx=out:csv" + gid,
		base + "/export?format=csv" + gid,
	}
}

// Resolver resolves durations with short per-request timeouts and an
// overall per-project wall-clock budget so one unreachable sheet cannot
// stall a whole report run.
type Resolver struct {
	Cache    *Cache
	Client   *http.Client
	Log      *log.Logger
	Network  bool
	Budget   time.Duration
	MaxLinks int
	Now      func() time.Time
}

// NewResolver returns a resolver with production defaults: 8s request
// timeout, 25s per-project budget, first 3 candidate links.
func NewResolver(cache *Cache, logger *log.Logger) *Resolver {
	return &Resolver{
		Cache:    cache,
		Client:   &http.Client{Timeout: 8 * time.Second},
		Log:      logger,
		Network:  true,
		Budget:   25 * time.Second,
		MaxLinks: 3,
		Now:      time.Now,
	}
}

// Resolve returns the project's runtime in whole minutes. The cache is
// consulted first; on a miss each recognized sheet link is fetched and
// parsed, and the first success is cached and returned. ok is false when
// nothing resolved this run; that outcome is never cached so a later run
// retries.
func (r *Resolver) Resolve(ctx context.Context, p domain.Project) (int, bool) {
	key := p.CacheKey()
	if minutes, ok := r.Cache.Get(key); ok {
		return minutes, true
	}
	if !r.Network {
		return 0, false
	}

	deadline := r.now().Add(r.Budget)
	links := r.candidateLinks(p)
	if len(links) == 0 {
		return 0, false
	}
	for _, link := range links {
		minutes, err := r.fetchLink(ctx, link, deadline)
		if err != nil {
			if r.Log != nil {
				r.Log.Debug("duration fetch failed", "project", p.Name, "sheet", link.SpreadsheetID, "err", err)
			}
			continue
		}
		r.Cache.Set(key, minutes)
		if r.Log != nil {
			r.Log.Info("resolved duration", "project", p.Name, "minutes", minutes)
		}
		return minutes, true
	}
	return 0, false
}

func (r *Resolver) candidateLinks(p domain.Project) []SheetLink {
	var links []SheetLink
	for _, raw := range p.DocLinks {
		if link, ok := ParseSheetLink(raw); ok {
			links = append(links, link)
			if len(links) == r.MaxLinks {
				break
			}
		}
	}
	return links
}

// fetchLink tries both export shapes for one sheet. All failures -
// network error, non-200, unparseable content - read the same to the
// caller: this link yielded nothing, try the next.
func (r *Resolver) fetchLink(ctx context.Context, link SheetLink, deadline time.Time) (int, error) {
	var lastErr error
	for _, endpoint := range link.exportURLs() {
		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			return 0, fmt.Errorf("budget exhausted")
		}
		minutes, err := r.fetchCSV(ctx, endpoint, remaining)
		if err == nil {
			return minutes, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

func (r *Resolver) fetchCSV(ctx context.Context, endpoint string, remaining time.Duration) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("status %d from sheet export", resp.StatusCode)
	}
	return minutesFromCSV(resp.Body)
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

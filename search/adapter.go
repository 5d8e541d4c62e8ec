// Package search provides the per-domain content search adapters.
//
// Every adapter returns the same normalized result schema regardless of the
// underlying provider, so the aggregation layer never needs provider-specific
// handling.
package search

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/artrec/hunterd/store"
)

// Result is the normalized search result schema shared by all adapters.
type Result struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	SourceURL   string            `json:"source_url"`
	ImageURL    string            `json:"image_url"`
	Type        string            `json:"type"`
	Category    string            `json:"category"`
	Creator     string            `json:"creator"`
	ReleaseDate string            `json:"release_date"`
	Metadata    map[string]string `json:"metadata"`
}

// Adapter is one pluggable search backend.
type Adapter interface {
	// Search runs the query and returns up to limit normalized results.
	Search(ctx context.Context, query string, limit int) ([]Result, error)

	// Name identifies the adapter in logs and metrics.
	Name() string
}

// Registry maps content domains to their registered adapters.
type Registry struct {
	adapters map[store.Domain]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[store.Domain]Adapter)}
}

// Register binds an adapter to a domain, replacing any previous binding.
func (r *Registry) Register(domain store.Domain, adapter Adapter) {
	r.adapters[domain] = adapter
}

// Lookup returns the adapter for a domain, or nil when none is registered.
func (r *Registry) Lookup(domain store.Domain) Adapter {
	return r.adapters[domain]
}

// newHTTPClient builds the shared client configuration for provider calls.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// newProviderLimiter is the client-side rate limit applied to every provider.
// External catalog APIs throttle aggressively; 5 rps with a small burst keeps
// the fan-out under typical free-tier quotas.
func newProviderLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(5), 5)
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/artrec/hunterd/search"
	"github.com/artrec/hunterd/store"
)

const adapterMaxRetries = 2

// DomainReport records the outcome of one domain's search fan-out leg.
type DomainReport struct {
	Domain store.Domain `json:"domain"`
	Query  string       `json:"query"`
	Found  int          `json:"found"`
	Err    string       `json:"error,omitempty"`
}

// Aggregator fans the user's taste profile out across the registered search
// adapters and merges results into a deduplicated candidate pool.
type Aggregator struct {
	registry       *search.Registry
	perDomainLimit int
	poolSize       int
	workers        int
}

func NewAggregator(registry *search.Registry, perDomainLimit, poolSize, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		registry:       registry,
		perDomainLimit: perDomainLimit,
		poolSize:       poolSize,
		workers:        workers,
	}
}

// DomainQuery builds the provider query for one domain from the profile.
// Catalog providers (movies, books, music) work best with a short
// favorite-led phrase; the web-search domains carry more profile context
// because the quality of organic results tracks query richness.
func DomainQuery(domain store.Domain, profile *store.UserProfile) string {
	favorite := ""
	if len(profile.PastFavoriteWork) > 0 {
		favorite = profile.PastFavoriteWork[0]
	}
	obsession := strings.Join(profile.CurrentObsession, " ")

	switch domain {
	case store.DomainMovies:
		return nonEmptyJoin(" ", favorite, profile.TasteGenre)
	case store.DomainBooks:
		return nonEmptyJoin(" ", favorite, profile.TasteGenre)
	case store.DomainMusic:
		return nonEmptyJoin(" ", favorite, obsession)
	case store.DomainArt:
		return nonEmptyJoin(" ", profile.TasteGenre, obsession, "artwork paintings")
	case store.DomainPoetry:
		return nonEmptyJoin(" ", profile.StateOfMind, profile.TasteGenre, "poems poetry")
	case store.DomainPodcasts:
		return nonEmptyJoin(" ", obsession, profile.FutureAspirations, "podcast episodes")
	case store.DomainMusicals:
		return nonEmptyJoin(" ", profile.TasteGenre, favorite, "musical theater")
	}
	return profile.TasteGenre
}

func nonEmptyJoin(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, sep)
}

// AggregateAll runs every domain search concurrently and merges the results.
// A failing domain is reported but never fails the whole aggregation; the
// pool is whatever the healthy domains produced.
func (a *Aggregator) AggregateAll(ctx context.Context, profile *store.UserProfile) ([]*store.CandidateItem, []DomainReport, error) {
	var (
		mu        sync.Mutex
		perDomain = make(map[store.Domain][]search.Result, len(store.Domains))
		reports   = make([]DomainReport, 0, len(store.Domains))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, domain := range store.Domains {
		adapter := a.registry.Lookup(domain)
		query := DomainQuery(domain, profile)
		g.Go(func() error {
			report := DomainReport{Domain: domain, Query: query}
			results, err := a.searchDomain(gctx, adapter, query)
			if err != nil {
				report.Err = err.Error()
				slog.Warn("domain search failed",
					slog.String("domain", string(domain)),
					slog.String("error", err.Error()))
			} else {
				report.Found = len(results)
			}
			mu.Lock()
			perDomain[domain] = results
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	pool := a.merge(perDomain)
	return pool, reports, nil
}

func (a *Aggregator) searchDomain(ctx context.Context, adapter search.Adapter, query string) ([]search.Result, error) {
	if adapter == nil {
		return nil, fmt.Errorf("no adapter registered")
	}
	if query == "" {
		return nil, fmt.Errorf("empty query for profile")
	}

	var results []search.Result
	operation := func() error {
		var err error
		results, err = adapter.Search(ctx, query, a.perDomainLimit)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), adapterMaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return results, nil
}

// merge interleaves domains round-robin so no single domain floods the pool,
// dropping duplicates (same title and source URL, first occurrence wins) and
// capping the pool size.
func (a *Aggregator) merge(perDomain map[store.Domain][]search.Result) []*store.CandidateItem {
	seen := make(map[string]bool)
	pool := make([]*store.CandidateItem, 0, a.poolSize)

	for offset := 0; len(pool) < a.poolSize; offset++ {
		advanced := false
		for _, domain := range store.Domains {
			results := perDomain[domain]
			if offset >= len(results) {
				continue
			}
			advanced = true
			r := results[offset]
			key := strings.ToLower(r.Title) + "|" + r.SourceURL
			if seen[key] {
				continue
			}
			seen[key] = true
			pool = append(pool, resultToItem(domain, r))
			if len(pool) == a.poolSize {
				break
			}
		}
		if !advanced {
			break
		}
	}
	return pool
}

func resultToItem(domain store.Domain, r search.Result) *store.CandidateItem {
	return &store.CandidateItem{
		Domain:      domain,
		Title:       r.Title,
		Description: r.Description,
		Creator:     r.Creator,
		ReleaseDate: r.ReleaseDate,
		SourceURL:   r.SourceURL,
		ImageURL:    r.ImageURL,
		Metadata:    r.Metadata,
		CreatedTs:   time.Now().Unix(),
	}
}

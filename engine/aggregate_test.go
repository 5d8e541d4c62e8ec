package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artrec/hunterd/search"
	"github.com/artrec/hunterd/store"
)

type fakeAdapter struct {
	name    string
	results []search.Result
	err     error
	calls   int
}

func (f *fakeAdapter) Search(_ context.Context, _ string, limit int) ([]search.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeAdapter) Name() string { return f.name }

func fakeResults(domain string, n int) []search.Result {
	results := make([]search.Result, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, search.Result{
			Title:     fmt.Sprintf("%s title %d", domain, i),
			SourceURL: fmt.Sprintf("https://example.com/%s/%d", domain, i),
		})
	}
	return results
}

func testProfileFixture() *store.UserProfile {
	return &store.UserProfile{
		UUID:              "u1",
		TasteGenre:        "science fiction",
		PastFavoriteWork:  []string{"Dune"},
		CurrentObsession:  []string{"space opera"},
		StateOfMind:       "curious",
		FutureAspirations: "write a novel",
		Complete:          true,
	}
}

func registryWith(t *testing.T, adapters map[store.Domain]search.Adapter) *search.Registry {
	t.Helper()
	registry := search.NewRegistry()
	for domain, adapter := range adapters {
		registry.Register(domain, adapter)
	}
	return registry
}

func TestDomainQueryNonEmptyForAllDomains(t *testing.T) {
	profile := testProfileFixture()
	for _, domain := range store.Domains {
		require.NotEmpty(t, DomainQuery(domain, profile), "domain %s", domain)
	}
}

func TestAggregateAllAbsorbsDomainFailures(t *testing.T) {
	adapters := map[store.Domain]search.Adapter{}
	for _, domain := range store.Domains {
		adapters[domain] = &fakeAdapter{name: string(domain), results: fakeResults(string(domain), 3)}
	}
	adapters[store.DomainMusic] = &fakeAdapter{name: "music", err: fmt.Errorf("quota exceeded")}

	agg := NewAggregator(registryWith(t, adapters), 20, 100, 4)
	pool, reports, err := agg.AggregateAll(context.Background(), testProfileFixture())
	require.NoError(t, err)

	// Six healthy domains times three results.
	require.Len(t, pool, 18)
	require.Len(t, reports, len(store.Domains))

	failed := 0
	for _, report := range reports {
		if report.Err != "" {
			failed++
			require.Equal(t, store.DomainMusic, report.Domain)
		}
	}
	require.Equal(t, 1, failed)
}

func TestAggregateAllMissingAdapterReported(t *testing.T) {
	adapters := map[store.Domain]search.Adapter{
		store.DomainBooks: &fakeAdapter{name: "books", results: fakeResults("books", 2)},
	}
	agg := NewAggregator(registryWith(t, adapters), 20, 100, 4)

	pool, reports, err := agg.AggregateAll(context.Background(), testProfileFixture())
	require.NoError(t, err)
	require.Len(t, pool, 2)

	failed := 0
	for _, report := range reports {
		if report.Err != "" {
			failed++
		}
	}
	require.Equal(t, len(store.Domains)-1, failed)
}

func TestAggregateAllRetriesTransientFailure(t *testing.T) {
	failing := &fakeAdapter{name: "books", err: fmt.Errorf("temporary")}
	agg := NewAggregator(registryWith(t, map[store.Domain]search.Adapter{store.DomainBooks: failing}), 20, 100, 1)

	_, _, err := agg.AggregateAll(context.Background(), testProfileFixture())
	require.NoError(t, err)
	require.Equal(t, 1+adapterMaxRetries, failing.calls)
}

func TestAggregateDedupe(t *testing.T) {
	duplicate := search.Result{Title: "Dune", SourceURL: "https://example.com/dune"}
	adapters := map[store.Domain]search.Adapter{
		store.DomainBooks:  &fakeAdapter{name: "books", results: []search.Result{duplicate, {Title: "Hyperion", SourceURL: "https://example.com/hyperion"}}},
		store.DomainMovies: &fakeAdapter{name: "movies", results: []search.Result{duplicate}},
	}
	agg := NewAggregator(registryWith(t, adapters), 20, 100, 2)

	pool, _, err := agg.AggregateAll(context.Background(), testProfileFixture())
	require.NoError(t, err)
	require.Len(t, pool, 2)
}

func TestAggregatePoolCapInterleaves(t *testing.T) {
	adapters := map[store.Domain]search.Adapter{}
	for _, domain := range store.Domains {
		adapters[domain] = &fakeAdapter{name: string(domain), results: fakeResults(string(domain), 10)}
	}
	agg := NewAggregator(registryWith(t, adapters), 20, 14, 4)

	pool, _, err := agg.AggregateAll(context.Background(), testProfileFixture())
	require.NoError(t, err)
	require.Len(t, pool, 14)

	// Round-robin merge: every domain contributes exactly two items.
	perDomain := map[store.Domain]int{}
	for _, item := range pool {
		perDomain[item.Domain]++
	}
	for _, domain := range store.Domains {
		require.Equal(t, 2, perDomain[domain], "domain %s", domain)
	}
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

const defaultSerpBaseURL = "https://serpapi.com"

// SerpAdapter runs general web search via SerpAPI. It backs the domains with
// no dedicated catalog API (art, poetry, podcasts, musicals).
//
// Result quality for open web search is uneven, so the adapter applies a
// source-host allow/deny policy: deny-listed hosts are always dropped, and
// when an allow list is set only results from those hosts survive.
type SerpAdapter struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	category   string
	allowHosts []string
	denyHosts  []string
}

// NewSerpAdapter creates a web search adapter serving one content category.
func NewSerpAdapter(apiKey, baseURL, category string, allowHosts, denyHosts []string) *SerpAdapter {
	if baseURL == "" {
		baseURL = defaultSerpBaseURL
	}
	return &SerpAdapter{
		client:     newHTTPClient(),
		limiter:    newProviderLimiter(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		category:   category,
		allowHosts: allowHosts,
		denyHosts:  denyHosts,
	}
}

func (a *SerpAdapter) Name() string {
	return "serpapi/" + a.category
}

// hostAllowed applies the deny list first, then the allow list when present.
func (a *SerpAdapter) hostAllowed(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	for _, deny := range a.denyHosts {
		if host == deny || strings.HasSuffix(host, "."+deny) {
			return false
		}
	}
	if len(a.allowHosts) == 0 {
		return true
	}
	for _, allow := range a.allowHosts {
		if host == allow || strings.HasSuffix(host, "."+allow) {
			return true
		}
	}
	return false
}

func (a *SerpAdapter) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("serpapi key not configured")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi error: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		OrganicResults []struct {
			Title         string `json:"title"`
			Snippet       string `json:"snippet"`
			Link          string `json:"link"`
			Thumbnail     string `json:"thumbnail"`
			DisplayedLink string `json:"displayed_link"`
			Position      int    `json:"position"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		if item.Link == "" || !a.hostAllowed(item.Link) {
			continue
		}
		results = append(results, Result{
			Title:       item.Title,
			Description: item.Snippet,
			SourceURL:   item.Link,
			ImageURL:    item.Thumbnail,
			Type:        "web",
			Category:    a.category,
			Metadata: map[string]string{
				"displayed_link": item.DisplayedLink,
				"position":       strconv.Itoa(item.Position),
			},
		})
	}

	return results, nil
}

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

const defaultTMDBBaseURL = "https://api.themoviedb.org/3"

// TMDBAdapter searches movies via the TMDB API.
type TMDBAdapter struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

// NewTMDBAdapter creates the movies adapter.
func NewTMDBAdapter(apiKey, baseURL string) *TMDBAdapter {
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}
	return &TMDBAdapter{
		client:  newHTTPClient(),
		limiter: newProviderLimiter(),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (a *TMDBAdapter) Name() string {
	return "tmdb"
}

func (a *TMDBAdapter) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("tmdb API key not configured")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("api_key", a.apiKey)
	params.Set("query", query)
	params.Set("language", "en-US")
	params.Set("page", "1")
	params.Set("include_adult", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search/movie?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb API error: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			ID               int64   `json:"id"`
			Title            string  `json:"title"`
			Overview         string  `json:"overview"`
			PosterPath       string  `json:"poster_path"`
			ReleaseDate      string  `json:"release_date"`
			OriginalLanguage string  `json:"original_language"`
			VoteAverage      float64 `json:"vote_average"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	docs := payload.Results
	if len(docs) > limit {
		docs = docs[:limit]
	}

	results := make([]Result, 0, len(docs))
	for _, movie := range docs {
		imageURL := ""
		if movie.PosterPath != "" {
			imageURL = "https://image.tmdb.org/t/p/w500" + movie.PosterPath
		}
		rating := ""
		if movie.VoteAverage != 0 {
			rating = strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64)
		}
		results = append(results, Result{
			Title:       movie.Title,
			Description: movie.Overview,
			SourceURL:   fmt.Sprintf("https://www.themoviedb.org/movie/%d", movie.ID),
			ImageURL:    imageURL,
			Type:        "movie",
			Category:    "movie",
			ReleaseDate: movie.ReleaseDate,
			Metadata: map[string]string{
				"original_language": movie.OriginalLanguage,
				"rating":            rating,
			},
		})
	}

	return results, nil
}

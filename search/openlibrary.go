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

const defaultOpenLibraryBaseURL = "https://openlibrary.org"

// OpenLibraryAdapter searches books via the Open Library API.
type OpenLibraryAdapter struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewOpenLibraryAdapter creates the books adapter. baseURL overrides the
// public endpoint, used by tests.
func NewOpenLibraryAdapter(baseURL string) *OpenLibraryAdapter {
	if baseURL == "" {
		baseURL = defaultOpenLibraryBaseURL
	}
	return &OpenLibraryAdapter{
		client:  newHTTPClient(),
		limiter: newProviderLimiter(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (a *OpenLibraryAdapter) Name() string {
	return "openlibrary"
}

func (a *OpenLibraryAdapter) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

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
		return nil, fmt.Errorf("openlibrary API error: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Docs []struct {
			Key            string   `json:"key"`
			Title          string   `json:"title"`
			AuthorName     []string `json:"author_name"`
			FirstPublish   int      `json:"first_publish_year"`
			CoverID        int      `json:"cover_i"`
			Subject        []string `json:"subject"`
			Language       []string `json:"language"`
			RatingsAverage float64  `json:"ratings_average"`
			FirstSentence  []string `json:"first_sentence"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		if doc.Key == "" {
			continue
		}
		description := ""
		if len(doc.FirstSentence) > 0 {
			description = doc.FirstSentence[0]
		}
		imageURL := ""
		if doc.CoverID != 0 {
			imageURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverID)
		}
		releaseDate := ""
		if doc.FirstPublish != 0 {
			releaseDate = strconv.Itoa(doc.FirstPublish)
		}
		rating := ""
		if doc.RatingsAverage != 0 {
			rating = strconv.FormatFloat(doc.RatingsAverage, 'f', 2, 64)
		}
		results = append(results, Result{
			Title:       doc.Title,
			Description: description,
			SourceURL:   defaultOpenLibraryBaseURL + doc.Key,
			ImageURL:    imageURL,
			Type:        "book",
			Category:    "book",
			Creator:     strings.Join(doc.AuthorName, ", "),
			ReleaseDate: releaseDate,
			Metadata: map[string]string{
				"genre":    strings.Join(doc.Subject, ", "),
				"language": strings.Join(doc.Language, ", "),
				"rating":   rating,
			},
		})
	}

	return results, nil
}

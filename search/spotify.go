package search

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultSpotifyBaseURL  = "https://api.spotify.com/v1"
	defaultSpotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// SpotifyAdapter searches music tracks via the Spotify Web API using the
// client-credentials flow. The access token is cached until shortly before
// its expiry.
type SpotifyAdapter struct {
	client       *http.Client
	limiter      *rate.Limiter
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotifyAdapter creates the music adapter. Empty baseURL/tokenURL use the
// public endpoints.
func NewSpotifyAdapter(clientID, clientSecret, baseURL, tokenURL string) *SpotifyAdapter {
	if baseURL == "" {
		baseURL = defaultSpotifyBaseURL
	}
	if tokenURL == "" {
		tokenURL = defaultSpotifyTokenURL
	}
	return &SpotifyAdapter{
		client:       newHTTPClient(),
		limiter:      newProviderLimiter(),
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (a *SpotifyAdapter) Name() string {
	return "spotify"
}

// token returns a valid access token, refreshing it when expired.
func (a *SpotifyAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token error: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("spotify token error: empty token")
	}

	a.accessToken = payload.AccessToken
	// Refresh one minute early to avoid racing the expiry.
	a.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)

	return a.accessToken, nil
}

func (a *SpotifyAdapter) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if a.clientID == "" || a.clientSecret == "" {
		return nil, fmt.Errorf("spotify credentials not configured")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify search error: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Tracks struct {
			Items []struct {
				Name         string `json:"name"`
				ExternalURLs struct {
					Spotify string `json:"spotify"`
				} `json:"external_urls"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name        string `json:"name"`
					ReleaseDate string `json:"release_date"`
					Images      []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
				Popularity int `json:"popularity"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Tracks.Items))
	for _, item := range payload.Tracks.Items {
		artists := make([]string, 0, len(item.Artists))
		for _, artist := range item.Artists {
			artists = append(artists, artist.Name)
		}
		imageURL := ""
		if len(item.Album.Images) > 0 {
			imageURL = item.Album.Images[0].URL
		}
		results = append(results, Result{
			Title:       item.Name,
			Description: item.Album.Name,
			SourceURL:   item.ExternalURLs.Spotify,
			ImageURL:    imageURL,
			Type:        "music",
			Category:    "music",
			Creator:     strings.Join(artists, ", "),
			ReleaseDate: item.Album.ReleaseDate,
			Metadata: map[string]string{
				"rating": strconv.Itoa(item.Popularity),
			},
		})
	}

	return results, nil
}

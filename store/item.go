package store

import "context"

// Domain is one of the enumerated content categories.
type Domain string

const (
	DomainMovies   Domain = "movies"
	DomainBooks    Domain = "books"
	DomainMusic    Domain = "music"
	DomainArt      Domain = "art"
	DomainPoetry   Domain = "poetry"
	DomainPodcasts Domain = "podcasts"
	DomainMusicals Domain = "musicals"
)

// Domains lists all content domains in serving order.
var Domains = []Domain{
	DomainMovies,
	DomainBooks,
	DomainMusic,
	DomainArt,
	DomainPoetry,
	DomainPodcasts,
	DomainMusicals,
}

// CandidateItem is one entry of the shared catalog. The same item discovered
// by different users maps to the same ItemID (a stable hash of SourceURL).
type CandidateItem struct {
	ItemID      string
	Domain      Domain
	Title       string
	Description string
	Creator     string
	ReleaseDate string
	SourceURL   string
	ImageURL    string
	Metadata    map[string]string
	CreatedTs   int64
}

// FindCandidateItem is the find condition for catalog items.
type FindCandidateItem struct {
	ItemID  *string
	ItemIDs []string
	Domain  *Domain
}

func (s *Store) UpsertCandidateItem(ctx context.Context, upsert *CandidateItem) (*CandidateItem, error) {
	return s.driver.UpsertCandidateItem(ctx, upsert)
}

func (s *Store) GetCandidateItem(ctx context.Context, itemID string) (*CandidateItem, error) {
	list, err := s.driver.ListCandidateItems(ctx, &FindCandidateItem{ItemID: &itemID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListCandidateItems(ctx context.Context, find *FindCandidateItem) ([]*CandidateItem, error) {
	return s.driver.ListCandidateItems(ctx, find)
}

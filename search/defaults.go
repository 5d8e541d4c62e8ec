package search

import (
	"github.com/artrec/hunterd/internal/profile"
	"github.com/artrec/hunterd/store"
)

// Quality source lists for the web-search domains. Catalog-style hosts are
// preferred; link farms and social aggregators are dropped outright.
var (
	artAllowHosts = []string{
		"wikiart.org", "artsy.net", "moma.org", "metmuseum.org",
		"tate.org.uk", "nga.gov", "artic.edu", "guggenheim.org",
	}
	poetryAllowHosts = []string{
		"poetryfoundation.org", "poets.org", "allpoetry.com", "poetryarchive.org",
	}
	podcastAllowHosts = []string{
		"podcasts.apple.com", "open.spotify.com", "podchaser.com", "listennotes.com",
	}
	musicalAllowHosts = []string{
		"broadwayworld.com", "playbill.com", "ibdb.com", "mtishows.com",
	}
	webDenyHosts = []string{
		"pinterest.com", "facebook.com", "instagram.com", "tiktok.com",
		"reddit.com", "quora.com", "amazon.com", "ebay.com", "etsy.com",
	}
)

// NewDefaultRegistry wires the production adapter set from configuration.
// Domains whose credentials are missing still get a registered adapter; their
// calls fail and are absorbed per domain at the aggregation boundary.
func NewDefaultRegistry(p *profile.Profile) *Registry {
	registry := NewRegistry()
	registry.Register(store.DomainBooks, NewOpenLibraryAdapter(""))
	registry.Register(store.DomainMovies, NewTMDBAdapter(p.TMDBAPIKey, ""))
	registry.Register(store.DomainMusic, NewSpotifyAdapter(p.SpotifyClientID, p.SpotifyClientSecret, "", ""))
	registry.Register(store.DomainArt, NewSerpAdapter(p.SerpAPIKey, "", "art", artAllowHosts, webDenyHosts))
	registry.Register(store.DomainPoetry, NewSerpAdapter(p.SerpAPIKey, "", "poetry", poetryAllowHosts, webDenyHosts))
	registry.Register(store.DomainPodcasts, NewSerpAdapter(p.SerpAPIKey, "", "podcast", podcastAllowHosts, webDenyHosts))
	registry.Register(store.DomainMusicals, NewSerpAdapter(p.SerpAPIKey, "", "musical", musicalAllowHosts, webDenyHosts))
	return registry
}

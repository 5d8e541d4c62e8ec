package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Embedding configuration (OpenAI-compatible protocol).
	// All providers (openai, siliconflow, ollama) use the same config.
	EmbeddingProvider   string // Provider identifier: openai, siliconflow, ollama
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string // Optional, has default per provider
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingTimeout    int // Embedding request timeout in seconds (default: 30)

	// Search adapter credentials
	SerpAPIKey          string
	TMDBAPIKey          string
	SpotifyClientID     string
	SpotifyClientSecret string

	// Candidate generation tuning
	AggregateWorkers int // Concurrent domain fan-out (default: 4)
	PerDomainLimit   int // Raw results requested per domain (default: 20)
	PoolSize         int // Candidate pool cap after dedupe (default: 100)

	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string
	DSN     string
	Version string
}

// Provider default configurations for embeddings.
// Used when EMBEDDING_BASE_URL is not explicitly set.
var embeddingProviderDefaults = map[string]struct {
	BaseURL    string
	Model      string
	Dimensions int
}{
	"openai": {
		BaseURL:    "https://api.openai.com/v1",
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
	},
	"siliconflow": {
		BaseURL:    "https://api.siliconflow.cn/v1",
		Model:      "BAAI/bge-m3",
		Dimensions: 1024,
	},
	"ollama": {
		BaseURL:    "http://localhost:11434/v1",
		Model:      "nomic-embed-text",
		Dimensions: 768,
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsEmbeddingEnabled returns true if an embedding API key is configured.
// Without it candidate generation and personalization cannot run.
func (p *Profile) IsEmbeddingEnabled() bool {
	return p.EmbeddingAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.EmbeddingProvider = getEnvOrDefault("HUNTERD_EMBEDDING_PROVIDER", "openai")
	p.EmbeddingAPIKey = getEnvOrDefault("HUNTERD_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("HUNTERD_EMBEDDING_BASE_URL", "")
	p.EmbeddingModel = getEnvOrDefault("HUNTERD_EMBEDDING_MODEL", "")
	p.EmbeddingDimensions = getEnvOrDefaultInt("HUNTERD_EMBEDDING_DIMENSIONS", 0)
	p.EmbeddingTimeout = getEnvOrDefaultInt("HUNTERD_EMBEDDING_TIMEOUT_SECONDS", 30)

	if _, ok := embeddingProviderDefaults[p.EmbeddingProvider]; !ok {
		p.EmbeddingProvider = "openai"
	}
	if defaults, ok := embeddingProviderDefaults[p.EmbeddingProvider]; ok {
		if p.EmbeddingBaseURL == "" {
			p.EmbeddingBaseURL = defaults.BaseURL
		}
		if p.EmbeddingModel == "" {
			p.EmbeddingModel = defaults.Model
		}
		if p.EmbeddingDimensions == 0 {
			p.EmbeddingDimensions = defaults.Dimensions
		}
	}

	p.SerpAPIKey = getEnvOrDefault("HUNTERD_SERPAPI_KEY", "")
	p.TMDBAPIKey = getEnvOrDefault("HUNTERD_TMDB_API_KEY", "")
	p.SpotifyClientID = getEnvOrDefault("HUNTERD_SPOTIFY_CLIENT_ID", "")
	p.SpotifyClientSecret = getEnvOrDefault("HUNTERD_SPOTIFY_CLIENT_SECRET", "")

	p.AggregateWorkers = getEnvOrDefaultInt("HUNTERD_AGGREGATE_WORKERS", 4)
	p.PerDomainLimit = getEnvOrDefaultInt("HUNTERD_PER_DOMAIN_LIMIT", 20)
	p.PoolSize = getEnvOrDefaultInt("HUNTERD_POOL_SIZE", 100)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("hunterd_%s.db", p.Mode))
	}

	if p.AggregateWorkers <= 0 {
		p.AggregateWorkers = 4
	}
	if p.PerDomainLimit <= 0 {
		p.PerDomainLimit = 20
	}
	if p.PoolSize <= 0 {
		p.PoolSize = 100
	}

	return nil
}

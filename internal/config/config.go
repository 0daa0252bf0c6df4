package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ContractLens server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	MaxUploadBytes     int64
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// StorageConfig selects where uploaded documents are kept.
type StorageConfig struct {
	Backend  string
	LocalDir string
	MinIO    MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AnalysisConfig bounds a single analysis run.
type AnalysisConfig struct {
	Timeout          time.Duration
	ChunkConcurrency int
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	VLLM             VLLMConfig
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

var validProviders = map[string]bool{
	"ollama":    true,
	"vllm":      true,
	"openai":    true,
	"anthropic": true,
}

var validStorageBackends = map[string]bool{
	"local": true,
	"minio": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
// A missing AI credential is not a load error: the server starts and reports
// analysis as unavailable.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("CONTRACTLENS_PORT", 8080),
			Env:                envString("CONTRACTLENS_ENV", "development"),
			MaxUploadBytes:     int64(envInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Storage: StorageConfig{
			Backend:  envString("STORAGE_BACKEND", "local"),
			LocalDir: envString("STORAGE_LOCAL_DIR", "./uploads"),
			MinIO: MinIOConfig{
				Endpoint:  os.Getenv("MINIO_ENDPOINT"),
				AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				Bucket:    envString("MINIO_BUCKET", "contracts"),
				UseSSL:    envBool("MINIO_USE_SSL", false),
			},
		},
		Analysis: AnalysisConfig{
			Timeout:          envDuration("ANALYSIS_TIMEOUT", 10*time.Minute),
			ChunkConcurrency: envInt("ANALYSIS_CHUNK_CONCURRENCY", 1),
		},
		AI: loadAIConfig(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAI reads only the AI provider section. Used by tools that analyze
// documents without a database or cache.
func LoadAI() (*AIConfig, error) {
	ai := loadAIConfig()
	if err := ai.validate(); err != nil {
		return nil, err
	}
	return &ai, nil
}

func loadAIConfig() AIConfig {
	return AIConfig{
		Provider:         envString("AI_PROVIDER", "anthropic"),
		InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
		Ollama: OllamaConfig{
			BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:   envString("OLLAMA_MODEL", "llama3.1"),
		},
		VLLM: VLLMConfig{
			BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
			Model:   envString("VLLM_MODEL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   envString("OPENAI_MODEL", "gpt-4o"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Anthropic: AnthropicConfig{
			APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		},
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}

	if !validStorageBackends[c.Storage.Backend] {
		return fmt.Errorf("STORAGE_BACKEND must be one of local, minio; got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "minio" {
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND is minio")
		}
		if strings.Contains(c.Storage.MinIO.Endpoint, "://") {
			return fmt.Errorf("MINIO_ENDPOINT must be host:port without a scheme, got %q", c.Storage.MinIO.Endpoint)
		}
	}

	if c.Analysis.ChunkConcurrency < 1 {
		return fmt.Errorf("ANALYSIS_CHUNK_CONCURRENCY must be at least 1, got %d", c.Analysis.ChunkConcurrency)
	}

	return c.AI.validate()
}

func (a *AIConfig) validate() error {
	if !validProviders[a.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai, anthropic; got %q", a.Provider)
	}

	for name, u := range map[string]string{
		"OLLAMA_BASE_URL":    a.Ollama.BaseURL,
		"VLLM_BASE_URL":      a.VLLM.BaseURL,
		"ANTHROPIC_BASE_URL": a.Anthropic.BaseURL,
		"OPENAI_BASE_URL":    a.OpenAI.BaseURL,
	} {
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https://, got %q", name, u)
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

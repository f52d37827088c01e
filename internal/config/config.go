package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort     string `yaml:"api_port"`
	APIMaxConns int    `yaml:"api_max_conns"`
	LogLevel    string `yaml:"log_level"`

	// Empty DSN selects the in-process cache backend.
	PostgresDSN     string `yaml:"postgres_dsn"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`

	// Empty URL disables the purge queue.
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	PineconeAPIKey  string `yaml:"pinecone_api_key"`
	PineconeBaseURL string `yaml:"pinecone_base_url"`
	PineconeModel   string `yaml:"pinecone_model"`
	PineconeRPM     int    `yaml:"pinecone_rpm"`

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiBaseURL string `yaml:"gemini_base_url"`
	GeminiModel   string `yaml:"gemini_model"`

	ChunkWindow    int  `yaml:"chunk_window"`
	ChunkOverlap   int  `yaml:"chunk_overlap"`
	TopK           int  `yaml:"top_k"`
	LexicalEnabled bool `yaml:"lexical_enabled"`

	MaxAnswerTokens        int     `yaml:"max_answer_tokens"`
	Temperature            float64 `yaml:"temperature"`
	EmbedTimeoutSeconds    int     `yaml:"embed_timeout_seconds"`
	GenerateTimeoutSeconds int     `yaml:"generate_timeout_seconds"`
	TruncationRunes        int     `yaml:"truncation_runes"`
}

// Load reads environment variables with defaults, then overlays the
// optional YAML file named by RETRIEVAL_CONFIG_FILE. File values win
// over environment values.
func Load() (Config, error) {
	cfg := Config{
		APIPort:     mustEnv("API_PORT", "8080"),
		APIMaxConns: mustEnvInt("API_MAX_CONNS", 256),
		LogLevel:    mustEnv("LOG_LEVEL", "info"),

		PostgresDSN:     mustEnv("POSTGRES_DSN", ""),
		CacheTTLSeconds: mustEnvInt("CACHE_TTL_SECONDS", 86400),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "retrieval.cache.purge"),

		PineconeAPIKey:  mustEnv("PINECONE_API_KEY", ""),
		PineconeBaseURL: mustEnv("PINECONE_BASE_URL", ""),
		PineconeModel:   mustEnv("PINECONE_MODEL", "multilingual-e5-large"),
		PineconeRPM:     mustEnvInt("PINECONE_RPM", 60),

		GeminiAPIKey:  mustEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: mustEnv("GEMINI_BASE_URL", ""),
		GeminiModel:   mustEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		ChunkWindow:    mustEnvInt("CHUNK_WINDOW", 1000),
		ChunkOverlap:   mustEnvInt("CHUNK_OVERLAP", 100),
		TopK:           mustEnvInt("RETRIEVAL_TOP_K", 3),
		LexicalEnabled: mustEnvBool("LEXICAL_ENABLED", true),

		MaxAnswerTokens:        mustEnvInt("MAX_ANSWER_TOKENS", 500),
		Temperature:            mustEnvFloat("GENERATION_TEMPERATURE", 0.7),
		EmbedTimeoutSeconds:    mustEnvInt("EMBED_TIMEOUT_SECONDS", 30),
		GenerateTimeoutSeconds: mustEnvInt("GENERATE_TIMEOUT_SECONDS", 60),
		TruncationRunes:        mustEnvInt("TRUNCATION_RUNES", 12000),
	}

	if path := os.Getenv("RETRIEVAL_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	return cfg, nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

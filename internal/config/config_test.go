package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.CacheTTLSeconds != 86400 {
		t.Fatalf("CacheTTLSeconds = %d", cfg.CacheTTLSeconds)
	}
	if cfg.ChunkWindow != 1000 || cfg.ChunkOverlap != 100 {
		t.Fatalf("chunking = %d/%d", cfg.ChunkWindow, cfg.ChunkOverlap)
	}
	if cfg.TopK != 3 {
		t.Fatalf("TopK = %d", cfg.TopK)
	}
	if !cfg.LexicalEnabled {
		t.Fatal("lexical path must default to enabled")
	}
	if cfg.NATSSubject != "retrieval.cache.purge" {
		t.Fatalf("NATSSubject = %q", cfg.NATSSubject)
	}
	if cfg.PineconeModel != "multilingual-e5-large" {
		t.Fatalf("PineconeModel = %q", cfg.PineconeModel)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("LEXICAL_ENABLED", "false")
	t.Setenv("GENERATION_TEMPERATURE", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != "9090" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.TopK != 5 {
		t.Fatalf("TopK = %d", cfg.TopK)
	}
	if cfg.LexicalEnabled {
		t.Fatal("LEXICAL_ENABLED=false must disable the lexical path")
	}
	if cfg.Temperature != 0.2 {
		t.Fatalf("Temperature = %f", cfg.Temperature)
	}
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "lots")
	t.Setenv("LEXICAL_ENABLED", "sometimes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TopK != 3 {
		t.Fatalf("malformed int must fall back, got %d", cfg.TopK)
	}
	if !cfg.LexicalEnabled {
		t.Fatal("malformed bool must fall back")
	}
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrieval.yaml")
	body := "api_port: \"7070\"\ntop_k: 7\npostgres_dsn: postgres://cache\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("API_PORT", "9090")
	t.Setenv("RETRIEVAL_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != "7070" {
		t.Fatalf("file must win over env, got %q", cfg.APIPort)
	}
	if cfg.TopK != 7 {
		t.Fatalf("TopK = %d", cfg.TopK)
	}
	if cfg.PostgresDSN != "postgres://cache" {
		t.Fatalf("PostgresDSN = %q", cfg.PostgresDSN)
	}
	// Keys absent from the file keep their env/default values.
	if cfg.ChunkWindow != 1000 {
		t.Fatalf("ChunkWindow = %d", cfg.ChunkWindow)
	}
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	t.Setenv("RETRIEVAL_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis.addr = %s, want localhost:6379", cfg.Redis.Addr)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("embedding.model = %s", cfg.Embedding.Model)
	}
	if cfg.Vector.Backend != "scan" {
		t.Errorf("vector.backend = %s, want scan", cfg.Vector.Backend)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragstore.yaml")
	content := `
server:
  port: 9090
redis:
  addr: redis.internal:6379
  db: 2
embedding:
  provider: hash
  dimensions: 128
vector:
  backend: qdrant
  collection: notes
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Embedding.Provider != "hash" || cfg.Embedding.Dimensions != 128 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Vector.Backend != "qdrant" || cfg.Vector.Collection != "notes" {
		t.Errorf("vector = %+v", cfg.Vector)
	}
	// Untouched sections keep their defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("log.level = %s, want info", cfg.Log.Level)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	// Secrets are documented as env-first; they must survive a load
	// with no config file at all.
	t.Setenv("RAGSTORE_EMBEDDING_API_KEY", "sk-test-123")
	t.Setenv("RAGSTORE_REDIS_PASSWORD", "hunter2")
	t.Setenv("RAGSTORE_TELEMETRY_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("RAGSTORE_EMBEDDING_REQUESTS_PER_MINUTE", "120")
	t.Setenv("RAGSTORE_SERVER_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-test-123" {
		t.Errorf("embedding.api_key = %q, want sk-test-123", cfg.Embedding.APIKey)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Errorf("redis.password = %q, want hunter2", cfg.Redis.Password)
	}
	if cfg.Telemetry.OTLPEndpoint != "collector:4317" {
		t.Errorf("telemetry.otlp_endpoint = %q, want collector:4317", cfg.Telemetry.OTLPEndpoint)
	}
	if cfg.Embedding.RequestsPerMinute != 120 {
		t.Errorf("embedding.requests_per_minute = %d, want 120", cfg.Embedding.RequestsPerMinute)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragstore.yaml")
	if err := os.WriteFile(path, []byte("redis:\n  addr: file.internal:6379\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RAGSTORE_REDIS_ADDR", "env.internal:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "env.internal:6379" {
		t.Errorf("redis.addr = %q, env should win over file", cfg.Redis.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/ragstore.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Provider: "openai"}}
	found := false
	for _, w := range cfg.Validate() {
		if strings.Contains(w, "api_key") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected warning about missing api_key")
	}
}

func TestValidate_HashProviderNeedsNoKey(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Provider: "hash"}}
	for _, w := range cfg.Validate() {
		if strings.Contains(w, "api_key") {
			t.Errorf("unexpected api_key warning: %s", w)
		}
	}
}

func TestValidate_VectorBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    bool // true = should warn
	}{
		{"empty", "", false},
		{"scan", "scan", false},
		{"qdrant", "qdrant", false},
		{"typo", "qdrnat", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Vector: VectorConfig{Backend: tt.backend}}
			hasWarn := false
			for _, w := range cfg.Validate() {
				if strings.Contains(w, "backend") {
					hasWarn = true
				}
			}
			if hasWarn != tt.want {
				t.Errorf("backend=%q: hasWarn=%v, want=%v", tt.backend, hasWarn, tt.want)
			}
		})
	}
}

func TestValidate_ServerPort(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: 70000}}
	found := false
	for _, w := range cfg.Validate() {
		if strings.Contains(w, "port") {
			found = true
		}
	}
	if !found {
		t.Error("expected warning about out-of-range port")
	}
}

package ai

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EmbeddingHost != "http://localhost:11434/v1" {
		t.Errorf("EmbeddingHost = %q, want local default", cfg.EmbeddingHost)
	}
	if cfg.GenerationHost != cfg.EmbeddingHost {
		t.Error("default hosts should match")
	}
	if cfg.EmbeddingModel == "" || cfg.GenerationModel == "" {
		t.Error("default models should be set")
	}
	if cfg.APIToken != "none" {
		t.Errorf("APIToken = %q, want none", cfg.APIToken)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://ai.internal:9100/v1"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithGenerationModel("gpt-4o-mini"),
		WithAPIToken("sk-test"),
		WithTemperature(0.7),
	)

	if cfg.EmbeddingHost != "http://ai.internal:9100/v1" {
		t.Errorf("EmbeddingHost = %q", cfg.EmbeddingHost)
	}
	if cfg.GenerationHost != "http://ai.internal:9100/v1" {
		t.Errorf("GenerationHost = %q", cfg.GenerationHost)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q", cfg.EmbeddingModel)
	}
	if cfg.GenerationModel != "gpt-4o-mini" {
		t.Errorf("GenerationModel = %q", cfg.GenerationModel)
	}
	if cfg.APIToken != "sk-test" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
}

func TestNewConfig_SplitHosts(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://embed:11434/v1"),
		WithGenerationHost("http://gen:11434/v1"),
	)

	if cfg.EmbeddingHost == cfg.GenerationHost {
		t.Error("split hosts should differ")
	}
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"missing suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			if cfg.EmbeddingHost != tt.want {
				t.Errorf("EmbeddingHost = %q, want %q", cfg.EmbeddingHost, tt.want)
			}
			if cfg.GenerationHost != tt.want {
				t.Errorf("GenerationHost = %q, want %q", cfg.GenerationHost, tt.want)
			}
		})
	}
}

func TestConfig_NormalizeEmptyToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIToken = ""
	cfg.Normalize()
	if cfg.APIToken != "none" {
		t.Errorf("APIToken = %q, want none", cfg.APIToken)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing generation host", func(c *Config) { c.GenerationHost = "" }, "GenerationHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing generation model", func(c *Config) { c.GenerationModel = "" }, "GenerationModel"},
		{"temperature too low", func(c *Config) { c.Temperature = -0.1 }, "Temperature"},
		{"temperature too high", func(c *Config) { c.Temperature = 2.1 }, "Temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateNormalizes(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !strings.HasSuffix(cfg.EmbeddingHost, "/v1") {
		t.Errorf("Validate should normalize hosts, got %q", cfg.EmbeddingHost)
	}
}

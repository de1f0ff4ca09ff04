package embedding

import (
	"testing"
	"time"
)

func TestFactory_CreateHash(t *testing.T) {
	f := NewFactory()

	p, err := f.Create(ProviderConfig{Provider: "hash", Dimensions: 64})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != "hash" {
		t.Errorf("Name() = %q, want %q", p.Name(), "hash")
	}
	if p.Dimensions() != 64 {
		t.Errorf("Dimensions() = %d, want 64", p.Dimensions())
	}
}

func TestFactory_DefaultsToHash(t *testing.T) {
	f := NewFactory()

	p, err := f.Create(ProviderConfig{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != "hash" {
		t.Errorf("empty provider should default to hash, got %q", p.Name())
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactory()

	if _, err := f.Create(ProviderConfig{Provider: "sentencepiece"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactory_CreateOpenAI_UnknownModelNeedsDims(t *testing.T) {
	f := NewFactory()

	_, err := f.Create(ProviderConfig{Provider: "openai", APIKey: "k", Model: "custom-embed"})
	if err == nil {
		t.Fatal("expected error for unknown model without dimensions")
	}

	p, err := f.Create(ProviderConfig{Provider: "openai", APIKey: "k", Model: "custom-embed", Dimensions: 768})
	if err != nil {
		t.Fatalf("Create with explicit dimensions: %v", err)
	}
	if p.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d, want 768", p.Dimensions())
	}
}

func TestFactory_WrapsWithRetry(t *testing.T) {
	f := NewFactory()

	p, err := f.Create(ProviderConfig{Provider: "hash", MaxRetries: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Errorf("expected RetryProvider wrapper, got %T", p)
	}
	// Decorators must pass the name through.
	if p.Name() != "hash" {
		t.Errorf("Name() = %q, want %q", p.Name(), "hash")
	}
}

func TestFactory_Register(t *testing.T) {
	f := NewFactory()
	f.Register("stub", func(cfg ProviderConfig) (Provider, error) {
		return &mockProvider{name: "stub", dims: 8}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "stub"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want %q", p.Name(), "stub")
	}
}

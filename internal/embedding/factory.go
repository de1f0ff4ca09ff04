package embedding

import (
	"fmt"
	"time"
)

// ProviderConfig holds all configuration needed to create any embedding provider.
type ProviderConfig struct {
	Provider   string // "openai", "hash"
	APIKey     string
	Model      string
	BaseURL    string // Override for self-hosted / OpenAI-compatible endpoints
	Dimensions int    // Output vector length (required for unknown models)

	// Timeout and retry configuration
	Timeout    time.Duration // Per-request timeout (default: 1 minute)
	MaxRetries int           // Max retry attempts (default: 3)
	RetryDelay time.Duration // Initial retry delay for exponential backoff (default: 1s)

	// RequestsPerMinute enables a request rate limiter when > 0.
	RequestsPerMinute int
}

// ProviderConstructor builds a Provider from config.
type ProviderConstructor func(cfg ProviderConfig) (Provider, error)

// Factory creates Provider instances from config.
type Factory struct {
	constructors map[string]ProviderConstructor
}

// NewFactory creates a factory with the built-in providers registered.
func NewFactory() *Factory {
	f := &Factory{constructors: make(map[string]ProviderConstructor)}
	f.Register("openai", func(cfg ProviderConfig) (Provider, error) {
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Dimensions)
	})
	f.Register("hash", func(cfg ProviderConfig) (Provider, error) {
		return NewHash(cfg.Dimensions), nil
	})
	return f
}

// Register adds a provider constructor under the given name.
func (f *Factory) Register(name string, ctor ProviderConstructor) {
	f.constructors[name] = ctor
}

// Create builds a Provider from config, wrapped with rate limiting and
// retry decorators when configured.
func (f *Factory) Create(cfg ProviderConfig) (Provider, error) {
	if cfg.Provider == "" {
		cfg.Provider = "hash"
	}

	ctor, ok := f.constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown embedding provider %q (registered: %v)", cfg.Provider, f.names())
	}

	provider, err := ctor(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		provider = NewRateLimitProvider(provider, &RateLimitConfig{
			RequestsPerMinute: cfg.RequestsPerMinute,
			BurstSize:         DefaultRateLimitConfig().BurstSize,
		})
	}

	if cfg.Timeout > 0 || cfg.MaxRetries > 0 {
		retryCfg := DefaultRetryConfig()
		if cfg.Timeout > 0 {
			retryCfg.Timeout = cfg.Timeout
		}
		if cfg.MaxRetries > 0 {
			retryCfg.MaxRetries = cfg.MaxRetries
		}
		if cfg.RetryDelay > 0 {
			retryCfg.RetryDelay = cfg.RetryDelay
		}
		provider = NewRetryProvider(provider, retryCfg)
	}

	return provider, nil
}

func (f *Factory) names() []string {
	var out []string
	for k := range f.constructors {
		out = append(out, k)
	}
	return out
}

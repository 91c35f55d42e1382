package factory

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/providers"
	"github.com/manakavoo/manakavoo-backend/internal/providers/openai"
	"github.com/manakavoo/manakavoo-backend/internal/providers/stub"
)

// CreateProvider creates a provider instance based on configuration. Remote
// providers are wrapped in a circuit breaker when llm.breaker_failures > 0.
func CreateProvider(cfg config.LLMConfig, logger logrus.FieldLogger) (providers.Provider, error) {
	var (
		provider providers.Provider
		err      error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider, err = openai.NewProvider(cfg)
	case config.ProviderOpenAICompatible:
		provider, err = openai.NewCompatibleProvider(cfg)
	case config.ProviderStub:
		return stub.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.BreakerFailures > 0 {
		provider = providers.NewBreakerProvider(provider, cfg.BreakerFailures, cfg.BreakerCooldown, logger)
	}
	return provider, nil
}

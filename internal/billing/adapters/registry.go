package adapters

import (
	"strings"

	"github.com/smallbiznis/tenantflow/internal/billing/adapters/fake"
	"github.com/smallbiznis/tenantflow/internal/billing/adapters/stripe"
	"github.com/smallbiznis/tenantflow/internal/billing/domain"
	"github.com/smallbiznis/tenantflow/internal/config"
	"go.uber.org/zap"
)

type Registry struct {
	factories map[string]domain.ClientFactory
}

func NewRegistry(factories ...domain.ClientFactory) *Registry {
	registry := &Registry{factories: map[string]domain.ClientFactory{}}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(factory.Provider()))
		if provider == "" {
			continue
		}
		registry.factories[provider] = factory
	}
	return registry
}

// NewDefaultRegistry registers every built-in processor.
func NewDefaultRegistry(log *zap.Logger) *Registry {
	return NewRegistry(
		stripe.NewFactory(log),
		fake.NewFactory(),
	)
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := r.factories[provider]
	return ok
}

func (r *Registry) NewClient(provider string, cfg domain.ClientConfig) (domain.Client, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	factory, ok := r.factories[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return factory.NewClient(cfg)
}

// ProvideClient builds the configured processor client.
func ProvideClient(cfg config.Config, registry *Registry, log *zap.Logger) (domain.Client, error) {
	client, err := registry.NewClient(cfg.Payment.Provider, domain.ClientConfig{
		SecretKey:     cfg.Payment.SecretKey,
		RentProductID: cfg.Payment.RentProductID,
		APIBaseURL:    cfg.Payment.APIBaseURL,
	})
	if err != nil {
		return nil, err
	}
	log.Info("payment processor configured", zap.String("provider", cfg.Payment.Provider))
	return client, nil
}

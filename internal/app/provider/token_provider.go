package provider

import (
	"sync"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// TokenSource loads token descriptors from configuration.
type TokenSource interface {
	LoadTokens() ([]entity.TokenDescriptor, error)
}

type tokenProviderImpl struct {
	source      TokenSource
	logger      port.Logger
	mu          sync.Mutex
	tokensCache []entity.TokenDescriptor
}

// NewTokenProvider creates a new TokenProvider backed by source.
func NewTokenProvider(source TokenSource, logger port.Logger) port.TokenProvider {
	return &tokenProviderImpl{source: source, logger: logger}
}

// GetTokens returns the configured token descriptors. The list is loaded once and
// cached; callers receive a copy.
func (p *tokenProviderImpl) GetTokens() ([]entity.TokenDescriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokensCache == nil {
		p.logger.Debug("Loading token descriptors")
		tokens, err := p.source.LoadTokens()
		if err != nil {
			p.logger.Error("Failed to load tokens", "error", err)
			return nil, err
		}
		if tokens == nil {
			tokens = []entity.TokenDescriptor{}
		}
		p.tokensCache = tokens
		p.logger.Info("Tokens loaded and cached successfully", "count", len(tokens))
	}

	out := make([]entity.TokenDescriptor, len(p.tokensCache))
	copy(out, p.tokensCache)
	return out, nil
}

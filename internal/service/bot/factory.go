package bot

import (
	"context"

	"github.com/bellaleprasann20/Chat-App/internal/config"
)

// NewBackend returns the backend selected by cfg, or nil when replies should
// come from the rules only.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.BotProvider() {
	case config.ProviderGroq:
		return NewGroqBackend(cfg.Groq, cfg.Bot), nil
	case config.ProviderArk:
		backend, err := NewArkBackend(ctx, cfg.AI)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, nil
	}
}

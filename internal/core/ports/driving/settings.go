package driving

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// SettingsService reads and updates user settings.
type SettingsService interface {
	// Get returns the user's settings, served from cache when fresh.
	Get(ctx context.Context) (*domain.UserSettings, error)

	// Update applies a partial update.
	Update(ctx context.Context, patch domain.SettingsPatch) (*domain.UserSettings, error)
}

// APIKeyService manages personal access keys.
type APIKeyService interface {
	List(ctx context.Context) ([]domain.APIKey, error)
	Create(ctx context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// Ensure the settings services implement the interfaces.
var (
	_ driving.SettingsService = (*SettingsService)(nil)
	_ driving.APIKeyService   = (*APIKeyService)(nil)
)

// settingsCacheKey is the single entry of the settings cache.
const settingsCacheKey = "settings"

// SettingsService reads and updates user settings, caching reads.
type SettingsService struct {
	api   driven.NotesAPI
	cache *cache.Cache
}

// NewSettingsService creates a settings service. A ttl of zero uses
// domain.DefaultSettingsTTL.
func NewSettingsService(api driven.NotesAPI, ttl time.Duration) *SettingsService {
	if ttl <= 0 {
		ttl = domain.DefaultSettingsTTL
	}
	return &SettingsService{
		api:   api,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Get returns the user's settings, served from cache when fresh.
func (s *SettingsService) Get(ctx context.Context) (*domain.UserSettings, error) {
	if cached, ok := s.cache.Get(settingsCacheKey); ok {
		settings := cached.(domain.UserSettings)
		return &settings, nil
	}

	settings, err := s.api.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(settingsCacheKey, *settings)
	return settings, nil
}

// Update applies a partial update and caches the result.
func (s *SettingsService) Update(ctx context.Context, patch domain.SettingsPatch) (*domain.UserSettings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	settings, err := s.api.UpdateSettings(ctx, patch)
	if err != nil {
		s.cache.Delete(settingsCacheKey)
		return nil, err
	}
	s.cache.SetDefault(settingsCacheKey, *settings)
	return settings, nil
}

// Invalidate drops the cached settings.
func (s *SettingsService) Invalidate() {
	s.cache.Delete(settingsCacheKey)
}

// APIKeyService manages personal access keys.
type APIKeyService struct {
	api driven.NotesAPI
}

// NewAPIKeyService creates an API key service.
func NewAPIKeyService(api driven.NotesAPI) *APIKeyService {
	return &APIKeyService{api: api}
}

// List returns key metadata.
func (s *APIKeyService) List(ctx context.Context) ([]domain.APIKey, error) {
	return s.api.ListAPIKeys(ctx)
}

// Create validates and issues a new key.
func (s *APIKeyService) Create(ctx context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.api.CreateAPIKey(ctx, req)
}

// Revoke revokes a key.
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return s.api.RevokeAPIKey(ctx, id)
}

package domain

import "fmt"

// APIKey is metadata for a personal access key issued by the notes service.
// The plaintext key is only present in the response to a create call.
type APIKey struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	KeyPrefix  string    `json:"key_prefix"`
	Key        string    `json:"key,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
	LastUsedAt Timestamp `json:"last_used_at"`
	ExpiresAt  Timestamp `json:"expires_at"`
	IsRevoked  bool      `json:"is_revoked"`
	RevokedAt  Timestamp `json:"revoked_at"`
}

// CreateAPIKeyRequest asks the notes service for a new key.
type CreateAPIKeyRequest struct {
	Name          string `json:"name"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty"`
}

// Validate checks the bounds the notes service enforces.
func (r CreateAPIKeyRequest) Validate() error {
	if r.Name == "" || len(r.Name) > 100 {
		return fmt.Errorf("%w: key name must be 1-100 characters", ErrInvalidInput)
	}
	if r.ExpiresInDays != nil && (*r.ExpiresInDays < 1 || *r.ExpiresInDays > 365) {
		return fmt.Errorf("%w: expiry must be between 1 and 365 days", ErrInvalidInput)
	}
	return nil
}

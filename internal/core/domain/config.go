package domain

import "time"

// Default client configuration values.
const (
	DefaultAPIURL        = "http://localhost:8000/api/v1"
	DefaultUploadTimeout = 30 * time.Second
	DefaultSettingsTTL   = 5 * time.Minute
)

// ClientConfig is the resolved configuration of the notely client.
type ClientConfig struct {
	// APIURL is the base URL of the notes service.
	APIURL string `validate:"required,url"`

	// SupabaseURL is the base URL of the Supabase project used for auth.
	SupabaseURL string `validate:"omitempty,url"`

	// SupabaseAnonKey is the public anon key sent as the apikey header.
	SupabaseAnonKey string

	// UploadTimeout bounds a single upload request.
	UploadTimeout time.Duration `validate:"gt=0"`

	// RequestsPerSecond limits outgoing requests; zero disables the limit.
	RequestsPerSecond float64 `validate:"gte=0"`

	// LogFile, when set, receives a rotating copy of all log output.
	LogFile string
}

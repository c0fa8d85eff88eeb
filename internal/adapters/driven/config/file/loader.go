package file

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
)

// Config keys understood by the client.
const (
	KeyAPIURL            = "api.url"
	KeySupabaseURL       = "supabase.url"
	KeySupabaseAnonKey   = "supabase.anon_key"
	KeyUploadTimeout     = "upload.timeout_seconds"
	KeyRequestsPerSecond = "gateway.requests_per_second"
	KeyLogFile           = "log.file"
)

// envPrefix namespaces environment overrides, e.g. NOTELY_API_URL.
const envPrefix = "NOTELY_"

// KnownKeys lists the config keys accepted by `notely config set`.
func KnownKeys() []string {
	return []string{
		KeyAPIURL,
		KeySupabaseURL,
		KeySupabaseAnonKey,
		KeyUploadTimeout,
		KeyRequestsPerSecond,
		KeyLogFile,
	}
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "_seconds", "").Replace(key))
}

var validate = validator.New()

// LoadClientConfig resolves the client configuration. Values come from the
// config store, then from envFile (if it exists), then from NOTELY_*
// environment variables. Variables already set in the environment take
// precedence over envFile.
func LoadClientConfig(store driven.ConfigStore, envFile string) (*domain.ClientConfig, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	cfg := &domain.ClientConfig{
		APIURL:        domain.DefaultAPIURL,
		UploadTimeout: domain.DefaultUploadTimeout,
	}

	if store != nil {
		if v := store.GetString(KeyAPIURL); v != "" {
			cfg.APIURL = v
		}
		cfg.SupabaseURL = store.GetString(KeySupabaseURL)
		cfg.SupabaseAnonKey = store.GetString(KeySupabaseAnonKey)
		if v := store.GetInt(KeyUploadTimeout); v > 0 {
			cfg.UploadTimeout = time.Duration(v) * time.Second
		}
		cfg.RequestsPerSecond = store.GetFloat(KeyRequestsPerSecond)
		cfg.LogFile = store.GetString(KeyLogFile)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: config field %s failed %q check", domain.ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return cfg, nil
}

func applyEnv(cfg *domain.ClientConfig) error {
	if v, ok := os.LookupEnv(EnvName(KeyAPIURL)); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv(EnvName(KeySupabaseURL)); ok && v != "" {
		cfg.SupabaseURL = v
	}
	if v, ok := os.LookupEnv(EnvName(KeySupabaseAnonKey)); ok && v != "" {
		cfg.SupabaseAnonKey = v
	}
	if v, ok := os.LookupEnv(EnvName(KeyUploadTimeout)); ok && v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvName(KeyUploadTimeout), err)
		}
		cfg.UploadTimeout = time.Duration(secs) * time.Second
	}
	if v, ok := os.LookupEnv(EnvName(KeyRequestsPerSecond)); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvName(KeyRequestsPerSecond), err)
		}
		cfg.RequestsPerSecond = rps
	}
	if v, ok := os.LookupEnv(EnvName(KeyLogFile)); ok && v != "" {
		cfg.LogFile = v
	}
	return nil
}

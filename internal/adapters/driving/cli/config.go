package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
	Long: `View and change the client configuration in ~/.notely/config.toml.

Every key can be overridden by an environment variable, for example
NOTELY_API_URL overrides api.url. Variables may also be placed in a .env
file in the working directory.

Keys: ` + strings.Join(file.KnownKeys(), ", "),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored configuration values",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a configuration value",
	Long: `Store a configuration value.

Values that start with a dash must follow "--" so they are not read as
flags.`,
	Example: `  notely config set upload.timeout_seconds 90
  notely config set -- gateway.requests_per_second -1`,
	Args: cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return notConfigured("config store")
	}

	for _, key := range file.KnownKeys() {
		value, ok := configStore.Get(key)
		display := "(default)"
		if ok {
			display = fmt.Sprint(value)
			if key == file.KeySupabaseAnonKey {
				display = maskAPIKey(display)
			}
		}
		cmd.Printf("  %-28s %s\n", key, display)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return notConfigured("config store")
	}

	key, raw := args[0], args[1]
	if !slices.Contains(file.KnownKeys(), key) {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	value, err := configValue(key, raw)
	if err != nil {
		return err
	}
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return notConfigured("config store")
	}
	cmd.Println(configStore.Path())
	return nil
}

// configValue converts a command line value to the key's stored type.
func configValue(key, raw string) (any, error) {
	switch key {
	case file.KeyUploadTimeout:
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return int64(secs), nil
	case file.KeyRequestsPerSecond:
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		return rps, nil
	default:
		return raw, nil
	}
}

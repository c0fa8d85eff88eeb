package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage personal API keys",
	Long: `Create, list and revoke API keys for scripting against the notes
service. The key itself is shown only once, when it is created.`,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	RunE:  runKeysList,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysCreate,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke [key-id]",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

var keysExpiresDays int

func init() {
	keysCreateCmd.Flags().IntVar(&keysExpiresDays, "expires-days", 0, "days until the key expires (1-365, 0 = never)")

	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysRevokeCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysList(cmd *cobra.Command, _ []string) error {
	if apiKeyService == nil {
		return notConfigured("api key service")
	}

	keys, err := apiKeyService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(keys) == 0 {
		cmd.Println("No API keys.")
		return nil
	}

	for i := range keys {
		state := "active"
		if keys[i].IsRevoked {
			state = color.RedString("revoked")
		}
		cmd.Printf("%s  %-20s  %s...  created %s  last used %s  %s\n",
			keys[i].ID, truncate(keys[i].Name, 20), keys[i].KeyPrefix,
			formatTimestamp(keys[i].CreatedAt), formatTimestamp(keys[i].LastUsedAt), state)
	}
	return nil
}

func runKeysCreate(cmd *cobra.Command, args []string) error {
	if apiKeyService == nil {
		return notConfigured("api key service")
	}

	req := domain.CreateAPIKeyRequest{Name: args[0]}
	if keysExpiresDays != 0 {
		days := keysExpiresDays
		req.ExpiresInDays = &days
	}

	key, err := apiKeyService.Create(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	cmd.Printf("Created key %s (%s)\n", key.ID, key.Name)
	if key.Key != "" {
		cmd.Println()
		cmd.Printf("  %s\n", color.New(color.Bold).Sprint(key.Key))
		cmd.Println()
		cmd.Println("Store it now, it will not be shown again.")
	}
	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	if apiKeyService == nil {
		return notConfigured("api key service")
	}

	if err := apiKeyService.Revoke(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}
	cmd.Printf("Revoked key %s\n", args[0])
	return nil
}

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage your account settings",
	Long: `View and update the settings stored with your account.

Updatable keys: ` + strings.Join(domain.SettingsKeys(), ", ") + `

List values (excluded_folders, suggested_prompts) are comma-separated.
Omit the value of openai_api_key to be prompted without echo.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Update a single setting",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSettingsSet,
}

var settingsJSON bool

func init() {
	settingsShowCmd.Flags().BoolVar(&settingsJSON, "json", false, "output settings as JSON")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	settings, err := settingsService.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if settingsJSON {
		return outputJSON(cmd, settings)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Printf("  Model:             %s\n", orNotSet(settings.Model))
	cmd.Printf("  Personal info:     %s\n", orNotSet(truncate(settings.PersonalInfo, 60)))
	cmd.Printf("  Memory:            %s\n", orNotSet(truncate(settings.Memory, 60)))
	cmd.Printf("  Excluded folders:  %s\n", orNotSet(strings.Join(settings.ExcludedFolders, ", ")))
	if len(settings.SuggestedPrompts) == 0 {
		cmd.Printf("  Suggested prompts: (not set)\n")
	} else {
		cmd.Println("  Suggested prompts:")
		for _, p := range settings.SuggestedPrompts {
			cmd.Printf("    - %s\n", p)
		}
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	key := args[0]
	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case key == "openai_api_key":
		cmd.Print("OpenAI API key: ")
		raw = readPassword(cmd, bufio.NewReader(cmd.InOrStdin()))
		cmd.Println()
	default:
		return fmt.Errorf("%w: a value is required for %s", domain.ErrInvalidInput, key)
	}

	patch := domain.SettingsPatch{key: settingValue(key, raw)}
	if _, err := settingsService.Update(cmd.Context(), patch); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	if key == "openai_api_key" {
		raw = maskAPIKey(raw)
	}
	cmd.Printf("Updated %s = %s\n", key, raw)
	return nil
}

// settingValue converts a command line value to its wire type.
func settingValue(key, raw string) any {
	switch key {
	case "excluded_folders", "suggested_prompts":
		items := []string{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items
	default:
		return raw
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

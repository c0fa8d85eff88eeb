package domain

import (
	"fmt"
	"sort"
)

// UserSettings holds the per-user preferences stored by the notes service.
type UserSettings struct {
	UserID           string   `json:"user_id"`
	PersonalInfo     string   `json:"personal_info"`
	Memory           string   `json:"memory"`
	Model            string   `json:"model"`
	ExcludedFolders  []string `json:"excluded_folders"`
	SuggestedPrompts []string `json:"suggested_prompts"`
}

// SettingsPatch is a partial settings update keyed by wire name.
type SettingsPatch map[string]any

// settingsKeys lists the fields a client may update.
// user_id and id are owned by the server.
var settingsKeys = map[string]bool{
	"personal_info":     true,
	"memory":            true,
	"model":             true,
	"openai_api_key":    true,
	"excluded_folders":  true,
	"suggested_prompts": true,
}

// SettingsKeys returns the updatable settings keys in sorted order.
func SettingsKeys() []string {
	keys := make([]string, 0, len(settingsKeys))
	for k := range settingsKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects empty patches and unknown keys.
func (p SettingsPatch) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty settings update", ErrInvalidInput)
	}
	for k := range p {
		if !settingsKeys[k] {
			return fmt.Errorf("%w: unknown setting %q", ErrInvalidInput, k)
		}
	}
	return nil
}

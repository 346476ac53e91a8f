package settingsstore

import (
	"os"

	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/entities"
)

// Priority: database > environment > default
type SettingsStore struct {
	db *database.Database
}

func New(db *database.Database) *SettingsStore {
	return &SettingsStore{db: db}
}

// GetLegacyStorePath returns the configured legacy store location, or ""
// when unset (the platform default path is then probed by the caller).
func (s *SettingsStore) GetLegacyStorePath() string {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyStorePath)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envPath := os.Getenv("LEGACY_STORE_PATH"); envPath != "" {
		return envPath
	}

	return ""
}

func (s *SettingsStore) SetLegacyStorePath(path string) error {
	return s.db.SetSetting(entities.SettingKeyLegacyStorePath, path)
}

// GetLegacyStorePathSource reports where the effective path came from.
func (s *SettingsStore) GetLegacyStorePathSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyStorePath)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envPath := os.Getenv("LEGACY_STORE_PATH"); envPath != "" {
		return "environment"
	}
	return "default"
}

type StorePathInfo struct {
	Path   string `json:"path"`
	Source string `json:"source"` // "database", "environment", or "default"
}

func (s *SettingsStore) GetLegacyStorePathInfo() StorePathInfo {
	return StorePathInfo{
		Path:   s.GetLegacyStorePath(),
		Source: s.GetLegacyStorePathSource(),
	}
}

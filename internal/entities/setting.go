package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Legacy import settings
	SettingKeyLegacyImportCompleted  = "legacy_import_completed"
	SettingKeyLegacyImportLastAt     = "legacy_import_last_at"
	SettingKeyLegacyImportLastStatus = "legacy_import_last_status"
	SettingKeyLegacyImportLastReport = "legacy_import_last_report"

	// Legacy store discovery settings
	SettingKeyLegacyAutoImport    = "legacy_auto_import"
	SettingKeyLegacyCheckSchedule = "legacy_check_schedule"
	SettingKeyLegacyStorePath     = "legacy_store_path"
)

package settingsstore

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/inkwell/internal/entities"
)

// LegacyImportConfig represents the effective legacy import configuration
type LegacyImportConfig struct {
	AutoImport bool   `json:"auto_import"`
	StorePath  string `json:"store_path"`
	Schedule   string `json:"schedule"`
}

// LegacyImportConfigInfo includes source information for each field
type LegacyImportConfigInfo struct {
	AutoImport       bool   `json:"auto_import"`
	AutoImportSource string `json:"auto_import_source"` // "database", "environment", "default"

	StorePath       string `json:"store_path"`
	StorePathSource string `json:"store_path_source"`

	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
}

// LegacyImportStatus represents the last import outcome
type LegacyImportStatus struct {
	Completed bool       `json:"completed"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"` // "success", "failed", ""
	Report    string     `json:"report,omitempty"` // Summary or error report
}

// GetLegacyImportCompleted returns whether a full import has already run.
// Database-only: this flag is persisted state, not configuration.
func (s *SettingsStore) GetLegacyImportCompleted() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyImportCompleted)
	if err != nil {
		return false
	}
	return setting.Value == "true" || setting.Value == "1"
}

// SetLegacyImportCompleted persists the already-imported flag. Written only
// after a fully successful run; a failed run leaves it unset so the import
// is retried on next launch.
func (s *SettingsStore) SetLegacyImportCompleted(completed bool) error {
	return s.db.SetSetting(entities.SettingKeyLegacyImportCompleted, strconv.FormatBool(completed))
}

// GetLegacyAutoImport returns whether a discovered store is imported
// automatically (database > env > default)
func (s *SettingsStore) GetLegacyAutoImport() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyAutoImport)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	if envVal := os.Getenv("LEGACY_AUTO_IMPORT"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: discovery only reports, the user triggers the import
	return false
}

// GetLegacyAutoImportSource returns the source of the auto-import setting
func (s *SettingsStore) GetLegacyAutoImportSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyAutoImport)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("LEGACY_AUTO_IMPORT"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetLegacyAutoImport saves the auto-import setting to database
func (s *SettingsStore) SetLegacyAutoImport(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeyLegacyAutoImport, strconv.FormatBool(enabled))
}

// GetLegacyCheckSchedule returns the cron schedule for store discovery
// checks (database > env > default)
func (s *SettingsStore) GetLegacyCheckSchedule() string {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyCheckSchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envVal := os.Getenv("LEGACY_CHECK_SCHEDULE"); envVal != "" {
		return envVal
	}

	// Default: hourly
	return "0 * * * *"
}

// GetLegacyCheckScheduleSource returns the source of the schedule setting
func (s *SettingsStore) GetLegacyCheckScheduleSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyLegacyCheckSchedule)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("LEGACY_CHECK_SCHEDULE"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetLegacyCheckSchedule saves the schedule to database
func (s *SettingsStore) SetLegacyCheckSchedule(schedule string) error {
	return s.db.SetSetting(entities.SettingKeyLegacyCheckSchedule, schedule)
}

// GetLegacyImportConfig returns the effective configuration
func (s *SettingsStore) GetLegacyImportConfig() LegacyImportConfig {
	return LegacyImportConfig{
		AutoImport: s.GetLegacyAutoImport(),
		StorePath:  s.GetLegacyStorePath(),
		Schedule:   s.GetLegacyCheckSchedule(),
	}
}

// GetLegacyImportConfigInfo returns the configuration with source information
func (s *SettingsStore) GetLegacyImportConfigInfo() LegacyImportConfigInfo {
	return LegacyImportConfigInfo{
		AutoImport:       s.GetLegacyAutoImport(),
		AutoImportSource: s.GetLegacyAutoImportSource(),
		StorePath:        s.GetLegacyStorePath(),
		StorePathSource:  s.GetLegacyStorePathSource(),
		Schedule:         s.GetLegacyCheckSchedule(),
		ScheduleSource:   s.GetLegacyCheckScheduleSource(),
	}
}

// GetLegacyImportStatus returns the last import outcome
func (s *SettingsStore) GetLegacyImportStatus() LegacyImportStatus {
	status := LegacyImportStatus{Completed: s.GetLegacyImportCompleted()}

	if setting, err := s.db.GetSetting(entities.SettingKeyLegacyImportLastAt); err == nil && setting.Value != "" {
		if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
			status.LastRunAt = &ts
		}
	}

	if setting, err := s.db.GetSetting(entities.SettingKeyLegacyImportLastStatus); err == nil {
		status.Status = setting.Value
	}

	if setting, err := s.db.GetSetting(entities.SettingKeyLegacyImportLastReport); err == nil {
		status.Report = setting.Value
	}

	return status
}

// SetLegacyImportOutcome records the outcome of an import run
func (s *SettingsStore) SetLegacyImportOutcome(status, report string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.db.SetSetting(entities.SettingKeyLegacyImportLastAt, now); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeyLegacyImportLastStatus, status); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeyLegacyImportLastReport, report)
}

// ClearLegacyImportSettings clears all database overrides, reverting to
// env/default. The completed flag is deliberately untouched.
func (s *SettingsStore) ClearLegacyImportSettings() error {
	keys := []string{
		entities.SettingKeyLegacyAutoImport,
		entities.SettingKeyLegacyStorePath,
		entities.SettingKeyLegacyCheckSchedule,
	}
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil {
			// Ignore not found errors
			continue
		}
	}
	return nil
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetNextRunTime calculates when the next discovery check will run
func GetNextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}

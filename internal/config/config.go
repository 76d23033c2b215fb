// Package config decodes service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Backend names for the STORAGE_BACKEND setting
const (
	BackendSheets = "sheets"
	BackendExcel  = "excel"
)

// Config is the full service configuration
type Config struct {
	Addr string `env:"ADDR,default=:8080"`
	Env  string `env:"ENV,default=development"`

	// StorageBackend selects the spreadsheet backend: sheets or excel.
	StorageBackend string `env:"STORAGE_BACKEND,default=sheets"`

	// SpreadsheetID identifies the Google spreadsheet (sheets backend).
	SpreadsheetID string `env:"SPREADSHEET_ID"`

	// CredentialsFile is a service account JSON key file. When empty,
	// Application Default Credentials are used.
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// ExcelPath is the workbook path (excel backend).
	ExcelPath string `env:"EXCEL_PATH,default=data/nutriapi.xlsx"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`

	// SweepSchedule is the cron expression for the appointment sweeper.
	SweepSchedule string `env:"SWEEP_SCHEDULE,default=@every 1h"`
}

// Load decodes the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendSheets:
		if cfg.SpreadsheetID == "" {
			return Config{}, fmt.Errorf("SPREADSHEET_ID is required for the sheets backend")
		}
	case BackendExcel:
		if cfg.ExcelPath == "" {
			return Config{}, fmt.Errorf("EXCEL_PATH is required for the excel backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

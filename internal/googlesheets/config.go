package googlesheets

import "fmt"

// Config holds settings for the Google Sheets client
type Config struct {
	// SpreadsheetID is the ID of the spreadsheet holding all entity sheets
	SpreadsheetID string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet ID is required")
	}
	return nil
}

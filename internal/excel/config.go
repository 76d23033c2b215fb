package excel

import "fmt"

// Config holds settings for the Excel adapter
type Config struct {
	// FilePath is the path to the .xlsx file holding all entity sheets
	FilePath string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	return nil
}
